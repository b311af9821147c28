package core

import (
	"testing"

	context2 "github.com/metaforge/modelvc/pkg/context"
	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// releasedProject sets up a project with entity A and a released
// version 0.1.0
func releasedProject(t *testing.T, stores context2.Stores) (model.Stream, model.VersionDescriptor) {
	t.Helper()
	stream := testProject(t, stores, "trading")
	advanceStream(t, stores, stream, createChange("model::A", 1))
	version, err := NewVersion(stream, model.IncrementMinor, model.HeadAlias(), "", stores)
	require.NoError(t, err)
	return stream, version
}

func TestNewPatch(t *testing.T) {
	stores := testStores(t)
	stream, version := releasedProject(t, stores)

	patch, err := NewPatch("trading", version.ID, stores)
	require.NoError(t, err)
	assert.Equal(t, version.ID, patch.SourceVersion)
	assert.Equal(t, version.RevisionID, patch.BaseRevisionID)
	assert.Equal(t, version.RevisionID, patch.HeadRevisionID)
	assert.False(t, patch.Released)

	// the patch line sees the content sealed by the source version,
	// not the moving main head
	advanceStream(t, stores, stream, modifyChange("model::A", 2))
	entities, err := ListEntities(patch.Stream(), model.HeadAlias(), nil, stores)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, map[string]interface{}{"version": 1}, entities[0].Content)
}

func TestNewPatchMissingSourceVersion(t *testing.T) {
	stores := testStores(t)
	testProject(t, stores, "trading")

	_, err := NewPatch("trading", model.VersionID{Major: 9}, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestNewPatchDuplicate(t *testing.T) {
	stores := testStores(t)
	_, version := releasedProject(t, stores)

	_, err := NewPatch("trading", version.ID, stores)
	require.NoError(t, err)
	_, err = NewPatch("trading", version.ID, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConflict)
}

func TestPatchWorkflowAndRelease(t *testing.T) {
	stores := testStores(t)
	_, version := releasedProject(t, stores)
	patch, err := NewPatch("trading", version.ID, stores)
	require.NoError(t, err)
	patchStream := patch.Stream()

	// fix staged through a workspace on the patch line, then landed
	spec := testWorkspace(t, stores, patchStream, "hotfix")
	_, err = CommitChanges(spec, []model.EntityChange{modifyChange("model::A", 99)}, testAuthor, "fix A", stores)
	require.NoError(t, err)
	advanceStream(t, stores, patchStream, modifyChange("model::A", 99))

	released, err := ReleasePatch("trading", version.ID, "hotfix release", stores)
	require.NoError(t, err)
	// releasing the patch of 0.1.0 yields 0.1.1
	assert.Equal(t, model.VersionID{Minor: 1, Patch: 1}, released.ID)

	descriptor, err := GetPatch("trading", version.ID, stores)
	require.NoError(t, err)
	assert.True(t, descriptor.Released)
	require.NotNil(t, descriptor.ReleasedVersion)
	assert.Equal(t, released.ID, *descriptor.ReleasedVersion)

	// a released patch refuses another release
	_, err = ReleasePatch("trading", version.ID, "", stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConflict)

	// and refuses new workspaces
	_, err = CreateWorkspace(model.WorkspaceSpec{
		WorkspaceID: "late",
		Type:        model.UserWorkspace,
		Access:      model.PrimaryAccess,
		Source:      patchStream,
	}, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConflict)
}

func TestListPatches(t *testing.T) {
	stores := testStores(t)
	stream, v1 := releasedProject(t, stores)
	advanceStream(t, stores, stream, modifyChange("model::A", 2))
	v2, err := NewVersion(stream, model.IncrementMajor, model.HeadAlias(), "", stores)
	require.NoError(t, err)

	_, err = NewPatch("trading", v1.ID, stores)
	require.NoError(t, err)
	_, err = NewPatch("trading", v2.ID, stores)
	require.NoError(t, err)

	patches, err := ListPatches("trading", model.VersionBounds{}, stores)
	require.NoError(t, err)
	require.Len(t, patches, 2)
	assert.Equal(t, v1.ID, patches[0].SourceVersion)
	assert.Equal(t, v2.ID, patches[1].SourceVersion)

	one := uint64(1)
	bounded, err := ListPatches("trading", model.VersionBounds{MinMajor: &one}, stores)
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, v2.ID, bounded[0].SourceVersion)
}

func TestDeletePatchPolicies(t *testing.T) {
	stores := testStores(t)
	_, version := releasedProject(t, stores)
	patch, err := NewPatch("trading", version.ID, stores)
	require.NoError(t, err)
	patchStream := patch.Stream()

	// blocked while a workspace rides on the patch
	spec := testWorkspace(t, stores, patchStream, "hotfix")
	err = DeletePatch("trading", version.ID, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConflict)

	// blocked while an open review rides on the patch
	require.NoError(t, DeleteWorkspace(spec, stores))
	spec = testWorkspace(t, stores, patchStream, "hotfix")
	review, err := CreateReview(spec, "fix A", testAuthor, stores)
	require.NoError(t, err)
	require.NoError(t, DeleteWorkspace(spec, stores))
	err = DeletePatch("trading", version.ID, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConflict)

	// closed review and no workspaces: deletion goes through
	_, err = CloseReview(patchStream, review.ID, model.ReviewClosed, stores)
	require.NoError(t, err)
	require.NoError(t, DeletePatch("trading", version.ID, stores))

	_, err = GetPatch("trading", version.ID, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrNotFound)
}
