package core

import (
	"testing"

	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWorkspace(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	advanceStream(t, stores, stream, createChange("model::A", 1))

	spec := testWorkspace(t, stores, stream, "feature")

	descriptor, err := GetWorkspace(spec, stores)
	require.NoError(t, err)
	assert.Equal(t, model.WorkspaceActive, descriptor.State)
	// BASE captured at the stream head of creation time
	streamHead, err := ResolveAlias(stream, model.HeadAlias(), stores)
	require.NoError(t, err)
	assert.Equal(t, streamHead.ID, descriptor.BaseRevisionID)
	assert.Equal(t, streamHead.ID, descriptor.HeadRevisionID)

	// the workspace sees the stream content as of its base
	entities, err := ListEntities(spec, model.HeadAlias(), nil, stores)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "model::A", entities[0].Path)
}

func TestCreateWorkspaceDuplicate(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")

	_, err := CreateWorkspace(spec, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConflict)

	// same id, different type: independent workspace
	group := spec
	group.Type = model.GroupWorkspace
	_, err = CreateWorkspace(group, stores)
	require.NoError(t, err)
}

func TestCreateWorkspaceOnMissingProject(t *testing.T) {
	stores := testStores(t)

	_, err := CreateWorkspace(model.WorkspaceSpec{
		WorkspaceID: "feature",
		Type:        model.UserWorkspace,
		Access:      model.PrimaryAccess,
		Source:      model.MainLine("ghost"),
	}, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestCommitChanges(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")

	rev, err := CommitChanges(spec, []model.EntityChange{
		createChange("model::A", 1),
		createChange("model::B", 1),
	}, testAuthor, "add A and B", stores)
	require.NoError(t, err)
	assert.Equal(t, "add A and B", rev.Message)
	assert.Equal(t, testAuthor.Name, rev.AuthorName)

	descriptor, err := GetWorkspace(spec, stores)
	require.NoError(t, err)
	assert.Equal(t, rev.ID, descriptor.HeadRevisionID)
	assert.NotEqual(t, descriptor.BaseRevisionID, descriptor.HeadRevisionID)

	// the stream is untouched
	entities, err := ListEntities(stream, model.HeadAlias(), nil, stores)
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestCommitChangesValidation(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")

	_, err := CommitChanges(spec, nil, testAuthor, "empty", stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)

	// every invalid change is reported, nothing applied
	_, err = CommitChanges(spec, []model.EntityChange{
		model.NewCreateChange("not a path", classClassifier, nil),
		model.NewCreateChange("model::Ok", "not::a::classifier", nil),
	}, testAuthor, "bad batch", stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "not a path")
	assert.Contains(t, err.Error(), "not::a::classifier")

	descriptor, err := GetWorkspace(spec, stores)
	require.NoError(t, err)
	assert.Equal(t, descriptor.BaseRevisionID, descriptor.HeadRevisionID)
}

func TestCommitChangesNotApplicable(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")

	_, err := CommitChanges(spec, []model.EntityChange{
		modifyChange("model::Missing", 2),
	}, testAuthor, "modify missing", stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConflict)
}

func TestIsOutdated(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")

	outdated, err := IsOutdated(spec, stores)
	require.NoError(t, err)
	assert.False(t, outdated)

	// local commits alone never make a workspace outdated
	_, err = CommitChanges(spec, []model.EntityChange{createChange("model::A", 1)}, testAuthor, "work", stores)
	require.NoError(t, err)
	outdated, err = IsOutdated(spec, stores)
	require.NoError(t, err)
	assert.False(t, outdated)

	advanceStream(t, stores, stream, createChange("model::B", 1))
	outdated, err = IsOutdated(spec, stores)
	require.NoError(t, err)
	assert.True(t, outdated)

	// equivalent formulation: outdated iff base != stream head
	descriptor, err := GetWorkspace(spec, stores)
	require.NoError(t, err)
	streamHead, err := ResolveAlias(stream, model.HeadAlias(), stores)
	require.NoError(t, err)
	assert.Equal(t, outdated, descriptor.BaseRevisionID != streamHead.ID)
}

func TestListWorkspaces(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	testWorkspace(t, stores, stream, "alpha")
	testWorkspace(t, stores, stream, "beta")

	workspaces, err := ListWorkspaces(stream, model.UserWorkspace, stores)
	require.NoError(t, err)
	require.Len(t, workspaces, 2)
	assert.Equal(t, "alpha", workspaces[0].Spec.WorkspaceID)
	assert.Equal(t, "beta", workspaces[1].Spec.WorkspaceID)

	groups, err := ListWorkspaces(stream, model.GroupWorkspace, stores)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestDeleteWorkspace(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")

	require.NoError(t, DeleteWorkspace(spec, stores))
	_, err := GetWorkspace(spec, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrNotFound)

	// idempotent
	require.NoError(t, DeleteWorkspace(spec, stores))

	// deleted id can be reused
	_, err = CreateWorkspace(spec, stores)
	require.NoError(t, err)
}

func TestDiscardChanges(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")

	_, err := CommitChanges(spec, []model.EntityChange{createChange("model::A", 1)}, testAuthor, "work", stores)
	require.NoError(t, err)
	advanceStream(t, stores, stream, createChange("model::B", 1))

	descriptor, err := DiscardChanges(spec, stores)
	require.NoError(t, err)
	assert.Equal(t, model.WorkspaceActive, descriptor.State)
	// reset onto the current stream head with an empty change set
	streamHead, err := ResolveAlias(stream, model.HeadAlias(), stores)
	require.NoError(t, err)
	assert.Equal(t, streamHead.ID, descriptor.BaseRevisionID)
	assert.Equal(t, streamHead.ID, descriptor.HeadRevisionID)

	entities, err := ListEntities(spec, model.HeadAlias(), nil, stores)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "model::B", entities[0].Path)

	// discarding twice is stable
	again, err := DiscardChanges(spec, stores)
	require.NoError(t, err)
	assert.Equal(t, descriptor.BaseRevisionID, again.BaseRevisionID)
}
