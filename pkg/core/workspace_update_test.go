package core

import (
	"testing"

	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateWorkspaceNoop(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")

	before, err := GetWorkspace(spec, stores)
	require.NoError(t, err)

	result, err := UpdateWorkspace(spec, stores)
	require.NoError(t, err)
	require.True(t, result.Updated())
	assert.Equal(t, before.BaseRevisionID, result.Workspace.BaseRevisionID)
	assert.Equal(t, before.HeadRevisionID, result.Workspace.HeadRevisionID)
}

func TestUpdateWorkspaceCleanRebase(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")

	// local and upstream touch different entities
	_, err := CommitChanges(spec, []model.EntityChange{createChange("model::Local", 1)}, testAuthor, "local", stores)
	require.NoError(t, err)
	upstream := advanceStream(t, stores, stream, createChange("model::Upstream", 1))

	result, err := UpdateWorkspace(spec, stores)
	require.NoError(t, err)
	require.True(t, result.Updated())
	assert.Equal(t, model.WorkspaceActive, result.Workspace.State)
	// BASE advanced to the upstream head
	assert.Equal(t, upstream.ID, result.Workspace.BaseRevisionID)

	// local changes replayed on top
	entities, err := ListEntities(spec, model.HeadAlias(), nil, stores)
	require.NoError(t, err)
	byPath := entities.ByPath()
	assert.Contains(t, byPath, "model::Local")
	assert.Contains(t, byPath, "model::Upstream")

	outdated, err := IsOutdated(spec, stores)
	require.NoError(t, err)
	assert.False(t, outdated)
}

func TestUpdateWorkspaceConflict(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	advanceStream(t, stores, stream, createChange("model::X", 1))
	spec := testWorkspace(t, stores, stream, "feature")

	localRev, err := CommitChanges(spec, []model.EntityChange{
		modifyChange("model::X", 2),
		createChange("model::Clean", 1),
	}, testAuthor, "local", stores)
	require.NoError(t, err)
	advanceStream(t, stores, stream, modifyChange("model::X", 3))

	result, err := UpdateWorkspace(spec, stores)
	require.NoError(t, err)
	require.False(t, result.Updated())
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "model::X", result.Conflicts[0].Path)
	assert.Equal(t, model.WorkspaceInConflictResolution, result.Workspace.State)

	// primary line untouched
	assert.Equal(t, localRev.ID, result.Workspace.HeadRevisionID)

	// backup copy frozen at the pre-update head
	backup, err := GetWorkspace(spec.WithAccess(model.BackupAccess), stores)
	require.NoError(t, err)
	assert.Equal(t, model.WorkspaceBackedUp, backup.State)
	assert.Equal(t, localRev.ID, backup.HeadRevisionID)

	// conflict-resolution copy rooted at the upstream head, seeded with
	// the cleanly merged changes
	shadowEntities, err := ListEntities(spec.WithAccess(model.ConflictResolutionAccess), model.HeadAlias(), nil, stores)
	require.NoError(t, err)
	byPath := shadowEntities.ByPath()
	assert.Contains(t, byPath, "model::Clean")
	// the disputed entity keeps the upstream content until resolved
	require.Contains(t, byPath, "model::X")
	assert.Equal(t, map[string]interface{}{"version": 3}, byPath["model::X"].Content)

	// blocked transitions while in conflict resolution
	_, err = CommitChanges(spec, []model.EntityChange{createChange("model::Y", 1)}, testAuthor, "blocked", stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConflict)
	_, err = UpdateWorkspace(spec, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConflict)
}

func TestUpdateWorkspaceDeleteVsModifyConflicts(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	advanceStream(t, stores, stream, createChange("model::X", 1))
	spec := testWorkspace(t, stores, stream, "feature")

	_, err := CommitChanges(spec, []model.EntityChange{model.NewDeleteChange("model::X")}, testAuthor, "drop X", stores)
	require.NoError(t, err)
	advanceStream(t, stores, stream, modifyChange("model::X", 2))

	result, err := UpdateWorkspace(spec, stores)
	require.NoError(t, err)
	require.False(t, result.Updated())
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "model::X", result.Conflicts[0].Path)
	assert.Nil(t, result.Conflicts[0].Local)
	require.NotNil(t, result.Conflicts[0].Upstream)
}

func TestUpdateWorkspaceConvergentChanges(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	advanceStream(t, stores, stream, createChange("model::X", 1))
	spec := testWorkspace(t, stores, stream, "feature")

	// both sides converge on the same content: no conflict
	_, err := CommitChanges(spec, []model.EntityChange{modifyChange("model::X", 2)}, testAuthor, "local", stores)
	require.NoError(t, err)
	advanceStream(t, stores, stream, modifyChange("model::X", 2))

	result, err := UpdateWorkspace(spec, stores)
	require.NoError(t, err)
	require.True(t, result.Updated())
}
