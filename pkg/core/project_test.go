package core

import (
	"testing"

	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetProject(t *testing.T) {
	stores := testStores(t)

	created, err := CreateProject(model.ProjectDescriptor{
		ID:          "trading",
		Description: "trading models",
		Contributor: testAuthor,
	}, stores)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	descriptor, err := GetProject("trading", stores)
	require.NoError(t, err)
	assert.Equal(t, "trading", descriptor.ID)
	assert.Equal(t, "trading models", descriptor.Description)
	assert.Equal(t, testAuthor, descriptor.Contributor)

	// the main line starts at an empty revision
	entities, err := ListEntities(model.MainLine("trading"), model.HeadAlias(), nil, stores)
	require.NoError(t, err)
	assert.Empty(t, entities)

	require.NoError(t, ProjectExists("trading", stores))
}

func TestCreateProjectValidation(t *testing.T) {
	stores := testStores(t)

	_, err := CreateProject(model.ProjectDescriptor{ID: ""}, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)

	_, err = CreateProject(model.ProjectDescriptor{ID: "no spaces allowed"}, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
}

func TestCreateProjectDuplicate(t *testing.T) {
	stores := testStores(t)
	testProject(t, stores, "trading")

	_, err := CreateProject(model.ProjectDescriptor{ID: "trading", Contributor: testAuthor}, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConflict)
}

func TestGetProjectNotFound(t *testing.T) {
	stores := testStores(t)

	_, err := GetProject("ghost", stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrNotFound)

	err = ProjectExists("ghost", stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestListProjects(t *testing.T) {
	stores := testStores(t)
	testProject(t, stores, "alpha")
	testProject(t, stores, "beta")

	// workspaces and versions must not pollute the project listing
	stream := model.MainLine("alpha")
	testWorkspace(t, stores, stream, "feature")
	_, err := NewVersion(stream, model.IncrementMinor, model.HeadAlias(), "", stores)
	require.NoError(t, err)

	projects, err := ListProjects(stores)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "alpha", projects[0].ID)
	assert.Equal(t, "beta", projects[1].ID)
}
