package core

import (
	"strings"
	"testing"

	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEntity(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")
	_, err := CommitChanges(spec, []model.EntityChange{createChange("model::A", 1)}, testAuthor, "add A", stores)
	require.NoError(t, err)

	entity, err := GetEntity(spec, model.HeadAlias(), "model::A", stores)
	require.NoError(t, err)
	assert.Equal(t, "model::A", entity.Path)
	assert.Equal(t, classClassifier, entity.ClassifierPath)
	assert.Equal(t, map[string]interface{}{"version": 1}, entity.Content)

	// BASE still sees the empty root
	_, err = GetEntity(spec, model.BaseAlias(), "model::A", stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrNotFound)

	_, err = GetEntity(spec, model.HeadAlias(), "not a path", stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
}

func TestListEntities(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")
	_, err := CommitChanges(spec, []model.EntityChange{
		createChange("model::b::Two", 1),
		createChange("model::a::One", 1),
		createChange("other::Three", 1),
	}, testAuthor, "seed", stores)
	require.NoError(t, err)

	entities, err := ListEntities(spec, model.HeadAlias(), nil, stores)
	require.NoError(t, err)
	require.Len(t, entities, 3)
	// ordered by path
	assert.Equal(t, "model::a::One", entities[0].Path)
	assert.Equal(t, "model::b::Two", entities[1].Path)
	assert.Equal(t, "other::Three", entities[2].Path)

	inPackage, err := ListEntities(spec, model.HeadAlias(), func(e model.Entity) bool {
		return strings.HasPrefix(e.Path, "model"+model.PathSeparator)
	}, stores)
	require.NoError(t, err)
	require.Len(t, inPackage, 2)

	done := make(chan struct{})
	close(done)
	err = ListEntitiesApply(spec, model.HeadAlias(), nil, stores, func(model.Entity) error {
		t.Fatal("apply should not run after interruption")
		return nil
	}, WithDoneChan(done))
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrInterrupted)
}
