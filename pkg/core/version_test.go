package core

import (
	"sync"
	"testing"

	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionNumbering(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	advanceStream(t, stores, stream, createChange("model::A", 1))

	// numbering starts from 0.0.0 on a virgin main line
	v1, err := NewVersion(stream, model.IncrementMinor, model.HeadAlias(), "first cut", stores)
	require.NoError(t, err)
	assert.Equal(t, model.VersionID{Minor: 1}, v1.ID)

	advanceStream(t, stores, stream, modifyChange("model::A", 2))
	v2, err := NewVersion(stream, model.IncrementMajor, model.HeadAlias(), "", stores)
	require.NoError(t, err)
	assert.Equal(t, model.VersionID{Major: 1}, v2.ID)

	latest, err := GetLatestVersion(stream, stores)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, latest.ID)

	// a version pins the revision it sealed
	got, err := GetVersion(stream, v1.ID, stores)
	require.NoError(t, err)
	assert.Equal(t, v1.RevisionID, got.RevisionID)
	assert.Equal(t, "first cut", got.Notes)
}

func TestNewVersionWriteOnce(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	advanceStream(t, stores, stream, createChange("model::A", 1))

	// two racing releases compute the same id, exactly one goes through
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = NewVersion(stream, model.IncrementMinor, model.HeadAlias(), "", stores)
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			failures++
			assert.ErrorIs(t, err, status.ErrConflict)
		}
	}
	assert.LessOrEqual(t, failures, 1)

	versions, err := ListVersions(stream, model.VersionBounds{}, stores)
	require.NoError(t, err)
	require.Len(t, versions, 2-failures)
	assert.Equal(t, model.VersionID{Minor: 1}, versions[0].ID)
}

func TestGetVersionNotFound(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")

	_, err := GetVersion(stream, model.VersionID{Major: 9}, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrNotFound)

	_, err = GetLatestVersion(stream, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestListVersionsBounds(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	advanceStream(t, stores, stream, createChange("model::A", 1))

	for _, increment := range []model.VersionIncrement{
		model.IncrementMinor, // 0.1.0
		model.IncrementMinor, // 0.2.0
		model.IncrementMajor, // 1.0.0
		model.IncrementPatch, // 1.0.1
	} {
		_, err := NewVersion(stream, increment, model.HeadAlias(), "", stores)
		require.NoError(t, err)
	}

	one := uint64(1)
	zero := uint64(0)
	bounded, err := ListVersions(stream, model.VersionBounds{MinMajor: &one}, stores)
	require.NoError(t, err)
	require.Len(t, bounded, 2)
	assert.Equal(t, model.VersionID{Major: 1}, bounded[0].ID)
	assert.Equal(t, model.VersionID{Major: 1, Patch: 1}, bounded[1].ID)

	bounded, err = ListVersions(stream, model.VersionBounds{MaxMajor: &zero}, stores)
	require.NoError(t, err)
	require.Len(t, bounded, 2)

	// inverted bounds are rejected
	two := uint64(2)
	_, err = ListVersions(stream, model.VersionBounds{MinMajor: &two, MaxMajor: &one}, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
}

func TestNewVersionInvalidIncrement(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")

	_, err := NewVersion(stream, model.VersionIncrement("jumbo"), model.HeadAlias(), "", stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
}
