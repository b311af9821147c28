package core

import (
	"testing"

	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLifecycle(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")
	_, err := CommitChanges(spec, []model.EntityChange{createChange("model::A", 1)}, testAuthor, "add A", stores)
	require.NoError(t, err)

	review, err := CreateReview(spec, "add entity A", testAuthor, stores)
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, model.ReviewOpen, review.State)
	assert.Equal(t, spec, review.Workspace)

	got, err := GetReview(stream, review.ID, stores)
	require.NoError(t, err)
	assert.Equal(t, review.Title, got.Title)

	// approvals accumulate, once per approver
	got, err = ApproveReview(stream, review.ID, "alice", stores)
	require.NoError(t, err)
	got, err = ApproveReview(stream, review.ID, "alice", stores)
	require.NoError(t, err)
	got, err = ApproveReview(stream, review.ID, "bob", stores)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, got.Approvals)

	closed, err := CloseReview(stream, review.ID, model.ReviewCommitted, stores)
	require.NoError(t, err)
	assert.Equal(t, model.ReviewCommitted, closed.State)

	// terminal reviews are immutable
	_, err = ApproveReview(stream, review.ID, "carol", stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConflict)
	_, err = CloseReview(stream, review.ID, model.ReviewClosed, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConflict)
}

func TestCloseReviewRejectsNonTerminalState(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")
	review, err := CreateReview(spec, "noop", testAuthor, stores)
	require.NoError(t, err)

	_, err = CloseReview(stream, review.ID, model.ReviewOpen, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
}

func TestListReviews(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	alpha := testWorkspace(t, stores, stream, "alpha")
	beta := testWorkspace(t, stores, stream, "beta")

	first, err := CreateReview(alpha, "first", testAuthor, stores)
	require.NoError(t, err)
	second, err := CreateReview(beta, "second", testAuthor, stores)
	require.NoError(t, err)

	reviews, err := ListReviews(stream, stores)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	// creation order
	assert.Equal(t, first.ID, reviews[0].ID)
	assert.Equal(t, second.ID, reviews[1].ID)
}

func TestReviewComparison(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")
	spec := testWorkspace(t, stores, stream, "feature")
	_, err := CommitChanges(spec, []model.EntityChange{createChange("model::A", 1)}, testAuthor, "add A", stores)
	require.NoError(t, err)
	review, err := CreateReview(spec, "add entity A", testAuthor, stores)
	require.NoError(t, err)

	comparison, err := GetReviewComparison(stream, review.ID, stores)
	require.NoError(t, err)
	require.Len(t, comparison.EntityDiffs, 1)
	assert.Equal(t, model.DiffAdded, comparison.EntityDiffs[0].Kind)
}

func TestGetReviewNotFound(t *testing.T) {
	stores := testStores(t)
	stream := testProject(t, stores, "trading")

	_, err := GetReview(stream, "missing", stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrNotFound)
}
