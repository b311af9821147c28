package memvcs

import (
	"context"
	"testing"
	"time"

	"github.com/metaforge/modelvc/pkg/model"
	"github.com/metaforge/modelvc/pkg/storage"
	"github.com/metaforge/modelvc/pkg/storage/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const classClassifier = "meta::pure::metamodel::Class"

var author = model.Contributor{Name: "dev", Email: "dev@example.com"}

func testClock() func() time.Time {
	current := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func create(path string, version int) model.EntityChange {
	return model.NewCreateChange(path, classClassifier, map[string]interface{}{"version": version})
}

func modify(path string, version int) model.EntityChange {
	return model.NewModifyChange(path, classClassifier, map[string]interface{}{"version": version})
}

func TestCreatePointerEmptyRoot(t *testing.T) {
	ctx := context.Background()
	store := New(Clock(testClock()))

	require.NoError(t, store.CreatePointer(ctx, "projects/p/heads/main", "", "annotation"))

	info, err := store.Pointer(ctx, "projects/p/heads/main")
	require.NoError(t, err)
	assert.Equal(t, "annotation", info.Annotation)

	entities, err := store.ReadEntities(ctx, "projects/p/heads/main", info.RevisionID)
	require.NoError(t, err)
	assert.Empty(t, entities)

	// occupied name
	err = store.CreatePointer(ctx, "projects/p/heads/main", "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrExists)
}

func TestCommitAndHistory(t *testing.T) {
	ctx := context.Background()
	store := New(Clock(testClock()))
	require.NoError(t, store.CreatePointer(ctx, "line", "", ""))

	info, err := store.Pointer(ctx, "line")
	require.NoError(t, err)
	root := info.RevisionID

	rev1, err := store.Commit(ctx, "line", root, []model.EntityChange{create("model::A", 1)}, author, "add A")
	require.NoError(t, err)
	rev2, err := store.Commit(ctx, "line", rev1.ID, []model.EntityChange{modify("model::A", 2)}, author, "bump A")
	require.NoError(t, err)

	// stale base is refused
	_, err = store.Commit(ctx, "line", rev1.ID, []model.EntityChange{modify("model::A", 3)}, author, "stale")
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConcurrentUpdate)

	// past snapshots stay sealed
	entities, err := store.ReadEntities(ctx, "line", rev1.ID)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, map[string]interface{}{"version": 1}, entities[0].Content)

	access, err := store.Access(ctx, "line")
	require.NoError(t, err)
	base, err := access.BaseRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, root, base.ID)
	head, err := access.CurrentRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, rev2.ID, head.ID)

	revisions, err := access.Revisions(ctx, model.RevisionFilter{})
	require.NoError(t, err)
	require.Len(t, revisions, 3)
	// newest first
	assert.Equal(t, rev2.ID, revisions[0].ID)
	assert.Equal(t, rev1.ID, revisions[1].ID)
	assert.Equal(t, root, revisions[2].ID)

	limited, err := access.Revisions(ctx, model.RevisionFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, rev2.ID, limited[0].ID)
}

func TestDeleteAndRenamePointer(t *testing.T) {
	ctx := context.Background()
	store := New(Clock(testClock()))
	require.NoError(t, store.CreatePointer(ctx, "a", "", ""))

	info, err := store.Pointer(ctx, "a")
	require.NoError(t, err)
	rev, err := store.Commit(ctx, "a", info.RevisionID, []model.EntityChange{create("model::A", 1)}, author, "add A")
	require.NoError(t, err)

	require.NoError(t, store.RenamePointer(ctx, "a", "b"))
	_, err = store.Pointer(ctx, "a")
	assert.ErrorIs(t, err, status.ErrNotExists)

	// history and snapshots move with the pointer
	entities, err := store.ReadEntities(ctx, "b", rev.ID)
	require.NoError(t, err)
	assert.Len(t, entities, 1)

	// deleting is idempotent
	require.NoError(t, store.DeletePointer(ctx, "b"))
	require.NoError(t, store.DeletePointer(ctx, "b"))

	err = store.RenamePointer(ctx, "b", "c")
	assert.ErrorIs(t, err, status.ErrNotExists)
}

func TestListPointers(t *testing.T) {
	ctx := context.Background()
	store := New(Clock(testClock()))
	for _, name := range []string{"projects/p/heads/main", "projects/p/main/versions/1.0.0", "projects/q/heads/main"} {
		require.NoError(t, store.CreatePointer(ctx, name, "", ""))
	}

	infos, err := store.ListPointers(ctx, "projects/p/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "projects/p/heads/main", infos[0].Name)
	assert.Equal(t, "projects/p/main/versions/1.0.0", infos[1].Name)

	empty, err := store.ListPointers(ctx, "projects/zzz/")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestThreeWayMergeFastForward(t *testing.T) {
	ctx := context.Background()
	store := New(Clock(testClock()))
	require.NoError(t, store.CreatePointer(ctx, "stream", "", ""))
	info, err := store.Pointer(ctx, "stream")
	require.NoError(t, err)
	root := info.RevisionID

	// workspace rooted at the stream head, no local changes
	require.NoError(t, store.CreatePointer(ctx, "ws", root, ""))

	// stream moves on
	upstream, err := store.Commit(ctx, "stream", root, []model.EntityChange{create("model::A", 1)}, author, "add A")
	require.NoError(t, err)

	result, err := store.ThreeWayMerge(ctx, storage.MergeRequest{
		TargetPointer:   "ws",
		UpstreamPointer: "stream",
		Base:            root,
		Local:           root,
		Upstream:        upstream.ID,
		Author:          author,
		Message:         "update",
	})
	require.NoError(t, err)
	require.False(t, result.HasConflicts())
	require.NotNil(t, result.MergedRevision)
	// fast-forward: the workspace adopts the upstream head as-is
	assert.Equal(t, upstream.ID, result.MergedRevision.ID)

	access, err := store.Access(ctx, "ws")
	require.NoError(t, err)
	base, err := access.BaseRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, upstream.ID, base.ID)
}

func TestThreeWayMergeReplaysLocalChanges(t *testing.T) {
	ctx := context.Background()
	store := New(Clock(testClock()))
	require.NoError(t, store.CreatePointer(ctx, "stream", "", ""))
	info, err := store.Pointer(ctx, "stream")
	require.NoError(t, err)
	root := info.RevisionID

	require.NoError(t, store.CreatePointer(ctx, "ws", root, ""))
	local, err := store.Commit(ctx, "ws", root, []model.EntityChange{create("model::Local", 1)}, author, "local work")
	require.NoError(t, err)
	upstream, err := store.Commit(ctx, "stream", root, []model.EntityChange{create("model::Upstream", 1)}, author, "upstream work")
	require.NoError(t, err)

	result, err := store.ThreeWayMerge(ctx, storage.MergeRequest{
		TargetPointer:   "ws",
		UpstreamPointer: "stream",
		Base:            root,
		Local:           local.ID,
		Upstream:        upstream.ID,
		Author:          author,
		Message:         "update",
	})
	require.NoError(t, err)
	require.False(t, result.HasConflicts())
	require.NotNil(t, result.MergedRevision)

	merged, err := store.ReadEntities(ctx, "ws", result.MergedRevision.ID)
	require.NoError(t, err)
	byPath := merged.ByPath()
	assert.Contains(t, byPath, "model::Local")
	assert.Contains(t, byPath, "model::Upstream")

	access, err := store.Access(ctx, "ws")
	require.NoError(t, err)
	base, err := access.BaseRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, upstream.ID, base.ID)
}

func TestThreeWayMergeConflictLeavesTargetUntouched(t *testing.T) {
	ctx := context.Background()
	store := New(Clock(testClock()))
	require.NoError(t, store.CreatePointer(ctx, "stream", "", ""))
	info, err := store.Pointer(ctx, "stream")
	require.NoError(t, err)
	root := info.RevisionID
	seeded, err := store.Commit(ctx, "stream", root, []model.EntityChange{create("model::X", 1)}, author, "seed X")
	require.NoError(t, err)

	require.NoError(t, store.CreatePointer(ctx, "ws", seeded.ID, ""))
	local, err := store.Commit(ctx, "ws", seeded.ID, []model.EntityChange{modify("model::X", 2)}, author, "local X")
	require.NoError(t, err)
	upstream, err := store.Commit(ctx, "stream", seeded.ID, []model.EntityChange{modify("model::X", 3)}, author, "upstream X")
	require.NoError(t, err)

	result, err := store.ThreeWayMerge(ctx, storage.MergeRequest{
		TargetPointer:   "ws",
		UpstreamPointer: "stream",
		Base:            seeded.ID,
		Local:           local.ID,
		Upstream:        upstream.ID,
		Author:          author,
		Message:         "update",
	})
	require.NoError(t, err)
	require.True(t, result.HasConflicts())
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "model::X", result.Conflicts[0].Path)

	// nothing moved on the target
	wsInfo, err := store.Pointer(ctx, "ws")
	require.NoError(t, err)
	assert.Equal(t, local.ID, wsInfo.RevisionID)
	access, err := store.Access(ctx, "ws")
	require.NoError(t, err)
	base, err := access.BaseRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, base.ID)
}

func TestThreeWayMergeStaleLocal(t *testing.T) {
	ctx := context.Background()
	store := New(Clock(testClock()))
	require.NoError(t, store.CreatePointer(ctx, "stream", "", ""))
	info, err := store.Pointer(ctx, "stream")
	require.NoError(t, err)
	root := info.RevisionID
	require.NoError(t, store.CreatePointer(ctx, "ws", root, ""))
	_, err = store.Commit(ctx, "ws", root, []model.EntityChange{create("model::A", 1)}, author, "work")
	require.NoError(t, err)

	_, err = store.ThreeWayMerge(ctx, storage.MergeRequest{
		TargetPointer:   "ws",
		UpstreamPointer: "stream",
		Base:            root,
		Local:           root, // stale
		Upstream:        root,
		Author:          author,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrConcurrentUpdate)
}
