// Package memvcs implements the storage SPI with plain in-memory maps.
//
// Every store instance is an isolated, explicitly constructed handle:
// there is no process-wide state, so tests and embedded uses can run
// any number of independent instances.
package memvcs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/metaforge/modelvc/pkg/model"
	"github.com/metaforge/modelvc/pkg/storage"
	"github.com/metaforge/modelvc/pkg/storage/status"
	"go.uber.org/zap"
)

// Option configures an in-memory store
type Option func(*Store)

// Logger sets a logger on the store
func Logger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.l = l
		}
	}
}

// Clock overrides the time source, for reproducible tests
func Clock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

type line struct {
	base       model.RevisionID
	revs       model.Revisions // chronological
	annotation string
	createdAt  time.Time
}

func (ln *line) head() model.Revision {
	return ln.revs.Last()
}

// Store is an in-memory storage provider
type Store struct {
	mu        sync.RWMutex
	l         *zap.Logger
	now       func() time.Time
	pointers  map[string]*line
	snapshots map[model.RevisionID]model.Entities
	revisions map[model.RevisionID]model.Revision
}

// type safeguard
var _ storage.Provider = &Store{}

// New builds an isolated in-memory store
func New(opts ...Option) *Store {
	s := &Store{
		l:         zap.NewNop(),
		now:       func() time.Time { return time.Now().UTC() },
		pointers:  make(map[string]*line),
		snapshots: make(map[model.RevisionID]model.Entities),
		revisions: make(map[model.RevisionID]model.Revision),
	}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

func (s *Store) String() string {
	return "memvcs"
}

func copyEntities(entities model.Entities) model.Entities {
	out := make(model.Entities, len(entities))
	copy(out, entities)
	return out
}

// ReadEntities yields the sealed entity set at a revision of a line
func (s *Store) ReadEntities(_ context.Context, pointer string, revision model.RevisionID) (model.Entities, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ln, ok := s.pointers[pointer]
	if !ok {
		return nil, status.ErrNotExists.WrapMessage("pointer %q", pointer)
	}
	if _, err := findRevision(ln, revision); err != nil {
		return nil, err
	}
	snapshot, ok := s.snapshots[revision]
	if !ok {
		return nil, status.ErrNotExists.WrapMessage("no snapshot for revision %q", revision)
	}
	return copyEntities(snapshot), nil
}

func findRevision(ln *line, id model.RevisionID) (model.Revision, error) {
	for _, rev := range ln.revs {
		if rev.ID == id {
			return rev, nil
		}
	}
	return model.Revision{}, status.ErrNotExists.WrapMessage("revision %q not on this line", id)
}

func (s *Store) newRevision(author model.Contributor, message string) model.Revision {
	now := s.now()
	return model.Revision{
		ID:            model.NewRevisionID(),
		AuthorName:    author.Name,
		AuthoredAt:    now,
		CommitterName: author.Name,
		CommittedAt:   now,
		Message:       message,
	}
}

// Commit seals a batch of changes as a new revision on a line.
//
// The batch applies all-or-nothing: on any error the line is unchanged.
func (s *Store) Commit(_ context.Context, pointer string, base model.RevisionID, changes []model.EntityChange,
	author model.Contributor, message string) (model.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ln, ok := s.pointers[pointer]
	if !ok {
		return model.Revision{}, status.ErrNotExists.WrapMessage("pointer %q", pointer)
	}
	head := ln.head()
	if head.ID != base {
		return model.Revision{}, status.ErrConcurrentUpdate.WrapMessage(
			"commit base %q is stale, head of %q is %q", base, pointer, head.ID)
	}
	next, err := storage.ApplyChanges(s.snapshots[head.ID], changes)
	if err != nil {
		return model.Revision{}, err
	}
	rev := s.newRevision(author, message)
	s.snapshots[rev.ID] = next
	s.revisions[rev.ID] = rev
	ln.revs = append(ln.revs, rev)
	s.l.Debug("committed", zap.String("pointer", pointer), zap.Stringer("revision", rev.ID))
	return rev, nil
}

// Access opens the revision history of a line
func (s *Store) Access(_ context.Context, pointer string) (storage.AccessContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.pointers[pointer]; !ok {
		return nil, status.ErrNotExists.WrapMessage("pointer %q", pointer)
	}
	return &access{store: s, pointer: pointer}, nil
}

// Pointer describes a single named pointer
func (s *Store) Pointer(_ context.Context, name string) (storage.PointerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ln, ok := s.pointers[name]
	if !ok {
		return storage.PointerInfo{}, status.ErrNotExists.WrapMessage("pointer %q", name)
	}
	return pointerInfo(name, ln), nil
}

func pointerInfo(name string, ln *line) storage.PointerInfo {
	return storage.PointerInfo{
		Name:       name,
		RevisionID: ln.head().ID,
		Annotation: ln.annotation,
		CreatedAt:  ln.createdAt,
	}
}

// ListPointers enumerates pointers under a prefix, ordered by name
func (s *Store) ListPointers(_ context.Context, prefix string) ([]storage.PointerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]storage.PointerInfo, 0, len(s.pointers))
	for name, ln := range s.pointers {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		infos = append(infos, pointerInfo(name, ln))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// CreatePointer creates a pointer rooted at a revision, or at a fresh
// empty revision when from is empty. Fails with status.ErrExists when
// the name is taken.
func (s *Store) CreatePointer(_ context.Context, name string, from model.RevisionID, annotation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pointers[name]; ok {
		return status.ErrExists.WrapMessage("pointer %q", name)
	}
	var root model.Revision
	if from == "" {
		root = s.newRevision(model.Contributor{Name: "modelvc"}, "initial revision")
		s.snapshots[root.ID] = model.Entities{}
		s.revisions[root.ID] = root
	} else {
		var ok bool
		root, ok = s.revisions[from]
		if !ok {
			return status.ErrNotExists.WrapMessage("revision %q", from)
		}
	}
	s.pointers[name] = &line{
		base:       root.ID,
		revs:       model.Revisions{root},
		annotation: annotation,
		createdAt:  s.now(),
	}
	return nil
}

// DeletePointer removes a pointer. Idempotent: deleting an absent
// pointer succeeds. Snapshots stay addressable from other lines.
func (s *Store) DeletePointer(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pointers, name)
	return nil
}

// RenamePointer atomically moves a pointer to an unoccupied name
func (s *Store) RenamePointer(_ context.Context, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ln, ok := s.pointers[oldName]
	if !ok {
		return status.ErrNotExists.WrapMessage("pointer %q", oldName)
	}
	if _, ok := s.pointers[newName]; ok {
		return status.ErrExists.WrapMessage("pointer %q", newName)
	}
	delete(s.pointers, oldName)
	s.pointers[newName] = ln
	return nil
}

// ThreeWayMerge rebases the target line onto the upstream line when the
// two change sets relative to base do not collide. With conflicts,
// nothing is mutated and the conflicting paths are reported with their
// per-side contents.
func (s *Store) ThreeWayMerge(_ context.Context, req storage.MergeRequest) (storage.MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.pointers[req.TargetPointer]
	if !ok {
		return storage.MergeResult{}, status.ErrNotExists.WrapMessage("pointer %q", req.TargetPointer)
	}
	upstreamLine, ok := s.pointers[req.UpstreamPointer]
	if !ok {
		return storage.MergeResult{}, status.ErrNotExists.WrapMessage("pointer %q", req.UpstreamPointer)
	}
	if target.head().ID != req.Local {
		return storage.MergeResult{}, status.ErrConcurrentUpdate.WrapMessage(
			"merge local %q is stale, head of %q is %q", req.Local, req.TargetPointer, target.head().ID)
	}
	for _, id := range []model.RevisionID{req.Base, req.Local, req.Upstream} {
		if _, ok := s.snapshots[id]; !ok {
			return storage.MergeResult{}, status.ErrNotExists.WrapMessage("no snapshot for revision %q", id)
		}
	}

	changes, conflicts := storage.MergeEntities(s.snapshots[req.Base], s.snapshots[req.Local], s.snapshots[req.Upstream])
	if len(conflicts) > 0 {
		return storage.MergeResult{Conflicts: conflicts}, nil
	}

	upstreamRev, err := findRevision(upstreamLine, req.Upstream)
	if err != nil {
		return storage.MergeResult{}, err
	}

	// rebase: adopt the upstream history, then replay local changes on top
	target.base = req.Upstream
	target.revs = append(model.Revisions{}, upstreamLine.revs...)
	merged := upstreamRev
	if len(changes) > 0 {
		next, err := storage.ApplyChanges(s.snapshots[req.Upstream], changes)
		if err != nil {
			return storage.MergeResult{}, err
		}
		merged = s.newRevision(req.Author, req.Message)
		s.snapshots[merged.ID] = next
		s.revisions[merged.ID] = merged
		target.revs = append(target.revs, merged)
	}
	s.l.Debug("merged", zap.String("target", req.TargetPointer), zap.Stringer("revision", merged.ID))
	return storage.MergeResult{MergedRevision: &merged}, nil
}

type access struct {
	store   *Store
	pointer string
}

func (a *access) line() (*line, error) {
	ln, ok := a.store.pointers[a.pointer]
	if !ok {
		return nil, status.ErrNotExists.WrapMessage("pointer %q", a.pointer)
	}
	return ln, nil
}

func (a *access) BaseRevision(_ context.Context) (model.Revision, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	ln, err := a.line()
	if err != nil {
		return model.Revision{}, err
	}
	return a.store.revisions[ln.base], nil
}

func (a *access) CurrentRevision(_ context.Context) (model.Revision, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	ln, err := a.line()
	if err != nil {
		return model.Revision{}, err
	}
	return ln.head(), nil
}

func (a *access) Revision(_ context.Context, id model.RevisionID) (model.Revision, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	ln, err := a.line()
	if err != nil {
		return model.Revision{}, err
	}
	return findRevision(ln, id)
}

func (a *access) Revisions(_ context.Context, filter model.RevisionFilter) (model.Revisions, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	ln, err := a.line()
	if err != nil {
		return nil, err
	}
	out := make(model.Revisions, 0, len(ln.revs))
	for i := len(ln.revs) - 1; i >= 0; i-- {
		rev := ln.revs[i]
		if !filter.Matches(rev) {
			continue
		}
		out = append(out, rev)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}
