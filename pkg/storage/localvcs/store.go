// Package localvcs implements the storage SPI on a local filesystem.
//
// Pointers and revision snapshots are laid out as yaml descriptors
// under a root directory. The filesystem is abstracted through afero,
// so the store runs equally on an OS directory or an in-memory fs.
// Compare-and-swap semantics are guaranteed within one process via an
// exclusive-create on the pointer descriptor plus an instance mutex.
package localvcs

import (
	"context"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/metaforge/modelvc/pkg/errors"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/metaforge/modelvc/pkg/storage"
	"github.com/metaforge/modelvc/pkg/storage/status"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	pointerDir    = "pointers"
	snapshotDir   = "snapshots"
	pointerFile   = "pointer.yaml"
	snapshotFile  = "entities.yaml"
	dirPermission = 0700
)

type lineDescriptor struct {
	Base       model.RevisionID `yaml:"base"`
	Revisions  model.Revisions  `yaml:"revisions"`
	Annotation string           `yaml:"annotation,omitempty"`
	CreatedAt  time.Time        `yaml:"createdAt"`
}

func (ld lineDescriptor) head() model.Revision {
	return ld.Revisions.Last()
}

// Store is a filesystem-backed storage provider
type Store struct {
	mu   sync.Mutex
	fs   afero.Fs
	root string
	now  func() time.Time
}

// type safeguard
var _ storage.Provider = &Store{}

// New builds a store rooted at a directory of the given filesystem.
// Passing afero.NewMemMapFs() yields a throwaway store.
func New(fs afero.Fs, root string) *Store {
	return &Store{
		fs:   fs,
		root: root,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) String() string {
	return "localvcs(" + s.root + ")"
}

func (s *Store) pointerPath(name string) string {
	return path.Join(s.root, pointerDir, name, pointerFile)
}

func (s *Store) snapshotPath(id model.RevisionID) string {
	return path.Join(s.root, snapshotDir, id.String(), snapshotFile)
}

func (s *Store) readLine(name string) (lineDescriptor, error) {
	buffer, err := afero.ReadFile(s.fs, s.pointerPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return lineDescriptor{}, status.ErrNotExists.WrapMessage("pointer %q", name)
		}
		return lineDescriptor{}, errors.New("read pointer descriptor").Wrap(err)
	}
	var ld lineDescriptor
	if err := yaml.Unmarshal(buffer, &ld); err != nil {
		return lineDescriptor{}, errors.New("unmarshal pointer descriptor").Wrap(err)
	}
	return ld, nil
}

func (s *Store) writeLine(name string, ld lineDescriptor, exclusive bool) error {
	buffer, err := yaml.Marshal(ld)
	if err != nil {
		return errors.New("marshal pointer descriptor").Wrap(err)
	}
	target := s.pointerPath(name)
	if err := s.fs.MkdirAll(path.Dir(target), dirPermission); err != nil {
		return errors.New("create pointer directory").Wrap(err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if exclusive {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := s.fs.OpenFile(target, flags, 0600)
	if err != nil {
		if exclusive && os.IsExist(err) {
			return status.ErrExists.WrapMessage("pointer %q", name)
		}
		return errors.New("open pointer descriptor").Wrap(err)
	}
	defer f.Close()
	if _, err := f.Write(buffer); err != nil {
		return errors.New("write pointer descriptor").Wrap(err)
	}
	return nil
}

func (s *Store) readSnapshot(id model.RevisionID) (model.Entities, error) {
	buffer, err := afero.ReadFile(s.fs, s.snapshotPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, status.ErrNotExists.WrapMessage("no snapshot for revision %q", id)
		}
		return nil, errors.New("read snapshot").Wrap(err)
	}
	var entities model.Entities
	if err := yaml.Unmarshal(buffer, &entities); err != nil {
		return nil, errors.New("unmarshal snapshot").Wrap(err)
	}
	return entities, nil
}

func (s *Store) writeSnapshot(id model.RevisionID, entities model.Entities) error {
	buffer, err := yaml.Marshal(entities)
	if err != nil {
		return errors.New("marshal snapshot").Wrap(err)
	}
	target := s.snapshotPath(id)
	if err := s.fs.MkdirAll(path.Dir(target), dirPermission); err != nil {
		return errors.New("create snapshot directory").Wrap(err)
	}
	if err := afero.WriteFile(s.fs, target, buffer, 0600); err != nil {
		return errors.New("write snapshot").Wrap(err)
	}
	return nil
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

// ReadEntities yields the sealed entity set at a revision of a line
func (s *Store) ReadEntities(_ context.Context, pointer string, revision model.RevisionID) (model.Entities, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ld, err := s.readLine(pointer)
	if err != nil {
		return nil, err
	}
	if _, err := findRevision(ld, revision); err != nil {
		return nil, err
	}
	return s.readSnapshot(revision)
}

func findRevision(ld lineDescriptor, id model.RevisionID) (model.Revision, error) {
	for _, rev := range ld.Revisions {
		if rev.ID == id {
			return rev, nil
		}
	}
	return model.Revision{}, status.ErrNotExists.WrapMessage("revision %q not on this line", id)
}

// Commit seals a batch of changes as a new revision on a line
func (s *Store) Commit(_ context.Context, pointer string, base model.RevisionID, changes []model.EntityChange,
	author model.Contributor, message string) (model.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ld, err := s.readLine(pointer)
	if err != nil {
		return model.Revision{}, err
	}
	head := ld.head()
	if head.ID != base {
		return model.Revision{}, status.ErrConcurrentUpdate.WrapMessage(
			"commit base %q is stale, head of %q is %q", base, pointer, head.ID)
	}
	current, err := s.readSnapshot(head.ID)
	if err != nil {
		return model.Revision{}, err
	}
	next, err := storage.ApplyChanges(current, changes)
	if err != nil {
		return model.Revision{}, err
	}
	rev := s.newRevision(author, message)
	if err := s.writeSnapshot(rev.ID, next); err != nil {
		return model.Revision{}, err
	}
	ld.Revisions = append(ld.Revisions, rev)
	if err := s.writeLine(pointer, ld, false); err != nil {
		return model.Revision{}, err
	}
	return rev, nil
}

// Access opens the revision history of a line
func (s *Store) Access(_ context.Context, pointer string) (storage.AccessContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.readLine(pointer); err != nil {
		return nil, err
	}
	return &access{store: s, pointer: pointer}, nil
}

// Pointer describes a single named pointer
func (s *Store) Pointer(_ context.Context, name string) (storage.PointerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ld, err := s.readLine(name)
	if err != nil {
		return storage.PointerInfo{}, err
	}
	return pointerInfo(name, ld), nil
}

func pointerInfo(name string, ld lineDescriptor) storage.PointerInfo {
	return storage.PointerInfo{
		Name:       name,
		RevisionID: ld.head().ID,
		Annotation: ld.Annotation,
		CreatedAt:  ld.CreatedAt,
	}
}

// ListPointers enumerates pointers under a prefix, ordered by name
func (s *Store) ListPointers(_ context.Context, prefix string) ([]storage.PointerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := path.Join(s.root, pointerDir)
	infos := make([]storage.PointerInfo, 0)
	err := afero.Walk(s.fs, base, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || path.Base(pth) != pointerFile {
			return nil
		}
		name := strings.TrimPrefix(path.Dir(pth), base+"/")
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		ld, err := s.readLine(name)
		if err != nil {
			return err
		}
		infos = append(infos, pointerInfo(name, ld))
		return nil
	})
	if err != nil {
		return nil, errors.New("list pointers").Wrap(err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// CreatePointer creates a pointer rooted at a revision, or at a fresh
// empty revision when from is empty
func (s *Store) CreatePointer(_ context.Context, name string, from model.RevisionID, annotation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var root model.Revision
	if from == "" {
		root = s.newRevision(model.Contributor{Name: "modelvc"}, "initial revision")
		if err := s.writeSnapshot(root.ID, model.Entities{}); err != nil {
			return err
		}
	} else {
		exists, err := afero.Exists(s.fs, s.snapshotPath(from))
		if err != nil {
			return errors.New("check snapshot").Wrap(err)
		}
		if !exists {
			return status.ErrNotExists.WrapMessage("no snapshot for revision %q", from)
		}
		root = model.Revision{ID: from}
		if rev, found := s.findAnywhere(from); found {
			root = rev
		}
	}
	return s.writeLine(name, lineDescriptor{
		Base:       root.ID,
		Revisions:  model.Revisions{root},
		Annotation: annotation,
		CreatedAt:  s.now(),
	}, true)
}

// findAnywhere scans pointer descriptors for the revision metadata of an id.
// Snapshots alone carry no commit metadata, lines do.
func (s *Store) findAnywhere(id model.RevisionID) (model.Revision, bool) {
	base := path.Join(s.root, pointerDir)
	var found model.Revision
	ok := false
	_ = afero.Walk(s.fs, base, func(pth string, info os.FileInfo, err error) error {
		if err != nil || ok || info.IsDir() || path.Base(pth) != pointerFile {
			return nil
		}
		name := strings.TrimPrefix(path.Dir(pth), base+"/")
		ld, err := s.readLine(name)
		if err != nil {
			return nil
		}
		if rev, err := findRevision(ld, id); err == nil {
			found, ok = rev, true
		}
		return nil
	})
	return found, ok
}

// DeletePointer removes a pointer. Idempotent. Snapshots survive.
func (s *Store) DeletePointer(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.fs.Remove(s.pointerPath(name))
	if err != nil && !os.IsNotExist(err) {
		return errors.New("delete pointer").Wrap(err)
	}
	return nil
}

// RenamePointer atomically moves a pointer to an unoccupied name
func (s *Store) RenamePointer(_ context.Context, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ld, err := s.readLine(oldName)
	if err != nil {
		return err
	}
	if _, err := s.readLine(newName); err == nil {
		return status.ErrExists.WrapMessage("pointer %q", newName)
	}
	if err := s.writeLine(newName, ld, true); err != nil {
		return err
	}
	if err := s.fs.Remove(s.pointerPath(oldName)); err != nil {
		return errors.New("remove renamed pointer").Wrap(err)
	}
	return nil
}

// ThreeWayMerge rebases the target line onto the upstream line when the
// two change sets relative to base do not collide
func (s *Store) ThreeWayMerge(_ context.Context, req storage.MergeRequest) (storage.MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, err := s.readLine(req.TargetPointer)
	if err != nil {
		return storage.MergeResult{}, err
	}
	upstreamLine, err := s.readLine(req.UpstreamPointer)
	if err != nil {
		return storage.MergeResult{}, err
	}
	if target.head().ID != req.Local {
		return storage.MergeResult{}, status.ErrConcurrentUpdate.WrapMessage(
			"merge local %q is stale, head of %q is %q", req.Local, req.TargetPointer, target.head().ID)
	}
	baseSnap, err := s.readSnapshot(req.Base)
	if err != nil {
		return storage.MergeResult{}, err
	}
	localSnap, err := s.readSnapshot(req.Local)
	if err != nil {
		return storage.MergeResult{}, err
	}
	upstreamSnap, err := s.readSnapshot(req.Upstream)
	if err != nil {
		return storage.MergeResult{}, err
	}

	changes, conflicts := storage.MergeEntities(baseSnap, localSnap, upstreamSnap)
	if len(conflicts) > 0 {
		return storage.MergeResult{Conflicts: conflicts}, nil
	}

	upstreamRev, err := findRevision(upstreamLine, req.Upstream)
	if err != nil {
		return storage.MergeResult{}, err
	}

	target.Base = req.Upstream
	target.Revisions = append(model.Revisions{}, upstreamLine.Revisions...)
	merged := upstreamRev
	if len(changes) > 0 {
		next, err := storage.ApplyChanges(upstreamSnap, changes)
		if err != nil {
			return storage.MergeResult{}, err
		}
		merged = s.newRevision(req.Author, req.Message)
		if err := s.writeSnapshot(merged.ID, next); err != nil {
			return storage.MergeResult{}, err
		}
		target.Revisions = append(target.Revisions, merged)
	}
	if err := s.writeLine(req.TargetPointer, target, false); err != nil {
		return storage.MergeResult{}, err
	}
	return storage.MergeResult{MergedRevision: &merged}, nil
}

type access struct {
	store   *Store
	pointer string
}

func (a *access) BaseRevision(_ context.Context) (model.Revision, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	ld, err := a.store.readLine(a.pointer)
	if err != nil {
		return model.Revision{}, err
	}
	return findRevision(ld, ld.Base)
}

func (a *access) CurrentRevision(_ context.Context) (model.Revision, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	ld, err := a.store.readLine(a.pointer)
	if err != nil {
		return model.Revision{}, err
	}
	return ld.head(), nil
}

func (a *access) Revision(_ context.Context, id model.RevisionID) (model.Revision, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	ld, err := a.store.readLine(a.pointer)
	if err != nil {
		return model.Revision{}, err
	}
	return findRevision(ld, id)
}

func (a *access) Revisions(_ context.Context, filter model.RevisionFilter) (model.Revisions, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	ld, err := a.store.readLine(a.pointer)
	if err != nil {
		return nil, err
	}
	out := make(model.Revisions, 0, len(ld.Revisions))
	for i := len(ld.Revisions) - 1; i >= 0; i-- {
		rev := ld.Revisions[i]
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
