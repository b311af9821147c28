// Package storage defines the service-provider interface consumed by
// the modelvc core.
//
// A provider maintains named pointers with compare-and-swap semantics,
// immutable revision snapshots of entity sets, and a three-way merge
// primitive. Implementations range from an in-memory store to a
// filesystem store or a hosted git-provider client.
package storage

import (
	"context"
	"time"

	"github.com/metaforge/modelvc/pkg/model"
)

// PointerInfo describes a named pointer held by a provider
type PointerInfo struct {
	Name       string           `json:"name" yaml:"name"`
	RevisionID model.RevisionID `json:"revisionID" yaml:"revisionID"`
	Annotation string           `json:"annotation,omitempty" yaml:"annotation,omitempty"`
	CreatedAt  time.Time        `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	_          struct{}
}

// Conflict reports one entity path changed on both sides of a merge
// with differing results, together with the three per-side contents.
// A nil side means the entity is absent at that revision.
type Conflict struct {
	Path     string
	Base     *model.Entity
	Local    *model.Entity
	Upstream *model.Entity
}

// MergeRequest names the three revisions of a three-way merge and the
// lines involved: the target line is rebased onto the upstream line
// when the merge applies cleanly.
type MergeRequest struct {
	// TargetPointer is the line to rebase (typically a workspace)
	TargetPointer string

	// UpstreamPointer is the line providing the upstream history
	UpstreamPointer string

	Base     model.RevisionID
	Local    model.RevisionID
	Upstream model.RevisionID

	Author  model.Contributor
	Message string
}

// MergeResult is the outcome of a three-way merge: either a merged
// revision (the target line has been rebased onto upstream, its base
// revision now the upstream revision), or the set of conflicting paths
// with their per-side contents, in which case nothing was mutated.
type MergeResult struct {
	MergedRevision *model.Revision
	Conflicts      []Conflict
}

// HasConflicts tells whether the merge could not apply cleanly
func (m MergeResult) HasConflicts() bool {
	return len(m.Conflicts) > 0
}

// AccessContext resolves revisions on one history line
type AccessContext interface {
	// BaseRevision is the revision the line was rooted at. Rebasing a
	// line through a merge advances its base.
	BaseRevision(ctx context.Context) (model.Revision, error)

	// CurrentRevision is the most recently committed revision
	CurrentRevision(ctx context.Context) (model.Revision, error)

	// Revision resolves a literal revision id against this line
	Revision(ctx context.Context, id model.RevisionID) (model.Revision, error)

	// Revisions lists revisions in reverse chronological order. An
	// empty result is a valid success value, distinct from a storage
	// failure which is reported as an error.
	Revisions(ctx context.Context, filter model.RevisionFilter) (model.Revisions, error)
}

// Provider is the storage SPI consumed by the modelvc core.
//
// Pointer operations carry compare-and-swap semantics: creating an
// existing pointer or renaming onto an occupied name fails with
// status.ErrExists and mutates nothing. Commit is all-or-nothing and
// fails with status.ErrConcurrentUpdate when the given base is no
// longer the pointed-at head. A provider may answer
// status.ErrNotSupported on any operation it does not implement.
type Provider interface {
	String() string

	// ReadEntities yields the full entity set at a revision of a line
	ReadEntities(ctx context.Context, pointer string, revision model.RevisionID) (model.Entities, error)

	// Commit seals a batch of entity changes into a new revision on a line
	Commit(ctx context.Context, pointer string, base model.RevisionID, changes []model.EntityChange,
		author model.Contributor, message string) (model.Revision, error)

	// Access opens the revision history of a line
	Access(ctx context.Context, pointer string) (AccessContext, error)

	// Pointer describes a single named pointer
	Pointer(ctx context.Context, name string) (PointerInfo, error)

	// ListPointers enumerates pointers under a name prefix, ordered by name
	ListPointers(ctx context.Context, prefix string) ([]PointerInfo, error)

	// CreatePointer creates a named pointer rooted at a revision. An
	// empty "from" roots the pointer at a fresh empty revision. The
	// annotation is an opaque payload stored with the pointer.
	CreatePointer(ctx context.Context, name string, from model.RevisionID, annotation string) error

	// DeletePointer removes a named pointer. Deleting an absent pointer
	// is not an error. Revisions reachable from other lines survive.
	DeletePointer(ctx context.Context, name string) error

	// RenamePointer atomically moves a pointer to an unoccupied name
	RenamePointer(ctx context.Context, oldName, newName string) error

	// ThreeWayMerge rebases the target line onto upstream when local
	// and upstream changes relative to base do not collide
	ThreeWayMerge(ctx context.Context, req MergeRequest) (MergeResult, error)
}
