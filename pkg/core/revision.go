package core

import (
	"context"

	context2 "github.com/metaforge/modelvc/pkg/context"
	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/metaforge/modelvc/pkg/storage"
)

func lineAccess(line model.Line, stores context2.Stores) (storage.AccessContext, error) {
	access, err := stores.Provider().Access(context.Background(), line.Pointer())
	if err != nil {
		return nil, asCoreError("access "+line.Describe(), err)
	}
	return access, nil
}

// ResolveAlias resolves a symbolic revision reference against a line:
// BASE is the revision captured when the line was rooted, HEAD the most
// recently committed revision, and a literal id resolves to itself,
// validated against the line's history.
func ResolveAlias(line model.Line, alias model.RevisionAlias, stores context2.Stores) (model.Revision, error) {
	if !alias.IsValid() {
		return model.Revision{}, invalidArgument("invalid revision alias on %s", line.Describe())
	}
	access, err := lineAccess(line, stores)
	if err != nil {
		return model.Revision{}, err
	}
	ctx := context.Background()
	var (
		rev model.Revision
		e   error
	)
	switch alias.Kind {
	case model.AliasBase:
		rev, e = access.BaseRevision(ctx)
	case model.AliasHead:
		rev, e = access.CurrentRevision(ctx)
	default:
		rev, e = access.Revision(ctx, alias.ID)
	}
	if e != nil {
		return model.Revision{}, asCoreError("resolve "+alias.String()+" on "+line.Describe(), e)
	}
	return rev, nil
}

// ListRevisions yields the revisions of a line matching a filter, in
// reverse chronological order. An empty result is a valid success
// value: storage failures propagate as errors and are never collapsed
// into an empty listing.
func ListRevisions(line model.Line, filter model.RevisionFilter, stores context2.Stores, opts ...ListOption) (model.Revisions, error) {
	revisions := make(model.Revisions, 0)
	err := ListRevisionsApply(line, filter, stores, func(rev model.Revision) error {
		revisions = append(revisions, rev)
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return revisions, nil
}

// ListRevisionsApply runs a function on every matching revision of a
// line, newest first
func ListRevisionsApply(line model.Line, filter model.RevisionFilter, stores context2.Stores,
	apply func(model.Revision) error, opts ...ListOption) error {
	settings := newSettings(opts...)
	access, err := lineAccess(line, stores)
	if err != nil {
		return err
	}
	revisions, err := access.Revisions(context.Background(), filter)
	if err != nil {
		return asCoreError("list revisions on "+line.Describe(), err)
	}
	for _, rev := range revisions {
		if settings.interrupted() {
			return status.ErrInterrupted
		}
		if err := apply(rev); err != nil {
			return err
		}
	}
	return nil
}
