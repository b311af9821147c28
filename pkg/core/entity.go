package core

import (
	"context"

	context2 "github.com/metaforge/modelvc/pkg/context"
	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/model"
)

// GetEntity retrieves a single entity at a revision of a line
func GetEntity(line model.Line, alias model.RevisionAlias, path string, stores context2.Stores) (model.Entity, error) {
	if !model.IsValidEntityPath(path) {
		return model.Entity{}, invalidArgument("invalid entity path: %q", path)
	}
	entities, err := readEntitiesAt(line, alias, stores)
	if err != nil {
		return model.Entity{}, err
	}
	for _, entity := range entities {
		if entity.Path == path {
			return entity, nil
		}
	}
	return model.Entity{}, status.ErrNotFound.WrapMessage("no entity at path %q in %s of %s", path, alias, line.Describe())
}

func readEntitiesAt(line model.Line, alias model.RevisionAlias, stores context2.Stores) (model.Entities, error) {
	rev, err := ResolveAlias(line, alias, stores)
	if err != nil {
		return nil, err
	}
	entities, err := stores.Provider().ReadEntities(context.Background(), line.Pointer(), rev.ID)
	if err != nil {
		return nil, asCoreError("read entities at "+rev.ID.String()+" on "+line.Describe(), err)
	}
	return entities, nil
}

// ListEntities yields the entities at a revision of a line matching a
// predicate, ordered by path. A nil predicate matches every entity.
func ListEntities(line model.Line, alias model.RevisionAlias, predicate func(model.Entity) bool,
	stores context2.Stores, opts ...ListOption) (model.Entities, error) {
	entities := make(model.Entities, 0)
	err := ListEntitiesApply(line, alias, predicate, stores, func(entity model.Entity) error {
		entities = append(entities, entity)
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// ListEntitiesApply runs a function on every matching entity at a
// revision of a line. The scan is finite and restartable: every call
// walks the sealed snapshot from the start.
func ListEntitiesApply(line model.Line, alias model.RevisionAlias, predicate func(model.Entity) bool,
	stores context2.Stores, apply func(model.Entity) error, opts ...ListOption) error {
	settings := newSettings(opts...)
	entities, err := readEntitiesAt(line, alias, stores)
	if err != nil {
		return err
	}
	for _, entity := range entities.Sorted() {
		if settings.interrupted() {
			return status.ErrInterrupted
		}
		if predicate != nil && !predicate(entity) {
			continue
		}
		if err := apply(entity); err != nil {
			return err
		}
	}
	return nil
}
