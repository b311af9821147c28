package storage

import (
	"sort"

	"github.com/metaforge/modelvc/pkg/model"
	"github.com/metaforge/modelvc/pkg/storage/status"
)

// ApplyChanges applies a batch of entity changes to a snapshot and
// returns the resulting entity set. The input snapshot is not mutated:
// a partially applicable batch yields an error and no result.
func ApplyChanges(snapshot model.Entities, changes []model.EntityChange) (model.Entities, error) {
	next := snapshot.ByPath()
	for _, change := range changes {
		switch change.Kind {
		case model.ChangeCreate:
			if _, ok := next[change.Path]; ok {
				return nil, status.ErrChangeNotApplicable.WrapMessage("create: path %q already holds an entity", change.Path)
			}
			next[change.Path] = model.Entity{Path: change.Path, ClassifierPath: change.ClassifierPath, Content: change.Content}
		case model.ChangeModify:
			if _, ok := next[change.Path]; !ok {
				return nil, status.ErrChangeNotApplicable.WrapMessage("modify: no entity at path %q", change.Path)
			}
			next[change.Path] = model.Entity{Path: change.Path, ClassifierPath: change.ClassifierPath, Content: change.Content}
		case model.ChangeDelete:
			if _, ok := next[change.Path]; !ok {
				return nil, status.ErrChangeNotApplicable.WrapMessage("delete: no entity at path %q", change.Path)
			}
			delete(next, change.Path)
		case model.ChangeRename:
			entity, ok := next[change.Path]
			if !ok {
				return nil, status.ErrChangeNotApplicable.WrapMessage("rename: no entity at path %q", change.Path)
			}
			if _, ok := next[change.NewPath]; ok {
				return nil, status.ErrChangeNotApplicable.WrapMessage("rename: path %q already holds an entity", change.NewPath)
			}
			delete(next, change.Path)
			entity.Path = change.NewPath
			next[change.NewPath] = entity
		default:
			return nil, status.ErrChangeNotApplicable.WrapMessage("unknown change kind %q", change.Kind)
		}
	}
	result := make(model.Entities, 0, len(next))
	for _, entity := range next {
		result = append(result, entity)
	}
	return result.Sorted(), nil
}

func sameSide(a, b *model.Entity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ContentEquals(*b)
}

// MergeEntities computes a three-way merge over entity sets.
//
// A path conflicts iff it changed relative to base on both the local
// and the upstream side and the two results differ. Paths changed on a
// single side merge automatically. The returned changes transform the
// upstream set into the merged set; conflicting paths are excluded from
// the change list and reported with their three per-side contents.
func MergeEntities(base, local, upstream model.Entities) ([]model.EntityChange, []Conflict) {
	baseIdx := base.ByPath()
	localIdx := local.ByPath()
	upstreamIdx := upstream.ByPath()

	paths := make(map[string]struct{}, len(baseIdx)+len(localIdx)+len(upstreamIdx))
	for pth := range baseIdx {
		paths[pth] = struct{}{}
	}
	for pth := range localIdx {
		paths[pth] = struct{}{}
	}
	for pth := range upstreamIdx {
		paths[pth] = struct{}{}
	}

	side := func(idx map[string]model.Entity, pth string) *model.Entity {
		if entity, ok := idx[pth]; ok {
			return &entity
		}
		return nil
	}

	changes := make([]model.EntityChange, 0, len(paths))
	conflicts := make([]Conflict, 0)
	for pth := range paths {
		b := side(baseIdx, pth)
		l := side(localIdx, pth)
		u := side(upstreamIdx, pth)

		localChanged := !sameSide(b, l)
		upstreamChanged := !sameSide(b, u)
		switch {
		case !localChanged:
			// upstream side wins by default, nothing to replay
		case localChanged && upstreamChanged && sameSide(l, u):
			// both sides converged on the same result
		case localChanged && upstreamChanged:
			conflicts = append(conflicts, Conflict{Path: pth, Base: b, Local: l, Upstream: u})
		case l == nil:
			changes = append(changes, model.NewDeleteChange(pth))
		case u == nil:
			changes = append(changes, model.NewCreateChange(pth, l.ClassifierPath, l.Content))
		default:
			changes = append(changes, model.NewModifyChange(pth, l.ClassifierPath, l.Content))
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Path < conflicts[j].Path })
	return changes, conflicts
}
