package core

import (
	context2 "github.com/metaforge/modelvc/pkg/context"
	"github.com/metaforge/modelvc/pkg/model"
)

// CompareRevisions computes the entity-level diff between two revisions
// of a line. The comparison is directed: swapping the endpoints swaps
// added and deleted and preserves modified.
func CompareRevisions(line model.Line, from, to model.RevisionAlias, stores context2.Stores) (model.Comparison, error) {
	fromRev, err := ResolveAlias(line, from, stores)
	if err != nil {
		return model.Comparison{}, err
	}
	toRev, err := ResolveAlias(line, to, stores)
	if err != nil {
		return model.Comparison{}, err
	}
	fromEntities, err := readEntitiesAt(line, from, stores)
	if err != nil {
		return model.Comparison{}, err
	}
	toEntities, err := readEntitiesAt(line, to, stores)
	if err != nil {
		return model.Comparison{}, err
	}
	return diffEntities(fromRev.ID, toRev.ID, fromEntities, toEntities), nil
}

// GetWorkspaceCreationComparison diffs a workspace against its own
// BASE: the changes accumulated since the workspace was rooted
func GetWorkspaceCreationComparison(spec model.WorkspaceSpec, stores context2.Stores) (model.Comparison, error) {
	if err := spec.Validate(); err != nil {
		return model.Comparison{}, invalidArgument("workspace spec: %v", err)
	}
	return CompareRevisions(spec, model.BaseAlias(), model.HeadAlias(), stores)
}

// GetWorkspaceSourceComparison diffs the current source stream head
// against the workspace head: what merging the workspace would change
// on the stream as it stands now
func GetWorkspaceSourceComparison(spec model.WorkspaceSpec, stores context2.Stores) (model.Comparison, error) {
	if err := spec.Validate(); err != nil {
		return model.Comparison{}, invalidArgument("workspace spec: %v", err)
	}
	fromRev, err := ResolveAlias(spec.Source, model.HeadAlias(), stores)
	if err != nil {
		return model.Comparison{}, err
	}
	toRev, err := ResolveAlias(spec, model.HeadAlias(), stores)
	if err != nil {
		return model.Comparison{}, err
	}
	fromEntities, err := readEntitiesAt(spec.Source, model.HeadAlias(), stores)
	if err != nil {
		return model.Comparison{}, err
	}
	toEntities, err := readEntitiesAt(spec, model.HeadAlias(), stores)
	if err != nil {
		return model.Comparison{}, err
	}
	return diffEntities(fromRev.ID, toRev.ID, fromEntities, toEntities), nil
}

// GetReviewComparison diffs the source stream head against the head of
// the workspace under review
func GetReviewComparison(stream model.Stream, reviewID string, stores context2.Stores) (model.Comparison, error) {
	review, err := GetReview(stream, reviewID, stores)
	if err != nil {
		return model.Comparison{}, err
	}
	return GetWorkspaceSourceComparison(review.Workspace, stores)
}

// diffEntities walks both entity sets by path. Project configuration
// entities are reported through the ProjectConfigurationUpdated flag
// rather than as entity diffs.
func diffEntities(from, to model.RevisionID, fromEntities, toEntities model.Entities) model.Comparison {
	comparison := model.Comparison{
		FromRevisionID: from,
		ToRevisionID:   to,
		EntityDiffs:    make(model.EntityDiffs, 0),
	}
	fromByPath := fromEntities.ByPath()
	toByPath := toEntities.ByPath()

	record := func(path string, kind model.DiffKind) {
		comparison.EntityDiffs = append(comparison.EntityDiffs, model.EntityDiff{Path: path, Kind: kind})
	}
	for path, fromEntity := range fromByPath {
		toEntity, ok := toByPath[path]
		switch {
		case !ok:
			if fromEntity.IsProjectConfiguration() {
				comparison.ProjectConfigurationUpdated = true
				continue
			}
			record(path, model.DiffDeleted)
		case fromEntity.ClassifierPath != toEntity.ClassifierPath || !fromEntity.ContentEquals(toEntity):
			if fromEntity.IsProjectConfiguration() || toEntity.IsProjectConfiguration() {
				comparison.ProjectConfigurationUpdated = true
				continue
			}
			record(path, model.DiffModified)
		}
	}
	for path, toEntity := range toByPath {
		if _, ok := fromByPath[path]; ok {
			continue
		}
		if toEntity.IsProjectConfiguration() {
			comparison.ProjectConfigurationUpdated = true
			continue
		}
		record(path, model.DiffAdded)
	}
	comparison.EntityDiffs = comparison.EntityDiffs.Sorted()
	return comparison
}
