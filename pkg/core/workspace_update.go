package core

import (
	"context"

	context2 "github.com/metaforge/modelvc/pkg/context"
	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/metaforge/modelvc/pkg/storage"
	"go.uber.org/zap"
)

// UpdateResult reports the outcome of rebasing a workspace onto its
// source stream
type UpdateResult struct {
	Workspace model.WorkspaceDescriptor `json:"workspace" yaml:"workspace"`
	Conflicts []storage.Conflict        `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
}

// Updated tells whether the rebase went through without conflicts
func (r UpdateResult) Updated() bool {
	return len(r.Conflicts) == 0
}

// UpdateWorkspace rebases a workspace onto the current head of its
// source stream.
//
// When local changes and upstream changes do not collide, the
// workspace is rewritten on top of the stream head: its BASE advances
// and its local changes are replayed. When both sides touched the same
// entity with differing results, nothing on the primary line moves:
// instead a backup copy freezes the pre-update heads and a
// conflict-resolution copy is opened at the upstream head, seeded with
// the changes that merged cleanly. The workspace then reports
// IN_CONFLICT_RESOLUTION until the resolution is accepted or
// discarded.
//
// Updating an up-to-date workspace is a no-op returning the current
// descriptor.
func UpdateWorkspace(spec model.WorkspaceSpec, stores context2.Stores) (UpdateResult, error) {
	if err := spec.Validate(); err != nil {
		return UpdateResult{}, invalidArgument("workspace spec: %v", err)
	}
	if spec.Access != model.PrimaryAccess {
		return UpdateResult{}, invalidArgument("only primary workspaces are updated, not %q copies", spec.Access)
	}

	unlock := stores.LockKey(spec.Key())
	defer unlock()

	inResolution, err := InConflictResolution(spec, stores)
	if err != nil {
		return UpdateResult{}, err
	}
	if inResolution {
		return UpdateResult{}, status.ErrConflict.WrapMessage(
			"%s is in conflict resolution: accept or discard the resolution first", spec.Describe())
	}

	base, err := ResolveAlias(spec, model.BaseAlias(), stores)
	if err != nil {
		return UpdateResult{}, err
	}
	localHead, err := ResolveAlias(spec, model.HeadAlias(), stores)
	if err != nil {
		return UpdateResult{}, err
	}
	streamHead, err := ResolveAlias(spec.Source, model.HeadAlias(), stores)
	if err != nil {
		return UpdateResult{}, err
	}
	if base.ID == streamHead.ID {
		descriptor, err := describeWorkspace(spec, stores)
		if err != nil {
			return UpdateResult{}, err
		}
		return UpdateResult{Workspace: descriptor}, nil
	}

	result, err := stores.Provider().ThreeWayMerge(context.Background(), storage.MergeRequest{
		TargetPointer:   spec.Pointer(),
		UpstreamPointer: spec.Source.Pointer(),
		Base:            base.ID,
		Local:           localHead.ID,
		Upstream:        streamHead.ID,
		Author:          model.Contributor{Name: "modelvc"},
		Message:         "update from " + spec.Source.Describe(),
	})
	if err != nil {
		return UpdateResult{}, asCoreError("update "+spec.Describe(), err)
	}
	if !result.HasConflicts() {
		descriptor, err := describeWorkspace(spec, stores)
		if err != nil {
			return UpdateResult{}, err
		}
		stores.Logger().Info("workspace updated",
			zap.String("workspace", spec.WorkspaceID), zap.Stringer("base", streamHead.ID))
		return UpdateResult{Workspace: descriptor}, nil
	}

	if err := enterConflictResolution(spec, localHead.ID, streamHead.ID, base, result.Conflicts, stores); err != nil {
		return UpdateResult{}, err
	}
	descriptor, err := describeWorkspace(spec, stores)
	if err != nil {
		return UpdateResult{}, err
	}
	stores.Logger().Info("workspace update conflicted",
		zap.String("workspace", spec.WorkspaceID), zap.Int("conflicts", len(result.Conflicts)))
	return UpdateResult{Workspace: descriptor, Conflicts: result.Conflicts}, nil
}

// enterConflictResolution freezes the pre-update workspace heads in a
// backup copy and opens a conflict-resolution copy at the upstream
// head, pre-seeded with the cleanly merged changes. The primary line
// is left untouched so a discarded resolution restores the workspace
// exactly.
func enterConflictResolution(spec model.WorkspaceSpec, localHead model.RevisionID,
	upstreamHead model.RevisionID, base model.Revision, conflicts []storage.Conflict,
	stores context2.Stores) error {
	ctx := context.Background()
	backup := spec.WithAccess(model.BackupAccess)
	if err := stores.Provider().CreatePointer(ctx, backup.Pointer(), localHead, ""); err != nil {
		return asCoreError("back up "+spec.Describe(), err)
	}
	shadow := spec.WithAccess(model.ConflictResolutionAccess)
	if err := stores.Provider().CreatePointer(ctx, shadow.Pointer(), upstreamHead, ""); err != nil {
		return asCoreError("open conflict resolution for "+spec.Describe(), err)
	}

	changes, err := cleanlyMergedChanges(spec, base, stores)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}
	if _, err := stores.Provider().Commit(ctx, shadow.Pointer(), upstreamHead, changes,
		model.Contributor{Name: "modelvc"}, "auto-merged changes"); err != nil {
		return asCoreError("seed conflict resolution for "+spec.Describe(), err)
	}
	return nil
}

// cleanlyMergedChanges recomputes the three-way merge of the workspace
// against its source and keeps the changes that did not conflict
func cleanlyMergedChanges(spec model.WorkspaceSpec, base model.Revision, stores context2.Stores) ([]model.EntityChange, error) {
	ctx := context.Background()
	provider := stores.Provider()
	baseEntities, err := provider.ReadEntities(ctx, spec.Pointer(), base.ID)
	if err != nil {
		return nil, asCoreError("read base entities of "+spec.Describe(), err)
	}
	localEntities, err := readEntitiesAt(spec, model.HeadAlias(), stores)
	if err != nil {
		return nil, err
	}
	upstreamEntities, err := readEntitiesAt(spec.Source, model.HeadAlias(), stores)
	if err != nil {
		return nil, err
	}
	changes, _ := storage.MergeEntities(baseEntities, localEntities, upstreamEntities)
	return changes, nil
}
