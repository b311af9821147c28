package core

import (
	"context"

	context2 "github.com/metaforge/modelvc/pkg/context"
	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/model"
	"github.com/metaforge/modelvc/pkg/storage"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ConflictResolution describes a pending conflicting update: the three
// revisions of the merge and the entity paths still in dispute
type ConflictResolution struct {
	Workspace          model.WorkspaceSpec `json:"workspace" yaml:"workspace"`
	BaseRevisionID     model.RevisionID    `json:"baseRevisionId" yaml:"baseRevisionId"`
	LocalRevisionID    model.RevisionID    `json:"localRevisionId" yaml:"localRevisionId"`
	UpstreamRevisionID model.RevisionID    `json:"upstreamRevisionId" yaml:"upstreamRevisionId"`
	Conflicts          []storage.Conflict  `json:"conflicts" yaml:"conflicts"`
}

// GetConflictResolution recomputes the pending conflicts of a
// workspace held in conflict resolution. The three sides are read back
// from the frozen backup (local), the workspace base and the
// conflict-resolution root (upstream), so the report is stable no
// matter how often it is requested.
func GetConflictResolution(spec model.WorkspaceSpec, stores context2.Stores) (ConflictResolution, error) {
	if err := spec.Validate(); err != nil {
		return ConflictResolution{}, invalidArgument("workspace spec: %v", err)
	}
	inResolution, err := InConflictResolution(spec, stores)
	if err != nil {
		return ConflictResolution{}, err
	}
	if !inResolution {
		return ConflictResolution{}, status.ErrNotFound.WrapMessage("%s has no pending conflict resolution", spec.Describe())
	}

	ctx := context.Background()
	provider := stores.Provider()
	base, err := ResolveAlias(spec, model.BaseAlias(), stores)
	if err != nil {
		return ConflictResolution{}, err
	}
	backup := spec.WithAccess(model.BackupAccess)
	localHead, err := ResolveAlias(backup, model.HeadAlias(), stores)
	if err != nil {
		return ConflictResolution{}, err
	}
	shadow := spec.WithAccess(model.ConflictResolutionAccess)
	upstream, err := ResolveAlias(shadow, model.BaseAlias(), stores)
	if err != nil {
		return ConflictResolution{}, err
	}

	baseEntities, err := provider.ReadEntities(ctx, spec.Pointer(), base.ID)
	if err != nil {
		return ConflictResolution{}, asCoreError("read base entities of "+spec.Describe(), err)
	}
	localEntities, err := provider.ReadEntities(ctx, backup.Pointer(), localHead.ID)
	if err != nil {
		return ConflictResolution{}, asCoreError("read local entities of "+spec.Describe(), err)
	}
	upstreamEntities, err := provider.ReadEntities(ctx, shadow.Pointer(), upstream.ID)
	if err != nil {
		return ConflictResolution{}, asCoreError("read upstream entities of "+spec.Describe(), err)
	}
	_, conflicts := storage.MergeEntities(baseEntities, localEntities, upstreamEntities)

	return ConflictResolution{
		Workspace:          spec,
		BaseRevisionID:     base.ID,
		LocalRevisionID:    localHead.ID,
		UpstreamRevisionID: upstream.ID,
		Conflicts:          conflicts,
	}, nil
}

// AcceptConflictResolution commits the user's resolution and promotes
// the conflict-resolution line as the workspace. The resolution must
// settle every conflicting path: an incomplete batch is rejected as
// InvalidArgument before anything moves.
//
// On success the workspace BASE sits at the upstream head that caused
// the conflict and the workspace is ACTIVE again. The frozen backup is
// released in the background.
func AcceptConflictResolution(spec model.WorkspaceSpec, changes []model.EntityChange,
	author model.Contributor, message string, stores context2.Stores) (model.WorkspaceDescriptor, error) {
	if err := spec.Validate(); err != nil {
		return model.WorkspaceDescriptor{}, invalidArgument("workspace spec: %v", err)
	}

	unlock := stores.LockKey(spec.Key())
	defer unlock()

	resolution, err := GetConflictResolution(spec, stores)
	if err != nil {
		return model.WorkspaceDescriptor{}, err
	}
	if err := coversConflicts(changes, resolution.Conflicts); err != nil {
		return model.WorkspaceDescriptor{}, err
	}

	ctx := context.Background()
	provider := stores.Provider()
	shadow := spec.WithAccess(model.ConflictResolutionAccess)
	if len(changes) > 0 {
		if err := validateChanges(changes); err != nil {
			return model.WorkspaceDescriptor{}, err
		}
		head, err := ResolveAlias(shadow, model.HeadAlias(), stores)
		if err != nil {
			return model.WorkspaceDescriptor{}, err
		}
		if _, err := provider.Commit(ctx, shadow.Pointer(), head.ID, changes, author, message); err != nil {
			return model.WorkspaceDescriptor{}, asCoreError("commit resolution of "+spec.Describe(), err)
		}
	}

	if err := provider.DeletePointer(ctx, spec.Pointer()); err != nil {
		return model.WorkspaceDescriptor{}, asCoreError("promote resolution of "+spec.Describe(), err)
	}
	if err := provider.RenamePointer(ctx, shadow.Pointer(), spec.Pointer()); err != nil {
		return model.WorkspaceDescriptor{}, asCoreError("promote resolution of "+spec.Describe(), err)
	}

	backup := spec.WithAccess(model.BackupAccess)
	l := stores.Logger()
	stores.Defer(func() {
		if err := provider.DeletePointer(context.Background(), backup.Pointer()); err != nil {
			l.Error("release backup", zap.String("workspace", spec.WorkspaceID), zap.Error(err))
		}
	})

	stores.Logger().Info("conflict resolution accepted",
		zap.String("workspace", spec.WorkspaceID), zap.Int("resolved", len(resolution.Conflicts)))
	return describeWorkspace(spec, stores)
}

// coversConflicts checks that every conflicting path is settled by the
// resolution batch
func coversConflicts(changes []model.EntityChange, conflicts []storage.Conflict) error {
	settled := make(map[string]struct{}, len(changes))
	for _, change := range changes {
		settled[change.TargetPath()] = struct{}{}
		if change.Kind == model.ChangeRename {
			settled[change.Path] = struct{}{}
		}
	}
	var errs error
	for _, conflict := range conflicts {
		if _, ok := settled[conflict.Path]; !ok {
			errs = multierr.Append(errs, invalidArgument("conflict on %q left unresolved", conflict.Path))
		}
	}
	return errs
}

// DiscardConflictResolution abandons a pending resolution and restores
// the workspace exactly as it was before the conflicting update
func DiscardConflictResolution(spec model.WorkspaceSpec, stores context2.Stores) (model.WorkspaceDescriptor, error) {
	if err := spec.Validate(); err != nil {
		return model.WorkspaceDescriptor{}, invalidArgument("workspace spec: %v", err)
	}

	unlock := stores.LockKey(spec.Key())
	defer unlock()

	inResolution, err := InConflictResolution(spec, stores)
	if err != nil {
		return model.WorkspaceDescriptor{}, err
	}
	if !inResolution {
		return model.WorkspaceDescriptor{}, status.ErrNotFound.WrapMessage("%s has no pending conflict resolution", spec.Describe())
	}

	ctx := context.Background()
	provider := stores.Provider()
	if err := provider.DeletePointer(ctx, spec.WithAccess(model.ConflictResolutionAccess).Pointer()); err != nil {
		return model.WorkspaceDescriptor{}, asCoreError("discard resolution of "+spec.Describe(), err)
	}
	if err := provider.DeletePointer(ctx, spec.WithAccess(model.BackupAccess).Pointer()); err != nil {
		return model.WorkspaceDescriptor{}, asCoreError("discard resolution of "+spec.Describe(), err)
	}
	stores.Logger().Info("conflict resolution discarded", zap.String("workspace", spec.WorkspaceID))
	return describeWorkspace(spec, stores)
}
