package core

import (
	"context"
	"strings"

	context2 "github.com/metaforge/modelvc/pkg/context"
	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/errors"
	"github.com/metaforge/modelvc/pkg/model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// CreateWorkspace roots a new staging area at the current head of its
// source stream. The captured head becomes the workspace BASE.
//
// Exactly one primary workspace may exist per (stream, workspace id,
// type): racing creations are arbitrated by the provider's
// compare-and-swap pointer creation, the loser fails with Conflict.
func CreateWorkspace(spec model.WorkspaceSpec, stores context2.Stores) (model.WorkspaceDescriptor, error) {
	if err := spec.Validate(); err != nil {
		return model.WorkspaceDescriptor{}, invalidArgument("workspace spec: %v", err)
	}
	if spec.Access != model.PrimaryAccess {
		return model.WorkspaceDescriptor{}, invalidArgument("only primary workspaces are created directly, not %q copies", spec.Access)
	}
	if err := ProjectExists(spec.Source.ProjectID, stores); err != nil {
		return model.WorkspaceDescriptor{}, err
	}
	if spec.Source.IsPatch() {
		released, err := patchReleased(spec.Source, stores)
		if err != nil {
			return model.WorkspaceDescriptor{}, err
		}
		if released {
			return model.WorkspaceDescriptor{}, status.ErrConflict.WrapMessage(
				"%s is released and accepts no new workspaces", spec.Source.Describe())
		}
	}

	unlock := stores.LockKey(spec.Key())
	defer unlock()

	head, err := ResolveAlias(spec.Source, model.HeadAlias(), stores)
	if err != nil {
		return model.WorkspaceDescriptor{}, err
	}
	if err := stores.Provider().CreatePointer(context.Background(), spec.Pointer(), head.ID, ""); err != nil {
		return model.WorkspaceDescriptor{}, asCoreError("create "+spec.Describe(), err)
	}
	stores.Logger().Info("workspace created",
		zap.String("workspace", spec.WorkspaceID), zap.Stringer("base", head.ID), lineField(spec.Pointer()))
	return describeWorkspace(spec, stores)
}

// GetWorkspace retrieves the observable state of a workspace
func GetWorkspace(spec model.WorkspaceSpec, stores context2.Stores) (model.WorkspaceDescriptor, error) {
	if err := spec.Validate(); err != nil {
		return model.WorkspaceDescriptor{}, invalidArgument("workspace spec: %v", err)
	}
	return describeWorkspace(spec, stores)
}

func describeWorkspace(spec model.WorkspaceSpec, stores context2.Stores) (model.WorkspaceDescriptor, error) {
	ctx := context.Background()
	info, err := stores.Provider().Pointer(ctx, spec.Pointer())
	if err != nil {
		return model.WorkspaceDescriptor{}, asCoreError("retrieve "+spec.Describe(), err)
	}
	access, err := lineAccess(spec, stores)
	if err != nil {
		return model.WorkspaceDescriptor{}, err
	}
	base, err := access.BaseRevision(ctx)
	if err != nil {
		return model.WorkspaceDescriptor{}, asCoreError("resolve base of "+spec.Describe(), err)
	}
	state, err := workspaceState(spec, stores)
	if err != nil {
		return model.WorkspaceDescriptor{}, err
	}
	return model.WorkspaceDescriptor{
		Spec:           spec,
		State:          state,
		BaseRevisionID: base.ID,
		HeadRevisionID: info.RevisionID,
		CreatedAt:      info.CreatedAt,
	}, nil
}

// workspaceState derives the lifecycle state from pointer existence:
// a backup copy is BACKED_UP, a primary with a live conflict-resolution
// shadow is IN_CONFLICT_RESOLUTION, otherwise ACTIVE.
func workspaceState(spec model.WorkspaceSpec, stores context2.Stores) (model.WorkspaceState, error) {
	switch spec.Access {
	case model.BackupAccess:
		return model.WorkspaceBackedUp, nil
	case model.ConflictResolutionAccess:
		return model.WorkspaceActive, nil
	default:
	}
	inResolution, err := InConflictResolution(spec, stores)
	if err != nil {
		return "", err
	}
	if inResolution {
		return model.WorkspaceInConflictResolution, nil
	}
	return model.WorkspaceActive, nil
}

// InConflictResolution tells whether a workspace currently holds an
// unresolved conflicting update
func InConflictResolution(spec model.WorkspaceSpec, stores context2.Stores) (bool, error) {
	shadow := spec.WithAccess(model.ConflictResolutionAccess)
	_, err := stores.Provider().Pointer(context.Background(), shadow.Pointer())
	if err == nil {
		return true, nil
	}
	if errors.Is(asCoreError("", err), status.ErrNotFound) {
		return false, nil
	}
	return false, asCoreError("probe conflict resolution of "+spec.Describe(), err)
}

// IsOutdated tells whether the source stream head moved past the
// workspace BASE. Pure read, no transition.
func IsOutdated(spec model.WorkspaceSpec, stores context2.Stores) (bool, error) {
	base, err := ResolveAlias(spec, model.BaseAlias(), stores)
	if err != nil {
		return false, err
	}
	streamHead, err := ResolveAlias(spec.Source, model.HeadAlias(), stores)
	if err != nil {
		return false, err
	}
	return base.ID != streamHead.ID, nil
}

// ListWorkspaces enumerates the primary workspaces of one type on a
// stream. Shadow copies never appear in this listing: they are
// addressed only through their derived (workspace id, type, access)
// key.
func ListWorkspaces(stream model.Stream, typ model.WorkspaceType, stores context2.Stores,
	opts ...ListOption) (model.WorkspaceDescriptors, error) {
	settings := newSettings(opts...)
	if !typ.IsValid() {
		return nil, invalidArgument("invalid workspace type: %q", typ)
	}
	prefix := model.GetPointerPrefixToWorkspaces(stream, typ, model.PrimaryAccess)
	infos, err := stores.Provider().ListPointers(context.Background(), prefix)
	if err != nil {
		return nil, asCoreError("list workspaces on "+stream.Describe(), err)
	}
	workspaces := make(model.WorkspaceDescriptors, 0, len(infos))
	for _, info := range infos {
		if settings.interrupted() {
			return nil, status.ErrInterrupted
		}
		spec := model.WorkspaceSpec{
			WorkspaceID: strings.TrimPrefix(info.Name, prefix),
			Type:        typ,
			Access:      model.PrimaryAccess,
			Source:      stream,
		}
		descriptor, err := describeWorkspace(spec, stores)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, descriptor)
	}
	return workspaces, nil
}

// DeleteWorkspace removes a workspace and its shadow copies. Idempotent:
// deleting an absent workspace succeeds.
func DeleteWorkspace(spec model.WorkspaceSpec, stores context2.Stores) error {
	if err := spec.Validate(); err != nil {
		return invalidArgument("workspace spec: %v", err)
	}
	unlock := stores.LockKey(spec.Key())
	defer unlock()

	ctx := context.Background()
	for _, access := range []model.WorkspaceAccess{
		model.ConflictResolutionAccess,
		model.BackupAccess,
		model.PrimaryAccess,
	} {
		if err := stores.Provider().DeletePointer(ctx, spec.WithAccess(access).Pointer()); err != nil {
			return asCoreError("delete "+spec.WithAccess(access).Describe(), err)
		}
	}
	stores.Logger().Info("workspace deleted", zap.String("workspace", spec.WorkspaceID), lineField(spec.Pointer()))
	return nil
}

// CommitChanges seals a batch of entity changes as the new workspace
// head. The batch is validated before any mutation and applies
// all-or-nothing. A workspace held in conflict resolution refuses
// ordinary commits.
func CommitChanges(spec model.WorkspaceSpec, changes []model.EntityChange,
	author model.Contributor, message string, stores context2.Stores) (model.Revision, error) {
	if err := spec.Validate(); err != nil {
		return model.Revision{}, invalidArgument("workspace spec: %v", err)
	}
	if err := validateChanges(changes); err != nil {
		return model.Revision{}, err
	}

	unlock := stores.LockKey(spec.Key())
	defer unlock()

	if spec.Access == model.PrimaryAccess {
		inResolution, err := InConflictResolution(spec, stores)
		if err != nil {
			return model.Revision{}, err
		}
		if inResolution {
			return model.Revision{}, status.ErrConflict.WrapMessage(
				"%s is in conflict resolution: accept or discard the resolution first", spec.Describe())
		}
	}

	head, err := ResolveAlias(spec, model.HeadAlias(), stores)
	if err != nil {
		return model.Revision{}, err
	}
	rev, err := stores.Provider().Commit(context.Background(), spec.Pointer(), head.ID, changes, author, message)
	if err != nil {
		return model.Revision{}, asCoreError("commit to "+spec.Describe(), err)
	}
	stores.Logger().Info("changes committed",
		zap.String("workspace", spec.WorkspaceID), zap.Stringer("revision", rev.ID), zap.Int("changes", len(changes)))
	return rev, nil
}

func validateChanges(changes []model.EntityChange) error {
	if len(changes) == 0 {
		return invalidArgument("empty change batch")
	}
	var errs error
	for _, change := range changes {
		if err := change.Validate(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return status.ErrInvalidArgument.Wrap(errs)
	}
	return nil
}

// DiscardChanges resets a workspace onto the current stream head with
// an empty change set, dropping any pending conflict resolution.
func DiscardChanges(spec model.WorkspaceSpec, stores context2.Stores) (model.WorkspaceDescriptor, error) {
	if err := spec.Validate(); err != nil {
		return model.WorkspaceDescriptor{}, invalidArgument("workspace spec: %v", err)
	}
	unlock := stores.LockKey(spec.Key())
	defer unlock()

	ctx := context.Background()
	if _, err := stores.Provider().Pointer(ctx, spec.Pointer()); err != nil {
		return model.WorkspaceDescriptor{}, asCoreError("retrieve "+spec.Describe(), err)
	}
	head, err := ResolveAlias(spec.Source, model.HeadAlias(), stores)
	if err != nil {
		return model.WorkspaceDescriptor{}, err
	}
	for _, access := range []model.WorkspaceAccess{
		model.ConflictResolutionAccess,
		model.BackupAccess,
		model.PrimaryAccess,
	} {
		if err := stores.Provider().DeletePointer(ctx, spec.WithAccess(access).Pointer()); err != nil {
			return model.WorkspaceDescriptor{}, asCoreError("reset "+spec.Describe(), err)
		}
	}
	if err := stores.Provider().CreatePointer(ctx, spec.Pointer(), head.ID, ""); err != nil {
		return model.WorkspaceDescriptor{}, asCoreError("reset "+spec.Describe(), err)
	}
	stores.Logger().Info("workspace reset", zap.String("workspace", spec.WorkspaceID), zap.Stringer("base", head.ID))
	return describeWorkspace(spec, stores)
}
