package core

import (
	"context"
	"strings"

	context2 "github.com/metaforge/modelvc/pkg/context"
	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/errors"
	"github.com/metaforge/modelvc/pkg/model"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// NewPatch opens a patch release line rooted at a released version.
//
// The line starts at the revision the source version sealed: its BASE
// and HEAD both point there until changes are committed through a
// workspace on the patch. At most one patch line exists per source
// version, a second creation fails with Conflict.
func NewPatch(projectID string, sourceVersion model.VersionID, stores context2.Stores) (model.PatchDescriptor, error) {
	if err := ProjectExists(projectID, stores); err != nil {
		return model.PatchDescriptor{}, err
	}
	source, err := findVersion(projectID, sourceVersion, stores)
	if err != nil {
		return model.PatchDescriptor{}, err
	}

	stream := model.PatchLine(projectID, sourceVersion)
	descriptor := model.PatchDescriptor{
		ProjectID:      projectID,
		SourceVersion:  sourceVersion,
		BaseRevisionID: source.RevisionID,
		HeadRevisionID: source.RevisionID,
		CreatedAt:      nowUTC(),
	}
	annotation, err := yaml.Marshal(descriptor)
	if err != nil {
		return model.PatchDescriptor{}, errors.New("marshal patch descriptor").Wrap(err)
	}
	if err := stores.Provider().CreatePointer(context.Background(), stream.Pointer(), source.RevisionID, string(annotation)); err != nil {
		return model.PatchDescriptor{}, asCoreError("create "+stream.Describe(), err)
	}
	stores.Logger().Info("patch created",
		projectField(projectID), zap.Stringer("sourceVersion", sourceVersion), zap.Stringer("revision", source.RevisionID))
	return descriptor, nil
}

// findVersion locates a released version of a project, looking at the
// main scope first and then at every patch scope
func findVersion(projectID string, id model.VersionID, stores context2.Stores) (model.VersionDescriptor, error) {
	descriptor, err := GetVersion(model.MainLine(projectID), id, stores)
	if err == nil {
		return descriptor, nil
	}
	if !errors.Is(err, status.ErrNotFound) {
		return model.VersionDescriptor{}, err
	}
	patches, err := ListPatches(projectID, model.VersionBounds{}, stores)
	if err != nil {
		return model.VersionDescriptor{}, err
	}
	for _, patch := range patches {
		descriptor, err := GetVersion(patch.Stream(), id, stores)
		if err == nil {
			return descriptor, nil
		}
		if !errors.Is(err, status.ErrNotFound) {
			return model.VersionDescriptor{}, err
		}
	}
	return model.VersionDescriptor{}, status.ErrNotFound.WrapMessage("no version %s released on project %s", id, projectID)
}

// GetPatch retrieves a patch line descriptor with its current head and
// release state
func GetPatch(projectID string, sourceVersion model.VersionID, stores context2.Stores) (model.PatchDescriptor, error) {
	stream := model.PatchLine(projectID, sourceVersion)
	info, err := stores.Provider().Pointer(context.Background(), stream.Pointer())
	if err != nil {
		return model.PatchDescriptor{}, asCoreError("retrieve "+stream.Describe(), err)
	}
	return describePatch(stream, info.Annotation, info.RevisionID, stores)
}

// describePatch combines the static annotation of a patch head with its
// derived state: the head revision tracks the pointer and the release
// state tracks the versions of the patch scope.
func describePatch(stream model.Stream, annotation string, head model.RevisionID,
	stores context2.Stores) (model.PatchDescriptor, error) {
	var descriptor model.PatchDescriptor
	if annotation != "" {
		if err := yaml.Unmarshal([]byte(annotation), &descriptor); err != nil {
			return model.PatchDescriptor{}, errors.New("unmarshal patch descriptor").Wrap(err)
		}
	}
	descriptor.ProjectID = stream.ProjectID
	descriptor.SourceVersion = stream.PatchVersion
	descriptor.HeadRevisionID = head

	released, err := GetLatestVersion(stream, stores)
	switch {
	case err == nil:
		descriptor.Released = true
		id := released.ID
		descriptor.ReleasedVersion = &id
	case errors.Is(err, status.ErrNotFound):
		descriptor.Released = false
		descriptor.ReleasedVersion = nil
	default:
		return model.PatchDescriptor{}, err
	}
	return descriptor, nil
}

// patchReleased tells whether a patch line already sealed its release
func patchReleased(stream model.Stream, stores context2.Stores) (bool, error) {
	descriptor, err := GetPatch(stream.ProjectID, stream.PatchVersion, stores)
	if err != nil {
		return false, err
	}
	return descriptor.Released, nil
}

// ListPatches enumerates the patch lines of a project whose source
// version falls within inclusive bounds, ordered by source version
func ListPatches(projectID string, bounds model.VersionBounds, stores context2.Stores,
	opts ...ListOption) (model.PatchDescriptors, error) {
	patches := make(model.PatchDescriptors, 0)
	err := ListPatchesApply(projectID, bounds, stores, func(descriptor model.PatchDescriptor) error {
		patches = append(patches, descriptor)
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return patches, nil
}

// ListPatchesApply runs a function on every patch line of a project
// within inclusive bounds
func ListPatchesApply(projectID string, bounds model.VersionBounds, stores context2.Stores,
	apply func(model.PatchDescriptor) error, opts ...ListOption) error {
	settings := newSettings(opts...)
	if err := bounds.Validate(); err != nil {
		return invalidArgument("version bounds: %v", err)
	}
	prefix := model.GetPointerPrefixToPatches(projectID)
	infos, err := stores.Provider().ListPointers(context.Background(), prefix)
	if err != nil {
		return asCoreError("list patches of project "+projectID, err)
	}
	for _, info := range infos {
		if settings.interrupted() {
			return status.ErrInterrupted
		}
		sourceVersion, err := model.ParseVersionID(strings.TrimPrefix(info.Name, prefix))
		if err != nil {
			continue
		}
		if !bounds.Contains(sourceVersion) {
			continue
		}
		descriptor, err := describePatch(model.PatchLine(projectID, sourceVersion), info.Annotation, info.RevisionID, stores)
		if err != nil {
			return err
		}
		if err := apply(descriptor); err != nil {
			return err
		}
	}
	return nil
}

// DeletePatch removes a patch line and its scoped pointers. The
// deletion is refused with Conflict while workspaces or open reviews
// still ride on the patch.
func DeletePatch(projectID string, sourceVersion model.VersionID, stores context2.Stores) error {
	stream := model.PatchLine(projectID, sourceVersion)
	ctx := context.Background()
	provider := stores.Provider()

	if _, err := provider.Pointer(ctx, stream.Pointer()); err != nil {
		return asCoreError("retrieve "+stream.Describe(), err)
	}
	workspaces, err := provider.ListPointers(ctx, model.GetPointerPrefixToAllWorkspaces(stream))
	if err != nil {
		return asCoreError("list workspaces on "+stream.Describe(), err)
	}
	if len(workspaces) > 0 {
		return status.ErrConflict.WrapMessage(
			"%s still carries %d workspace(s): delete them first", stream.Describe(), len(workspaces))
	}
	reviews, err := ListReviews(stream, stores)
	if err != nil {
		return err
	}
	for _, review := range reviews {
		if review.State == model.ReviewOpen {
			return status.ErrConflict.WrapMessage(
				"%s still carries open review %s: close it first", stream.Describe(), review.ID)
		}
	}

	scoped, err := provider.ListPointers(ctx, model.GetPointerPrefixToVersions(stream))
	if err != nil {
		return asCoreError("list versions on "+stream.Describe(), err)
	}
	reviewPointers, err := provider.ListPointers(ctx, model.GetPointerPrefixToReviews(stream))
	if err != nil {
		return asCoreError("list reviews on "+stream.Describe(), err)
	}
	scoped = append(scoped, reviewPointers...)
	for _, info := range scoped {
		if err := provider.DeletePointer(ctx, info.Name); err != nil {
			return asCoreError("delete "+stream.Describe(), err)
		}
	}
	if err := provider.DeletePointer(ctx, stream.Pointer()); err != nil {
		return asCoreError("delete "+stream.Describe(), err)
	}
	stores.Logger().Info("patch deleted", projectField(projectID), zap.Stringer("sourceVersion", sourceVersion))
	return nil
}

// ReleasePatch seals the current head of a patch line as the next
// patch version of its source, e.g. releasing the patch of 1.2.3
// yields 1.2.4. A released patch refuses further releases and new
// workspaces.
func ReleasePatch(projectID string, sourceVersion model.VersionID, notes string,
	stores context2.Stores) (model.VersionDescriptor, error) {
	stream := model.PatchLine(projectID, sourceVersion)
	released, err := patchReleased(stream, stores)
	if err != nil {
		return model.VersionDescriptor{}, err
	}
	if released {
		return model.VersionDescriptor{}, status.ErrConflict.WrapMessage("%s is already released", stream.Describe())
	}
	descriptor, err := NewVersion(stream, model.IncrementPatch, model.HeadAlias(), notes, stores)
	if err != nil {
		return model.VersionDescriptor{}, err
	}
	stores.Logger().Info("patch released",
		projectField(projectID), zap.Stringer("sourceVersion", sourceVersion), zap.Stringer("version", descriptor.ID))
	return descriptor, nil
}
