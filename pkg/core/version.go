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

// NewVersion seals a revision of a stream under the next version id.
//
// The id is computed from the latest version of the stream's scope and
// the requested increment. On the main line the numbering starts from
// 0.0.0, on a patch line it starts from the patch's source version, so
// the first release of a patch of 1.2.3 is 1.2.4. Versions are write
// once: two racing releases compute the same id and the provider's
// compare-and-swap pointer creation lets exactly one through, the
// other fails with Conflict.
func NewVersion(stream model.Stream, increment model.VersionIncrement, alias model.RevisionAlias,
	notes string, stores context2.Stores) (model.VersionDescriptor, error) {
	if err := stream.Validate(); err != nil {
		return model.VersionDescriptor{}, invalidArgument("stream: %v", err)
	}
	if !increment.IsValid() {
		return model.VersionDescriptor{}, invalidArgument("invalid version increment: %q", increment)
	}
	if stream.IsPatch() && increment != model.IncrementPatch {
		return model.VersionDescriptor{}, invalidArgument("a patch line only releases patch increments, not %q", increment)
	}
	rev, err := ResolveAlias(stream, alias, stores)
	if err != nil {
		return model.VersionDescriptor{}, err
	}

	latest, err := latestVersionID(stream, stores)
	if err != nil {
		return model.VersionDescriptor{}, err
	}
	descriptor := model.VersionDescriptor{
		ID:         increment.Apply(latest),
		ProjectID:  stream.ProjectID,
		RevisionID: rev.ID,
		Notes:      notes,
		Timestamp:  nowUTC(),
	}
	annotation, err := yaml.Marshal(descriptor)
	if err != nil {
		return model.VersionDescriptor{}, errors.New("marshal version descriptor").Wrap(err)
	}
	pointer := model.GetPointerToVersion(stream, descriptor.ID)
	if err := stores.Provider().CreatePointer(context.Background(), pointer, rev.ID, string(annotation)); err != nil {
		return model.VersionDescriptor{}, asCoreError("release version "+descriptor.ID.String()+" on "+stream.Describe(), err)
	}
	stores.Logger().Info("version released",
		projectField(stream.ProjectID), zap.Stringer("version", descriptor.ID), zap.Stringer("revision", rev.ID))
	return descriptor, nil
}

// latestVersionID yields the numbering base for the next release on a
// stream: the greatest version of the scope when one exists, the
// patch's source version on a virgin patch line, 0.0.0 on a virgin
// main line.
func latestVersionID(stream model.Stream, stores context2.Stores) (model.VersionID, error) {
	versions, err := ListVersions(stream, model.VersionBounds{}, stores)
	if err != nil {
		return model.VersionID{}, err
	}
	if len(versions) > 0 {
		return versions.Last().ID, nil
	}
	if stream.IsPatch() {
		return stream.PatchVersion, nil
	}
	return model.VersionID{}, nil
}

// GetVersion retrieves a released version of a stream
func GetVersion(stream model.Stream, id model.VersionID, stores context2.Stores) (model.VersionDescriptor, error) {
	if err := stream.Validate(); err != nil {
		return model.VersionDescriptor{}, invalidArgument("stream: %v", err)
	}
	info, err := stores.Provider().Pointer(context.Background(), model.GetPointerToVersion(stream, id))
	if err != nil {
		return model.VersionDescriptor{}, asCoreError("retrieve version "+id.String()+" on "+stream.Describe(), err)
	}
	return versionFromAnnotation(stream, id, info.Annotation, info.RevisionID)
}

func versionFromAnnotation(stream model.Stream, id model.VersionID, annotation string,
	rev model.RevisionID) (model.VersionDescriptor, error) {
	var descriptor model.VersionDescriptor
	if annotation != "" {
		if err := yaml.Unmarshal([]byte(annotation), &descriptor); err != nil {
			return model.VersionDescriptor{}, errors.New("unmarshal version descriptor").Wrap(err)
		}
	}
	descriptor.ID = id
	descriptor.ProjectID = stream.ProjectID
	if descriptor.RevisionID == "" {
		descriptor.RevisionID = rev
	}
	return descriptor, nil
}

// ListVersions enumerates the versions released on a stream's scope
// within inclusive bounds, in ascending version order
func ListVersions(stream model.Stream, bounds model.VersionBounds, stores context2.Stores,
	opts ...ListOption) (model.VersionDescriptors, error) {
	versions := make(model.VersionDescriptors, 0)
	err := ListVersionsApply(stream, bounds, stores, func(descriptor model.VersionDescriptor) error {
		versions = append(versions, descriptor)
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return versions.Sorted(), nil
}

// ListVersionsApply runs a function on every version of a stream's
// scope within inclusive bounds
func ListVersionsApply(stream model.Stream, bounds model.VersionBounds, stores context2.Stores,
	apply func(model.VersionDescriptor) error, opts ...ListOption) error {
	settings := newSettings(opts...)
	if err := stream.Validate(); err != nil {
		return invalidArgument("stream: %v", err)
	}
	if err := bounds.Validate(); err != nil {
		return invalidArgument("version bounds: %v", err)
	}
	prefix := model.GetPointerPrefixToVersions(stream)
	infos, err := stores.Provider().ListPointers(context.Background(), prefix)
	if err != nil {
		return asCoreError("list versions on "+stream.Describe(), err)
	}
	for _, info := range infos {
		if settings.interrupted() {
			return status.ErrInterrupted
		}
		id, err := model.ParseVersionID(strings.TrimPrefix(info.Name, prefix))
		if err != nil {
			continue
		}
		if !bounds.Contains(id) {
			continue
		}
		descriptor, err := versionFromAnnotation(stream, id, info.Annotation, info.RevisionID)
		if err != nil {
			return err
		}
		if err := apply(descriptor); err != nil {
			return err
		}
	}
	return nil
}

// GetLatestVersion retrieves the greatest version released on a
// stream's scope
func GetLatestVersion(stream model.Stream, stores context2.Stores) (model.VersionDescriptor, error) {
	versions, err := ListVersions(stream, model.VersionBounds{}, stores)
	if err != nil {
		return model.VersionDescriptor{}, err
	}
	if len(versions) == 0 {
		return model.VersionDescriptor{}, status.ErrNotFound.WrapMessage("no version released on %s", stream.Describe())
	}
	return versions.Last(), nil
}
