package core

import (
	"context"
	"strings"

	context2 "github.com/metaforge/modelvc/pkg/context"
	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/errors"
	"github.com/metaforge/modelvc/pkg/model"
	"gopkg.in/yaml.v2"
)

// CreateProject registers a project and roots its main development
// line at a fresh empty revision.
func CreateProject(descriptor model.ProjectDescriptor, stores context2.Stores) (model.ProjectDescriptor, error) {
	if err := descriptor.Validate(); err != nil {
		return model.ProjectDescriptor{}, invalidArgument("project descriptor: %v", err)
	}
	descriptor.CreatedAt = nowUTC()
	annotation, err := yaml.Marshal(descriptor)
	if err != nil {
		return model.ProjectDescriptor{}, errors.New("marshal project descriptor").Wrap(err)
	}
	main := model.MainLine(descriptor.ID)
	if err := stores.Provider().CreatePointer(context.Background(), main.Pointer(), "", string(annotation)); err != nil {
		return model.ProjectDescriptor{}, asCoreError("create project "+descriptor.ID, err)
	}
	stores.Logger().Info("project created", projectField(descriptor.ID))
	return descriptor, nil
}

// GetProject retrieves a project descriptor
func GetProject(projectID string, stores context2.Stores) (model.ProjectDescriptor, error) {
	main := model.MainLine(projectID)
	info, err := stores.Provider().Pointer(context.Background(), main.Pointer())
	if err != nil {
		return model.ProjectDescriptor{}, asCoreError("retrieve project "+projectID, err)
	}
	return projectFromAnnotation(projectID, info.Annotation)
}

func projectFromAnnotation(projectID, annotation string) (model.ProjectDescriptor, error) {
	var descriptor model.ProjectDescriptor
	if annotation != "" {
		if err := yaml.Unmarshal([]byte(annotation), &descriptor); err != nil {
			return model.ProjectDescriptor{}, errors.New("unmarshal project descriptor").Wrap(err)
		}
	}
	if descriptor.ID == "" {
		descriptor.ID = projectID
	}
	return descriptor, nil
}

// ProjectExists checks that a project is known to the store
func ProjectExists(projectID string, stores context2.Stores) error {
	if _, err := GetProject(projectID, stores); err != nil {
		if errors.Is(err, status.ErrNotFound) {
			return status.ErrNotFound.WrapMessage("project %s doesn't exist", projectID)
		}
		return err
	}
	return nil
}

// ListProjects enumerates the registered projects, ordered by id
func ListProjects(stores context2.Stores, opts ...ListOption) (model.ProjectDescriptors, error) {
	projects := make(model.ProjectDescriptors, 0)
	err := ListProjectsApply(stores, func(descriptor model.ProjectDescriptor) error {
		projects = append(projects, descriptor)
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// ListProjectsApply runs a function on every registered project
func ListProjectsApply(stores context2.Stores, apply func(model.ProjectDescriptor) error, opts ...ListOption) error {
	settings := newSettings(opts...)
	infos, err := stores.Provider().ListPointers(context.Background(), model.GetPointerPrefixToProjects())
	if err != nil {
		return asCoreError("list projects", err)
	}
	for _, info := range infos {
		if settings.interrupted() {
			return status.ErrInterrupted
		}
		projectID, ok := projectIDFromPointer(info.Name)
		if !ok {
			continue
		}
		descriptor, err := projectFromAnnotation(projectID, info.Annotation)
		if err != nil {
			return err
		}
		if err := apply(descriptor); err != nil {
			return err
		}
	}
	return nil
}

// projectIDFromPointer recognizes main line head pointers among all
// project-scoped pointers: projects/{id}/heads/main
func projectIDFromPointer(name string) (string, bool) {
	trimmed := strings.TrimPrefix(name, model.GetPointerPrefixToProjects())
	parts := strings.Split(trimmed, "/")
	if len(parts) == 3 && parts[1] == "heads" && parts[2] == "main" {
		return parts[0], true
	}
	return "", false
}
