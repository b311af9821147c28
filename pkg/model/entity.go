package model

import (
	"fmt"
	"reflect"
	"sort"
)

// ProjectConfigurationClassifier is the classifier path carried by the
// entity holding a project's structural configuration.
const ProjectConfigurationClassifier = MetaPrefix + "project" + PathSeparator + "configuration"

// Entity is a named, classified model artifact.
//
// The content document is opaque to modelvc: it is stored, compared and
// moved around whole, never interpreted.
type Entity struct {
	Path           string                 `json:"path" yaml:"path"`
	ClassifierPath string                 `json:"classifierPath" yaml:"classifierPath"`
	Content        map[string]interface{} `json:"content" yaml:"content"`
	_              struct{}
}

// Validate the structural rules on an entity
func (e Entity) Validate() error {
	if !IsValidEntityPath(e.Path) {
		return fmt.Errorf("invalid entity path: %q", e.Path)
	}
	if !IsValidClassifierPath(e.ClassifierPath) {
		return fmt.Errorf("invalid classifier path: %q", e.ClassifierPath)
	}
	return nil
}

// IsProjectConfiguration tells whether this entity carries project configuration
func (e Entity) IsProjectConfiguration() bool {
	return e.ClassifierPath == ProjectConfigurationClassifier
}

// ContentEquals compares two entities by classifier and content
func (e Entity) ContentEquals(o Entity) bool {
	return e.ClassifierPath == o.ClassifierPath && reflect.DeepEqual(e.Content, o.Content)
}

// Entities is a sortable slice of Entity
type Entities []Entity

func (e Entities) Swap(i, j int) {
	e[i], e[j] = e[j], e[i]
}
func (e Entities) Len() int {
	return len(e)
}
func (e Entities) Less(i, j int) bool {
	return e[i].Path < e[j].Path
}

// Sorted returns the entities ordered by path
func (e Entities) Sorted() Entities {
	sort.Sort(e)
	return e
}

// ByPath indexes the entities by path
func (e Entities) ByPath() map[string]Entity {
	m := make(map[string]Entity, len(e))
	for _, entity := range e {
		m[entity.Path] = entity
	}
	return m
}

// ChangeKind qualifies a single entity change in a commit batch
type ChangeKind string

const (
	// ChangeCreate adds a new entity at a path
	ChangeCreate ChangeKind = "create"

	// ChangeDelete removes the entity at a path
	ChangeDelete ChangeKind = "delete"

	// ChangeModify replaces the content of the entity at a path
	ChangeModify ChangeKind = "modify"

	// ChangeRename moves an entity to a new path, content unchanged
	ChangeRename ChangeKind = "rename"
)

// IsValid checks the value of a change kind
func (k ChangeKind) IsValid() bool {
	switch k {
	case ChangeCreate, ChangeDelete, ChangeModify, ChangeRename:
		return true
	default:
		return false
	}
}

func (k ChangeKind) String() string {
	return string(k)
}

// EntityChange is one element of a commit batch. It is immutable once
// constructed: build changes with the New*Change constructors.
type EntityChange struct {
	Kind           ChangeKind             `json:"kind" yaml:"kind"`
	Path           string                 `json:"path" yaml:"path"`
	NewPath        string                 `json:"newPath,omitempty" yaml:"newPath,omitempty"`
	ClassifierPath string                 `json:"classifierPath,omitempty" yaml:"classifierPath,omitempty"`
	Content        map[string]interface{} `json:"content,omitempty" yaml:"content,omitempty"`
	_              struct{}
}

// NewCreateChange builds the change adding an entity
func NewCreateChange(path, classifierPath string, content map[string]interface{}) EntityChange {
	return EntityChange{Kind: ChangeCreate, Path: path, ClassifierPath: classifierPath, Content: content}
}

// NewDeleteChange builds the change removing the entity at path
func NewDeleteChange(path string) EntityChange {
	return EntityChange{Kind: ChangeDelete, Path: path}
}

// NewModifyChange builds the change replacing the entity at path
func NewModifyChange(path, classifierPath string, content map[string]interface{}) EntityChange {
	return EntityChange{Kind: ChangeModify, Path: path, ClassifierPath: classifierPath, Content: content}
}

// NewRenameChange builds the change moving an entity to newPath
func NewRenameChange(oldPath, newPath string) EntityChange {
	return EntityChange{Kind: ChangeRename, Path: oldPath, NewPath: newPath}
}

// Validate the structural rules on a change
func (c EntityChange) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("invalid change kind: %q", c.Kind)
	}
	if !IsValidEntityPath(c.Path) {
		return fmt.Errorf("invalid entity path: %q", c.Path)
	}
	switch c.Kind {
	case ChangeCreate, ChangeModify:
		if !IsValidClassifierPath(c.ClassifierPath) {
			return fmt.Errorf("invalid classifier path: %q", c.ClassifierPath)
		}
	case ChangeRename:
		if !IsValidEntityPath(c.NewPath) {
			return fmt.Errorf("invalid entity path: %q", c.NewPath)
		}
	case ChangeDelete:
	}
	return nil
}

// TargetPath is the path at which the change takes effect
func (c EntityChange) TargetPath() string {
	if c.Kind == ChangeRename {
		return c.NewPath
	}
	return c.Path
}
