package model

import (
	"fmt"
	"time"
)

// WorkspaceType discriminates user workspaces from group workspaces
type WorkspaceType string

const (
	// UserWorkspace is a staging area private to one user
	UserWorkspace WorkspaceType = "user"

	// GroupWorkspace is a staging area shared by a group
	GroupWorkspace WorkspaceType = "group"
)

// IsValid checks the value of a workspace type
func (t WorkspaceType) IsValid() bool {
	switch t {
	case UserWorkspace, GroupWorkspace:
		return true
	default:
		return false
	}
}

func (t WorkspaceType) String() string {
	return string(t)
}

// WorkspaceAccess selects the primary workspace or one of its shadow copies
type WorkspaceAccess string

const (
	// PrimaryAccess addresses the primary staging area
	PrimaryAccess WorkspaceAccess = "workspace"

	// BackupAccess addresses the backup shadow taken before a conflicting update
	BackupAccess WorkspaceAccess = "backup"

	// ConflictResolutionAccess addresses the shadow carrying an in-flight resolution
	ConflictResolutionAccess WorkspaceAccess = "conflict-resolution"
)

// IsValid checks the value of a workspace access type
func (a WorkspaceAccess) IsValid() bool {
	switch a {
	case PrimaryAccess, BackupAccess, ConflictResolutionAccess:
		return true
	default:
		return false
	}
}

func (a WorkspaceAccess) String() string {
	return string(a)
}

// WorkspaceState models the lifecycle state of a workspace
type WorkspaceState string

const (
	// WorkspaceActive is the normal state: changes may be committed and updates applied
	WorkspaceActive WorkspaceState = "active"

	// WorkspaceInConflictResolution blocks ordinary updates until the
	// resolution is accepted or discarded
	WorkspaceInConflictResolution WorkspaceState = "in-conflict-resolution"

	// WorkspaceBackedUp is the state of a backup shadow copy
	WorkspaceBackedUp WorkspaceState = "backed-up"

	// WorkspaceDeleted is the terminal state
	WorkspaceDeleted WorkspaceState = "deleted"
)

// IsValid checks the value of a workspace state
func (s WorkspaceState) IsValid() bool {
	switch s {
	case WorkspaceActive, WorkspaceInConflictResolution, WorkspaceBackedUp, WorkspaceDeleted:
		return true
	default:
		return false
	}
}

func (s WorkspaceState) String() string {
	return string(s)
}

// WorkspaceSpec addresses one workspace along its three axes: workspace
// id, type (user/group) and access (primary or shadow copy), within a
// source development stream.
//
// One value type covers the whole cross product, there is one
// parameterized operation set rather than one implementation per
// combination.
type WorkspaceSpec struct {
	WorkspaceID string          `json:"workspaceID" yaml:"workspaceID"`
	Type        WorkspaceType   `json:"type" yaml:"type"`
	Access      WorkspaceAccess `json:"access" yaml:"access"`
	Source      Stream          `json:"source" yaml:"source"`
	_           struct{}
}

// Validate the structural rules on a workspace spec
func (w WorkspaceSpec) Validate() error {
	if w.WorkspaceID == "" {
		return fmt.Errorf("empty field: workspace id is empty")
	}
	if !IsValidPathSegment(w.WorkspaceID) {
		return fmt.Errorf("invalid workspace id: %q", w.WorkspaceID)
	}
	if !w.Type.IsValid() {
		return fmt.Errorf("invalid workspace type: %q", w.Type)
	}
	if !w.Access.IsValid() {
		return fmt.Errorf("invalid workspace access: %q", w.Access)
	}
	return w.Source.Validate()
}

// WithAccess derives the spec addressing a shadow copy of the same workspace
func (w WorkspaceSpec) WithAccess(access WorkspaceAccess) WorkspaceSpec {
	w.Access = access
	return w
}

// Key identifies the serialization domain of the workspace: operations
// on distinct keys are independent, operations on the same key are
// serialized. All access types of one workspace share one key.
func (w WorkspaceSpec) Key() string {
	return fmt.Sprint(w.Source.ProjectID, "/", w.Source.Scope(), "/", w.Type, "/", w.WorkspaceID)
}

// Pointer yields the storage pointer name backing this workspace line.
//
// Examples:
//   projects/{project}/main/workspaces/user/workspace/{id}
//   projects/{project}/patches/1.0.2/workspaces/group/backup/{id}
func (w WorkspaceSpec) Pointer() string {
	return fmt.Sprint(GetPointerPrefixToWorkspaces(w.Source, w.Type, w.Access), w.WorkspaceID)
}

// Describe renders the workspace for error messages and logs
func (w WorkspaceSpec) Describe() string {
	return fmt.Sprintf("%s workspace %s (%s) on %s", w.Type, w.WorkspaceID, w.Access, w.Source.Describe())
}

// GetPointerPrefixToWorkspaces yields the pointer prefix enumerating
// workspaces of one type and access on a stream.
//
// Shadow copies live under their own access segment and never show up
// when enumerating primary workspaces.
func GetPointerPrefixToWorkspaces(s Stream, typ WorkspaceType, access WorkspaceAccess) string {
	return fmt.Sprint(getPointerPrefixToProject(s.ProjectID), s.Scope(), "/workspaces/", typ, "/", access, "/")
}

// GetPointerPrefixToAllWorkspaces yields the pointer prefix covering
// every workspace of a stream, all types and access kinds included
func GetPointerPrefixToAllWorkspaces(s Stream) string {
	return fmt.Sprint(getPointerPrefixToProject(s.ProjectID), s.Scope(), "/workspaces/")
}

// WorkspaceDescriptor models the observable state of a workspace
type WorkspaceDescriptor struct {
	Spec           WorkspaceSpec  `json:"spec" yaml:"spec"`
	State          WorkspaceState `json:"state" yaml:"state"`
	BaseRevisionID RevisionID     `json:"baseRevisionID" yaml:"baseRevisionID"`
	HeadRevisionID RevisionID     `json:"headRevisionID" yaml:"headRevisionID"`
	CreatedAt      time.Time      `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	_              struct{}
}

// WorkspaceDescriptors is a sortable slice of WorkspaceDescriptor
type WorkspaceDescriptors []WorkspaceDescriptor

func (w WorkspaceDescriptors) Swap(i, j int) {
	w[i], w[j] = w[j], w[i]
}
func (w WorkspaceDescriptors) Len() int {
	return len(w)
}
func (w WorkspaceDescriptors) Less(i, j int) bool {
	return w[i].Spec.WorkspaceID < w[j].Spec.WorkspaceID
}
