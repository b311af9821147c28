package model

import (
	"fmt"
)

// Line is anything owning a revision history addressable through a
// named storage pointer: a development stream or a workspace.
type Line interface {
	// Pointer yields the storage pointer name backing this line
	Pointer() string

	// Describe renders the line for error messages and logs
	Describe() string
}

// StreamKind discriminates the closed set of development stream kinds
type StreamKind string

const (
	// MainStream is the main development line of a project
	MainStream StreamKind = "main"

	// PatchStream is an independent release line rooted at a historical version
	PatchStream StreamKind = "patch"
)

// IsValid checks the value of a stream kind
func (k StreamKind) IsValid() bool {
	switch k {
	case MainStream, PatchStream:
		return true
	default:
		return false
	}
}

func (k StreamKind) String() string {
	return string(k)
}

// Stream is a development line of a project: either the main line, or a
// patch line rooted at a historical version.
//
// Stream is a closed tagged union: switch on Kind and handle both
// cases, there are no other stream kinds.
type Stream struct {
	Kind         StreamKind `json:"kind" yaml:"kind"`
	ProjectID    string     `json:"projectID" yaml:"projectID"`
	PatchVersion VersionID  `json:"patchVersion,omitempty" yaml:"patchVersion,omitempty"`
	_            struct{}
}

// MainLine is the main development stream of a project
func MainLine(projectID string) Stream {
	return Stream{Kind: MainStream, ProjectID: projectID}
}

// PatchLine is the patch development stream rooted at a version
func PatchLine(projectID string, version VersionID) Stream {
	return Stream{Kind: PatchStream, ProjectID: projectID, PatchVersion: version}
}

// IsPatch tells whether this stream is a patch line
func (s Stream) IsPatch() bool {
	return s.Kind == PatchStream
}

// Validate the structural rules on a stream
func (s Stream) Validate() error {
	if s.ProjectID == "" {
		return fmt.Errorf("empty field: stream project id is empty")
	}
	if !s.Kind.IsValid() {
		return fmt.Errorf("invalid stream kind: %q", s.Kind)
	}
	return nil
}

// Scope yields the path fragment under which the stream's workspaces,
// versions and reviews are laid out.
//
// Examples:
//   main
//   patches/1.0.2
func (s Stream) Scope() string {
	switch s.Kind {
	case PatchStream:
		return fmt.Sprint("patches/", s.PatchVersion.String())
	default:
		return "main"
	}
}

// Pointer yields the storage pointer name holding the stream head.
//
// Examples:
//   projects/{project}/heads/main
//   projects/{project}/heads/patches/1.0.2
func (s Stream) Pointer() string {
	return fmt.Sprint(getPointerPrefixToProject(s.ProjectID), "heads/", s.Scope())
}

// Describe renders the stream for error messages and logs
func (s Stream) Describe() string {
	switch s.Kind {
	case PatchStream:
		return fmt.Sprintf("patch %s of project %s", s.PatchVersion, s.ProjectID)
	default:
		return fmt.Sprintf("main line of project %s", s.ProjectID)
	}
}

func getPointerPrefixToProject(projectID string) string {
	return fmt.Sprint("projects/", projectID, "/")
}

// GetPointerPrefixToProjects yields the pointer prefix enumerating projects
func GetPointerPrefixToProjects() string {
	return "projects/"
}

// GetPointerPrefixToPatches yields the pointer prefix enumerating the
// patch heads of a project
func GetPointerPrefixToPatches(projectID string) string {
	return fmt.Sprint(getPointerPrefixToProject(projectID), "heads/patches/")
}

// GetPointerPrefixToVersions yields the pointer prefix enumerating the
// versions released from a stream
func GetPointerPrefixToVersions(s Stream) string {
	return fmt.Sprint(getPointerPrefixToProject(s.ProjectID), s.Scope(), "/versions/")
}

// GetPointerToVersion yields the write-once pointer name of a version
func GetPointerToVersion(s Stream, id VersionID) string {
	return fmt.Sprint(GetPointerPrefixToVersions(s), id.String())
}

// GetPointerPrefixToReviews yields the pointer prefix enumerating the
// reviews opened against a stream
func GetPointerPrefixToReviews(s Stream) string {
	return fmt.Sprint(getPointerPrefixToProject(s.ProjectID), s.Scope(), "/reviews/")
}

// GetPointerToReview yields the pointer name of a review
func GetPointerToReview(s Stream, reviewID string) string {
	return fmt.Sprint(GetPointerPrefixToReviews(s), reviewID)
}
