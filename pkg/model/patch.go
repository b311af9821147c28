package model

import (
	"time"
)

// PatchDescriptor models the metadata of a patch release line
type PatchDescriptor struct {
	ProjectID       string     `json:"projectID" yaml:"projectID"`
	SourceVersion   VersionID  `json:"sourceVersion" yaml:"sourceVersion"`
	BaseRevisionID  RevisionID `json:"baseRevisionID" yaml:"baseRevisionID"`
	HeadRevisionID  RevisionID `json:"headRevisionID" yaml:"headRevisionID"`
	CreatedAt       time.Time  `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Released        bool       `json:"released,omitempty" yaml:"released,omitempty"`
	ReleasedVersion *VersionID `json:"releasedVersion,omitempty" yaml:"releasedVersion,omitempty"`
	_               struct{}
}

// Stream yields the development stream of this patch
func (p PatchDescriptor) Stream() Stream {
	return PatchLine(p.ProjectID, p.SourceVersion)
}

// PatchDescriptors is a sortable slice of PatchDescriptor, ordered by
// source version
type PatchDescriptors []PatchDescriptor

func (p PatchDescriptors) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}
func (p PatchDescriptors) Len() int {
	return len(p)
}
func (p PatchDescriptors) Less(i, j int) bool {
	return p[i].SourceVersion.Before(p[j].SourceVersion)
}
