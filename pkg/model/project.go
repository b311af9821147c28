package model

import (
	"fmt"
	"time"
)

// ProjectDescriptor models the metadata of a project
type ProjectDescriptor struct {
	ID          string      `json:"id" yaml:"id"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Contributor Contributor `json:"contributor,omitempty" yaml:"contributor,omitempty"`
	CreatedAt   time.Time   `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	_           struct{}
}

// Validate the structural rules on a project descriptor
func (p ProjectDescriptor) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("empty field: project id is empty")
	}
	if !IsValidPathSegment(p.ID) {
		return fmt.Errorf("invalid project id: %q contains unsupported characters", p.ID)
	}
	return nil
}

// ProjectDescriptors is a sortable slice of ProjectDescriptor, ordered by id
type ProjectDescriptors []ProjectDescriptor

func (p ProjectDescriptors) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}
func (p ProjectDescriptors) Len() int {
	return len(p)
}
func (p ProjectDescriptors) Less(i, j int) bool {
	return p[i].ID < p[j].ID
}
