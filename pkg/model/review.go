package model

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
)

// ReviewState models the lifecycle of a merge proposal
type ReviewState string

const (
	// ReviewOpen accepts approvals and tracks the workspace head
	ReviewOpen ReviewState = "open"

	// ReviewCommitted indicates the proposal was merged into its source stream. Terminal.
	ReviewCommitted ReviewState = "committed"

	// ReviewClosed indicates the proposal was abandoned. Terminal.
	ReviewClosed ReviewState = "closed"
)

// IsValid checks the value of a review state
func (s ReviewState) IsValid() bool {
	switch s {
	case ReviewOpen, ReviewCommitted, ReviewClosed:
		return true
	default:
		return false
	}
}

func (s ReviewState) String() string {
	return string(s)
}

// ReviewDescriptor models a proposal to merge a workspace's head into
// its source stream.
type ReviewDescriptor struct {
	ID        string        `json:"id" yaml:"id"`
	Title     string        `json:"title,omitempty" yaml:"title,omitempty"`
	Workspace WorkspaceSpec `json:"workspace" yaml:"workspace"`
	State     ReviewState   `json:"state" yaml:"state"`
	Author    Contributor   `json:"author" yaml:"author"`
	Approvals []string      `json:"approvals,omitempty" yaml:"approvals,omitempty"`
	CreatedAt time.Time     `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	_         struct{}
}

// NewReviewID generates a random review id
func NewReviewID() string {
	id, err := ksuid.NewRandom()
	if err != nil {
		panic(fmt.Sprintf("cannot generate random ksuid: %v", err))
	}
	return id.String()
}

// ReviewDescriptors is a sortable slice of ReviewDescriptor, in
// creation order
type ReviewDescriptors []ReviewDescriptor

func (r ReviewDescriptors) Swap(i, j int) {
	r[i], r[j] = r[j], r[i]
}
func (r ReviewDescriptors) Len() int {
	return len(r)
}
func (r ReviewDescriptors) Less(i, j int) bool {
	if !r[i].CreatedAt.Equal(r[j].CreatedAt) {
		return r[i].CreatedAt.Before(r[j].CreatedAt)
	}
	return r[i].ID < r[j].ID
}
