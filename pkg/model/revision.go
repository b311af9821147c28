package model

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
)

// RevisionID identifies an immutable committed snapshot within a line
type RevisionID string

func (r RevisionID) String() string {
	return string(r)
}

// NewRevisionID generates a time-ordered random revision id
func NewRevisionID() RevisionID {
	id, err := ksuid.NewRandom()
	if err != nil {
		panic(fmt.Sprintf("cannot generate random ksuid: %v", err))
	}
	return RevisionID(id.String())
}

// Contributor describes the author of a commit or release
type Contributor struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	_     struct{}
}

func (c *Contributor) String() string {
	if c.Email == "" {
		return c.Name
	}
	return fmt.Sprintf("%s <%s>", c.Name, c.Email)
}

// Revision is an immutable committed snapshot of an entity set.
//
// Revisions are totally ordered by commit time within one history line.
type Revision struct {
	ID            RevisionID `json:"id" yaml:"id"`
	AuthorName    string     `json:"authorName" yaml:"authorName"`
	AuthoredAt    time.Time  `json:"authoredAt" yaml:"authoredAt"`
	CommitterName string     `json:"committerName" yaml:"committerName"`
	CommittedAt   time.Time  `json:"committedAt" yaml:"committedAt"`
	Message       string     `json:"message" yaml:"message"`
	_             struct{}
}

// Revisions is a sortable slice of Revision, in chronological order
type Revisions []Revision

func (r Revisions) Swap(i, j int) {
	r[i], r[j] = r[j], r[i]
}
func (r Revisions) Len() int {
	return len(r)
}
func (r Revisions) Less(i, j int) bool {
	if !r[i].CommittedAt.Equal(r[j].CommittedAt) {
		return r[i].CommittedAt.Before(r[j].CommittedAt)
	}
	return r[i].ID < r[j].ID
}

// Last revision in slice
func (r Revisions) Last() Revision {
	return r[len(r)-1]
}

// AliasKind qualifies a symbolic revision reference
type AliasKind string

const (
	// AliasBase resolves to the revision captured at line creation time
	AliasBase AliasKind = "base"

	// AliasHead resolves to the latest committed revision of a line
	AliasHead AliasKind = "head"

	// AliasRevision resolves a literal revision id against a line
	AliasRevision AliasKind = "revision"
)

// RevisionAlias is a symbolic reference to a revision on some line
type RevisionAlias struct {
	Kind AliasKind
	ID   RevisionID
}

// BaseAlias references the base revision of a line
func BaseAlias() RevisionAlias {
	return RevisionAlias{Kind: AliasBase}
}

// HeadAlias references the latest committed revision of a line
func HeadAlias() RevisionAlias {
	return RevisionAlias{Kind: AliasHead}
}

// RevisionIDAlias references a literal revision id, validated lazily
func RevisionIDAlias(id RevisionID) RevisionAlias {
	return RevisionAlias{Kind: AliasRevision, ID: id}
}

// IsValid checks the value of a revision alias
func (a RevisionAlias) IsValid() bool {
	switch a.Kind {
	case AliasBase, AliasHead:
		return true
	case AliasRevision:
		return a.ID != ""
	default:
		return false
	}
}

func (a RevisionAlias) String() string {
	switch a.Kind {
	case AliasBase:
		return "BASE"
	case AliasHead:
		return "HEAD"
	default:
		return a.ID.String()
	}
}

// ParseRevisionAlias interprets a user-provided revision reference:
// "BASE", "HEAD", or a literal revision id.
func ParseRevisionAlias(s string) (RevisionAlias, error) {
	switch s {
	case "BASE":
		return BaseAlias(), nil
	case "HEAD":
		return HeadAlias(), nil
	case "":
		return RevisionAlias{}, fmt.Errorf("empty revision reference")
	default:
		return RevisionIDAlias(RevisionID(s)), nil
	}
}

// RevisionFilter bounds a revision listing.
//
// A nil time bound or predicate is unconstrained, a zero limit means no
// limit. Listings are served in reverse chronological order.
type RevisionFilter struct {
	Since     *time.Time
	Until     *time.Time
	Predicate func(Revision) bool
	Limit     int
}

// Matches applies the filter bounds to a single revision
func (f RevisionFilter) Matches(r Revision) bool {
	if f.Since != nil && r.CommittedAt.Before(*f.Since) {
		return false
	}
	if f.Until != nil && r.CommittedAt.After(*f.Until) {
		return false
	}
	if f.Predicate != nil && !f.Predicate(r) {
		return false
	}
	return true
}
