package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultVersionSeparator separates the components of a rendered version id
const DefaultVersionSeparator = "."

// VersionID identifies a release as a (major, minor, patch) triple.
//
// Version ids are totally ordered, lexicographically on
// (major, minor, patch).
type VersionID struct {
	Major uint64 `json:"major" yaml:"major"`
	Minor uint64 `json:"minor" yaml:"minor"`
	Patch uint64 `json:"patch" yaml:"patch"`
	_     struct{}
}

// Compare returns -1, 0 or 1 when v orders before, equal to or after o
func (v VersionID) Compare(o VersionID) int {
	pairs := [][2]uint64{
		{v.Major, o.Major},
		{v.Minor, o.Minor},
		{v.Patch, o.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// Before tells whether v orders strictly before o
func (v VersionID) Before(o VersionID) bool {
	return v.Compare(o) < 0
}

// Equals tells whether two version ids are the same release
func (v VersionID) Equals(o VersionID) bool {
	return v.Compare(o) == 0
}

// NextMajor yields the next major release id, zeroing minor and patch
func (v VersionID) NextMajor() VersionID {
	return VersionID{Major: v.Major + 1}
}

// NextMinor yields the next minor release id, zeroing patch
func (v VersionID) NextMinor() VersionID {
	return VersionID{Major: v.Major, Minor: v.Minor + 1}
}

// NextPatch yields the next patch release id
func (v VersionID) NextPatch() VersionID {
	return VersionID{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

func (v VersionID) String() string {
	return v.Format(DefaultVersionSeparator)
}

// Format renders the version id with a custom separator
func (v VersionID) Format(sep string) string {
	return fmt.Sprint(v.Major, sep, v.Minor, sep, v.Patch)
}

// ParseVersionID parses a "major.minor.patch" string
func ParseVersionID(s string) (VersionID, error) {
	return ParseVersionIDSep(s, DefaultVersionSeparator)
}

// ParseVersionIDSep parses a version id rendered with a custom separator
func ParseVersionIDSep(s, sep string) (VersionID, error) {
	if sep == "" {
		return VersionID{}, fmt.Errorf("empty version separator")
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return VersionID{}, fmt.Errorf("invalid version id %q: expected 3 components separated by %q", s, sep)
	}
	components := make([]uint64, 3)
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return VersionID{}, fmt.Errorf("invalid version id %q: component %q is not a non-negative integer", s, part)
		}
		components[i] = n
	}
	return VersionID{Major: components[0], Minor: components[1], Patch: components[2]}, nil
}

// VersionIncrement selects which component NewVersion bumps
type VersionIncrement string

const (
	// IncrementMajor releases the next major version
	IncrementMajor VersionIncrement = "major"

	// IncrementMinor releases the next minor version
	IncrementMinor VersionIncrement = "minor"

	// IncrementPatch releases the next patch version
	IncrementPatch VersionIncrement = "patch"
)

// IsValid checks the value of a version increment
func (i VersionIncrement) IsValid() bool {
	switch i {
	case IncrementMajor, IncrementMinor, IncrementPatch:
		return true
	default:
		return false
	}
}

func (i VersionIncrement) String() string {
	return string(i)
}

// Apply the increment to a version id
func (i VersionIncrement) Apply(v VersionID) VersionID {
	switch i {
	case IncrementMajor:
		return v.NextMajor()
	case IncrementMinor:
		return v.NextMinor()
	default:
		return v.NextPatch()
	}
}

// VersionDescriptor models the metadata of a write-once release tag
type VersionDescriptor struct {
	ID         VersionID  `json:"id" yaml:"id"`
	ProjectID  string     `json:"projectID" yaml:"projectID"`
	RevisionID RevisionID `json:"revisionID" yaml:"revisionID"`
	Notes      string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Timestamp  time.Time  `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	_          struct{}
}

// VersionDescriptors is a sortable slice of VersionDescriptor, ordered
// by version id
type VersionDescriptors []VersionDescriptor

func (v VersionDescriptors) Swap(i, j int) {
	v[i], v[j] = v[j], v[i]
}
func (v VersionDescriptors) Len() int {
	return len(v)
}
func (v VersionDescriptors) Less(i, j int) bool {
	return v[i].ID.Before(v[j].ID)
}

// Sorted returns the descriptors ordered by version id
func (v VersionDescriptors) Sorted() VersionDescriptors {
	sort.Sort(v)
	return v
}

// Last version descriptor in slice
func (v VersionDescriptors) Last() VersionDescriptor {
	return v[len(v)-1]
}

// VersionBounds filters versions and patches by inclusive per-component
// ranges. A nil bound side is unconstrained.
type VersionBounds struct {
	MinMajor *uint64
	MaxMajor *uint64
	MinMinor *uint64
	MaxMinor *uint64
	MinPatch *uint64
	MaxPatch *uint64
}

// Validate rejects inverted min/max pairs
func (b VersionBounds) Validate() error {
	check := func(name string, min, max *uint64) error {
		if min != nil && max != nil && *min > *max {
			return fmt.Errorf("inverted %s bounds: min %d > max %d", name, *min, *max)
		}
		return nil
	}
	if err := check("major", b.MinMajor, b.MaxMajor); err != nil {
		return err
	}
	if err := check("minor", b.MinMinor, b.MaxMinor); err != nil {
		return err
	}
	return check("patch", b.MinPatch, b.MaxPatch)
}

// Contains applies the bounds to a version id
func (b VersionBounds) Contains(v VersionID) bool {
	within := func(c uint64, min, max *uint64) bool {
		if min != nil && c < *min {
			return false
		}
		if max != nil && c > *max {
			return false
		}
		return true
	}
	return within(v.Major, b.MinMajor, b.MaxMajor) &&
		within(v.Minor, b.MinMinor, b.MaxMinor) &&
		within(v.Patch, b.MinPatch, b.MaxPatch)
}
