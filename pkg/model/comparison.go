package model

import "sort"

// DiffKind qualifies the difference observed at one entity path
type DiffKind string

const (
	// DiffAdded indicates the path is present only on the "to" side
	DiffAdded DiffKind = "added"

	// DiffDeleted indicates the path is present only on the "from" side
	DiffDeleted DiffKind = "deleted"

	// DiffModified indicates the path is present on both sides with differing content
	DiffModified DiffKind = "modified"
)

// IsValid checks the value of a diff kind
func (k DiffKind) IsValid() bool {
	switch k {
	case DiffAdded, DiffDeleted, DiffModified:
		return true
	default:
		return false
	}
}

func (k DiffKind) String() string {
	return string(k)
}

// EntityDiff describes a single point of difference between two
// revision-addressable entity sets. Unchanged entities are omitted.
type EntityDiff struct {
	Path string   `json:"path" yaml:"path"`
	Kind DiffKind `json:"kind" yaml:"kind"`
	_    struct{}
}

// EntityDiffs is a sortable slice of EntityDiff, ordered by path
type EntityDiffs []EntityDiff

func (e EntityDiffs) Swap(i, j int) {
	e[i], e[j] = e[j], e[i]
}
func (e EntityDiffs) Len() int {
	return len(e)
}
func (e EntityDiffs) Less(i, j int) bool {
	return e[i].Path < e[j].Path
}

// Sorted returns the diffs ordered by path
func (e EntityDiffs) Sorted() EntityDiffs {
	sort.Sort(e)
	return e
}

// Comparison is a computed diff between two revision-addressable entity
// sets. Comparisons are recomputed on every call and never persisted.
type Comparison struct {
	FromRevisionID              RevisionID  `json:"fromRevisionID" yaml:"fromRevisionID"`
	ToRevisionID                RevisionID  `json:"toRevisionID" yaml:"toRevisionID"`
	EntityDiffs                 EntityDiffs `json:"entityDiffs" yaml:"entityDiffs"`
	ProjectConfigurationUpdated bool        `json:"projectConfigurationUpdated" yaml:"projectConfigurationUpdated"`
	_                           struct{}
}
