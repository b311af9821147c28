// Package status exports errors produced by the core package.
//
// Every core failure wraps exactly one of these kinds, so callers can
// dispatch on errors.Is regardless of the operation that failed.
package status

import (
	"github.com/metaforge/modelvc/pkg/errors"
)

var (
	// ErrInterrupted signals that an ongoing listing has been interrupted by its caller
	ErrInterrupted = errors.New("listing interrupted")

	// ErrNotFound indicates an unknown project, workspace, revision, version or patch
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates a malformed path, inverted bounds or invalid version id
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict indicates a duplicate creation, a stale update, or a
	// mutation attempted on a workspace held in conflict resolution
	ErrConflict = errors.New("conflict")

	// ErrUnavailable indicates the active storage provider does not
	// support the operation. Mutations fail closed with this kind and
	// never silently no-op.
	ErrUnavailable = errors.New("operation unavailable on this storage provider")

	// ErrStorageFailure indicates an I/O or network fault from the
	// storage provider. The operation left no partial state and may be
	// retried.
	ErrStorageFailure = errors.New("storage failure")
)
