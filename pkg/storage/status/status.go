// Package status exports errors produced by storage providers.
package status

import (
	"github.com/metaforge/modelvc/pkg/errors"
)

var (
	// ErrNotExists indicates the requested pointer or revision is unknown to the provider
	ErrNotExists = errors.New("object does not exist")

	// ErrExists indicates a create operation hit an already existing object
	ErrExists = errors.New("object exists already")

	// ErrConcurrentUpdate indicates a compare-and-swap failed because the
	// pointed-at revision moved underneath the caller
	ErrConcurrentUpdate = errors.New("concurrent update detected")

	// ErrNotSupported indicates the operation is not implemented by this provider
	ErrNotSupported = errors.New("operation not supported by this storage provider")

	// ErrChangeNotApplicable indicates an entity change cannot be applied
	// to the snapshot it targets (e.g. creating an entity at an occupied path)
	ErrChangeNotApplicable = errors.New("entity change not applicable to snapshot")
)
