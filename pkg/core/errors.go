package core

import (
	"github.com/metaforge/modelvc/pkg/core/status"
	"github.com/metaforge/modelvc/pkg/errors"
	storagestatus "github.com/metaforge/modelvc/pkg/storage/status"
)

// asCoreError maps a storage provider error onto the core error kinds,
// annotated with the description of the failed operation.
//
// Validation errors never reach this point: structural checks happen
// before any mutation is attempted.
func asCoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var kind *errors.Error
	switch {
	case errors.Is(err, storagestatus.ErrNotExists):
		kind = status.ErrNotFound
	case errors.Is(err, storagestatus.ErrExists),
		errors.Is(err, storagestatus.ErrConcurrentUpdate),
		errors.Is(err, storagestatus.ErrChangeNotApplicable):
		kind = status.ErrConflict
	case errors.Is(err, storagestatus.ErrNotSupported):
		kind = status.ErrUnavailable
	case errors.Is(err, status.ErrNotFound),
		errors.Is(err, status.ErrInvalidArgument),
		errors.Is(err, status.ErrConflict),
		errors.Is(err, status.ErrUnavailable),
		errors.Is(err, status.ErrStorageFailure):
		// already a core kind, keep it
		return errors.New(op).Wrap(err)
	default:
		kind = status.ErrStorageFailure
	}
	return errors.New(op).Wrap(kind.Wrap(err))
}

func invalidArgument(format string, args ...interface{}) error {
	return status.ErrInvalidArgument.WrapMessage(format, args...)
}
