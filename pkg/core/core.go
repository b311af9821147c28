// Package core implements the modelvc lifecycle operations: projects,
// workspaces with their rebase and conflict-resolution state machine,
// patch release lines, write-once versions, revision histories and
// comparisons. All operations go through the storage SPI held by a
// context.Stores handle and return the types of pkg/model, failing
// with one of the kinds of pkg/core/status.
package core

import (
	"time"

	"go.uber.org/zap"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

func projectField(projectID string) zap.Field {
	return zap.String("project", projectID)
}

func lineField(pointer string) zap.Field {
	return zap.String("line", pointer)
}
