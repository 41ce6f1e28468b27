package tool

import (
	"context"
	"errors"
	"time"

	"github.com/dbgateway/gateway/internal/store"
)

var (
	errNotSQL            = errors.New("connector does not implement SQL execution")
	errNotIntrospectable = errors.New("connector does not implement schema introspection")
	errNotCommand        = errors.New("connector does not implement command execution")
)

// recordFor builds the Request Record for one tool invocation,
// timing it from start to now.
func recordFor(ctx context.Context, sourceID, toolName, sqlOrCommand string, start time.Time, err error) store.Record {
	rec := store.Record{
		ID:               newRequestID(),
		Timestamp:        time.Now(),
		SourceID:         sourceID,
		ToolName:         toolName,
		SQLOrCommand:     sqlOrCommand,
		DurationMS:       time.Since(start).Milliseconds(),
		ClientIdentifier: ClientIdentifier(ctx),
		Success:          err == nil,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}
