package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Call tracks one outbound API call for structured logging.
type Call struct {
	name   string
	logger *slog.Logger
	start  time.Time
}

// StartCall derives a call-scoped logger from the provided context, tagging it
// with a fresh call identifier. It returns the derived context and the call
// handle; the identifier doubles as the X-Request-Id sent to the backend.
func StartCall(ctx context.Context, name string) (context.Context, *Call) {
	if ctx == nil {
		ctx = context.Background()
	}

	callID := uuid.NewString()
	logger := FromContext(ctx).With(
		slog.String("call_id", callID),
		slog.String("call", name),
	)

	ctx = WithLogger(ctx, logger)
	ctx = WithCallID(ctx, callID)

	return ctx, &Call{name: name, logger: logger, start: time.Now()}
}

// End finalizes the call and emits a completion log entry.
func (c *Call) End(err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.logger.Warn("api call failed",
			slog.Duration("duration", time.Since(c.start)),
			slog.String("error", err.Error()),
		)
		return
	}
	c.logger.Debug("api call completed", slog.Duration("duration", time.Since(c.start)))
}
