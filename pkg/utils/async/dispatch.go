package async

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/utils/errutil"
	"github.com/secmon-lab/deskrelay/pkg/utils/logging"
)

// Timeout bounds each dispatched handler. Webhook senders have already received their reply,
// so nothing else would stop a stuck handler.
var Timeout = 2 * time.Minute

// Dispatch runs handler in a new goroutine detached from the request. The request logger is
// carried over with the task name; errors and panics are logged.
func Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	logger := logging.From(ctx).With("task", name)

	go func() {
		bgCtx, cancel := context.WithTimeout(logging.With(context.Background(), logger), Timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async task", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, goerr.Wrap(err, "async task failed", goerr.V("task", name)), "async task failed")
		}
	}()
}
