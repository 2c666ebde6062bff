package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/deskrelay/pkg/utils/logging"
)

// Close closes closer and logs a failure. nil closers are ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("close failed", "error", err)
	}
}

// Write writes a response body after the status line has been sent, when the only thing left to
// do with an error is to log it.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	n, err := w.Write(data)
	if err != nil {
		logging.From(ctx).Warn("write failed", "error", err, "written", n, "size", len(data))
	}
}
