package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/isogap/pkg/utils/logging"
)

// Close closes closer and logs a failure instead of returning it. A nil
// closer is ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", "error", err)
	}
}

// Write writes data to w and logs a failed or short write. It is meant for
// response bodies whose headers are already sent.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	n, err := w.Write(data)
	if err != nil {
		logging.From(ctx).Warn("failed to write", "error", err, "written", n, "size", len(data))
	}
}
