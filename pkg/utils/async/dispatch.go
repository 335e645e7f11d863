package async

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/utils/errutil"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine detached from the cancellation
// of ctx. The logger of ctx is carried over. Errors and panics are reported
// through errutil under the task name. The returned channel is closed when
// the handler has finished.
func Dispatch(ctx context.Context, task string, handler func(ctx context.Context) error) <-chan struct{} {
	bgCtx := logging.With(context.WithoutCancel(ctx), logging.From(ctx).With("task", task))
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, goerr.New(fmt.Sprintf("panic: %v", r), goerr.V("task", task)), "async task panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async task failed")
		}
	}()

	return done
}
