package httpapi

import "context"

// serverBaseCtx ties long-lived handlers, in practice the SSE stream, to
// daemon shutdown. It stays Background until the daemon installs its own.
var serverBaseCtx = context.Background()

// SetBaseContext installs the daemon's root context so streaming handlers
// stop when it is canceled.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context that is done as soon as either parent is.
// The cancel func releases the watcher goroutine and must always be called.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer cancel()
		select {
		case <-a.Done():
		case <-b.Done():
		}
	}()
	return ctx, cancel
}
