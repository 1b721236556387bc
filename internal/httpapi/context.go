package httpapi

import "context"

// serverBaseCtx is the process-level context handlers join with the request
// context so shutdown cancels in-flight downloads and loads too.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-level base context. Passing nil resets
// to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context canceled when either a or b is done. The
// cancel func must be called when the handler ends to release the goroutine.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
		case <-b.Done():
		}
		cancel()
	}()
	return ctx, cancel
}
