package store

import (
	"context"
	"time"
)

// RunJanitor periodically sweeps expired keys in the background, so
// that keys nobody ever touches again still eventually disappear
// instead of lingering until some unrelated command happens to sweep
// past their deadline. This coexists with, rather than replaces, the
// per-command lazy sweep in sweep().
func (e *Engine) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.mutex.Lock()
			e.sweep("", time.Now())
			e.mutex.Unlock()
		}
	}
}
