package game

import (
	"context"
	"fmt"
	"time"
)

// DefaultTickInterval is how often elapsed time is refreshed.
const DefaultTickInterval = time.Second

// RunTimer calls tick once per interval until ctx is cancelled or done is
// closed. It blocks, so callers usually run it in its own goroutine bound to
// a session's Done channel.
func RunTimer(ctx context.Context, done <-chan struct{}, interval time.Duration, tick func(time.Time)) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case t := <-ticker.C:
			tick(t)
		}
	}
}

// FormatElapsed renders a duration as minutes and zero-padded seconds, e.g. "2:05".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
