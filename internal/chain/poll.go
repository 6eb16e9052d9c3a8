package chain

import (
	"context"
	"time"
)

// PollFunc checks a condition once. done ends polling; a non-nil err ends it with that error.
type PollFunc func(ctx context.Context) (done bool, err error)

// Poll calls check every interval until it reports done, returns an error
// or ctx ends. The first check runs immediately.
func Poll(ctx context.Context, interval time.Duration, check PollFunc) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
