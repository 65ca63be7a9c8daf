package server

import (
	"context"
	"time"
)

// RunSweeper drives State.Sweep on a fixed cadence until ctx is done. The
// sweep itself runs inside the coordinator lock, so it never overlaps a
// client action on the same room.
func RunSweeper(ctx context.Context, s *State, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}
