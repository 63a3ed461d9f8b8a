package localqueue

import (
	"context"
	"errors"
	"time"

	"github.com/pixway/pixway/internal/types"
)

// PollOutputs polls the job's history on a fixed interval until an output
// artifact appears or the deadline elapses. The deadline is a hard wall
// clock measured from the call (i.e., from submission), not per poll.
//
// A failed poll is treated as transient and retried on the next tick; only
// the deadline or context cancellation stops the loop. On deadline expiry a
// timeout failure is returned, distinct from transport failures, because
// the job may still complete on the backend later.
func (c *Client) PollOutputs(ctx context.Context, jobID string, interval, timeout time.Duration) (artifactRef, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			// The caller abandoned the request; stop issuing calls. A
			// context deadline is still a timeout so logs separate
			// abandoned requests from backend outages.
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return artifactRef{}, types.NewTimeout("request deadline reached while awaiting job %s", jobID)
			}
			return artifactRef{}, types.NewTransport("request canceled while awaiting job %s", jobID)

		case <-deadline.C:
			return artifactRef{}, types.NewTimeout("job %s did not complete within %s", jobID, timeout)

		case <-ticker.C:
			outputs, err := c.JobHistory(ctx, jobID)
			if err != nil {
				// Transient; retry on the next tick.
				continue
			}
			if ref, ok := firstArtifact(outputs); ok {
				return ref, nil
			}
		}
	}
}
