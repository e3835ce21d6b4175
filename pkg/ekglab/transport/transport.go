// Package transport ships encoded sample lines to a display device.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/encoding"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

// DefaultPace is the delay between two consecutive lines.
const DefaultPace = 10 * time.Millisecond

var ErrClosed = errors.New("sink closed")

// Sink delivers one encoded line at a time. Delivery is fire-and-forget:
// no acknowledgment is expected from the device.
type Sink interface {
	Send(ctx context.Context, line string) error
	Close() error
}

// Stream sends every sample line followed by END, waiting pace between lines.
// A zero pace sends back to back. Cancelling ctx stops the stream without
// sending END.
func Stream(ctx context.Context, sink Sink, samples []model.SamplePoint, pace time.Duration) error {
	lines := encoding.Lines(samples)

	var timer *time.Timer
	if pace > 0 {
		timer = time.NewTimer(pace)
		defer timer.Stop()
	}

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Send(ctx, line); err != nil {
			return fmt.Errorf("failed to send line %d: %w", i, err)
		}
		if timer == nil || i == len(lines)-1 {
			continue
		}

		timer.Reset(pace)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}
