package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSSink publishes each line as one message on a subject.
type NATSSink struct {
	mu      sync.Mutex
	nc      *nats.Conn
	subject string
	closed  bool
}

func ConnectNATS(url, subject string) (*NATSSink, error) {
	nc, err := nats.Connect(
		url,
		nats.Name("ekglab"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats %s: %w", url, err)
	}
	return &NATSSink{nc: nc, subject: subject}, nil
}

func (s *NATSSink) Send(_ context.Context, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.nc.Publish(s.subject, []byte(line))
}

// Close flushes pending messages before closing the connection.
func (s *NATSSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.nc.Drain()
}
