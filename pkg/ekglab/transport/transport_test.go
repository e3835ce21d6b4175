package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

type recordingSink struct {
	mu     sync.Mutex
	lines  []string
	failAt int
	closed bool
}

func (r *recordingSink) Send(_ context.Context, line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.failAt > 0 && len(r.lines)+1 == r.failAt {
		return errors.New("device unreachable")
	}
	r.lines = append(r.lines, line)
	return nil
}

func (r *recordingSink) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func samples(n int) []model.SamplePoint {
	out := make([]model.SamplePoint, n)
	for i := range out {
		out[i] = model.SamplePoint{Time: float64(i) * 0.001, Voltage: 0.1}
	}
	return out
}

func TestStreamSendsLinesThenEnd(t *testing.T) {
	sink := &recordingSink{}

	require.NoError(t, Stream(context.Background(), sink, samples(3), 0))

	assert.Equal(t, []string{"0.000,0.100\n", "0.001,0.100\n", "0.002,0.100\n", "END"}, sink.lines)
}

func TestStreamPaced(t *testing.T) {
	sink := &recordingSink{}

	start := time.Now()
	require.NoError(t, Stream(context.Background(), sink, samples(4), 5*time.Millisecond))

	// Four gaps between five lines.
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Len(t, sink.lines, 5)
}

func TestStreamCancelled(t *testing.T) {
	sink := &recordingSink{}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()

	err := Stream(ctx, sink, samples(1000), 10*time.Millisecond)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, sink.lines, "END")
	assert.Less(t, len(sink.lines), 1000)
}

func TestStreamSendError(t *testing.T) {
	sink := &recordingSink{failAt: 2}

	err := Stream(context.Background(), sink, samples(5), 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
	assert.Len(t, sink.lines, 1)
}

func TestWebSocketSink(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	received := make(chan string, 16)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				close(received)
				return
			}
			received <- string(msg)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	sink, err := DialWebSocket(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)

	require.NoError(t, Stream(ctx, sink, samples(2), time.Millisecond))
	require.NoError(t, sink.Close())

	var got []string
	for msg := range received {
		got = append(got, msg)
	}
	assert.Equal(t, []string{"0.000,0.100\n", "0.001,0.100\n", "END"}, got)

	assert.ErrorIs(t, sink.Send(ctx, "x"), ErrClosed)
	assert.NoError(t, sink.Close())
}

func TestWebSocketSinkHonorsDeadline(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	sink, err := DialWebSocket(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer sink.Close()

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	assert.Error(t, sink.Send(ctx, "0.000,0.000\n"))
}

func TestDialWebSocketFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := DialWebSocket(ctx, "ws://127.0.0.1:1/")
	assert.Error(t, err)
}

func TestConnectNATSFails(t *testing.T) {
	_, err := ConnectNATS("nats://127.0.0.1:1", "ekg.samples")
	assert.Error(t, err)
}
