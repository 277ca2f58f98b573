package syncchannel

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	server "github.com/zishang520/socket.io/servers/socket/v3"

	"github.com/tugaskita/tugasboard/internal/task"
)

type recorder struct {
	mu    sync.Mutex
	tasks []*task.Task
}

func (r *recorder) add(t *task.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, t)
}

func (r *recorder) snapshot() []*task.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*task.Task(nil), r.tasks...)
}

// newPushServer serves Socket.IO and calls onConnection with the 1-based
// connection count for every client that joins the default namespace.
func newPushServer(t *testing.T, onConnection func(n int32, s *server.Socket)) *httptest.Server {
	t.Helper()
	io := server.NewServer(nil, nil)
	var conns atomic.Int32
	_ = io.On("connection", func(clients ...any) {
		s := clients[0].(*server.Socket)
		onConnection(conns.Add(1), s)
	})
	srv := httptest.NewServer(io.ServeHandler(nil))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { io.Close(nil) })
	return srv
}

func TestSocketClient_ReceivesEvents(t *testing.T) {
	srv := newPushServer(t, func(_ int32, s *server.Socket) {
		_ = s.Emit(EventTaskAdded, map[string]any{"id": 7, "title": "Sapu halaman", "status": "Menunggu"})
		_ = s.Emit(EventTaskAdded, nil)
		_ = s.Emit(EventTaskUpdated, map[string]any{"title": "no id"})
		_ = s.Emit(EventTaskUpdated, map[string]any{"id": "7", "title": "Sapu halaman", "status": "Sedang Dikerjakan"})
	})

	var connects atomic.Int32
	c, err := NewSocketClient(srv.URL, WithOnConnect(func() { connects.Add(1) }))
	require.NoError(t, err)

	var added, updated recorder
	c.OnTaskAdded(added.add)
	c.OnTaskUpdated(updated.add)

	require.NoError(t, c.Start(t.Context()))
	t.Cleanup(func() { _ = c.Close() })

	require.Eventually(t, func() bool { return len(updated.snapshot()) == 1 }, 5*time.Second, 10*time.Millisecond)
	require.Len(t, added.snapshot(), 1)
	assert.Equal(t, task.ID("7"), added.snapshot()[0].ID)
	assert.Equal(t, "Sapu halaman", added.snapshot()[0].Title)
	assert.Equal(t, task.StatusInProgress, updated.snapshot()[0].Status)
	require.Eventually(t, func() bool { return connects.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestSocketClient_Reconnects(t *testing.T) {
	var conns atomic.Int32
	srv := newPushServer(t, func(n int32, s *server.Socket) {
		conns.Store(n)
		if n == 1 {
			// Drop the whole connection so the client has to come back.
			go s.Disconnect(true)
			return
		}
		_ = s.Emit(EventTaskAdded, map[string]any{"id": 1, "title": "after reconnect"})
	})

	var connects atomic.Int32
	c, err := NewSocketClient(srv.URL,
		WithBackoff(10*time.Millisecond, 50*time.Millisecond),
		WithOnConnect(func() { connects.Add(1) }),
	)
	require.NoError(t, err)
	var added recorder
	c.OnTaskAdded(added.add)
	require.NoError(t, c.Start(t.Context()))
	t.Cleanup(func() { _ = c.Close() })

	require.Eventually(t, func() bool { return len(added.snapshot()) == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "after reconnect", added.snapshot()[0].Title)
	assert.GreaterOrEqual(t, conns.Load(), int32(2))
	assert.GreaterOrEqual(t, connects.Load(), int32(2))
}

func TestSocketClient_CloseIsIdempotent(t *testing.T) {
	c, err := NewSocketClient("http://127.0.0.1:1", WithBackoff(time.Millisecond, time.Millisecond))
	require.NoError(t, err)

	// Closing before start must not block.
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Start(t.Context()), ErrClosed)

	c, err = NewSocketClient("http://127.0.0.1:1", WithBackoff(time.Millisecond, time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, c.Start(t.Context()))
	assert.ErrorIs(t, c.Start(t.Context()), ErrAlreadyStarted)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestSocketClient_ClosesWithContext(t *testing.T) {
	c, err := NewSocketClient("http://127.0.0.1:1", WithBackoff(time.Millisecond, time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	require.NoError(t, c.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool {
		return errors.Is(c.Start(t.Context()), ErrClosed)
	}, time.Second, 5*time.Millisecond)
}

func TestSocketURL(t *testing.T) {
	origin, path, err := socketURL("https://tugas.example.com/base/")
	require.NoError(t, err)
	assert.Equal(t, "https://tugas.example.com", origin)
	assert.Equal(t, "/base/socket.io", path)

	origin, path, err = socketURL("ws://localhost:3000")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", origin)
	assert.Equal(t, "/socket.io", path)

	_, _, err = socketURL("ftp://x")
	assert.Error(t, err)
	_, _, err = socketURL("http:///nohost")
	assert.Error(t, err)
}

func TestPayload(t *testing.T) {
	assert.Nil(t, payload(nil))
	assert.JSONEq(t, `{"id":1,"title":"Sapu"}`, string(payload([]any{map[string]any{"id": 1, "title": "Sapu"}, "extra"})))
	assert.Equal(t, "null", string(payload([]any{nil})))
	assert.Nil(t, payload([]any{func() {}}))
}
