package syncchannel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	sio "github.com/zishang520/socket.io/clients/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"
)

const (
	defaultMinBackoff = time.Second
	defaultMaxBackoff = 30 * time.Second
)

var (
	ErrClosed         = errors.New("socket client closed")
	ErrAlreadyStarted = errors.New("socket client already started")
)

// SocketClient is a Channel fed by the upstream Socket.IO server. The
// manager underneath reconnects on its own until the client is closed.
type SocketClient struct {
	registry

	origin     string
	path       string
	minBackoff time.Duration
	maxBackoff time.Duration
	onConnect  func()

	mu        sync.Mutex
	started   bool
	closed    bool
	sock      *sio.Socket
	stopWatch func() bool
}

type Option func(*SocketClient)

// WithBackoff bounds the delay between reconnect attempts.
func WithBackoff(minDelay, maxDelay time.Duration) Option {
	return func(c *SocketClient) {
		c.minBackoff = minDelay
		c.maxBackoff = maxDelay
	}
}

// WithOnConnect registers fn to run every time the namespace connect is
// acknowledged, including after a reconnect.
func WithOnConnect(fn func()) Option {
	return func(c *SocketClient) {
		c.onConnect = fn
	}
}

func NewSocketClient(baseURL string, opts ...Option) (*SocketClient, error) {
	origin, path, err := socketURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &SocketClient{
		origin:     origin,
		path:       path,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start connects in the background. The connection is kept until ctx is
// done or Close is called.
func (c *SocketClient) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true

	opts := sio.DefaultOptions()
	opts.SetPath(c.path)
	opts.SetTransports(types.NewSet(sio.WebSocket))
	opts.SetAutoConnect(false)
	opts.SetReconnection(true)
	opts.SetReconnectionDelay(float64(c.minBackoff.Milliseconds()))
	opts.SetReconnectionDelayMax(float64(c.maxBackoff.Milliseconds()))

	sock := sio.NewManager(c.origin, opts).Socket("/", opts)
	_ = sock.On("connect", func(...any) {
		slog.InfoContext(ctx, "push channel connected", "url", c.origin+c.path, "sid", sock.Id())
		if c.onConnect != nil {
			c.onConnect()
		}
	})
	_ = sock.On("disconnect", func(args ...any) {
		slog.WarnContext(ctx, "push channel disconnected", "url", c.origin+c.path, "reason", firstArg(args))
	})
	_ = sock.On("connect_error", func(args ...any) {
		slog.WarnContext(ctx, "push channel connect failed", "url", c.origin+c.path, "error", firstArg(args))
	})
	for _, event := range []string{EventTaskAdded, EventTaskUpdated} {
		_ = sock.On(types.EventName(event), func(args ...any) {
			c.dispatchRaw(event, payload(args))
		})
	}
	c.sock = sock
	c.stopWatch = context.AfterFunc(ctx, func() { _ = c.Close() })
	sock.Connect()
	return nil
}

// Close disconnects and stops reconnecting. Only the first call does
// anything.
func (c *SocketClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	sock, stopWatch := c.sock, c.stopWatch
	c.mu.Unlock()

	if stopWatch != nil {
		stopWatch()
	}
	if sock != nil {
		sock.Disconnect()
	}
	return nil
}

// payload re-encodes the first event argument. The client decodes frames
// into generic values, so this is how they get back to a task.
func payload(args []any) json.RawMessage {
	if len(args) == 0 {
		return nil
	}
	raw, err := json.Marshal(args[0])
	if err != nil {
		slog.Debug("cannot re-encode push payload", "error", err)
		return nil
	}
	return raw
}

func firstArg(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

// socketURL splits the API base URL into the origin the manager dials and
// the Socket.IO path below it.
func socketURL(base string) (origin, path string, err error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", "", fmt.Errorf("parse socket url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "http"
	case "https", "wss":
		u.Scheme = "https"
	default:
		return "", "", fmt.Errorf("unsupported socket url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("socket url %q has no host", base)
	}
	path = strings.TrimRight(u.Path, "/") + "/socket.io"
	return u.Scheme + "://" + u.Host, path, nil
}
