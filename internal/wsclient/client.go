package wsclient

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/stylegen/internal/logging"
	"github.com/muurk/stylegen/internal/transform"
)

const (
	// DefaultURL is the backend endpoint used when none is configured
	DefaultURL = "ws://localhost:8000/ws"

	// DefaultReconnectDelay is the fixed wait before reopening a lost connection
	DefaultReconnectDelay = 5 * time.Second

	// DefaultHandshakeTimeout bounds the opening handshake of each attempt
	DefaultHandshakeTimeout = 10 * time.Second

	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed for the close handshake on Disconnect
	closeWait = time.Second

	// Maximum message size allowed from peer. Responses may inline the
	// generated image as a base64 data URL.
	maxMessageSize = 32 << 20
)

// State is the lifecycle state of the underlying connection
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

// String returns a human-readable name for the state
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MessageHandler receives every well-formed response
type MessageHandler func(transform.Response)

// StateHandler receives connection state changes
type StateHandler func(State)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	// URL is the WebSocket endpoint (default: DefaultURL)
	URL string

	// ReconnectDelay is the fixed wait before each reconnect attempt
	ReconnectDelay time.Duration

	// HandshakeTimeout bounds each dial
	HandshakeTimeout time.Duration

	// OnState, if set, is called on every state change
	OnState StateHandler
}

// Client maintains one reconnecting WebSocket connection to a backend
type Client struct {
	url            string
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	onMessage      MessageHandler
	onState        StateHandler

	// mu protects the fields below
	mu       sync.Mutex
	conn     *websocket.Conn
	state    State
	attempts int

	// writeMu serializes writers; gorilla allows one concurrent writer
	writeMu sync.Mutex

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a client and starts connecting to the endpoint immediately.
// onMessage is kept for the lifetime of the client, across reconnects.
func New(opts Options, onMessage MessageHandler) *Client {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if onMessage == nil {
		onMessage = func(transform.Response) {}
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		url:            opts.URL,
		reconnectDelay: opts.ReconnectDelay,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		onMessage: onMessage,
		onState:   opts.OnState,
		state:     StateConnecting,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go c.run()

	return c
}

// URL returns the endpoint this client connects to
func (c *Client) URL() string {
	return c.url
}

// State returns the current connection state
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempts returns the number of connection attempts made so far
func (c *Client) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Send transmits a request if the connection is open.
// It does not wait for a connection and does not guarantee delivery.
func (c *Client) Send(req transform.Request) error {
	c.mu.Lock()
	conn, state := c.conn, c.state
	c.mu.Unlock()

	if conn == nil || state != StateOpen {
		logging.Error("WebSocket is not connected",
			zap.String("endpoint", c.url),
			zap.String("state", state.String()),
		)
		return newNotReadyError(c.url, state)
	}

	data, err := transform.EncodeRequest(req)
	if err != nil {
		logging.Error("Failed to encode request",
			zap.String("endpoint", c.url),
			zap.Error(err),
		)
		return newEncodeError(c.url, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return newTransportError(c.url, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logging.Error("Failed to send request",
			zap.String("endpoint", c.url),
			zap.Error(err),
		)
		return newTransportError(c.url, err)
	}

	logging.LogWebSocketMessage(c.url, "sent", websocket.TextMessage, data)
	return nil
}

// Disconnect closes the connection and cancels any pending reconnect.
// It blocks until the connection goroutine has exited and is safe to call
// more than once.
func (c *Client) Disconnect() {
	c.stopOnce.Do(func() {
		logging.LogConnection(c.url, "disconnect_requested")
		c.cancel()

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		if conn != nil {
			// WriteControl and Close may run concurrently with readers and writers
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(closeWait))
			_ = conn.Close()
		}
	})
	<-c.done
}

// run dials, serves and reconnects until Disconnect
func (c *Client) run() {
	defer close(c.done)

	for {
		c.connectAndServe()

		if c.ctx.Err() != nil {
			return
		}

		logging.Info("Scheduling reconnect",
			zap.String("endpoint", c.url),
			zap.Duration("delay", c.reconnectDelay),
		)

		timer := time.NewTimer(c.reconnectDelay)
		select {
		case <-c.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// connectAndServe performs one connection attempt and reads until the
// connection closes
func (c *Client) connectAndServe() {
	c.mu.Lock()
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()

	c.setState(StateConnecting)
	logging.LogConnection(c.url, "connecting", zap.Int("attempt", attempt))

	conn, resp, err := c.dialer.DialContext(c.ctx, c.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if c.ctx.Err() == nil {
			logging.Warn("WebSocket error",
				zap.String("endpoint", c.url),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		c.setState(StateClosed)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c.mu.Lock()
	if c.ctx.Err() != nil {
		// Disconnect won the race; it never saw this connection
		c.mu.Unlock()
		_ = conn.Close()
		c.setState(StateClosed)
		return
	}
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateOpen)
	logging.LogConnection(c.url, "open", zap.Int("attempt", attempt))

	c.readLoop(conn)

	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()
	_ = conn.Close()

	c.setState(StateClosed)
}

// readLoop delivers frames until the connection fails
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			c.logClose(err)
			return
		}
		c.handleFrame(messageType, data)
	}
}

// handleFrame decodes one inbound frame and invokes the handler
func (c *Client) handleFrame(messageType int, data []byte) {
	logging.LogWebSocketMessage(c.url, "received", messageType, data)

	if messageType != websocket.TextMessage {
		logging.Warn("Dropping non-text WebSocket message",
			zap.String("endpoint", c.url),
			zap.Int("length", len(data)),
		)
		return
	}

	resp, err := transform.DecodeResponse(data)
	if err != nil {
		logging.Error("Error parsing WebSocket message",
			zap.String("endpoint", c.url),
			zap.String("raw", logging.Truncate(string(data), 256)),
			zap.Error(err),
		)
		return
	}

	if c.ctx.Err() != nil {
		return
	}
	c.onMessage(resp)
}

func (c *Client) logClose(err error) {
	if c.ctx.Err() != nil {
		logging.LogConnection(c.url, "closed", zap.String("reason", "disconnect"))
		return
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		logging.LogConnection(c.url, "closed",
			zap.Int("code", closeErr.Code),
			zap.String("reason", closeErr.Text),
		)
		return
	}

	logging.Warn("WebSocket error",
		zap.String("endpoint", c.url),
		zap.Error(err),
	)
	logging.LogConnection(c.url, "closed")
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()

	if !changed {
		return
	}

	logging.Debug("Connection state changed",
		zap.String("endpoint", c.url),
		zap.String("state", s.String()),
	)
	if c.onState != nil {
		c.onState(s)
	}
}
