package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/stylegen/internal/discovery"
	"github.com/muurk/stylegen/internal/logging"
	"github.com/muurk/stylegen/internal/transform"
)

const (
	// DefaultHost listens on all interfaces
	DefaultHost = "0.0.0.0"

	// DefaultInstance is the mDNS instance name
	DefaultInstance = "stylegen-dev"

	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum request size accepted from a peer
	maxMessageSize = 64 * 1024

	// Upper bound on a graceful shutdown triggered by Serve
	shutdownTimeout = 10 * time.Second
)

// Config holds the server configuration
type Config struct {
	Host       string
	Port       int           // 0 picks a free port
	Path       string        // WebSocket path (default: /ws)
	Delay      time.Duration // Simulated generation time per request
	Advertise  bool          // Register the service via mDNS
	Instance   string        // mDNS instance name
	CaptureDir string        // Directory for frame capture (empty = disabled)
	Version    string        // Build advertised in the "version=" TXT record
}

// Server is a development image backend
type Server struct {
	config     Config
	listener   net.Listener
	httpServer *http.Server
	upgrader   websocket.Upgrader
	mdns       *zeroconf.Server
	capture    *capture

	wg sync.WaitGroup

	// mu protects the fields below
	mu          sync.Mutex
	activeConns map[string]*websocket.Conn
	closing     chan struct{}
}

// New creates a server. Call Listen and Serve, or Start, to run it.
func New(config Config) *Server {
	if config.Path == "" {
		config.Path = discovery.DefaultPath
	}
	if config.Instance == "" {
		config.Instance = DefaultInstance
	}

	s := &Server{
		config: config,
		upgrader: websocket.Upgrader{
			// Local tool; any origin may connect
			CheckOrigin: func(*http.Request) bool { return true },
		},
		activeConns: make(map[string]*websocket.Conn),
		closing:     make(chan struct{}),
	}
	if config.CaptureDir != "" {
		s.capture = newCapture(config.CaptureDir)
	}

	s.httpServer = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Listen binds the listening socket and, if configured, advertises the
// service via mDNS.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	logging.Info("Server listening for connections",
		zap.String("addr", listener.Addr().String()),
		zap.String("path", s.config.Path),
		zap.Duration("delay", s.config.Delay),
	)

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		mdns, err := zeroconf.Register(s.config.Instance, discovery.ServiceType, discovery.ServiceDomain,
			port, s.txtRecords(), nil)
		if err != nil {
			_ = listener.Close()
			return fmt.Errorf("failed to register mDNS service: %w", err)
		}
		s.mdns = mdns
		logging.Info("Advertising via mDNS",
			zap.String("instance", s.config.Instance),
			zap.String("service", discovery.ServiceType),
			zap.Int("port", port),
		)
	}

	return nil
}

// txtRecords returns the mDNS TXT records advertised with the service
func (s *Server) txtRecords() []string {
	txt := []string{"path=" + s.config.Path}
	if s.config.Version != "" {
		txt = append(txt, discovery.MetadataVersion+"="+s.config.Version)
	}
	return txt
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// URL returns the WebSocket URL clients should dial
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == nil {
		return ""
	}
	return "ws://" + addr.String() + s.config.Path
}

// Start listens and serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve accepts connections until ctx is cancelled, then shuts down
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.httpServer.Serve(s.listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.closing:
			// Shutdown was called directly
			return nil
		}
		logging.Info("Shutdown requested, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops accepting connections, closes active WebSocket connections
// and waits for their handlers to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	// Pending generations abort once closing is closed
	s.mu.Lock()
	select {
	case <-s.closing:
	default:
		close(s.closing)
	}
	s.mu.Unlock()

	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}

	err := s.httpServer.Shutdown(ctx)
	if s.listener != nil {
		_ = s.listener.Close()
	}

	// Hijacked connections are not tracked by http.Server
	s.mu.Lock()
	deadline := time.Now().Add(time.Second)
	for addr, conn := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	return err
}

// GetActiveConnections returns the number of open WebSocket connections
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}

// track registers conn, or reports false if the server is shutting down
func (s *Server) track(remoteAddr string, conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.closing:
		return false
	default:
	}

	s.activeConns[remoteAddr] = conn
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(remoteAddr string) {
	s.mu.Lock()
	delete(s.activeConns, remoteAddr)
	s.mu.Unlock()
	s.wg.Done()
}

// handleWebSocket serves one client connection
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}

	if !s.track(remoteAddr, conn) {
		_ = conn.Close()
		return
	}
	defer func() {
		_ = conn.Close()
		s.untrack(remoteAddr)
		logging.LogConnection(remoteAddr, "connection_closed")
	}()

	logging.LogConnection(remoteAddr, "connection_accepted")
	conn.SetReadLimit(maxMessageSize)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info("Connection closed with error",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}

		logging.LogWebSocketMessage(remoteAddr, "received", msgType, data)
		s.capture.record(remoteAddr, "received", msgType, data)

		if msgType != websocket.TextMessage {
			logging.Warn("Ignoring non-text frame", zap.String("remote_addr", remoteAddr))
			continue
		}

		resp, ok := s.respond(data)
		if !ok {
			return
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			logging.Error("Failed to marshal response", zap.Error(err))
			return
		}
		s.capture.record(remoteAddr, "sent", websocket.TextMessage, payload)
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logging.Error("Failed to send response",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			return
		}

		logging.LogWebSocketMessage(remoteAddr, "sent", websocket.TextMessage, payload)
	}
}

// handleGenerate answers a single request over plain HTTP
func (s *Server) handleGenerate(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxMessageSize))
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read request")
		return
	}
	s.capture.record(c.Request.RemoteAddr, "received", websocket.TextMessage, data)

	req, err := parseRequest(data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse(invalidFormat(err)))
		return
	}

	resp, ok := s.generate(req)
	if !ok {
		c.String(http.StatusServiceUnavailable, "server shutting down")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// respond turns one text frame into a response.
// It reports false if the server began shutting down while generating.
func (s *Server) respond(data []byte) (transform.Response, bool) {
	req, err := parseRequest(data)
	if err != nil {
		return errorResponse(invalidFormat(err)), true
	}
	return s.generate(req)
}

func (s *Server) generate(req transform.Request) (transform.Response, bool) {
	if !s.wait() {
		return transform.Response{}, false
	}

	location, err := Placeholder(req)
	if err != nil {
		return errorResponse("Image generation failed: " + err.Error()), true
	}
	return transform.Response{Status: transform.StatusSuccess, ImageURL: location}, true
}

// wait sleeps for the configured delay unless the server shuts down first
func (s *Server) wait() bool {
	if s.config.Delay <= 0 {
		return true
	}

	timer := time.NewTimer(s.config.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-s.closing:
		return false
	}
}

func errorResponse(msg string) transform.Response {
	return transform.Response{Status: "error", Error: msg}
}

func invalidFormat(err error) string {
	return "Invalid request format: " + err.Error()
}
