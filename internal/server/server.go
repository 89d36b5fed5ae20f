// Package server composes the reactor, worker pool, router, and WebSocket
// codec into an HTTP/1.1 and WebSocket server, grounded on the original
// server's Start/HandleConnection/ProcessRequest/HandleWebSocket flow:
// the reactor accepts and demultiplexes readiness, each connection then
// runs to completion on a worker pool goroutine.
package server

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/SarthakJain2/monitord/internal/httpx"
	"github.com/SarthakJain2/monitord/internal/netconn"
	"github.com/SarthakJain2/monitord/internal/pool"
	"github.com/SarthakJain2/monitord/internal/reactor"
	"github.com/SarthakJain2/monitord/internal/router"
	"github.com/SarthakJain2/monitord/internal/wsproto"
)

// ErrAlreadyRunning is returned by Start if the server is already serving.
var ErrAlreadyRunning = errors.New("server: already running")

// WSHandler is invoked once per upgraded connection, on its own goroutine,
// and owns the connection for its lifetime: it must read frames in a loop
// until ReadFrame returns an error, then return.
type WSHandler func(conn *WSConn, req *httpx.Request)

// Server is the façade applications construct: register routes and
// WebSocket handlers on it, then Start it.
type Server struct {
	cfg *Config

	router *router.Router
	pool   *pool.Pool
	react  reactor.Reactor
	logger *zap.Logger

	mu         sync.Mutex
	wsHandlers map[string]WSHandler
	listenFd   int
	running    bool
	stopped    chan struct{}
}

// New builds a Server with the given options applied over DefaultConfig.
func New(opts ...Option) *Server {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:        cfg,
		router:     router.New(),
		logger:     logger,
		wsHandlers: make(map[string]WSHandler),
		listenFd:   -1,
	}
}

func (s *Server) Get(path string, h router.Handler)    { s.router.Register(httpx.GET, path, h) }
func (s *Server) Post(path string, h router.Handler)   { s.router.Register(httpx.POST, path, h) }
func (s *Server) Put(path string, h router.Handler)    { s.router.Register(httpx.PUT, path, h) }
func (s *Server) Delete(path string, h router.Handler) { s.router.Register(httpx.DELETE, path, h) }
func (s *Server) Patch(path string, h router.Handler)  { s.router.Register(httpx.PATCH, path, h) }

// RegisterWebSocketHandler binds h to every upgrade request whose path is
// exactly path.
func (s *Server) RegisterWebSocketHandler(path string, h WSHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wsHandlers[path] = h
}

// ServeStatic serves files under directory for any GET request whose path
// starts with prefix, rejecting any resolved path that escapes directory.
func (s *Server) ServeStatic(prefix, directory string) {
	cleanPrefix := strings.TrimSuffix(prefix, "/")
	absDir, err := filepath.Abs(directory)
	if err != nil {
		absDir = directory
	}
	if canonical, err := filepath.EvalSymlinks(absDir); err == nil {
		absDir = canonical
	}

	s.Get(cleanPrefix+"/*", func(req *httpx.Request) *httpx.Response {
		rel := req.PathParams["*"]
		candidate := filepath.Join(absDir, rel)

		resolved, err := filepath.EvalSymlinks(candidate)
		if err != nil {
			resolved = filepath.Clean(candidate)
		}
		if resolved != absDir && !strings.HasPrefix(resolved, absDir+string(filepath.Separator)) {
			return httpx.Forbidden("Access denied")
		}
		return httpx.FromFile(resolved)
	})
}

// Start binds the listening socket, starts the reactor and worker pool,
// and blocks until Stop is called.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.stopped = make(chan struct{})
	s.mu.Unlock()

	fd, err := listenTCP(s.cfg.ListenAddr, s.cfg.Backlog)
	if err != nil {
		s.logger.Error("listen", zap.String("addr", s.cfg.ListenAddr), zap.Error(err))
		return err
	}
	s.listenFd = fd

	s.pool = pool.New(s.cfg.WorkerPoolSize, s.logger)

	react, err := reactor.New(s.logger)
	if err != nil {
		unix.Close(fd)
		return fmt.Errorf("server: create reactor: %w", err)
	}
	s.react = react

	if err := s.react.RegisterRead(fd, s.onListenerReadable); err != nil {
		unix.Close(fd)
		return fmt.Errorf("server: register listener: %w", err)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- s.react.Run() }()

	select {
	case <-s.stopped:
		return nil
	case err := <-runErr:
		return err
	}
}

// Stop signals Start to return, closing the listening socket and draining
// the worker pool.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	if s.react != nil {
		s.react.Stop()
	}
	if s.listenFd >= 0 {
		unix.Close(s.listenFd)
		s.listenFd = -1
	}
	if s.pool != nil {
		if !s.pool.CloseTimeout(s.cfg.ShutdownTimeout) {
			s.logger.Warn("server: shutdown timed out, workers still draining",
				zap.Duration("timeout", s.cfg.ShutdownTimeout))
		}
	}
	close(s.stopped)
}

// onListenerReadable drains every pending connection and hands each one to
// the reactor for a single read-ready notification before the worker pool
// takes over, mirroring the original event loop's accept/register split.
func (s *Server) onListenerReadable(_ int, _ reactor.EventType) {
	acceptAll(s.listenFd, func(clientFd int) {
		_ = s.react.RegisterRead(clientFd, s.onClientReadable)
	})
}

func (s *Server) onClientReadable(fd int, _ reactor.EventType) {
	_ = s.react.Unregister(fd)
	_ = s.pool.Submit(func() { s.handleConnection(fd) })
}

// handleConnection runs entirely off the reactor goroutine: read the
// request, dispatch it, write the response, and close unless it became a
// WebSocket connection, in which case the registered handler owns it.
func (s *Server) handleConnection(fd int) {
	data, err := netconn.ReadRequest(fd, s.cfg.ReadBufferSize)
	if err != nil {
		s.logger.Debug("read request", zap.Int("fd", fd), zap.Error(err))
		unix.Close(fd)
		return
	}
	if len(data) == 0 {
		unix.Close(fd)
		return
	}

	req := httpx.Parse(data)

	if wsproto.IsUpgradeRequest(req) {
		s.handleWebSocketUpgrade(fd, req)
		return
	}

	resp := s.dispatchSafely(req)
	if _, err := netconn.WriteAll(fd, resp.Bytes()); err != nil {
		s.logger.Warn("write response", zap.Int("fd", fd), zap.Error(err))
		unix.Close(fd)
		return
	}
	unix.Close(fd)
}

// dispatchSafely runs the router at the worker boundary: a panicking handler
// is recovered, logged, and answered with a 500 instead of taking down the
// worker goroutine and leaking fd past handleConnection's Close calls.
func (s *Server) dispatchSafely(req *httpx.Request) (resp *httpx.Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic", zap.Any("recovered", r), zap.String("path", req.Path))
			resp = httpx.InternalError("Internal Server Error")
		}
	}()
	return s.router.Dispatch(req)
}

func (s *Server) handleWebSocketUpgrade(fd int, req *httpx.Request) {
	resp, err := wsproto.UpgradeResponse(req)
	if err != nil {
		s.logger.Debug("websocket upgrade rejected", zap.String("path", req.Path), zap.Error(err))
		netconn.WriteAll(fd, httpx.BadRequest(err.Error()).Bytes())
		unix.Close(fd)
		return
	}

	if _, err := netconn.WriteAll(fd, resp.Bytes()); err != nil {
		s.logger.Warn("write upgrade response", zap.Int("fd", fd), zap.Error(err))
		unix.Close(fd)
		return
	}

	s.mu.Lock()
	handler, ok := s.wsHandlers[req.Path]
	s.mu.Unlock()
	if !ok {
		unix.Close(fd)
		return
	}

	conn := newWSConn(fd, req.Path)
	go func() {
		defer conn.Close()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("websocket handler panic", zap.String("path", req.Path), zap.Any("recovered", r))
			}
		}()
		handler(conn, req)
	}()
}
