package server

import (
	"time"

	"go.uber.org/zap"
)

// Config holds the tunables that shape how Server listens and drains
// connections. Fields mirror the original implementation's server
// configuration (host/port/thread pool size/read buffer size) generalized
// to this reactor-plus-pool design.
type Config struct {
	// ListenAddr is the TCP address to bind, e.g. "0.0.0.0:8080".
	ListenAddr string
	// Backlog is the listen() backlog passed to the kernel.
	Backlog int
	// WorkerPoolSize is the number of goroutines draining the request queue.
	WorkerPoolSize int
	// ReadBufferSize bounds each individual read syscall while assembling a request.
	ReadBufferSize int
	// ShutdownTimeout bounds how long Stop waits for in-flight requests to drain.
	ShutdownTimeout time.Duration
	// Logger receives socket, reactor, and handler failures. Defaults to a
	// no-op logger when left nil.
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults for a small-to-medium deployment.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      ":8080",
		Backlog:         128,
		WorkerPoolSize:  16,
		ReadBufferSize:  8192,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Option customizes a Config during New.
type Option func(*Config)

// WithListenAddr overrides the bind address.
func WithListenAddr(addr string) Option {
	return func(c *Config) { c.ListenAddr = addr }
}

// WithWorkerPoolSize overrides the number of request-handling workers.
func WithWorkerPoolSize(n int) Option {
	return func(c *Config) { c.WorkerPoolSize = n }
}

// WithReadBufferSize overrides the per-read syscall buffer size.
func WithReadBufferSize(n int) Option {
	return func(c *Config) { c.ReadBufferSize = n }
}

// WithShutdownTimeout overrides how long Stop waits for in-flight work.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Config) { c.ShutdownTimeout = d }
}

// WithLogger overrides the logger used for socket, reactor, and handler failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}
