// Package reactor implements a single-threaded, readiness-driven event
// dispatcher on top of Linux epoll. One goroutine owns the epoll
// descriptor and is the only caller of epoll_wait; everything else is
// dispatched through per-descriptor callbacks.
package reactor

import "errors"

// EventType identifies the readiness class that fired for a descriptor.
type EventType int

const (
	// EventRead fires when a descriptor becomes readable.
	EventRead EventType = 1 << iota
	// EventWrite fires when a descriptor becomes writable.
	EventWrite
	// EventError fires on EPOLLERR/EPOLLHUP; delivered alongside Read or Write.
	EventError
)

// Callback handles a readiness notification for fd.
type Callback func(fd int, ev EventType)

// ErrClosed reports use of a closed reactor. The epoll Reactor in this
// package has no Close method, and none of its methods return ErrClosed.
var ErrClosed = errors.New("reactor: closed")

// Reactor multiplexes descriptor readiness and dispatches to callbacks.
type Reactor interface {
	// RegisterRead installs cb for read readiness on fd, overwriting any
	// previous read callback for the same descriptor.
	RegisterRead(fd int, cb Callback) error
	// RegisterWrite installs cb for write readiness on fd, overwriting any
	// previous write callback for the same descriptor.
	RegisterWrite(fd int, cb Callback) error
	// Unregister removes both read and write registrations for fd. Idempotent.
	Unregister(fd int) error
	// Run blocks, draining readiness events until Stop is called.
	Run() error
	// Stop signals Run to return before its next wait.
	Stop()
}
