//go:build linux
// +build linux

package reactor

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const maxEvents = 128

// pollTimeoutMs bounds each epoll_wait call so Run can observe Stop without
// a self-pipe or eventfd wakeup descriptor.
const pollTimeoutMs = 200

// epollReactor implements Reactor using Linux epoll(7).
type epollReactor struct {
	epfd int

	mu   sync.Mutex
	read map[int]Callback
	write map[int]Callback

	running atomic.Bool
	stop    atomic.Bool

	logger *zap.Logger
}

// New creates an epoll-backed Reactor. A nil logger disables logging.
func New(logger *zap.Logger) (Reactor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, fmt.Errorf("reactor: epoll_create1: %w", err)
	}
	return &epollReactor{
		epfd:   epfd,
		read:   make(map[int]Callback),
		write:  make(map[int]Callback),
		logger: logger,
	}, nil
}

func (r *epollReactor) RegisterRead(fd int, cb Callback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, hadWrite := r.write[fd]
	r.read[fd] = cb
	if err := r.applyEvents(fd, true, hadWrite); err != nil {
		delete(r.read, fd)
		return err
	}
	return nil
}

func (r *epollReactor) RegisterWrite(fd int, cb Callback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, hadRead := r.read[fd]
	r.write[fd] = cb
	if err := r.applyEvents(fd, hadRead, true); err != nil {
		delete(r.write, fd)
		return err
	}
	return nil
}

// applyEvents adds or modifies the epoll registration for fd to watch the
// given readiness classes. Caller holds r.mu.
func (r *epollReactor) applyEvents(fd int, wantRead, wantWrite bool) error {
	var events uint32
	if wantRead {
		events |= unix.EPOLLIN
	}
	if wantWrite {
		events |= unix.EPOLLOUT
	}
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}

	// Both callers store the new callback before calling here, so the maps
	// cannot tell a fresh fd from a known one: try ADD and fall back to MOD.
	op := unix.EPOLL_CTL_ADD

	if err := unix.EpollCtl(r.epfd, op, fd, &ev); err != nil {
		if op == unix.EPOLL_CTL_ADD && err == unix.EEXIST {
			if err2 := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err2 != nil {
				return fmt.Errorf("reactor: epoll_ctl mod fd=%d: %w", fd, err2)
			}
			return nil
		}
		return fmt.Errorf("reactor: epoll_ctl fd=%d: %w", fd, err)
	}
	return nil
}

func (r *epollReactor) Unregister(fd int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, hadRead := r.read[fd]
	_, hadWrite := r.write[fd]
	if !hadRead && !hadWrite {
		return nil
	}
	delete(r.read, fd)
	delete(r.write, fd)
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil && err != unix.ENOENT {
		return fmt.Errorf("reactor: epoll_ctl del fd=%d: %w", fd, err)
	}
	return nil
}

func (r *epollReactor) Run() error {
	r.running.Store(true)
	defer r.running.Store(false)

	events := make([]unix.EpollEvent, maxEvents)
	for !r.stop.Load() {
		n, err := unix.EpollWait(r.epfd, events, pollTimeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("reactor: epoll_wait: %w", err)
		}
		for i := 0; i < n; i++ {
			r.dispatch(events[i])
		}
	}
	return nil
}

// dispatch invokes the callback(s) registered for one reported event,
// recovering from a callback panic so the loop keeps running.
func (r *epollReactor) dispatch(ev unix.EpollEvent) {
	fd := int(ev.Fd)

	r.mu.Lock()
	readCb := r.read[fd]
	writeCb := r.write[fd]
	r.mu.Unlock()

	errored := ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0

	if ev.Events&unix.EPOLLIN != 0 && readCb != nil {
		r.invoke(readCb, fd, EventRead)
	}
	if ev.Events&unix.EPOLLOUT != 0 && writeCb != nil {
		r.invoke(writeCb, fd, EventWrite)
	}
	if errored {
		cb := readCb
		if cb == nil {
			cb = writeCb
		}
		if cb != nil {
			r.invoke(cb, fd, EventError)
		}
		_ = r.Unregister(fd)
	}
}

func (r *epollReactor) invoke(cb Callback, fd int, ev EventType) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("reactor: callback panic", zap.Int("fd", fd), zap.Any("recovered", rec))
		}
	}()
	cb(fd, ev)
}

func (r *epollReactor) Stop() {
	r.stop.Store(true)
}
