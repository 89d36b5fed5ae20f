// Package netconn implements retrying, non-blocking reads and writes over a
// raw file descriptor, grounded on the original server's ReadRequest and
// SendResponse loops: read (or write) until the peer blocks, sleep briefly
// on EAGAIN, give up after about a second of retries.
package netconn

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"

	"github.com/SarthakJain2/monitord/internal/httpx"
)

// MaxAttempts bounds how many EAGAIN retries a read or write will tolerate
// before giving up.
const MaxAttempts = 100

// RetryInterval is the sleep between EAGAIN retries.
const RetryInterval = 10 * time.Millisecond

var ErrTimeout = errors.New("netconn: timed out waiting for socket readiness")

// ReadRequest accumulates bytes from fd until httpx.IsComplete reports a
// full request, the peer closes the connection, or MaxAttempts consecutive
// EAGAIN results are seen. bufSize bounds each individual read syscall.
func ReadRequest(fd int, bufSize int) ([]byte, error) {
	buf := make([]byte, bufSize)
	var data []byte
	attempts := 0

	for attempts < MaxAttempts {
		n, err := unix.Read(fd, buf)
		switch {
		case n > 0:
			data = append(data, buf[:n]...)
			attempts = 0
			if httpx.IsComplete(data) {
				return data, nil
			}
		case n == 0 && err == nil:
			return data, nil
		case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK):
			attempts++
			time.Sleep(RetryInterval)
		case errors.Is(err, unix.EINTR):
			// retry immediately, doesn't count against attempts
		default:
			return data, err
		}
	}

	if len(data) == 0 {
		return nil, ErrTimeout
	}
	return data, nil
}

// ReadStream blocks until fd yields at least one chunk of data, retrying
// EAGAIN indefinitely rather than giving up after MaxAttempts. It has none of
// ReadRequest's httpx framing: it returns whatever the kernel hands back in a
// single read, and is meant for long-lived connections (WebSocket frames)
// where silence from the peer is normal and not a timeout condition.
func ReadStream(fd int, bufSize int) ([]byte, error) {
	buf := make([]byte, bufSize)
	for {
		n, err := unix.Read(fd, buf)
		switch {
		case n > 0:
			return buf[:n], nil
		case n == 0 && err == nil:
			return nil, nil
		case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK):
			time.Sleep(RetryInterval)
		case errors.Is(err, unix.EINTR):
			// retry immediately
		default:
			return nil, err
		}
	}
}

// WriteAll writes all of data to fd, retrying on EAGAIN until every byte is
// sent or MaxAttempts consecutive EAGAIN results are seen.
func WriteAll(fd int, data []byte) (int, error) {
	sent := 0
	attempts := 0

	for sent < len(data) && attempts < MaxAttempts {
		n, err := unix.Write(fd, data[sent:])
		switch {
		case n > 0:
			sent += n
			attempts = 0
		case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK):
			attempts++
			time.Sleep(RetryInterval)
		case errors.Is(err, unix.EINTR):
			// retry immediately
		case err != nil:
			return sent, err
		default:
			return sent, ErrTimeout
		}
	}

	if sent < len(data) {
		return sent, ErrTimeout
	}
	return sent, nil
}
