package server

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/SarthakJain2/monitord/internal/netconn"
	"github.com/SarthakJain2/monitord/internal/wsproto"
)

// WSConn is a connection that has completed the WebSocket handshake. Reads
// and writes happen over the raw fd directly; the reactor no longer owns
// it once the handshake response has gone out.
type WSConn struct {
	fd   int
	path string

	writeMu sync.Mutex
	closed  bool
}

func newWSConn(fd int, path string) *WSConn {
	return &WSConn{fd: fd, path: path}
}

// Path is the route the client upgraded on.
func (c *WSConn) Path() string {
	return c.path
}

// ReadFrame blocks until a full frame has arrived and returns it decoded.
// Frames may span multiple reads; partial frames are buffered across calls
// via buf. Unlike an HTTP request read, a WebSocket connection is expected
// to sit idle between frames, so the underlying read retries EAGAIN
// indefinitely rather than timing out after ReadRequest's ~1s budget.
func (c *WSConn) ReadFrame(buf *[]byte) (*wsproto.Frame, error) {
	for {
		if frame, consumed, err := wsproto.DecodeFrame(*buf); err != nil {
			return nil, err
		} else if frame != nil {
			*buf = append([]byte(nil), (*buf)[consumed:]...)
			return frame, nil
		}

		chunk, err := netconn.ReadStream(c.fd, 4096)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			return nil, unix.ECONNRESET
		}
		*buf = append(*buf, chunk...)
	}
}

// WriteText sends a final text frame.
func (c *WSConn) WriteText(text string) error {
	frame, err := wsproto.EncodeText(text)
	if err != nil {
		return err
	}
	return c.write(frame)
}

// WriteBinary sends a final binary frame.
func (c *WSConn) WriteBinary(payload []byte) error {
	frame, err := wsproto.EncodeFrame(wsproto.OpBinary, payload)
	if err != nil {
		return err
	}
	return c.write(frame)
}

// WriteClose sends a close frame with an empty payload.
func (c *WSConn) WriteClose() error {
	frame, err := wsproto.EncodeFrame(wsproto.OpClose, nil)
	if err != nil {
		return err
	}
	return c.write(frame)
}

func (c *WSConn) write(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return unix.EBADF
	}
	_, err := netconn.WriteAll(c.fd, frame)
	return err
}

// Close closes the underlying file descriptor. Safe to call more than once.
func (c *WSConn) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return unix.Close(c.fd)
}
