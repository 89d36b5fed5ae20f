package server

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestReadFrameSurvivesIdleConnection(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatalf("set nonblock: %v", err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })

	conn := newWSConn(fds[0], "/ws")
	defer conn.Close()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	var buf []byte
	go func() {
		frame, err := conn.ReadFrame(&buf)
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{text: string(frame.Payload)}
	}()

	// netconn.ReadRequest gives up after MaxAttempts*RetryInterval (~1s); an
	// idle WebSocket connection must survive well past that.
	time.Sleep(1200 * time.Millisecond)

	if _, err := unix.Write(fds[1], []byte{0x81, 0x02, 'h', 'i'}); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("ReadFrame returned error after idle period: %v", r.err)
		}
		if r.text != "hi" {
			t.Fatalf("frame payload = %q, want %q", r.text, "hi")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ReadFrame never returned after frame arrived")
	}
}
