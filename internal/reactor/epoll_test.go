//go:build linux
// +build linux

package reactor

import (
	"net"
	"testing"
	"time"
)

func fdOf(t *testing.T, c *net.TCPConn) int {
	raw, err := c.SyscallConn()
	if err != nil {
		t.Fatal(err)
	}
	var fd int
	if err := raw.Control(func(f uintptr) { fd = int(f) }); err != nil {
		t.Fatal(err)
	}
	return fd
}

func TestRegisterUnregisterIdempotent(t *testing.T) {
	r, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Unregister(99999); err != nil {
		t.Fatalf("unregister on missing fd should be a no-op, got %v", err)
	}
}

func TestRunStopReturns(t *testing.T) {
	r, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- r.Run() }()

	time.Sleep(10 * time.Millisecond)
	r.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestReadReadinessFires(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	r, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	go r.Run()
	defer r.Stop()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	server := <-accepted
	defer server.Close()

	tcpServer := server.(*net.TCPConn)
	fd := fdOf(t, tcpServer)

	fired := make(chan struct{}, 1)
	if err := r.RegisterRead(fd, func(fd int, ev EventType) {
		select {
		case fired <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := client.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("read readiness callback never fired")
	}
}
