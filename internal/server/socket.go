package server

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// listenTCP creates a non-blocking TCP listening socket bound to addr,
// grounded on the original server's Start(): socket, SO_REUSEADDR, bind,
// listen, then set O_NONBLOCK so every subsequent operation on it can be
// driven from the reactor instead of blocking a goroutine.
func listenTCP(addr string, backlog int) (int, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return -1, fmt.Errorf("resolve listen address %q: %w", addr, err)
	}

	domain := unix.AF_INET
	var sa unix.Sockaddr
	if ip4 := tcpAddr.IP.To4(); ip4 != nil {
		sa4 := &unix.SockaddrInet4{Port: tcpAddr.Port}
		copy(sa4.Addr[:], ip4)
		sa = sa4
	} else {
		domain = unix.AF_INET6
		sa6 := &unix.SockaddrInet6{Port: tcpAddr.Port}
		ip16 := tcpAddr.IP.To16()
		if ip16 == nil {
			ip16 = net.IPv6zero
		}
		copy(sa6.Addr[:], ip16)
		sa = sa6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}

	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bind %s: %w", addr, err)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("listen: %w", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("set listener nonblocking: %w", err)
	}

	return fd, nil
}

// acceptAll drains every pending connection on listenFd, setting each one
// non-blocking, until accept() returns EAGAIN. This is the accept-loop
// pattern the original event loop's read callback uses for its listening
// socket so no pending connection is left behind between epoll_wait calls.
func acceptAll(listenFd int, onAccept func(clientFd int)) {
	for {
		clientFd, _, err := unix.Accept(listenFd)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
				return
			}
			return
		}
		if err := unix.SetNonblock(clientFd, true); err != nil {
			unix.Close(clientFd)
			continue
		}
		onAccept(clientFd)
	}
}
