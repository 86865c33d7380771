//go:build linux

package netpoll

import (
	"fmt"
	"io"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Listen opens a non-blocking TCP listener on address. network is one of
// "tcp", "tcp4" or "tcp6".
func Listen(network, address string) (*Listener, error) {
	switch network {
	case "tcp", "tcp4", "tcp6":
	default:
		return nil, fmt.Errorf("netpoll: unsupported network %q", network)
	}

	addr, err := net.ResolveTCPAddr(network, address)
	if err != nil {
		return nil, err
	}
	family, sa, err := sockaddr(network, addr)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	if err := setupListener(fd, family, sa); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	bound, err := unix.Getsockname(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("getsockname", err)
	}
	return &Listener{fd: fd, addr: tcpAddr(bound)}, nil
}

func setupListener(fd, family int, sa unix.Sockaddr) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return os.NewSyscallError("setsockopt SO_REUSEADDR", err)
	}
	if family == unix.AF_INET6 {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0); err != nil {
			return os.NewSyscallError("setsockopt IPV6_V6ONLY", err)
		}
	}
	if err := unix.Bind(fd, sa); err != nil {
		return os.NewSyscallError("bind", err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		return os.NewSyscallError("listen", err)
	}
	return nil
}

// Accept takes one pending connection. With no connection pending it
// returns an error satisfying errors.Is(err, syscall.EAGAIN).
func (l *Listener) Accept() (*Conn, error) {
	for {
		nfd, sa, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if err == unix.EINTR || err == unix.ECONNABORTED {
				continue
			}
			return nil, os.NewSyscallError("accept4", err)
		}
		_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		return &Conn{fd: nfd, remote: tcpAddr(sa)}, nil
	}
}

// Close closes the listening socket.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = os.NewSyscallError("close", unix.Close(l.fd))
	})
	return l.closeErr
}

// Read reads available bytes. A closed peer yields io.EOF.
func (c *Conn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(c.fd, p)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, os.NewSyscallError("read", err)
		}
		if n <= 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

// Write writes as much of p as the socket accepts. A short count with a nil
// error means the send buffer filled up.
func (c *Conn) Write(p []byte) (int, error) {
	for {
		n, err := unix.Write(c.fd, p)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, os.NewSyscallError("write", err)
		}
		return n, nil
	}
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = os.NewSyscallError("close", unix.Close(c.fd))
	})
	return c.closeErr
}

func sockaddr(network string, addr *net.TCPAddr) (int, unix.Sockaddr, error) {
	ip := addr.IP
	if network != "tcp6" && (len(ip) == 0 || ip.To4() != nil) {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		if len(ip) != 0 {
			copy(sa.Addr[:], ip.To4())
		}
		return unix.AF_INET, sa, nil
	}
	if network == "tcp4" {
		return 0, nil, fmt.Errorf("netpoll: %s is not an IPv4 address", addr)
	}
	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], ip.To16())
	return unix.AF_INET6, sa, nil
}

func tcpAddr(sa unix.Sockaddr) net.Addr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IPv4(a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3]), Port: a.Port}
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, a.Addr[:])
		return &net.TCPAddr{IP: ip, Port: a.Port}
	default:
		return &net.TCPAddr{}
	}
}
