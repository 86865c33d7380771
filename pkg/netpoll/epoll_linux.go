//go:build linux

package netpoll

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// maxEvents bounds the notifications returned by one Wait.
const maxEvents = 256

// wakeToken is reserved for the internal eventfd used by Wake.
const wakeToken Token = 0

// NewPoller creates an epoll instance.
func NewPoller() (*Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("epoll_create1", err)
	}
	wfd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("eventfd", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakeToken)}
	if err := unix.EpollCtl(fd, unix.EPOLL_CTL_ADD, wfd, &ev); err != nil {
		_ = unix.Close(wfd)
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("epoll_ctl add", err)
	}
	return &Poller{
		epfd:   fd,
		wakefd: wfd,
		tokens: make(map[int]Token),
	}, nil
}

// Wake makes a concurrent or subsequent Wait return early.
func (p *Poller) Wake() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	if _, err := unix.Write(p.wakefd, buf[:]); err != nil && err != unix.EAGAIN {
		return os.NewSyscallError("write eventfd", err)
	}
	return nil
}

// Register adds fd with the given interest and returns its token.
// Edge-triggered registrations report a readiness change once; the owner
// must then read or write until EAGAIN.
func (p *Poller) Register(fd int, interest Event, edge bool) (Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrClosed
	}
	if _, ok := p.tokens[fd]; ok {
		return 0, fmt.Errorf("netpoll: descriptor %d already registered", fd)
	}

	p.next++
	tok := p.next

	ev := unix.EpollEvent{
		Events: epollEvents(interest, edge),
		Fd:     int32(tok),
	}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return 0, os.NewSyscallError("epoll_ctl add", err)
	}
	p.tokens[fd] = tok
	return tok, nil
}

// Deregister removes fd. Deregistering an unknown descriptor is a no-op.
func (p *Poller) Deregister(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if _, ok := p.tokens[fd]; !ok {
		return nil
	}
	delete(p.tokens, fd)
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return os.NewSyscallError("epoll_ctl del", err)
	}
	return nil
}

// Wait blocks up to timeout (negative means forever) and returns the
// notifications that became ready, in the order the kernel reported them.
// An interrupted wait returns an empty batch.
func (p *Poller) Wait(timeout time.Duration) ([]Notification, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	events := make([]unix.EpollEvent, maxEvents)
	n, err := unix.EpollWait(p.epfd, events, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		p.mu.Lock()
		closed := p.closed
		p.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}
		return nil, os.NewSyscallError("epoll_wait", err)
	}

	out := make([]Notification, 0, n)
	for _, ev := range events[:n] {
		if Token(uint32(ev.Fd)) == wakeToken {
			var buf [8]byte
			_, _ = unix.Read(p.wakefd, buf[:])
			continue
		}
		var kind Event
		if ev.Events&(unix.EPOLLIN|unix.EPOLLRDHUP|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
			kind |= Readable
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			kind |= Writable
		}
		if kind == 0 {
			continue
		}
		out = append(out, Notification{Token: Token(uint32(ev.Fd)), Event: kind})
	}
	return out, nil
}

// Close releases the epoll instance. Registered descriptors stay open.
func (p *Poller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.tokens = nil
	_ = unix.Close(p.wakefd)
	return os.NewSyscallError("close", unix.Close(p.epfd))
}

func epollEvents(interest Event, edge bool) uint32 {
	var events uint32 = unix.EPOLLRDHUP
	if interest&Readable != 0 {
		events |= unix.EPOLLIN
	}
	if interest&Writable != 0 {
		events |= unix.EPOLLOUT
	}
	if edge {
		events |= unix.EPOLLET
	}
	return events
}
