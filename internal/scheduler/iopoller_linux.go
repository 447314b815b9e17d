//go:build linux

package scheduler

import (
	"sync"

	"golang.org/x/sys/unix"

	"amberlang/internal/process"
	"amberlang/internal/vmerrors"
)

// epollPoller is the Linux IOPoller, backed by a single level-triggered
// epoll instance (spec.md §4.D, SPEC_FULL.md §4.D "epoll ... registered
// per process-owned file descriptor").
type epollPoller struct {
	epfd   int
	inject func(*process.Process)

	mu      sync.Mutex
	waiters map[int]*process.Process

	closeOnce sync.Once
	closed    chan struct{}
}

// NewIOPoller returns the platform I/O poller, handing ready processes to
// inject.
func NewIOPoller(inject func(*process.Process)) (IOPoller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "epoll_create1")
	}
	return &epollPoller{
		epfd:    fd,
		inject:  inject,
		waiters: make(map[int]*process.Process),
		closed:  make(chan struct{}),
	}, nil
}

func (e *epollPoller) Register(fd int, interest Interest, p *process.Process) error {
	var events uint32
	if interest&InterestRead != 0 {
		events |= unix.EPOLLIN
	}
	if interest&InterestWrite != 0 {
		events |= unix.EPOLLOUT
	}
	e.mu.Lock()
	_, exists := e.waiters[fd]
	e.waiters[fd] = p
	e.mu.Unlock()

	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	op := unix.EPOLL_CTL_ADD
	if exists {
		op = unix.EPOLL_CTL_MOD
	}
	if err := unix.EpollCtl(e.epfd, op, fd, &ev); err != nil {
		return vmerrors.Wrap(vmerrors.IoError, err, "epoll_ctl add fd %d", fd)
	}
	return nil
}

func (e *epollPoller) Deregister(fd int) error {
	e.mu.Lock()
	delete(e.waiters, fd)
	e.mu.Unlock()
	if err := unix.EpollCtl(e.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil && err != unix.ENOENT {
		return vmerrors.Wrap(vmerrors.IoError, err, "epoll_ctl del fd %d", fd)
	}
	return nil
}

func (e *epollPoller) Run() {
	events := make([]unix.EpollEvent, 128)
	timeoutMS := int(pollTimeout.Milliseconds())
	for {
		select {
		case <-e.closed:
			return
		default:
		}
		n, err := unix.EpollWait(e.epfd, events, timeoutMS)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			e.mu.Lock()
			p, ok := e.waiters[fd]
			if ok {
				delete(e.waiters, fd)
			}
			e.mu.Unlock()
			if ok {
				unix.EpollCtl(e.epfd, unix.EPOLL_CTL_DEL, fd, nil)
				e.inject(p)
			}
		}
	}
}

func (e *epollPoller) Close() error {
	e.closeOnce.Do(func() { close(e.closed) })
	return unix.Close(e.epfd)
}
