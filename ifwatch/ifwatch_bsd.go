//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package ifwatch

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// bsdWatcher reads link-state transitions off a raw PF_ROUTE socket,
// filtered to RTM_IFINFO messages, the same socket family and message class
// the original daemon's monitor_ifaces used.
type bsdWatcher struct {
	fd  int
	buf []byte
}

// New opens a raw AF_ROUTE socket. No kernel-side message filter is
// installed on it; Next discards every message that is not RTM_IFINFO.
func New() (Watcher, error) {
	fd, err := unix.Socket(unix.AF_ROUTE, unix.SOCK_RAW, unix.AF_UNSPEC)
	if err != nil {
		return nil, fmt.Errorf("ifwatch: opening routing socket: %w", err)
	}
	return &bsdWatcher{fd: fd, buf: make([]byte, 2048)}, nil
}

func (w *bsdWatcher) FD() int { return w.fd }

func (w *bsdWatcher) Next() (Event, error) {
	for {
		n, err := unix.Read(w.fd, w.buf)
		if err != nil {
			return Event{}, fmt.Errorf("ifwatch: reading routing socket: %w", err)
		}

		msgs, err := unix.ParseRoutingMessage(w.buf[:n])
		if err != nil {
			return Event{}, fmt.Errorf("ifwatch: parsing routing message: %w", err)
		}

		for _, m := range msgs {
			ifm, ok := m.(*unix.InterfaceMessage)
			if !ok || ifm.Header.Type != unix.RTM_IFINFO {
				continue
			}

			iface, err := net.InterfaceByIndex(int(ifm.Header.Index))
			if err != nil {
				continue
			}

			flags := int32(ifm.Header.Flags)
			up := flags&int32(unix.IFF_UP) != 0 && flags&int32(unix.IFF_RUNNING) != 0
			return Event{Iface: iface.Name, Up: up}, nil
		}
	}
}

func (w *bsdWatcher) Close() error {
	return unix.Close(w.fd)
}
