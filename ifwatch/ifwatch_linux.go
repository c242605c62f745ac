//go:build linux

package ifwatch

import (
	"encoding/binary"
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// linuxWatcher reads link-state transitions off an AF_NETLINK/NETLINK_ROUTE
// socket subscribed to the link multicast group, the Linux counterpart to
// the BSD PF_ROUTE watcher.
type linuxWatcher struct {
	fd  int
	buf []byte
}

// New opens a netlink socket subscribed to RTNLGRP_LINK, the group carrying
// RTM_NEWLINK/RTM_DELLINK interface-state notifications.
func New() (Watcher, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW, unix.NETLINK_ROUTE)
	if err != nil {
		return nil, fmt.Errorf("ifwatch: opening netlink socket: %w", err)
	}

	addr := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: 1 << (unix.RTNLGRP_LINK - 1),
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ifwatch: binding netlink socket: %w", err)
	}

	return &linuxWatcher{fd: fd, buf: make([]byte, 4096)}, nil
}

func (w *linuxWatcher) FD() int { return w.fd }

// ifinfomsg is the 16-byte header carried by RTM_NEWLINK/RTM_DELLINK
// payloads: family, pad, if_type (uint16), index (int32), flags (uint32),
// change (uint32).
type ifinfomsg struct {
	Family uint8
	_      uint8
	Type   uint16
	Index  int32
	Flags  uint32
	Change uint32
}

func parseIfinfomsg(b []byte) (ifinfomsg, bool) {
	if len(b) < 16 {
		return ifinfomsg{}, false
	}
	return ifinfomsg{
		Family: b[0],
		Type:   binary.LittleEndian.Uint16(b[2:4]),
		Index:  int32(binary.LittleEndian.Uint32(b[4:8])),
		Flags:  binary.LittleEndian.Uint32(b[8:12]),
		Change: binary.LittleEndian.Uint32(b[12:16]),
	}, true
}

func (w *linuxWatcher) Next() (Event, error) {
	for {
		n, err := unix.Read(w.fd, w.buf)
		if err != nil {
			return Event{}, fmt.Errorf("ifwatch: reading netlink socket: %w", err)
		}

		msgs, err := unix.ParseNetlinkMessage(w.buf[:n])
		if err != nil {
			return Event{}, fmt.Errorf("ifwatch: parsing netlink message: %w", err)
		}

		for _, m := range msgs {
			if m.Header.Type != unix.RTM_NEWLINK && m.Header.Type != unix.RTM_DELLINK {
				continue
			}

			info, ok := parseIfinfomsg(m.Data)
			if !ok {
				continue
			}

			iface, err := net.InterfaceByIndex(int(info.Index))
			if err != nil {
				continue
			}

			up := info.Flags&uint32(unix.IFF_UP) != 0 && info.Flags&uint32(unix.IFF_RUNNING) != 0
			return Event{Iface: iface.Name, Up: up}, nil
		}
	}
}

func (w *linuxWatcher) Close() error {
	return unix.Close(w.fd)
}
