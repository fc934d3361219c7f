//go:build linux

// Package canfeed reads raw classic-CAN frames off a SocketCAN
// interface and dispatches them into a dbc.Bus.
package canfeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

const canFrameSize = 16 // struct can_frame: u32 id, u8 len, u8 pad[3], u8 data[8]

// Feed binds a raw AF_CAN/SOCK_RAW socket on a given interface and
// dispatches every received frame into a dbc.Bus by CAN id.
type Feed struct {
	iface  string
	bus    *dbc.Bus
	logger *slog.Logger

	fd       int
	stopChan chan struct{}
}

// New builds a Feed bound to bus, reading from the named CAN
// interface (e.g. "can0", "vcan0").
func New(iface string, bus *dbc.Bus, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{iface: iface, bus: bus, logger: logger, fd: -1}
}

// Start binds the socket and begins reading in a background
// goroutine.
func (f *Feed) Start(ctx context.Context) error {
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return fmt.Errorf("creating CAN socket: %w", err)
	}

	ifi, err := net.InterfaceByName(f.iface)
	if err != nil {
		unix.Close(fd)
		return fmt.Errorf("looking up interface %s: %w", f.iface, err)
	}

	addr := &unix.SockaddrCAN{Ifindex: ifi.Index}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return fmt.Errorf("binding CAN socket on %s: %w", f.iface, err)
	}

	f.fd = fd
	f.stopChan = make(chan struct{})
	go f.readFrames(ctx)
	return nil
}

// Stop closes the socket, ending the read goroutine.
func (f *Feed) Stop() error {
	if f.stopChan != nil {
		select {
		case <-f.stopChan:
		default:
			close(f.stopChan)
		}
	}
	if f.fd != -1 {
		err := unix.Close(f.fd)
		f.fd = -1
		return err
	}
	return nil
}

func (f *Feed) readFrames(ctx context.Context) {
	buf := make([]byte, canFrameSize)
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.stopChan:
			return
		default:
		}

		if f.fd == -1 {
			return
		}

		n, _, err := unix.Recvfrom(f.fd, buf, 0)
		if err != nil {
			if errors.Is(err, unix.EBADF) || errors.Is(err, net.ErrClosed) {
				return
			}
			f.logger.Warn("CAN read error", "iface", f.iface, "err", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if n < canFrameSize {
			continue
		}

		id := unix.CAN_EFF_MASK & leUint32(buf[0:4])
		if leUint32(buf[0:4])&unix.CAN_EFF_FLAG == 0 {
			id = unix.CAN_SFF_MASK & leUint32(buf[0:4])
		}
		length := int(buf[4])
		if length > 8 {
			length = 8
		}
		data := make([]byte, length)
		copy(data, buf[8:8+length])

		msg, ok := f.bus.GetMessageByID(id)
		if !ok {
			continue
		}
		if err := msg.SetData(data); err != nil {
			f.logger.Warn("failed to decode CAN frame", "id", id, "err", err)
		}
	}
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
