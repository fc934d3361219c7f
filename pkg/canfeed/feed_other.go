//go:build !linux

package canfeed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

// ErrUnsupported is returned by Start on platforms without
// SocketCAN support.
var ErrUnsupported = errors.New("canfeed: SocketCAN is only supported on linux")

// Feed is a no-op stand-in on non-linux platforms so callers can
// still build a binary; Start always fails.
type Feed struct{}

// New builds a Feed stub. Parameters are accepted for interface
// symmetry with the linux implementation but unused.
func New(iface string, bus *dbc.Bus, logger *slog.Logger) *Feed {
	return &Feed{}
}

func (f *Feed) Start(ctx context.Context) error { return ErrUnsupported }
func (f *Feed) Stop() error                     { return nil }
