// Package serialfeed reads line-framed hex CAN frames off a serial
// port (the "ID#DATA" shape common SLCAN/ELM327 adapters emit) and
// dispatches them into a dbc.Bus.
package serialfeed

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

// Config configures the serial port a Feed reads from.
type Config struct {
	Port string
	Baud int
}

// Feed reads frames from a serial port and decodes them against a
// dbc.Bus.
type Feed struct {
	config Config
	bus    *dbc.Bus
	logger *slog.Logger

	port     *serial.Port
	stopChan chan struct{}
}

// New builds a Feed bound to bus; frames read off the port are
// dispatched to the message they name by id.
func New(config Config, bus *dbc.Bus, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{config: config, bus: bus, logger: logger}
}

// Start opens the serial port and begins reading in a background
// goroutine. The goroutine exits when ctx is canceled or Stop is
// called.
func (f *Feed) Start(ctx context.Context) error {
	port, err := serial.OpenPort(&serial.Config{
		Name:        f.config.Port,
		Baud:        f.config.Baud,
		ReadTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("opening serial port %s: %w", f.config.Port, err)
	}
	f.port = port
	f.stopChan = make(chan struct{})

	go f.readFrames(ctx)
	return nil
}

// Stop closes the serial port, ending the read goroutine.
func (f *Feed) Stop() error {
	if f.stopChan != nil {
		select {
		case <-f.stopChan:
		default:
			close(f.stopChan)
		}
	}
	if f.port != nil {
		return f.port.Close()
	}
	return nil
}

// readFrames buffers lines off the port and parses each as
// "ID#AA BB CC ...". Malformed lines are logged and skipped; they
// never stop the feed.
func (f *Feed) readFrames(ctx context.Context) {
	scanner := bufio.NewScanner(f.port)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		case <-f.stopChan:
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := f.dispatchLine(line); err != nil {
			f.logger.Warn("malformed serial frame", "line", line, "err", err)
		}
	}
}

func (f *Feed) dispatchLine(line string) error {
	idPart, dataPart, ok := strings.Cut(line, "#")
	if !ok {
		return fmt.Errorf("missing '#' separator")
	}

	id, err := strconv.ParseUint(strings.TrimSpace(idPart), 16, 32)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", idPart, err)
	}

	data, err := (dbc.BitCodec{}).HexDecode(dataPart, " ")
	if err != nil {
		return err
	}

	msg, ok := f.bus.GetMessageByID(uint32(id))
	if !ok {
		return nil
	}
	return msg.SetData(data)
}
