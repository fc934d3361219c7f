package parser

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

// Loader reads DBC files into a Registry, one bus per file named
// after the file's stem.
type Loader struct {
	Registry *dbc.Registry
	Logger   *slog.Logger
	chain    []LineParser
}

// NewLoader builds a Loader backed by the default parser chain.
func NewLoader(registry *dbc.Registry, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{Registry: registry, Logger: logger, chain: Chain()}
}

// LoadDBC opens path, creates (or reuses) a bus named after the
// file's stem, and dispatches every non-blank line through the parser
// chain. I/O errors are reported as a returned error, never a panic.
// A line that a parser handles but rejects with an error is logged and
// skipped; it never aborts the load. A line that no parser handles
// (including one whose prefix matched but whose pattern did not) is
// skipped without a log entry.
func (l *Loader) LoadDBC(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w: %v", path, dbc.ErrIO, err)
	}
	defer f.Close()

	busName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	l.Registry.CreateBus(busName)

	ctx := &Context{Registry: l.Registry, BusName: busName}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := Dispatch(l.chain, line, ctx); err != nil {
			l.Logger.Warn("dbc line rejected", "bus", busName, "line", line, "err", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w: %v", path, dbc.ErrIO, err)
	}

	bus, ok := l.Registry.GetBus(busName)
	if !ok {
		return fmt.Errorf("bus %q vanished during load: %w", busName, dbc.ErrUnresolvedReference)
	}
	bus.Build()
	return nil
}
