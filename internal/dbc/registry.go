package dbc

import "log/slog"

// Registry is a named collection of Buses; every bus it holds is
// created through CreateBus.
type Registry struct {
	buses  map[string]*Bus
	order  []string
	logger *slog.Logger
}

// NewRegistry builds an empty registry. A nil logger is replaced with
// slog's default logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		buses:  make(map[string]*Bus),
		logger: logger,
	}
}

// CreateBus inserts a new bus under name if one doesn't already
// exist. Returns false (and logs) if the name is taken.
func (r *Registry) CreateBus(name string) bool {
	if _, exists := r.buses[name]; exists {
		r.logger.Warn("bus already exists", "bus", name)
		return false
	}
	r.buses[name] = NewBus(name, r.logger)
	r.order = append(r.order, name)
	r.logger.Info("bus created", "bus", name)
	return true
}

// GetBus looks up a bus by name.
func (r *Registry) GetBus(name string) (*Bus, bool) {
	b, ok := r.buses[name]
	if !ok {
		r.logger.Error("unknown bus", "bus", name)
	}
	return b, ok
}

// ListBuses returns every bus, in creation order.
func (r *Registry) ListBuses() []*Bus {
	out := make([]*Bus, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.buses[name])
	}
	return out
}
