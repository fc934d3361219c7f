package dbc

import (
	"fmt"
	"strings"
)

// Message owns an ordered set of Signals and the raw payload they are
// packed into. Its byte length is always one of the sixteen values in
// the DLC table.
type Message struct {
	ID                     uint32
	Name                   string
	Transmitter            string
	AdditionalTransmitters []string
	Dlc                    int
	Length                 int
	CycleMs                float64

	payload   []byte
	signals   []*Signal
	byName    map[string]*Signal
	observers []messageObserver
}

// NewMessage builds an empty message with the given id.
func NewMessage(id uint32, name, transmitter string) *Message {
	return &Message{
		ID:          id,
		Name:        name,
		Transmitter: transmitter,
		byName:      make(map[string]*Signal),
	}
}

// SetDlc sets the message's DLC and reallocates a zero-filled payload
// of the corresponding byte length.
func (m *Message) SetDlc(dlc int) error {
	length, ok := DLCToLength(dlc)
	if !ok {
		return fmt.Errorf("message %q: dlc %d: %w", m.Name, dlc, ErrInvalidDlc)
	}
	m.Dlc = dlc
	m.Length = length
	m.payload = make([]byte, length)
	return nil
}

// SetLength sets the message's byte length and reallocates a
// zero-filled payload, deriving the DLC from the length table.
func (m *Message) SetLength(length int) error {
	dlc, ok := LengthToDLC(length)
	if !ok {
		return fmt.Errorf("message %q: length %d: %w", m.Name, length, ErrInvalidDlc)
	}
	m.Dlc = dlc
	m.Length = length
	m.payload = make([]byte, length)
	return nil
}

func (m *Message) addObserver(o messageObserver) {
	m.observers = append(m.observers, o)
}

func (m *Message) notify() {
	for _, o := range m.observers {
		o.onMessageUpdated(m.ID)
	}
}

// AddSignal appends a signal to the message, binding its parent
// back-reference. Duplicate names are rejected silently (the first
// signal with a given name is kept; this mirrors the bus-level
// pending-signal dedup, which already filters duplicates before
// build() promotes them here).
func (m *Message) AddSignal(s *Signal) {
	if _, exists := m.byName[s.Name]; exists {
		return
	}
	s.parent = m
	m.signals = append(m.signals, s)
	m.byName[s.Name] = s
}

// GetSignal looks up an owned signal by name.
func (m *Message) GetSignal(name string) (*Signal, bool) {
	s, ok := m.byName[name]
	return s, ok
}

// Signals returns the message's owned signals in insertion order.
func (m *Message) Signals() []*Signal {
	return m.signals
}

// GetData returns the message's current payload.
func (m *Message) GetData() []byte {
	return m.payload
}

// SetData copies data into the message's payload (clamped to Length,
// zero-padded if shorter), decodes every owned signal against the new
// payload in insertion order, and notifies observers. Unlike the
// original implementation, the length check is against the message's
// own Length field, never a pointer or struct size.
func (m *Message) SetData(data []byte) error {
	if m.payload == nil {
		return fmt.Errorf("message %q: %w: dlc/length never set", m.Name, ErrInvalidDlc)
	}

	n := len(data)
	if n > m.Length {
		n = m.Length
	}
	for i := range m.payload {
		if i < n {
			m.payload[i] = data[i]
		} else {
			m.payload[i] = 0
		}
	}

	for _, s := range m.signals {
		if err := s.decode(m.payload, m.Length); err != nil {
			return err
		}
	}
	m.notify()
	return nil
}

// pack zero-fills the payload and ORs every signal's current raw
// value into it, then notifies observers. Called whenever a signal's
// raw or physical value is set directly.
func (m *Message) pack() error {
	for i := range m.payload {
		m.payload[i] = 0
	}
	for _, s := range m.signals {
		if err := s.encode(m.payload, m.Length); err != nil {
			return err
		}
	}
	m.notify()
	return nil
}

func (m *Message) String() string {
	names := make([]string, len(m.signals))
	for i, s := range m.signals {
		names[i] = s.Name
	}
	return fmt.Sprintf("%s(id=%d, dlc=%d, len=%d, tx=%s) signals=[%s]",
		m.Name, m.ID, m.Dlc, m.Length, m.Transmitter, strings.Join(names, ", "))
}
