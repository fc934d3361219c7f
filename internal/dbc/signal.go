package dbc

import (
	"fmt"
	"math"
)

// Signal is one bit-packed field of a Message. It is either
// unattached (just parsed, no parent yet) or attached, in which case
// decode/encode operate against the parent's payload.
type Signal struct {
	Name        string
	Multiplexer string
	StartBit    int
	Length      int
	ByteOrder   ByteOrder
	ValueType   ValueType
	Factor      float32
	Offset      float32
	Min         float32
	Max         float32
	Unit        string
	Receiver    string

	rawValue      uint64
	physicalValue float64

	parent    *Message
	observers []signalObserver
}

// NewSignal builds a detached signal with the given static metadata.
func NewSignal(name string, startBit, length int, order ByteOrder, valueType ValueType, factor, offset, min, max float32, unit, receiver, mux string) *Signal {
	return &Signal{
		Name:        name,
		Multiplexer: mux,
		StartBit:    startBit,
		Length:      length,
		ByteOrder:   order,
		ValueType:   valueType,
		Factor:      factor,
		Offset:      offset,
		Min:         min,
		Max:         max,
		Unit:        unit,
		Receiver:    receiver,
	}
}

// IsAttached reports whether the signal has a parent message.
func (s *Signal) IsAttached() bool {
	return s.parent != nil
}

func (s *Signal) addObserver(o signalObserver) {
	s.observers = append(s.observers, o)
}

func (s *Signal) notify() {
	if s.parent == nil {
		return
	}
	for _, o := range s.observers {
		o.onSignalUpdated(s.parent.ID, s.Name)
	}
}

// Raw returns the signal's last decoded/set raw bit pattern.
func (s *Signal) Raw() uint64 { return s.rawValue }

// Physical returns the signal's last decoded/set engineering value.
func (s *Signal) Physical() float64 { return s.physicalValue }

// setRawFromDecode is the decode-path setter: it only notifies when
// the raw value actually changes, and it never repacks (the payload
// it was derived from is already correct).
func (s *Signal) setRawFromDecode(raw uint64) {
	changed := raw != s.rawValue
	s.rawValue = raw
	s.physicalValue = s.rawToPhysical(raw)
	if changed {
		s.notify()
	}
}

func (s *Signal) rawToPhysical(raw uint64) float64 {
	switch s.ValueType {
	case IEEEFloat:
		return float64(math.Float32frombits(uint32(raw)))
	case IEEEDouble:
		return math.Float64frombits(raw)
	case Signed:
		return float64(signExtend(raw, s.Length))*float64(s.Factor) + float64(s.Offset)
	default:
		return float64(raw)*float64(s.Factor) + float64(s.Offset)
	}
}

func (s *Signal) physicalToRaw(physical float64) uint64 {
	switch s.ValueType {
	case IEEEFloat:
		return uint64(math.Float32bits(float32(physical)))
	case IEEEDouble:
		return math.Float64bits(physical)
	default:
		raw := int64(math.Round((physical - float64(s.Offset)) / float64(s.Factor)))
		return maskToLength(uint64(raw), s.Length)
	}
}

// signExtend reinterprets the low `length` bits of raw as a signed
// integer, sign-extending from bit length-1.
func signExtend(raw uint64, length int) int64 {
	masked := maskToLength(raw, length)
	signBit := uint64(1) << uint(length-1)
	if masked&signBit != 0 {
		mask := maskToLength(^uint64(0), length)
		return int64(masked | ^mask)
	}
	return int64(masked)
}

func maskToLength(v uint64, length int) uint64 {
	if length >= 64 {
		return v
	}
	return v & ((uint64(1) << uint(length)) - 1)
}

// SetRaw sets the signal's raw value directly, recomputes the
// physical value, notifies observers if the raw value changed, and
// repacks the owning message's payload.
func (s *Signal) SetRaw(raw uint64) error {
	if !s.IsAttached() {
		return fmt.Errorf("signal %q: %w", s.Name, ErrNotAttached)
	}
	raw = maskToLength(raw, s.Length)
	changed := raw != s.rawValue
	s.rawValue = raw
	s.physicalValue = s.rawToPhysical(s.rawValue)
	if changed {
		s.notify()
	}
	return s.parent.pack()
}

// SetPhysical sets the signal's engineering value, derives the raw
// bit pattern, notifies observers if the raw value changed, and
// repacks the owning message's payload.
func (s *Signal) SetPhysical(physical float64) error {
	if !s.IsAttached() {
		return fmt.Errorf("signal %q: %w", s.Name, ErrNotAttached)
	}
	raw := s.physicalToRaw(physical)
	changed := raw != s.rawValue
	s.rawValue = raw
	s.physicalValue = physical
	if changed {
		s.notify()
	}
	return s.parent.pack()
}

// SetValueType overrides the interpretation applied on the next
// decode (used by SIG_VALTYPE_ lines).
func (s *Signal) SetValueType(t ValueType) {
	s.ValueType = t
}

// decode extracts this signal's raw value out of payload (the
// parent's current byte buffer, N bytes long) and updates physical;
// notifies only if raw changed.
func (s *Signal) decode(payload []byte, messageByteCount int) error {
	if !s.IsAttached() {
		return fmt.Errorf("signal %q: %w", s.Name, ErrNotAttached)
	}
	raw, err := BitCodec{}.Extract(payload, s.StartBit, s.Length, s.ByteOrder, messageByteCount)
	if err != nil {
		return fmt.Errorf("signal %q: %w", s.Name, err)
	}
	s.setRawFromDecode(raw)
	return nil
}

// encode ORs this signal's current raw value into buf (N bytes long).
func (s *Signal) encode(buf []byte, messageByteCount int) error {
	if err := (BitCodec{}).PackInto(buf, s.rawValue, s.StartBit, s.Length, s.ByteOrder, messageByteCount); err != nil {
		return fmt.Errorf("signal %q: %w", s.Name, err)
	}
	return nil
}

func (s *Signal) String() string {
	return fmt.Sprintf("%s: raw=%d physical=%g unit=%q", s.Name, s.rawValue, s.physicalValue, s.Unit)
}
