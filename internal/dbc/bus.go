package dbc

import (
	"fmt"
	"log/slog"
)

// pendingKey identifies a not-yet-owned signal during parsing, before
// build() moves it into its message.
type pendingKey struct {
	messageID uint32
	name      string
}

// Bus owns a named set of nodes and messages, and re-broadcasts every
// message/signal mutation as a single Event to its external
// subscribers. It also acts as the sole observer of every message and
// signal it owns, bridging the two lower-level notifications into one
// bus-scoped event.
type Bus struct {
	Name string

	nodes       []*Node
	nodesByName map[string]*Node

	messages      []*Message
	messagesByID  map[uint32]*Message
	pendingByMsg  map[uint32][]*Signal
	pendingByKey  map[pendingKey]*Signal
	currentMsgID  uint32
	hasCurrentMsg bool

	handlers  []subscription
	nextSubID uint64
	logger    *slog.Logger
}

// subscription pairs a registered Handler with the Subscription token
// returned to its caller, so Unsubscribe can find it by identity
// without relying on Go's lack of function-value comparison.
type subscription struct {
	id Subscription
	h  Handler
}

// Subscription is an opaque handle returned by Bus.Subscribe, passed
// back to Bus.Unsubscribe to remove exactly that registration.
type Subscription uint64

// NewBus builds an empty bus. A nil logger is replaced with slog's
// default logger.
func NewBus(name string, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		Name:         name,
		nodesByName:  make(map[string]*Node),
		messagesByID: make(map[uint32]*Message),
		pendingByMsg: make(map[uint32][]*Signal),
		pendingByKey: make(map[pendingKey]*Signal),
		logger:       logger,
	}
}

// AddNode attaches a node to the bus.
func (b *Bus) AddNode(n *Node) {
	if _, exists := b.nodesByName[n.Name]; exists {
		return
	}
	n.attach(b)
	b.nodes = append(b.nodes, n)
	b.nodesByName[n.Name] = n
}

// GetNodeByName looks up an attached node.
func (b *Bus) GetNodeByName(name string) (*Node, bool) {
	n, ok := b.nodesByName[name]
	return n, ok
}

// AddMessage registers a message on the bus. The first occurrence of
// an id wins; duplicates are logged and ignored. Accepting a message
// makes it the "current" message for subsequent signal lines and
// opens its pending-signal slot.
func (b *Bus) AddMessage(m *Message) {
	if _, exists := b.messagesByID[m.ID]; exists {
		b.logger.Warn("duplicate message id ignored", "bus", b.Name, "id", m.ID, "name", m.Name)
		return
	}
	m.addObserver(b)
	for _, s := range m.signals {
		s.addObserver(b)
	}
	b.messages = append(b.messages, m)
	b.messagesByID[m.ID] = m
	b.pendingByMsg[m.ID] = nil
	b.currentMsgID = m.ID
	b.hasCurrentMsg = true
}

// AddSignal adds a signal to the pending set of the current message.
// With no current message (a malformed SG_ line before any BO_), the
// signal is not added and a warning is logged.
func (b *Bus) AddSignal(s *Signal) {
	if !b.hasCurrentMsg {
		b.logger.Warn("signal with no current message ignored", "bus", b.Name, "signal", s.Name)
		return
	}
	key := pendingKey{messageID: b.currentMsgID, name: s.Name}
	if _, exists := b.pendingByKey[key]; exists {
		return
	}
	s.addObserver(b)
	b.pendingByKey[key] = s
	b.pendingByMsg[b.currentMsgID] = append(b.pendingByMsg[b.currentMsgID], s)
}

// AddSignalValueType overrides the value type of a pending signal,
// addressed by message id and name. Unknown pairs change nothing and
// return ErrUnresolvedReference.
func (b *Bus) AddSignalValueType(messageID uint32, name string, t ValueType) error {
	key := pendingKey{messageID: messageID, name: name}
	s, ok := b.pendingByKey[key]
	if !ok {
		return fmt.Errorf("bus %q: message %d signal %q: %w", b.Name, messageID, name, ErrUnresolvedReference)
	}
	s.SetValueType(t)
	return nil
}

// Build promotes every pending signal into its owning message, in
// insertion order, and clears the pending set.
func (b *Bus) Build() {
	for _, m := range b.messages {
		for _, s := range b.pendingByMsg[m.ID] {
			m.AddSignal(s)
		}
	}
	b.pendingByMsg = make(map[uint32][]*Signal)
	b.pendingByKey = make(map[pendingKey]*Signal)
}

// GetMessageByID looks up an owned message.
func (b *Bus) GetMessageByID(id uint32) (*Message, bool) {
	m, ok := b.messagesByID[id]
	return m, ok
}

// GetAllMessages returns the bus's owned messages in insertion order.
func (b *Bus) GetAllMessages() []*Message {
	return b.messages
}

// transmit logs and notifies all nodes of an outgoing message. There
// is no physical transceiver in this module (see SPEC_FULL.md
// Non-goals); this models only the in-process notification.
func (b *Bus) transmit(m *Message) error {
	b.logger.Info("message transmitted", "bus", b.Name, "id", m.ID, "name", m.Name)
	for _, n := range b.nodes {
		n.Receive(m)
	}
	return nil
}

// Subscribe registers an external event handler and returns a token
// that can later be passed to Unsubscribe to remove exactly this
// registration.
func (b *Bus) Subscribe(h Handler) Subscription {
	b.nextSubID++
	id := Subscription(b.nextSubID)
	b.handlers = append(b.handlers, subscription{id: id, h: h})
	return id
}

// Unsubscribe removes the handler registered under id, if still
// present. Unknown or already-removed tokens are a no-op.
func (b *Bus) Unsubscribe(id Subscription) {
	for i, sub := range b.handlers {
		if sub.id == id {
			b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
			return
		}
	}
}

// UnsubscribeAll removes every registered handler.
func (b *Bus) UnsubscribeAll() {
	b.handlers = nil
}

func (b *Bus) dispatch(ev Event) {
	ev.Bus = b.Name
	for _, sub := range b.handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("event handler panicked", "bus", b.Name, "recover", r)
				}
			}()
			sub.h(ev)
		}()
	}
}

func (b *Bus) onMessageUpdated(messageID uint32) {
	b.dispatch(Event{Kind: MessageUpdated, MessageID: messageID})
}

func (b *Bus) onSignalUpdated(messageID uint32, signalName string) {
	b.dispatch(Event{Kind: SignalUpdated, MessageID: messageID, SignalName: signalName})
}
