package dbc

import "fmt"

// Node is a transmitter identity on a Bus. Attachment to a bus is a
// separate step from construction, matching the non-owning
// back-reference pattern of the original object graph: a node can be
// built and named before the bus that will own it exists.
type Node struct {
	Name string

	bus        *Bus
	txMessages []*Message
	txByName   map[string]bool
}

// NewNode builds an unattached node.
func NewNode(name string) *Node {
	return &Node{Name: name, txByName: make(map[string]bool)}
}

func (n *Node) attach(b *Bus) {
	n.bus = b
}

// Send forwards a message to the owning bus for transmission.
func (n *Node) Send(m *Message) error {
	if n.bus == nil {
		return fmt.Errorf("node %q: not attached to a bus", n.Name)
	}
	return n.bus.transmit(m)
}

// Receive is a passive notification hook; kept for symmetry with the
// original object graph, no behavior beyond logging is specified.
func (n *Node) Receive(m *Message) {}

// AddTx registers a message as transmitted by this node (dedup by
// name) and forwards it to the owning bus's message set.
func (n *Node) AddTx(m *Message) {
	if n.txByName[m.Name] {
		return
	}
	n.txByName[m.Name] = true
	n.txMessages = append(n.txMessages, m)
	if n.bus != nil {
		n.bus.AddMessage(m)
	}
}
