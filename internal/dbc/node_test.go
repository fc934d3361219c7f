package dbc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

func TestNodeAddTxDedupsByNameAndForwardsToBus(t *testing.T) {
	t.Parallel()

	bus := dbc.NewBus("b", nil)
	node := dbc.NewNode("ECU")
	bus.AddNode(node)

	msg := dbc.NewMessage(1, "Steering", "ECU")
	require.NoError(t, msg.SetDlc(8))

	node.AddTx(msg)
	node.AddTx(msg)

	_, ok := bus.GetMessageByID(1)
	assert.True(t, ok)
	assert.Len(t, bus.GetAllMessages(), 1)
}

func TestNodeSendWithoutBusErrors(t *testing.T) {
	t.Parallel()

	node := dbc.NewNode("ECU")
	msg := dbc.NewMessage(1, "M", "ECU")
	err := node.Send(msg)
	require.Error(t, err)
}

func TestNodeSendDelegatesToBus(t *testing.T) {
	t.Parallel()

	bus := dbc.NewBus("b", nil)
	node := dbc.NewNode("ECU")
	bus.AddNode(node)

	msg := dbc.NewMessage(1, "M", "ECU")
	require.NoError(t, msg.SetDlc(8))

	err := node.Send(msg)
	assert.NoError(t, err)
}
