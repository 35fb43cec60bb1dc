package sim

import (
	"testing"

	"github.com/johannesneyer/lightning/protocol"
	"github.com/stretchr/testify/require"
)

func TestEventQueueOrdersByTime(t *testing.T) {
	q := NewEventQueue()
	q.Push(&Event{Time: 300, NodeID: 3})
	q.Push(&Event{Time: 100, NodeID: 1})
	q.Push(&Event{Time: 200, NodeID: 2})

	require.Equal(t, protocol.TimeMs(100), q.Pop().Time)
	require.Equal(t, protocol.TimeMs(200), q.Pop().Time)
	require.Equal(t, protocol.TimeMs(300), q.Pop().Time)
	require.Equal(t, 0, q.Len())
}

func TestEventQueueTiesBreakByInsertionOrder(t *testing.T) {
	q := NewEventQueue()
	q.Push(&Event{Time: 100, NodeID: 1})
	q.Push(&Event{Time: 100, NodeID: 2})
	q.Push(&Event{Time: 100, NodeID: 3})

	require.Equal(t, protocol.NodeId(1), q.Pop().NodeID)
	require.Equal(t, protocol.NodeId(2), q.Pop().NodeID)
	require.Equal(t, protocol.NodeId(3), q.Pop().NodeID)
}

func TestEventQueueRemoveNode(t *testing.T) {
	q := NewEventQueue()
	q.Push(&Event{Time: 100, NodeID: 1})
	q.Push(&Event{Time: 50, NodeID: 2})
	q.Push(&Event{Time: 200, NodeID: 3})

	require.True(t, q.RemoveNode(2))
	require.False(t, q.RemoveNode(2))
	require.Equal(t, 2, q.Len())

	first := q.Pop()
	require.Equal(t, protocol.NodeId(1), first.NodeID)
}

func TestEventQueuePopEmpty(t *testing.T) {
	q := NewEventQueue()
	require.Nil(t, q.Pop())
}
