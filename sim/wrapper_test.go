package sim

import (
	"math/rand"
	"testing"

	"github.com/johannesneyer/lightning/protocol"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	require.Equal(t, 5.0, Distance(Coordinates{0, 0}, Coordinates{3, 4}))
	require.Equal(t, 0.0, Distance(Coordinates{7, 7}, Coordinates{7, 7}))
}

func TestProtocolWrapperTracksReceivingChannel(t *testing.T) {
	node := protocol.NewLightning(protocol.NodeId(1), false, nil, nil)
	w := NewProtocolWrapper(node, Coordinates{0, 0})
	require.Equal(t, protocol.NodeId(1), w.ID())
	require.False(t, w.IsSink())

	rng := rand.New(rand.NewSource(1))
	action, _, err := w.Progress(0, nil, rng)
	require.NoError(t, err)

	_, ok := w.ReceivingChannel()
	require.Equal(t, action.Kind == protocol.ActionReceive, ok)
}

func TestProtocolWrapperSetsDummyPayloadWhenEmpty(t *testing.T) {
	node := protocol.NewLightning(protocol.NodeId(3), true, nil, nil)
	require.False(t, node.HasPayload())

	rng := rand.New(rand.NewSource(1))
	_, _, err := NewProtocolWrapper(node, Coordinates{0, 0}).Progress(0, nil, rng)
	require.NoError(t, err)
	require.True(t, node.HasPayload())
}
