package sim

import (
	"testing"

	"github.com/johannesneyer/lightning/protocol"
	"github.com/stretchr/testify/require"
)

func wrapperAt(id protocol.NodeId, x, y int64) *ProtocolWrapper {
	node := protocol.NewLightning(id, false, nil, nil)
	return NewProtocolWrapper(node, Coordinates{X: x, Y: y})
}

func TestDistanceVisibility(t *testing.T) {
	near := DistanceVisibility(10)
	a := wrapperAt(0, 0, 0)
	b := wrapperAt(1, 5, 0)
	c := wrapperAt(2, 50, 0)

	require.True(t, near(a, b))
	require.False(t, near(a, c))
}

func TestGraphVisibilityIsUndirected(t *testing.T) {
	vis := GraphVisibility([][2]protocol.NodeId{{0, 1}})
	a := wrapperAt(0, 0, 0)
	b := wrapperAt(1, 0, 0)
	c := wrapperAt(2, 0, 0)

	require.True(t, vis(a, b))
	require.True(t, vis(b, a))
	require.False(t, vis(a, c))
	require.False(t, vis(b, c))
}
