package protocol

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type stdRand struct{ r *rand.Rand }

func (s stdRand) Uint64() uint64 { return s.r.Uint64() }

// TestSetRandomChildrenChannelFairness is scenario S5: with parent
// channel 2 and parent's-parent channel 4, the children-channel
// distribution over 1000 joins should cover exactly {1,3,5,6,7} and
// never select 2, 4, or the public channel 0.
func TestSetRandomChildrenChannelFairness(t *testing.T) {
	rng := stdRand{rand.New(rand.NewSource(0))}
	parent := Channel(2)
	parentsParent := Channel(4)

	seen := map[Channel]int{}
	for i := 0; i < 1000; i++ {
		c := NewChannels()
		c.Parent = &parent
		c.ParentsParentChannel = &parentsParent
		c.SetRandomChildrenChannel(rng)
		require.NotNil(t, c.Children)
		seen[*c.Children]++
	}

	require.NotContains(t, seen, Channel(0)) // public
	require.NotContains(t, seen, parent)
	require.NotContains(t, seen, parentsParent)

	expected := []Channel{1, 3, 5, 6, 7}
	for _, ch := range expected {
		require.Greater(t, seen[ch], 0, "channel %d never chosen", ch)
	}
	require.Len(t, seen, len(expected))
}

func TestSetRandomChildrenChannelNoParentYet(t *testing.T) {
	rng := stdRand{rand.New(rand.NewSource(1))}
	c := NewChannels()
	c.SetRandomChildrenChannel(rng)
	require.NotNil(t, c.Children)
	require.NotEqual(t, c.Public, *c.Children)
}
