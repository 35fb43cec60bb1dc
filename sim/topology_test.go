package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaceNodesRespectsMinDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	coords := placeNodes(8, 100, 10, rng)
	require.Len(t, coords, 8)

	for i := range coords {
		for j := i + 1; j < len(coords); j++ {
			require.GreaterOrEqual(t, Distance(coords[i], coords[j]), 10.0)
		}
	}
}

func TestAssignLocationsCoversEveryPlacedPoint(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	assigned := assignLocations(5, 100, 10, rng)
	require.Len(t, assigned, 5)

	seen := map[Coordinates]bool{}
	for _, c := range assigned {
		require.False(t, seen[c], "location %+v assigned to more than one node", c)
		seen[c] = true
	}
}
