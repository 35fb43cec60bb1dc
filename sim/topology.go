package sim

import "math/rand"

// placeNodes scatters n coordinates uniformly at random inside an
// areaSize × areaSize square, rejecting any candidate closer than
// minDistance to one already placed. Grounded on the original's
// placement loop (components/simulator/src/main.rs).
func placeNodes(n int, areaSize, minDistance int64, rng *rand.Rand) []Coordinates {
	coords := make([]Coordinates, 0, n)
	for len(coords) < n {
		c := Coordinates{X: rng.Int63n(areaSize), Y: rng.Int63n(areaSize)}
		tooClose := false
		for _, e := range coords {
			if Distance(c, e) < float64(minDistance) {
				tooClose = true
				break
			}
		}
		if !tooClose {
			coords = append(coords, c)
		}
	}
	return coords
}

// assignLocations places n nodes and then hands each node id (in order)
// a location drawn without replacement from the placed pool, mirroring
// the original's "remove a random element from node_coordinates per
// node" assignment — the randomness here is over *which* location a
// given id gets, not over the set of locations itself.
func assignLocations(n int, areaSize, minDistance int64, rng *rand.Rand) []Coordinates {
	pool := placeNodes(n, areaSize, minDistance, rng)
	assigned := make([]Coordinates, n)
	for i := 0; i < n; i++ {
		idx := rng.Intn(len(pool))
		assigned[i] = pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return assigned
}
