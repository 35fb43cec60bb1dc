package sim

import "github.com/johannesneyer/lightning/protocol"

// VisibilityFunc reports whether b can hear a transmission from a. It is
// pluggable per spec §4.3/SPEC_FULL.md's supplemented-features list: the
// default is distance-based, but scenarios S2 and S3 use a fixed graph of
// node-id pairs instead of coordinates, and S1 and S4 use full visibility.
type VisibilityFunc func(a, b *ProtocolWrapper) bool

// DistanceVisibility returns the default visibility predicate: a and b
// see each other iff their simulated distance is strictly less than
// rangeMeters.
func DistanceVisibility(rangeMeters float64) VisibilityFunc {
	return func(a, b *ProtocolWrapper) bool {
		return Distance(a.location, b.location) < rangeMeters
	}
}

// GraphVisibility returns a visibility predicate over a fixed,
// undirected set of node-id pairs, ignoring location entirely. Grounded
// on the original's test-only VisibilitytMap (components/simulator/src/
// main.rs), promoted here to a first-class, reusable predicate since
// SPEC_FULL.md's chain scenarios S2 and S3 are specified this way rather
// than by coordinates.
func GraphVisibility(pairs [][2]protocol.NodeId) VisibilityFunc {
	edges := make(map[[2]protocol.NodeId]bool, len(pairs))
	for _, p := range pairs {
		edges[sortedPair(p[0], p[1])] = true
	}
	return func(a, b *ProtocolWrapper) bool {
		return edges[sortedPair(a.ID(), b.ID())]
	}
}

func sortedPair(a, b protocol.NodeId) [2]protocol.NodeId {
	if a <= b {
		return [2]protocol.NodeId{a, b}
	}
	return [2]protocol.NodeId{b, a}
}
