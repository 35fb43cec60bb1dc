// Package protocol implements the Lightning protocol core: message
// types, the per-node channel/window/context model, and the
// progress() state machine that drives beacon/connect/data exchanges.
package protocol

// NodeId is an opaque, globally unique node identifier.
type NodeId uint32

// Channel is a frequency channel index in [0, common.NumChannels).
type Channel uint8

// TimeMs is a monotonic millisecond timestamp since an arbitrary epoch.
// Wraparound is not a concern within a single deployment run.
type TimeMs uint64

// Hops counts path length, in scheduled-forwarding units, to the nearest
// sink. Sinks are Hops(0).
type Hops uint32

// Payload is the fixed-size per-node, per-cycle data value.
type Payload uint16

// NodeData pairs a payload with the node that produced it. It flows
// upstream unchanged until consumed by a sink.
type NodeData struct {
	Source  NodeId
	Payload Payload
}

// Rand is the random source borrowed by the state machine on each
// progress() call. It is intentionally narrow so both a real RNG and a
// deterministic simulator RNG can satisfy it.
type Rand interface {
	// Uint64 returns a pseudo-random, uniformly distributed value to be
	// reduced with e.g. modulo; callers are responsible for bias
	// implications of the reduction (spec §9 open question).
	Uint64() uint64
}
