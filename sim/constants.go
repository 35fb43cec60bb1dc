package sim

import "github.com/johannesneyer/lightning/protocol"

// Simulator-only constants (spec §4.3), distinct from the protocol's own
// compile-time parameters in common/constants.go: these describe the
// simulated radio environment and deployment, not the protocol itself,
// so scenarios are free to override them.
const (
	// DefaultMinNodeDistance is the minimum placement distance between
	// nodes, avoiding overlapping coordinates.
	DefaultMinNodeDistance = 10

	// DefaultAreaSize is the height and width of the square deployment
	// area nodes are scattered in.
	DefaultAreaSize = 100

	// DefaultRangeMeters is the default distance-visibility radius: nodes
	// farther apart than this cannot hear one another.
	DefaultRangeMeters = 30

	// TimeOnAir is the approximate time, in milliseconds, a message
	// spends in the air. Grounded on the original's LoRa test-network
	// figure (SF8, BW 125kHz, 12-symbol preamble, 4/6 coding rate, 10-byte
	// payload).
	TimeOnAir protocol.TimeMs = 80

	// DefaultStartupDelayRangeMS bounds the random jitter applied to each
	// node's first wakeup, mimicking asynchronous power-on.
	DefaultStartupDelayRangeMS protocol.TimeMs = 5 * 60 * 1000
)
