package sim

import (
	"fmt"
	"math"

	"github.com/johannesneyer/lightning/common"
	"github.com/johannesneyer/lightning/protocol"
)

// Coordinates places a node in the simulated deployment area (spec
// §4.3). The zero value is the origin, used by scenarios that describe
// visibility as a fixed graph rather than by distance.
type Coordinates struct {
	X, Y int64
}

// Distance returns the Euclidean distance between two locations.
func Distance(a, b Coordinates) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// ProtocolWrapper adds the simulator's bookkeeping around one protocol
// node: its location and the channel it is currently tuned to receive
// on, if any. Grounded on the original's ProtocolWrapper
// (components/simulator/src/sim.rs).
type ProtocolWrapper struct {
	node     *protocol.Lightning
	location Coordinates

	receivingChannel    protocol.Channel
	hasReceivingChannel bool
}

// NewProtocolWrapper wraps an already-constructed node at location.
func NewProtocolWrapper(node *protocol.Lightning, location Coordinates) *ProtocolWrapper {
	return &ProtocolWrapper{node: node, location: location}
}

// ID returns the wrapped node's identifier.
func (w *ProtocolWrapper) ID() protocol.NodeId { return w.node.ID }

// IsSink reports whether the wrapped node is a sink.
func (w *ProtocolWrapper) IsSink() bool { return w.node.IsSink }

// Location returns the node's fixed simulated position.
func (w *ProtocolWrapper) Location() Coordinates { return w.location }

// State returns the wrapped node's current state kind, for metrics and
// test assertions that need visibility the driver contract otherwise
// hides.
func (w *ProtocolWrapper) State() protocol.StateKind { return w.node.State.Kind }

// ReceivingChannel returns the channel the node is currently tuned to
// receive on, if its last action was Receive.
func (w *ProtocolWrapper) ReceivingChannel() (protocol.Channel, bool) {
	return w.receivingChannel, w.hasReceivingChannel
}

// Progress drives the wrapped node one step and updates the simulator's
// view of its receiving channel. It additionally enforces the invariant
// that only a sink ever returns an uplink batch (spec §8 property 4),
// and — mirroring the original's "dummy payload" simulator behavior —
// keeps a payload queued for the node's next Parent-window send so a
// run without an external sensor feed still produces uplinked data.
func (w *ProtocolWrapper) Progress(now protocol.TimeMs, msg *protocol.Message, rng protocol.Rand) (protocol.Action, []protocol.NodeData, error) {
	action, uplink, err := w.node.Progress(now, msg, rng)
	if err != nil {
		return protocol.Action{}, nil, err
	}

	if action.Kind == protocol.ActionReceive {
		w.receivingChannel = action.Channel
		w.hasReceivingChannel = true
	} else {
		w.hasReceivingChannel = false
	}

	if !w.node.IsSink && len(uplink) > 0 {
		return protocol.Action{}, nil, fmt.Errorf("%w: non-sink node %d returned an uplink batch", common.ErrInvariantBreach, w.node.ID)
	}

	if !w.node.HasPayload() {
		w.node.SetPayload(protocol.Payload(0))
	}

	return action, uplink, nil
}
