package protocol

import "github.com/johannesneyer/lightning/common/log"

// Lightning is one node's complete state: its identity, its current
// State, the context the state machine mutates as it runs, whether it
// is a sink, and any payload of its own awaiting the next uplink cycle.
// A node owns its Context and State exclusively; the radio and the RNG
// are borrowed per Progress call (spec §3).
type Lightning struct {
	ID      NodeId
	State   State
	Context *Context
	IsSink  bool
	Payload *Payload

	l  log.Logger
	el *EventLog
}

// NewLightning returns a node in StateReset, the state every node starts
// (and recovers to) in. el may be nil to disable event logging.
func NewLightning(id NodeId, isSink bool, l log.Logger, el *EventLog) *Lightning {
	if l == nil {
		l = log.DefaultLogger()
	}
	return &Lightning{
		ID:      id,
		State:   State{Kind: StateReset},
		Context: NewContext(l),
		IsSink:  isSink,
		l:       l,
		el:      el,
	}
}

// SetPayload records this node's own data for inclusion in its next
// uplink cycle (if a sink) or its next Parent-window SendData (if not).
func (n *Lightning) SetPayload(p Payload) {
	n.Payload = &p
}

// HasPayload reports whether a payload is currently set.
func (n *Lightning) HasPayload() bool {
	return n.Payload != nil
}

// Progress drives the node's state machine one step: it logs an
// incoming message if any, computes the next state, logs it, drains an
// uplink batch if this is a sink with pending data, and returns the
// Action the driver must now perform. It never blocks; all suspension
// is expressed in the returned Action (spec §4.3).
//
// The driver must pass msg non-nil exactly when the previous action was
// Receive and a message was actually decoded; otherwise nil.
func (n *Lightning) Progress(now TimeMs, msg *Message, rng Rand) (Action, []NodeData, error) {
	if n.el != nil && msg != nil {
		n.el.Message(now, n.ID, *msg)
	}

	next, err := n.next(now, msg, rng)
	if err != nil {
		return Action{}, nil, err
	}
	n.State = next
	if n.el != nil {
		n.el.State(now, n.ID, n.State.Kind)
	}

	var uplink []NodeData
	if n.IsSink && len(n.Context.ChildData) > 0 {
		uplink = n.Context.DrainChildData()
		if n.Payload != nil {
			uplink = append(uplink, NodeData{Source: n.ID, Payload: *n.Payload})
			n.Payload = nil
		} else {
			n.l.Warn("sink_uplink", "no_own_payload_set", n.ID)
		}
	}

	action := n.State.Action()
	if n.el != nil {
		n.el.Action(now, n.ID, action)
	}
	return action, uplink, nil
}

// NextDataTransmission returns the scheduled start of this node's next
// Parent window, i.e. when it will next forward data upstream.
func (n *Lightning) NextDataTransmission() (TimeMs, bool) {
	return n.Context.Windows.PeekNextKind(Parent)
}
