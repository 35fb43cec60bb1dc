package protocol

import "github.com/johannesneyer/lightning/common"

// StateKind names one of the closed set of states a Lightning node's
// state machine can be in. State is a tagged union over these, mirroring
// Message: callers switch exhaustively on Kind rather than type-assert.
type StateKind uint8

const (
	StateReset StateKind = iota
	StateWaitBeforeFindingParent
	StateListenForBeacons
	StateWaitForBestBeacon
	StateListenForBestBeacon
	StateDelayConnect
	StateSendConnect
	StateWaitForConnectAck
	StateListenForConnectAck
	StateIdle
	StateSendBeacon
	StateListenForConnect
	StateDelayConnectAck
	StateSendConnectAck
	StateListenForData
	StateSendDataAck
	StateSendData
	StateListenForDataAck
)

func (k StateKind) String() string {
	switch k {
	case StateReset:
		return "reset"
	case StateWaitBeforeFindingParent:
		return "wait_before_finding_parent"
	case StateListenForBeacons:
		return "listen_for_beacons"
	case StateWaitForBestBeacon:
		return "wait_for_best_beacon"
	case StateListenForBestBeacon:
		return "listen_for_best_beacon"
	case StateDelayConnect:
		return "delay_connect"
	case StateSendConnect:
		return "send_connect"
	case StateWaitForConnectAck:
		return "wait_for_connect_ack"
	case StateListenForConnectAck:
		return "listen_for_connect_ack"
	case StateIdle:
		return "idle"
	case StateSendBeacon:
		return "send_beacon"
	case StateListenForConnect:
		return "listen_for_connect"
	case StateDelayConnectAck:
		return "delay_connect_ack"
	case StateSendConnectAck:
		return "send_connect_ack"
	case StateListenForData:
		return "listen_for_data"
	case StateSendDataAck:
		return "send_data_ack"
	case StateSendData:
		return "send_data"
	case StateListenForDataAck:
		return "listen_for_data_ack"
	default:
		return "unknown"
	}
}

// expectsMessage reports whether a node in this state can legally be
// handed a decoded message: exactly the Listen* states, whose Action is
// Receive. Any other state receiving a non-nil message indicates the
// driver violated the Receive-window contract (spec §4.3).
func (k StateKind) expectsMessage() bool {
	switch k {
	case StateListenForBeacons, StateListenForBestBeacon, StateListenForConnectAck,
		StateListenForConnect, StateListenForData, StateListenForDataAck:
		return true
	default:
		return false
	}
}

// State is the current state of a node's state machine, plus whatever
// per-variant data that state carries forward to its next transition.
// Exactly the fields relevant to Kind are meaningful; zero value is
// StateReset, the state every node starts and recovers to.
type State struct {
	Kind StateKind

	End                  TimeMs
	Channel              Channel
	BestBeaconHops       Hops
	ConnectAckListenTime TimeMs
	ID                   NodeId

	Hops            Hops    // SendBeacon
	ChildrenChannel Channel // SendBeacon
	ParentChannel   *Channel // SendBeacon

	ChildWindow        Window // SendConnectAck, SendDataAck
	NextChildWindowMin uint8  // SendConnectAck, SendDataAck

	Data []NodeData // SendData
}

// ActionKind names the kind of Action a state projects to.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionWait
	ActionReceive
	ActionTransmit
)

// Action is what a driver must do on behalf of a node currently in a
// given State: do nothing more this tick, wait until End, listen on
// Channel until End, or transmit Message on Channel after Delay. The
// driver is responsible for all actual suspension/timing; progress()
// itself never blocks.
type Action struct {
	Kind ActionKind

	End     TimeMs
	Channel Channel

	Message Message
	Delay   TimeMs
}

func noneAction() Action { return Action{Kind: ActionNone} }

func waitAction(end TimeMs) Action {
	return Action{Kind: ActionWait, End: end}
}

func receiveAction(end TimeMs, channel Channel) Action {
	return Action{Kind: ActionReceive, End: end, Channel: channel}
}

func transmitAction(channel Channel, msg Message, delay TimeMs) Action {
	return Action{Kind: ActionTransmit, Channel: channel, Message: msg, Delay: delay}
}

// Action projects s to the Action a driver must take while the node is
// in that state. The mapping is a pure function of Kind: every
// Listen/Wait-style state yields Receive/Wait, every Send-style state
// yields Transmit with the fixed on-air send delay, and Reset yields
// None since progress() is expected to be called again immediately with
// no message.
func (s State) Action() Action {
	switch s.Kind {
	case StateReset:
		return noneAction()

	case StateWaitBeforeFindingParent, StateWaitForBestBeacon, StateDelayConnect,
		StateWaitForConnectAck, StateIdle, StateDelayConnectAck:
		return waitAction(s.End)

	case StateListenForBeacons, StateListenForBestBeacon, StateListenForConnectAck,
		StateListenForConnect, StateListenForData, StateListenForDataAck:
		return receiveAction(s.End, s.Channel)

	case StateSendConnect:
		return transmitAction(s.Channel, NewConnect(s.ID), TimeMs(common.SendDelayMS))

	case StateSendBeacon:
		return transmitAction(s.Channel, NewBeacon(s.Hops, s.ChildrenChannel, s.ParentChannel), TimeMs(common.SendDelayMS))

	case StateSendConnectAck:
		return transmitAction(s.Channel, NewConnectAck(s.NextChildWindowMin, s.ID), TimeMs(common.SendDelayMS))

	case StateSendData:
		return transmitAction(s.Channel, NewData(s.Data), TimeMs(common.SendDelayMS))

	case StateSendDataAck:
		return transmitAction(s.Channel, NewDataAck(s.NextChildWindowMin), TimeMs(common.SendDelayMS))

	default:
		return noneAction()
	}
}
