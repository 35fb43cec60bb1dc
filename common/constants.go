// Package common holds the protocol-wide constants, sentinel errors and
// logging contract shared by the protocol and simulator packages.
package common

import "time"

// Protocol parameters. All compile-time constants: changing any of these
// requires an informed review, and nothing in this module makes them
// configurable at runtime.
const (
	// NumChannels is the number of distinct frequency channels available.
	NumChannels = 8

	// MaxChildren is the per-node child cap.
	MaxChildren = 6

	// MaxDescendants is the uplink batch cap (own NodeData plus forwarded
	// descendants).
	MaxDescendants = 16

	// MaxWindows is the scheduler capacity: MaxChildren child windows plus
	// one beacon window plus one parent window.
	MaxWindows = MaxChildren + 2

	// MaxBeaconsToCollect bounds the discovery shortlist.
	MaxBeaconsToCollect = 16

	// MaxMessageSize is the largest encoded Message the wire format allows.
	MaxMessageSize = 32

	// PublicChannel is the globally fixed default channel nodes beacon and
	// listen for beacons on.
	PublicChannel = 0
)

// Protocol timing parameters, all in milliseconds unless noted.
const (
	BeaconIntervalMS         = 30_000
	ChildDataIntervalMin     = 5
	ResponseListenDurationMS = 200
	MinWindowClearanceMS     = 300
	DataReceiveWindowMS      = 350
	RandomConnectRangeMS     = 400
	ConnectResponseDelayMS   = 100
	ClockDriftPPM            = 30
	SendDelayMS              = 5
)

// BestBeaconListenTimeMS is the confirmation window used while waiting to
// re-hear the chosen best beacon.
const BestBeaconListenTimeMS = 3 * MinWindowClearanceMS

// MinuteMS is one whole minute in milliseconds; next_window_min fields in
// acks are counted in this unit.
const MinuteMS = 60_000

// EventLogHistoryCap bounds the ring of recent event-log lines an
// EventLog keeps in memory (one EventLog per simulator run, shared by all
// its nodes), so a fatal capacity/invariant breach can be logged together
// with the run's recent history.
const EventLogHistoryCap = 64

// BeaconInterval and friends as time.Duration, for code that composes with
// clockwork.Clock.
const (
	BeaconInterval         = time.Duration(BeaconIntervalMS) * time.Millisecond
	ResponseListenDuration = time.Duration(ResponseListenDurationMS) * time.Millisecond
	MinWindowClearance     = time.Duration(MinWindowClearanceMS) * time.Millisecond
	DataReceiveWindow      = time.Duration(DataReceiveWindowMS) * time.Millisecond
	RandomConnectRange     = time.Duration(RandomConnectRangeMS) * time.Millisecond
	ConnectResponseDelay   = time.Duration(ConnectResponseDelayMS) * time.Millisecond
	SendDelay              = time.Duration(SendDelayMS) * time.Millisecond
	Minute                 = time.Duration(MinuteMS) * time.Millisecond
)

// AdjustUp applies the clock-drift-ahead compensation used before a
// pre-agreed rendezvous, ensuring the receiver is definitely already
// listening by the time the sender acts.
func AdjustUp(d uint64) uint64 {
	return d * (1_000_000 + ClockDriftPPM) / 1_000_000
}

// AdjustSub applies the clock-drift-behind compensation used when waiting
// for an event known only approximately, so the wait ends early enough.
func AdjustSub(d uint64) uint64 {
	return d * (1_000_000 - ClockDriftPPM) / 1_000_000
}
