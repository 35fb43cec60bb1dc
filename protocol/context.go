package protocol

import (
	"fmt"

	"github.com/johannesneyer/lightning/common"
	"github.com/johannesneyer/lightning/common/log"
)

// BeaconInfo records a beacon seen during discovery: when it was heard
// and how many hops its sender is from a sink.
type BeaconInfo struct {
	TimeSeen TimeMs
	Hops     Hops
}

// Context is everything a node's state machine owns between progress()
// calls: its channel assignments, its scheduled windows, its distance to
// the nearest sink (once known), data collected from children awaiting
// forwarding, and the shortlist of beacons seen while discovering a
// parent.
type Context struct {
	Channels   Channels
	Windows    *Windows
	HopsToSink *Hops
	ChildData  []NodeData
	Beacons    []BeaconInfo

	l log.Logger
}

// NewContext returns the context a freshly (re)initialized node starts
// with: only the public channel assigned, an empty scheduler, no known
// distance to a sink, and empty collections.
func NewContext(l log.Logger) *Context {
	if l == nil {
		l = log.DefaultLogger()
	}
	return &Context{
		Channels: NewChannels(),
		Windows:  NewWindows(common.MinWindowClearanceMS, DefaultDuration, l),
		l:        l,
	}
}

// Reset reinitializes the context in place to the state NewContext would
// produce, discarding all channel assignments, scheduled windows,
// hop count, and collected data. Called whenever a node (re)enters
// StateReset, including the very first progress() call.
func (c *Context) Reset() {
	c.Channels = NewChannels()
	c.Windows = NewWindows(common.MinWindowClearanceMS, DefaultDuration, c.l)
	c.HopsToSink = nil
	c.ChildData = nil
	c.Beacons = nil
}

// AddChildData appends received data to the pending-forward buffer. It
// fails with common.ErrCapacityExceeded, appending nothing, if the buffer
// would grow beyond common.MaxDescendants — per spec §3/§7 this is fatal, since it indicates a mis-sized
// topology rather than a recoverable condition.
func (c *Context) AddChildData(data ...NodeData) error {
	if len(c.ChildData)+len(data) > common.MaxDescendants {
		return fmt.Errorf("%w: child data would grow to %d, max %d",
			common.ErrCapacityExceeded, len(c.ChildData)+len(data), common.MaxDescendants)
	}
	c.ChildData = append(c.ChildData, data...)
	return nil
}

// DrainChildData clears and returns the pending-forward buffer.
func (c *Context) DrainChildData() []NodeData {
	out := c.ChildData
	c.ChildData = nil
	return out
}

// RecordBeacon appends a beacon sighting to the discovery shortlist. It
// fails with common.ErrCapacityExceeded once common.MaxBeaconsToCollect
// have been recorded.
func (c *Context) RecordBeacon(info BeaconInfo) error {
	if len(c.Beacons) >= common.MaxBeaconsToCollect {
		return fmt.Errorf("%w: beacon shortlist at cap %d", common.ErrCapacityExceeded, common.MaxBeaconsToCollect)
	}
	c.Beacons = append(c.Beacons, info)
	return nil
}

// BestBeacon returns the recorded beacon with the minimum Hops, ties
// broken by insertion order (spec §4.2 item 2), and clears the
// shortlist. ok is false if no beacon was ever recorded.
func (c *Context) BestBeacon() (info BeaconInfo, ok bool) {
	if len(c.Beacons) == 0 {
		return BeaconInfo{}, false
	}
	best := c.Beacons[0]
	for _, b := range c.Beacons[1:] {
		if b.Hops < best.Hops {
			best = b
		}
	}
	c.Beacons = nil
	return best, true
}

// SetHopsToSink records hops_to_sink = h+1 where h is the parent's
// advertised hop count, failing fatally on overflow per spec §3.
func (c *Context) SetHopsToSink(parentHops Hops) error {
	if parentHops == ^Hops(0) {
		return common.ErrHopsOverflow
	}
	h := parentHops + 1
	c.HopsToSink = &h
	return nil
}

// SetSink marks this context as belonging to a sink: hops_to_sink = 0.
func (c *Context) SetSink() {
	h := Hops(0)
	c.HopsToSink = &h
}
