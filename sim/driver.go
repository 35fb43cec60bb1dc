package sim

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/johannesneyer/lightning/common/log"
	"github.com/johannesneyer/lightning/protocol"
)

// Radio is the live, non-simulated transport a Driver uses to actually
// put bytes on air. Spec §1 scopes the embedded radio driver and HAL
// init out of this module as "an external collaborator with a named
// interface only" — this is that interface; no hardware-specific
// implementation lives here.
type Radio interface {
	Tune(channel protocol.Channel)
	Send(msg protocol.Message) error
	// Receive blocks until a frame arrives or deadline passes, returning
	// ok=false on timeout or a malformed frame (spec §7: malformed
	// frames and transport errors are both treated as silence).
	Receive(ctx context.Context, deadline time.Time) (msg protocol.Message, ok bool)
}

// Driver runs one Lightning node against a real Radio and Clock,
// translating each returned Action into the wait/receive/transmit it
// describes. It is the non-simulated counterpart to Simulator: where
// Simulator advances virtual TimeMs across many nodes at once, Driver
// advances a single node against wall-clock time, sharing the same
// clockwork.Clock abstraction the teacher's ticker.go builds its round
// cadence on.
type Driver struct {
	node  *protocol.Lightning
	radio Radio
	clock clockwork.Clock
	rng   protocol.Rand
	l     log.Logger
	epoch time.Time
}

// NewDriver returns a driver for node over radio. epoch is the wall-clock
// instant protocol.TimeMs(0) corresponds to; clock is
// clockwork.NewRealClock() in production and clockwork.NewFakeClock()
// in tests.
func NewDriver(node *protocol.Lightning, radio Radio, clock clockwork.Clock, rng protocol.Rand, l log.Logger, epoch time.Time) *Driver {
	if l == nil {
		l = log.DefaultLogger()
	}
	return &Driver{node: node, radio: radio, clock: clock, rng: rng, l: l, epoch: epoch}
}

func (d *Driver) now() protocol.TimeMs {
	return protocol.TimeMs(d.clock.Now().Sub(d.epoch).Milliseconds())
}

func (d *Driver) deadline(end protocol.TimeMs) time.Time {
	return d.epoch.Add(time.Duration(end) * time.Millisecond)
}

// StepResult is the outcome of one Driver.Step call.
type StepResult struct {
	// Uplink is any uplink batch the underlying progress() call produced.
	Uplink []protocol.NodeData
	// Received is set when the step's action was Receive and a frame
	// arrived before its deadline; pass it to the next Step call.
	Received *protocol.Message
}

// Step performs exactly one progress()/Action cycle: it calls progress
// with msg, then carries out the action the state machine returned
// (sleep, tune-and-receive, or pace-and-transmit).
func (d *Driver) Step(ctx context.Context, msg *protocol.Message) (StepResult, error) {
	action, uplink, err := d.node.Progress(d.now(), msg, d.rng)
	if err != nil {
		return StepResult{}, err
	}

	res := StepResult{Uplink: uplink}

	switch action.Kind {
	case protocol.ActionNone:

	case protocol.ActionWait:
		d.sleepUntil(action.End)

	case protocol.ActionReceive:
		d.radio.Tune(action.Channel)
		if frame, ok := d.radio.Receive(ctx, d.deadline(action.End)); ok {
			res.Received = &frame
		} else {
			d.sleepUntil(action.End)
		}

	case protocol.ActionTransmit:
		d.clock.Sleep(time.Duration(action.Delay) * time.Millisecond)
		if err := d.radio.Send(action.Message); err != nil {
			d.l.Warn("driver", "send_failed", err)
		}
	}

	return res, nil
}

func (d *Driver) sleepUntil(end protocol.TimeMs) {
	d.clock.Sleep(d.deadline(end).Sub(d.clock.Now()))
}

// Run drives the node indefinitely until ctx is canceled, returning
// every uplink batch observed, or when a Step fails. Intended for a
// sink's host process; for a leaf node the returned slice is always empty
// since non-sinks never produce uplink batches (spec §8 property 4).
func (d *Driver) Run(ctx context.Context) ([]protocol.NodeData, error) {
	var all []protocol.NodeData
	var pending *protocol.Message
	for {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}
		res, err := d.Step(ctx, pending)
		if err != nil {
			return all, err
		}
		pending = res.Received
		all = append(all, res.Uplink...)
	}
}
