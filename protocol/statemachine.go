package protocol

import (
	"fmt"

	"github.com/johannesneyer/lightning/common"
)

// next computes the state succeeding n.State given the wall time and an
// optional just-decoded incoming message, mutating n.Context along the
// way (spec §4.2). It is the one place protocol transitions happen;
// Progress wraps it with event logging and uplink draining.
//
// A non-nil error is always fatal (spec §7): capacity overflow or an
// invariant breach. Recoverable desync (unexpected ack, timeout) is
// absorbed here and surfaces only as a transition back to StateReset.
func (n *Lightning) next(now TimeMs, msg *Message, rng Rand) (State, error) {
	s := n.State
	ctx := n.Context

	if msg != nil && !s.Kind.expectsMessage() {
		return State{}, fmt.Errorf("%w: got message in non-receiving state %s", common.ErrInvariantBreach, s.Kind)
	}

	switch s.Kind {

	case StateReset:
		ctx.Reset()
		if n.IsSink {
			ctx.SetSink()
			ctx.Channels.SetRandomChildrenChannel(rng)
			start := now + TimeMs(rng.Uint64()%common.BeaconIntervalMS)
			if err := ctx.Windows.Push(Window{Kind: Beacon, Start: start}); err != nil {
				return State{}, err
			}
			end, err := ctx.Windows.PeekNext()
			if err != nil {
				return State{}, err
			}
			return State{Kind: StateIdle, End: end}, nil
		}
		return State{
			Kind: StateWaitBeforeFindingParent,
			End:  now + TimeMs(rng.Uint64()%common.BeaconIntervalMS),
		}, nil

	case StateWaitBeforeFindingParent:
		return State{
			Kind:    StateListenForBeacons,
			Channel: ctx.Channels.Public,
			End:     now + common.BeaconIntervalMS,
		}, nil

	case StateListenForBeacons:
		if msg == nil {
			if len(ctx.Beacons) == 0 {
				return State{
					Kind: StateWaitBeforeFindingParent,
					End:  now + common.BeaconIntervalMS/2 + TimeMs(rng.Uint64()%common.BeaconIntervalMS),
				}, nil
			}
			best, _ := ctx.BestBeacon()
			return State{
				Kind:           StateWaitForBestBeacon,
				BestBeaconHops: best.Hops,
				End:            best.TimeSeen + TimeMs(common.AdjustSub(common.BeaconIntervalMS)),
			}, nil
		}
		if msg.Kind != KindBeacon {
			return s, nil
		}
		if msg.Hops == 0 {
			return State{
				Kind:           StateWaitForBestBeacon,
				BestBeaconHops: 0,
				End:            now + TimeMs(common.AdjustSub(common.BeaconIntervalMS)),
			}, nil
		}
		if err := ctx.RecordBeacon(BeaconInfo{TimeSeen: now, Hops: msg.Hops}); err != nil {
			return State{}, err
		}
		return s, nil

	case StateWaitForBestBeacon:
		return State{
			Kind:           StateListenForBestBeacon,
			BestBeaconHops: s.BestBeaconHops,
			End:            now + common.BestBeaconListenTimeMS,
			Channel:        ctx.Channels.Public,
		}, nil

	case StateListenForBestBeacon:
		if msg == nil {
			ctx.Beacons = nil
			return State{
				Kind: StateWaitBeforeFindingParent,
				End:  now + common.BeaconIntervalMS/2 + TimeMs(rng.Uint64()%common.BeaconIntervalMS),
			}, nil
		}
		if msg.Kind != KindBeacon {
			return s, nil
		}
		if msg.Hops != s.BestBeaconHops {
			n.l.Warn("state_machine", "received_wrong_beacon", n.ID)
			return s, nil
		}
		if err := ctx.SetHopsToSink(msg.Hops); err != nil {
			return State{}, err
		}
		parentChannel := msg.ChildrenChannel
		ctx.Channels.Parent = &parentChannel
		ctx.Channels.ParentsParentChannel = msg.ParentChannel
		return State{
			Kind:                 StateDelayConnect,
			End:                  now + TimeMs(rng.Uint64()%common.RandomConnectRangeMS),
			ConnectAckListenTime: now + common.RandomConnectRangeMS + common.ConnectResponseDelayMS,
		}, nil

	case StateDelayConnect:
		return State{
			Kind:                 StateSendConnect,
			Channel:              *ctx.Channels.Parent,
			ID:                   n.ID,
			ConnectAckListenTime: s.ConnectAckListenTime,
		}, nil

	case StateSendConnect:
		return State{
			Kind: StateWaitForConnectAck,
			End:  s.ConnectAckListenTime,
			ID:   s.ID,
		}, nil

	case StateWaitForConnectAck:
		return State{
			Kind:    StateListenForConnectAck,
			Channel: *ctx.Channels.Parent,
			End:     now + common.ResponseListenDurationMS,
			ID:      s.ID,
		}, nil

	case StateListenForConnectAck:
		if msg != nil && msg.Kind == KindConnectAck && msg.ID == s.ID {
			n.l.Info("state_machine", "connected_to_parent", n.ID)
			ctx.Channels.SetRandomChildrenChannel(rng)
			if err := ctx.Windows.Push(Window{
				Kind:  Parent,
				Start: now + TimeMs(common.AdjustUp(uint64(msg.NextWindowMin)*common.MinuteMS)),
			}); err != nil {
				return State{}, err
			}
			if err := ctx.Windows.Push(Window{
				Kind:  Beacon,
				Start: now + common.BeaconIntervalMS + TimeMs(rng.Uint64()%common.BeaconIntervalMS),
			}); err != nil {
				return State{}, err
			}
			end, err := ctx.Windows.PeekNext()
			if err != nil {
				return State{}, err
			}
			return State{Kind: StateIdle, End: end}, nil
		}
		n.l.Warn("state_machine", "unexpected_connect_ack", n.ID)
		if n.el != nil {
			n.el.Reset(now, n.ID, s.Kind)
		}
		return State{Kind: StateReset}, nil

	case StateIdle:
		win, err := ctx.Windows.Pop()
		if err != nil {
			return State{}, err
		}
		if win.Start != now {
			return State{}, fmt.Errorf("%w: scheduled window at %d fired at %d", common.ErrInvariantBreach, win.Start, now)
		}
		switch win.Kind {
		case Beacon:
			return State{
				Kind:            StateSendBeacon,
				Channel:         ctx.Channels.Public,
				Hops:            *ctx.HopsToSink,
				ChildrenChannel: *ctx.Channels.Children,
				ParentChannel:   ctx.Channels.Parent,
			}, nil
		case Child:
			return State{
				Kind:    StateListenForData,
				Channel: *ctx.Channels.Children,
				End:     now + common.DataReceiveWindowMS,
			}, nil
		case Parent:
			data := ctx.DrainChildData()
			if n.Payload != nil {
				data = append(data, NodeData{Source: n.ID, Payload: *n.Payload})
				n.Payload = nil
			} else {
				n.l.Warn("state_machine", "no_payload_set", n.ID)
			}
			return State{
				Kind:    StateSendData,
				Channel: *ctx.Channels.Parent,
				Data:    data,
			}, nil
		default:
			return State{}, fmt.Errorf("%w: unknown window kind %v", common.ErrInvariantBreach, win.Kind)
		}

	case StateSendBeacon:
		if err := ctx.Windows.Push(Window{Kind: Beacon, Start: now + common.BeaconIntervalMS}); err != nil {
			return State{}, err
		}
		return State{
			Kind:    StateListenForConnect,
			Channel: *ctx.Channels.Children,
			End:     now + TimeMs(common.AdjustUp(common.RandomConnectRangeMS+common.SendDelayMS)),
		}, nil

	case StateListenForConnect:
		if msg != nil && msg.Kind == KindConnect {
			if n.el != nil {
				n.el.NewChild(now, n.ID, msg.ID, *ctx.Channels.Children)
			}
			return State{
				Kind: StateDelayConnectAck,
				End:  s.End + TimeMs(common.AdjustUp(common.ConnectResponseDelayMS)),
				ID:   msg.ID,
			}, nil
		}
		if msg == nil {
			end, err := ctx.Windows.PeekNext()
			if err != nil {
				return State{}, err
			}
			return State{Kind: StateIdle, End: end}, nil
		}
		n.l.Warn("state_machine", "expected_connect", n.ID)
		if s.End > now {
			return s, nil
		}
		end, err := ctx.Windows.PeekNext()
		if err != nil {
			return State{}, err
		}
		return State{Kind: StateIdle, End: end}, nil

	case StateDelayConnectAck:
		childWindow := Window{Kind: Child, Start: now + TimeMs(common.ChildDataIntervalMin)*TimeMs(common.MinuteMS)}
		childWindow = ctx.Windows.Delay(childWindow, common.MinuteMS)
		nextChildWindowMin := uint8((uint64(childWindow.Start) - uint64(now)) / common.MinuteMS)
		return State{
			Kind:               StateSendConnectAck,
			ChildWindow:        childWindow,
			Channel:            *ctx.Channels.Children,
			NextChildWindowMin: nextChildWindowMin,
			ID:                 s.ID,
		}, nil

	case StateSendConnectAck:
		childWindow := s.ChildWindow
		childWindow.Start = now + TimeMs(s.NextChildWindowMin)*TimeMs(common.MinuteMS)
		if err := ctx.Windows.Push(childWindow); err != nil {
			return State{}, err
		}
		if ctx.Windows.IsFull() {
			ctx.Windows.PopKind(Beacon)
		}
		end, err := ctx.Windows.PeekNext()
		if err != nil {
			return State{}, err
		}
		return State{Kind: StateIdle, End: end}, nil

	case StateSendData:
		return State{
			Kind:    StateListenForDataAck,
			Channel: *ctx.Channels.Parent,
			End:     now + common.ResponseListenDurationMS,
		}, nil

	case StateListenForDataAck:
		if msg != nil && msg.Kind == KindDataAck {
			if err := ctx.Windows.Push(Window{
				Kind:  Parent,
				Start: now + TimeMs(common.AdjustUp(uint64(msg.NextWindowMin)*common.MinuteMS)),
			}); err != nil {
				return State{}, err
			}
			end, err := ctx.Windows.PeekNext()
			if err != nil {
				return State{}, err
			}
			return State{Kind: StateIdle, End: end}, nil
		}
		n.l.Error("state_machine", "expected_data_ack", n.ID)
		if n.el != nil {
			n.el.Reset(now, n.ID, s.Kind)
		}
		return State{Kind: StateReset}, nil

	case StateListenForData:
		if msg != nil && msg.Kind == KindData {
			if err := ctx.AddChildData(msg.Data...); err != nil {
				return State{}, err
			}
			childWindow := Window{Kind: Child, Start: now + TimeMs(common.ChildDataIntervalMin)*TimeMs(common.MinuteMS)}
			childWindow = ctx.Windows.Delay(childWindow, common.MinuteMS)
			nextChildWindowMin := uint8((uint64(childWindow.Start) - uint64(now)) / common.MinuteMS)
			return State{
				Kind:               StateSendDataAck,
				ChildWindow:        childWindow,
				Channel:            *ctx.Channels.Children,
				NextChildWindowMin: nextChildWindowMin,
			}, nil
		}
		n.l.Error("state_machine", "child_gone", n.ID)
		end, err := ctx.Windows.PeekNext()
		if err != nil {
			return State{}, err
		}
		return State{Kind: StateIdle, End: end}, nil

	case StateSendDataAck:
		childWindow := s.ChildWindow
		childWindow.Start = now + TimeMs(s.NextChildWindowMin)*TimeMs(common.MinuteMS)
		if err := ctx.Windows.Push(childWindow); err != nil {
			return State{}, err
		}
		end, err := ctx.Windows.PeekNext()
		if err != nil {
			return State{}, err
		}
		return State{Kind: StateIdle, End: end}, nil

	default:
		return State{}, fmt.Errorf("%w: unknown state kind %v", common.ErrInvariantBreach, s.Kind)
	}
}
