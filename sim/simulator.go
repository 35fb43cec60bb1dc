package sim

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/johannesneyer/lightning/common"
	"github.com/johannesneyer/lightning/common/log"
	"github.com/johannesneyer/lightning/protocol"
)

// Simulator executes many protocol.Lightning nodes in virtual time,
// forwarding transmitted messages to eligible receivers subject to
// visibility, channel tuning, collision and packet-error-rate models
// (spec §4.3). It owns the event queue exclusively; no locks are
// required anywhere in the core (spec §5).
type Simulator struct {
	nodes []*ProtocolWrapper
	index map[protocol.NodeId]*ProtocolWrapper

	queue   *EventQueue
	rng     *rand.Rand
	visible VisibilityFunc

	packetErrorRatePPT *uint32
	timeOnAir          protocol.TimeMs
	startupRange       protocol.TimeMs
	durationMinutes    int

	metrics *Metrics
	el      *protocol.EventLog
	l       log.Logger
	RunID   uuid.UUID
}

// NewSimulator validates cfg and builds a Simulator ready to Run.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	l := cfg.Logger
	if l == nil {
		l = log.DefaultLogger()
	}

	runID := uuid.New()
	var el *protocol.EventLog
	if cfg.EventLog != nil {
		el = protocol.NewEventLog(cfg.EventLog, runID)
	}

	rng := rand.New(rand.NewSource(int64(cfg.Seed)))

	areaSize := cfg.AreaSize
	if areaSize == 0 {
		areaSize = DefaultAreaSize
	}
	minDistance := cfg.MinNodeDistance
	if minDistance == 0 {
		minDistance = DefaultMinNodeDistance
	}
	rangeMeters := cfg.RangeMeters
	if rangeMeters == 0 {
		rangeMeters = DefaultRangeMeters
	}
	startupRange := cfg.StartupDelayRangeMS
	if startupRange == 0 {
		startupRange = DefaultStartupDelayRangeMS
	}

	useFixedLayout := cfg.Visibility != nil || len(cfg.VisibilityPairs) > 0
	var locations []Coordinates
	if useFixedLayout {
		locations = make([]Coordinates, cfg.NumNodes)
	} else {
		locations = assignLocations(cfg.NumNodes, areaSize, minDistance, rng)
	}

	nodes := make([]*ProtocolWrapper, cfg.NumNodes)
	index := make(map[protocol.NodeId]*ProtocolWrapper, cfg.NumNodes)
	for i := 0; i < cfg.NumNodes; i++ {
		id := protocol.NodeId(i)
		node := protocol.NewLightning(id, i < cfg.NumSinks, l, el)
		w := NewProtocolWrapper(node, locations[i])
		nodes[i] = w
		index[id] = w
	}

	visible := cfg.Visibility
	switch {
	case visible != nil:
	case len(cfg.VisibilityPairs) > 0:
		visible = GraphVisibility(cfg.VisibilityPairs)
	default:
		visible = DistanceVisibility(rangeMeters)
	}

	return &Simulator{
		nodes:              nodes,
		index:              index,
		queue:              NewEventQueue(),
		rng:                rng,
		visible:            visible,
		packetErrorRatePPT: cfg.PacketErrorRatePPT,
		timeOnAir:          TimeOnAir,
		startupRange:       startupRange,
		durationMinutes:    cfg.DurationMinutes,
		metrics:            NewMetrics(),
		el:                 el,
		l:                  l,
		RunID:              runID,
	}, nil
}

// Nodes returns the simulator's node wrappers, in id order.
func (s *Simulator) Nodes() []*ProtocolWrapper { return s.nodes }

// Metrics returns the run's Prometheus metrics.
func (s *Simulator) Metrics() *Metrics { return s.metrics }

// fatal logs err alongside the event log's recent history, if one is
// configured, then returns err unchanged so callers can keep using it in
// a single return statement.
func (s *Simulator) fatal(err error) error {
	if s.el != nil {
		s.l.Errorw("simulator run failed", "run_id", s.RunID, "err", err, "recent_events", s.el.Recent())
	} else {
		s.l.Errorw("simulator run failed", "run_id", s.RunID, "err", err)
	}
	return err
}

// Run drives the simulation to completion — DurationMinutes of
// simulated time — and returns every NodeData that ever appeared in a
// sink's uplink batch, in the order uplinked. Grounded on the original's
// run() (components/simulator/src/main.rs).
func (s *Simulator) Run() ([]protocol.NodeData, error) {
	var data []protocol.NodeData
	var now protocol.TimeMs

	for _, n := range s.nodes {
		startup := protocol.TimeMs(uint64(s.rng.Int63n(int64(s.startupRange))))
		s.queue.Push(&Event{Time: startup, NodeID: n.ID()})
	}

	deadline := protocol.TimeMs(s.durationMinutes) * protocol.TimeMs(common.MinuteMS)

	for {
		if s.queue.Len() != len(s.nodes) {
			return data, s.fatal(fmt.Errorf("%w: event queue holds %d events, want %d (one per node)",
				common.ErrInvariantBreach, s.queue.Len(), len(s.nodes)))
		}

		ev := s.queue.Pop()
		if ev.Time < now {
			return data, s.fatal(fmt.Errorf("%w: simulated time went backwards (%d < %d)", common.ErrInvariantBreach, ev.Time, now))
		}
		now = ev.Time

		if ev.Message != nil && ev.Message.Kind == MessageTransmit {
			s.forwardMessage(now, ev.NodeID, ev.Message.Channel, ev.Message.Message)
			s.queue.Push(&Event{Time: now + s.timeOnAir, NodeID: ev.NodeID})
			continue
		}

		var received *protocol.Message
		if ev.Message != nil && ev.Message.Kind == MessageReceive {
			if ev.Message.IsCorrupt {
				s.metrics.CorruptedReceptions.Inc()
			} else {
				m := ev.Message.Message
				received = &m
			}
		}

		node := s.index[ev.NodeID]
		action, uplink, err := node.Progress(now, received, s.rng)
		if err != nil {
			return data, s.fatal(err)
		}

		if len(uplink) > 0 {
			data = append(data, uplink...)
			s.metrics.UplinkedBatches.Inc()
			s.metrics.UplinkedNodeData.Add(float64(len(uplink)))
		}
		if node.State() == protocol.StateDelayConnectAck {
			s.metrics.Joins.Inc()
		}

		switch action.Kind {
		case protocol.ActionWait, protocol.ActionReceive:
			if action.End < now {
				return data, s.fatal(fmt.Errorf("%w: action end %d precedes now %d", common.ErrInvariantBreach, action.End, now))
			}
			s.queue.Push(&Event{Time: action.End, NodeID: ev.NodeID})
		case protocol.ActionTransmit:
			s.queue.Push(&Event{
				Time:    now + action.Delay,
				NodeID:  ev.NodeID,
				Message: &MessageWrapper{Kind: MessageTransmit, Channel: action.Channel, Message: action.Message},
			})
		case protocol.ActionNone:
			s.queue.Push(&Event{Time: now, NodeID: ev.NodeID})
		}

		if uint64(now) >= uint64(deadline) {
			break
		}
	}

	return data, nil
}

// forwardMessage delivers msg, sent by senderID on channel at time now,
// to every node tuned to channel and visible to the sender, corrupting
// any other in-flight reception it collides with on the way and
// optionally dropping individual recipients per the packet-error-rate
// model (spec §4.3). Grounded on the original's forward_message
// (components/simulator/src/sim.rs).
func (s *Simulator) forwardMessage(now protocol.TimeMs, senderID protocol.NodeId, channel protocol.Channel, msg protocol.Message) {
	sender := s.index[senderID]
	recipients := s.recipients(sender, channel)
	if len(recipients) == 0 {
		return
	}

	for _, ev := range s.queue.Items() {
		if ev.Message == nil || ev.Message.Kind != MessageReceive || ev.Message.Channel != channel {
			continue
		}
		if !s.airOverlaps(now, ev.Time) {
			continue
		}
		receiver, ok := s.index[ev.NodeID]
		if !ok || !s.visible(sender, receiver) {
			continue
		}
		ev.Message.IsCorrupt = true
		s.metrics.Collisions.Inc()
		recipients = removeID(recipients, ev.NodeID)
	}

	if len(recipients) == 0 {
		return
	}

	if s.packetErrorRatePPT != nil {
		per := *s.packetErrorRatePPT
		filtered := recipients[:0]
		for _, r := range recipients {
			if uint32(s.rng.Intn(1000)) < per {
				s.metrics.DroppedPackets.Inc()
				continue
			}
			filtered = append(filtered, r)
		}
		recipients = filtered
	}

	for _, r := range recipients {
		s.queue.RemoveNode(r)
	}
	for _, r := range recipients {
		s.queue.Push(&Event{
			Time:    now + s.timeOnAir,
			NodeID:  r,
			Message: &MessageWrapper{Kind: MessageReceive, Channel: channel, Message: msg},
		})
	}
}

// airOverlaps reports whether a transmission departing at departureTime
// overlaps, on air, with a pending reception scheduled to arrive at
// receiveTime (whose own departure was therefore receiveTime -
// s.timeOnAir).
func (s *Simulator) airOverlaps(departureTime, receiveTime protocol.TimeMs) bool {
	aStart, aEnd := departureTime, departureTime+s.timeOnAir
	bStart, bEnd := receiveTime-s.timeOnAir, receiveTime
	return aStart < bEnd && bStart < aEnd
}

func (s *Simulator) recipients(sender *ProtocolWrapper, channel protocol.Channel) []protocol.NodeId {
	var out []protocol.NodeId
	for _, n := range s.nodes {
		if n.ID() == sender.ID() {
			continue
		}
		ch, ok := n.ReceivingChannel()
		if !ok || ch != channel {
			continue
		}
		if !s.visible(sender, n) {
			continue
		}
		out = append(out, n.ID())
	}
	return out
}

func removeID(ids []protocol.NodeId, target protocol.NodeId) []protocol.NodeId {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
