package protocol

import (
	"encoding/json"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru"
	"github.com/google/uuid"

	"github.com/johannesneyer/lightning/common"
)

// EventLog writes the textual, line-oriented event log described in
// spec §6: one line per event, of the form
// "$<uptime_ms>;<node_id>;<kind>;<content_json>". RunID identifies the
// run the log belongs to; it is held on the EventLog value only and is
// not written into the lines, so lines from separate runs cannot be told
// apart once concatenated.
type EventLog struct {
	w      io.Writer
	RunID  uuid.UUID
	recent *lru.Cache
	seq    uint64
}

// NewEventLog returns an EventLog writing lines to w, tagged with runID.
// It keeps a bounded ring (common.EventLogHistoryCap) of its own recently
// emitted lines so a fatal breach can dump recent history; Recent is nil
// if the cache could not be allocated.
func NewEventLog(w io.Writer, runID uuid.UUID) *EventLog {
	recent, _ := lru.New(common.EventLogHistoryCap)
	return &EventLog{w: w, RunID: runID, recent: recent}
}

func (e *EventLog) emit(uptimeMs TimeMs, nodeID NodeId, kind string, content interface{}) {
	data, err := json.Marshal(content)
	if err != nil {
		data = []byte(`{}`)
	}
	line := fmt.Sprintf("$%d;%d;%s;%s", uptimeMs, nodeID, kind, data)
	fmt.Fprintln(e.w, line)
	if e.recent != nil {
		e.seq++
		e.recent.Add(e.seq, line)
	}
}

// Reset logs a node's forced return to StateReset, noting the state it
// was forced out of (spec §6 supplement: reset carries {from_state}).
func (e *EventLog) Reset(now TimeMs, nodeID NodeId, fromState StateKind) {
	e.emit(now, nodeID, "reset", map[string]string{"from_state": fromState.String()})
}

// NewChild logs a ConnectAck sealing a join (spec §6 supplement:
// new_child carries {child_id, channel}).
func (e *EventLog) NewChild(now TimeMs, nodeID NodeId, childID NodeId, channel Channel) {
	e.emit(now, nodeID, "new_child", map[string]interface{}{
		"child_id": childID,
		"channel":  channel,
	})
}

// State logs a node's entry into a new state.
func (e *EventLog) State(now TimeMs, nodeID NodeId, kind StateKind) {
	e.emit(now, nodeID, "state", map[string]string{"kind": kind.String()})
}

// Action logs the Action a node's progress() call produced.
func (e *EventLog) Action(now TimeMs, nodeID NodeId, a Action) {
	content := map[string]interface{}{"kind": actionKindString(a.Kind)}
	switch a.Kind {
	case ActionWait:
		content["end"] = a.End
	case ActionReceive:
		content["end"] = a.End
		content["channel"] = a.Channel
	case ActionTransmit:
		content["channel"] = a.Channel
		content["delay"] = a.Delay
		content["message"] = messageContent(a.Message)
	}
	e.emit(now, nodeID, "action", content)
}

// Message logs a message a node received or sent.
func (e *EventLog) Message(now TimeMs, nodeID NodeId, m Message) {
	e.emit(now, nodeID, "message", messageContent(m))
}

// Recent returns the event log's own recently emitted lines, oldest
// first, for inclusion in a fatal-breach report. Empty if the ring
// could not be allocated.
func (e *EventLog) Recent() []string {
	if e.recent == nil {
		return nil
	}
	keys := e.recent.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := e.recent.Peek(k); ok {
			out = append(out, v.(string))
		}
	}
	return out
}

func actionKindString(k ActionKind) string {
	switch k {
	case ActionNone:
		return "none"
	case ActionWait:
		return "wait"
	case ActionReceive:
		return "receive"
	case ActionTransmit:
		return "transmit"
	default:
		return "unknown"
	}
}

func messageContent(m Message) map[string]interface{} {
	out := map[string]interface{}{"kind": m.Kind.String()}
	switch m.Kind {
	case KindBeacon:
		out["hops"] = m.Hops
		out["children_channel"] = m.ChildrenChannel
		if m.ParentChannel != nil {
			out["parent_channel"] = *m.ParentChannel
		}
	case KindConnect:
		out["id"] = m.ID
	case KindConnectAck:
		out["id"] = m.ID
		out["next_window_min"] = m.NextWindowMin
	case KindData:
		out["count"] = len(m.Data)
	case KindDataAck:
		out["next_window_min"] = m.NextWindowMin
	}
	return out
}
