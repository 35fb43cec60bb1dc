// Package sim is the discrete-event simulator harness: it drives many
// protocol.Lightning nodes in virtual time, propagating transmitted
// messages subject to visibility and channel filtering, and injecting
// collisions and packet errors (spec §4.3).
package sim

import (
	"container/heap"

	"github.com/johannesneyer/lightning/protocol"
)

// MessageKind tags whether an in-flight Event carries a just-departed
// transmission or an arriving reception.
type MessageKind uint8

const (
	MessageTransmit MessageKind = iota
	MessageReceive
)

// MessageWrapper is the payload an Event carries when it represents a
// radio transmission in flight, plus the bookkeeping the simulator needs
// (the channel it travels on, and whether a later collision corrupted
// it).
type MessageWrapper struct {
	Kind      MessageKind
	Channel   protocol.Channel
	Message   protocol.Message
	IsCorrupt bool
}

// Event is one entry in the simulator's event queue: at Time, NodeID
// either wakes up to call progress() (Message == nil), has just finished
// transmitting (Message.Kind == MessageTransmit), or is about to receive
// (Message.Kind == MessageReceive). The queue invariant (spec §4.3):
// exactly one event per node at all times.
type Event struct {
	Time    protocol.TimeMs
	NodeID  protocol.NodeId
	Message *MessageWrapper

	seq uint64
}

type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

// Less orders first by Time, then by insertion order — spec §5's tie
// break for events with equal simulated time.
func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// EventQueue is the simulator's min-ordered-by-time event queue (spec
// §4.3). It is not safe for concurrent use; the simulator loop owns it
// exclusively.
type EventQueue struct {
	h       eventHeap
	nextSeq uint64
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	heap.Init(&q.h)
	return q
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int { return q.h.Len() }

// Push enqueues an event, stamping it with the next insertion sequence
// number for tie-breaking.
func (q *EventQueue) Push(e *Event) {
	e.seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.h, e)
}

// Pop removes and returns the earliest-time event, or nil if empty.
func (q *EventQueue) Pop() *Event {
	if q.h.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.h).(*Event)
}

// Items returns the queue's backing slice, in heap order (not fully
// sorted). Mutating an entry's fields other than Time in place (collision
// marking) leaves the heap order intact; callers that remove, reorder or
// retime entries must call Rebuild.
func (q *EventQueue) Items() []*Event { return q.h }

// Rebuild restores the heap invariant after Items()'s slice has had
// elements removed or reordered directly.
func (q *EventQueue) Rebuild() { heap.Init(&q.h) }

// RemoveNode deletes the (at most one, per the queue invariant) pending
// event for nodeID, if any, and reports whether it found one.
func (q *EventQueue) RemoveNode(nodeID protocol.NodeId) bool {
	for i, e := range q.h {
		if e.NodeID == nodeID {
			heap.Remove(&q.h, i)
			return true
		}
	}
	return false
}
