package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/johannesneyer/lightning/common"
)

// Kind tags which variant a Message holds. Message is a closed sum type:
// callers should switch exhaustively over Kind rather than type-assert.
type Kind uint8

const (
	KindBeacon Kind = iota
	KindConnect
	KindConnectAck
	KindData
	KindDataAck
	KindNack
)

func (k Kind) String() string {
	switch k {
	case KindBeacon:
		return "beacon"
	case KindConnect:
		return "connect"
	case KindConnectAck:
		return "ack"
	case KindData:
		return "data"
	case KindDataAck:
		return "ack"
	case KindNack:
		return "nack"
	default:
		return "unknown"
	}
}

// noParentChannel is the wire sentinel for "Beacon.ParentChannel absent".
// Channel values only ever occupy [0, common.NumChannels), so this is
// always free.
const noParentChannel = 0xFF

// Message is the Lightning wire message, a closed union of the variants
// below. Exactly one of the per-kind fields is meaningful, selected by
// Kind; constructors (NewBeacon, NewConnect, ...) are the only supported
// way to build one.
type Message struct {
	Kind Kind

	Hops             Hops
	ChildrenChannel  Channel
	ParentChannel    *Channel // Beacon only

	ID NodeId // Connect, ConnectAck

	NextWindowMin uint8 // ConnectAck, DataAck

	Data []NodeData // Data
}

// NewBeacon builds a Beacon message advertising hops and the sender's
// children channel, optionally carrying the sender's own parent channel.
func NewBeacon(hops Hops, childrenChannel Channel, parentChannel *Channel) Message {
	return Message{Kind: KindBeacon, Hops: hops, ChildrenChannel: childrenChannel, ParentChannel: parentChannel}
}

// NewConnect builds a join request carrying the sender's id.
func NewConnect(id NodeId) Message {
	return Message{Kind: KindConnect, ID: id}
}

// NewConnectAck builds a join acknowledgment sealing a connect handshake.
func NewConnectAck(nextWindowMin uint8, id NodeId) Message {
	return Message{Kind: KindConnectAck, NextWindowMin: nextWindowMin, ID: id}
}

// NewData builds a Data message carrying an ordered batch of NodeData,
// at most common.MaxDescendants+1 entries.
func NewData(batch []NodeData) Message {
	return Message{Kind: KindData, Data: batch}
}

// NewDataAck builds a data acknowledgment telling the child when the
// parent expects to hear from it again.
func NewDataAck(nextWindowMin uint8) Message {
	return Message{Kind: KindDataAck, NextWindowMin: nextWindowMin}
}

// NewNack builds a bare negative acknowledgment.
func NewNack() Message {
	return Message{Kind: KindNack}
}

// Encode serializes m to its compact on-air binary form. Beacon,
// Connect, ConnectAck, DataAck and Nack always fit within
// common.MaxMessageSize; a Data batch grows with the number of entries
// and may exceed it at the cap of MaxDescendants+1 entries (6 bytes per
// NodeData plus a 2-byte header) — the nominal constant bounds the
// control messages a node exchanges far more often than full-topology
// uplink batches.
func (m Message) Encode() ([]byte, error) {
	switch m.Kind {
	case KindBeacon:
		buf := make([]byte, 0, 4)
		buf = append(buf, byte(KindBeacon), byte(m.Hops), byte(m.ChildrenChannel))
		if m.ParentChannel != nil {
			buf = append(buf, byte(*m.ParentChannel))
		} else {
			buf = append(buf, noParentChannel)
		}
		return buf, nil

	case KindConnect:
		buf := make([]byte, 5)
		buf[0] = byte(KindConnect)
		binary.BigEndian.PutUint32(buf[1:], uint32(m.ID))
		return buf, nil

	case KindConnectAck:
		buf := make([]byte, 6)
		buf[0] = byte(KindConnectAck)
		buf[1] = m.NextWindowMin
		binary.BigEndian.PutUint32(buf[2:], uint32(m.ID))
		return buf, nil

	case KindData:
		if len(m.Data) > common.MaxDescendants+1 {
			return nil, fmt.Errorf("%w: data batch has %d entries, max %d",
				common.ErrCapacityExceeded, len(m.Data), common.MaxDescendants+1)
		}
		buf := make([]byte, 2, 2+6*len(m.Data))
		buf[0] = byte(KindData)
		buf[1] = byte(len(m.Data))
		for _, nd := range m.Data {
			var entry [6]byte
			binary.BigEndian.PutUint32(entry[0:4], uint32(nd.Source))
			binary.BigEndian.PutUint16(entry[4:6], uint16(nd.Payload))
			buf = append(buf, entry[:]...)
		}
		return buf, nil

	case KindDataAck:
		return []byte{byte(KindDataAck), m.NextWindowMin}, nil

	case KindNack:
		return []byte{byte(KindNack)}, nil

	default:
		return nil, fmt.Errorf("lightning: unknown message kind %d", m.Kind)
	}
}

// Decode parses a Message from its on-air binary form. A malformed frame
// returns an error; per spec §7 the caller (the driver's deserializer
// boundary) treats that as silence rather than propagating it further.
func Decode(buf []byte) (Message, error) {
	if len(buf) == 0 {
		return Message{}, fmt.Errorf("lightning: empty frame")
	}
	kind := Kind(buf[0])
	switch kind {
	case KindBeacon:
		if len(buf) < 4 {
			return Message{}, fmt.Errorf("lightning: beacon frame too short")
		}
		m := Message{Kind: KindBeacon, Hops: Hops(buf[1]), ChildrenChannel: Channel(buf[2])}
		if buf[3] != noParentChannel {
			pc := Channel(buf[3])
			m.ParentChannel = &pc
		}
		return m, nil

	case KindConnect:
		if len(buf) < 5 {
			return Message{}, fmt.Errorf("lightning: connect frame too short")
		}
		return Message{Kind: KindConnect, ID: NodeId(binary.BigEndian.Uint32(buf[1:5]))}, nil

	case KindConnectAck:
		if len(buf) < 6 {
			return Message{}, fmt.Errorf("lightning: connect-ack frame too short")
		}
		return Message{
			Kind:          KindConnectAck,
			NextWindowMin: buf[1],
			ID:            NodeId(binary.BigEndian.Uint32(buf[2:6])),
		}, nil

	case KindData:
		if len(buf) < 2 {
			return Message{}, fmt.Errorf("lightning: data frame too short")
		}
		count := int(buf[1])
		want := 2 + 6*count
		if len(buf) < want {
			return Message{}, fmt.Errorf("lightning: data frame truncated: want %d got %d", want, len(buf))
		}
		data := make([]NodeData, 0, count)
		for i := 0; i < count; i++ {
			off := 2 + 6*i
			data = append(data, NodeData{
				Source:  NodeId(binary.BigEndian.Uint32(buf[off : off+4])),
				Payload: Payload(binary.BigEndian.Uint16(buf[off+4 : off+6])),
			})
		}
		return Message{Kind: KindData, Data: data}, nil

	case KindDataAck:
		if len(buf) < 2 {
			return Message{}, fmt.Errorf("lightning: data-ack frame too short")
		}
		return Message{Kind: KindDataAck, NextWindowMin: buf[1]}, nil

	case KindNack:
		return Message{Kind: KindNack}, nil

	default:
		return Message{}, fmt.Errorf("lightning: unknown message kind byte %d", buf[0])
	}
}
