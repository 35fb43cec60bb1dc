package protocol

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEventLogLineFormat(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLog(&buf, uuid.Nil)

	el.Reset(1500, NodeId(7), StateListenForBeacons)

	line := strings.TrimSuffix(buf.String(), "\n")
	require.True(t, strings.HasPrefix(line, "$1500;7;reset;"))
	require.Contains(t, line, `"from_state":"listen_for_beacons"`)
}

func TestEventLogNewChildPayload(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLog(&buf, uuid.Nil)

	el.NewChild(2000, NodeId(1), NodeId(99), Channel(3))

	line := buf.String()
	require.Contains(t, line, `"child_id":99`)
	require.Contains(t, line, `"channel":3`)
}

func TestEventLogActionTransmitPayload(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLog(&buf, uuid.Nil)

	el.Action(10, NodeId(2), transmitAction(Channel(4), NewConnect(55), 5))

	line := buf.String()
	require.Contains(t, line, `"kind":"transmit"`)
	require.Contains(t, line, `"channel":4`)
	require.Contains(t, line, `"message":{`)
}

func TestEventLogRecentRingBounded(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLog(&buf, uuid.Nil)

	for i := 0; i < 100; i++ {
		el.State(TimeMs(i), NodeId(1), StateIdle)
	}

	recent := el.Recent()
	require.Len(t, recent, 64)
	require.True(t, strings.HasPrefix(recent[len(recent)-1], "$99;"))
}
