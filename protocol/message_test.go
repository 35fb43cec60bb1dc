package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, m Message) {
	t.Helper()
	buf, err := m.Encode()
	require.NoError(t, err)

	got, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestMessageRoundTrip(t *testing.T) {
	parentChan := Channel(3)

	cases := map[string]Message{
		"beacon_no_parent": NewBeacon(0, 5, nil),
		"beacon_with_parent": NewBeacon(4, 5, &parentChan),
		"connect":    NewConnect(12345),
		"connectack": NewConnectAck(7, 999),
		"data_empty": NewData(nil),
		"data_one":   NewData([]NodeData{{Source: 1, Payload: 42}}),
		"data_full": NewData(func() []NodeData {
			out := make([]NodeData, 17)
			for i := range out {
				out[i] = NodeData{Source: NodeId(i), Payload: Payload(i * 10)}
			}
			return out
		}()),
		"dataack": NewDataAck(3),
		"nack":    NewNack(),
	}

	for name, m := range cases {
		m := m
		t.Run(name, func(t *testing.T) {
			roundTrip(t, m)
		})
	}
}

func TestDecodeMalformedFramesError(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)

	_, err = Decode([]byte{byte(KindConnect), 0, 0})
	require.Error(t, err)

	_, err = Decode([]byte{byte(KindData), 5, 0, 0})
	require.Error(t, err)

	_, err = Decode([]byte{0xEE})
	require.Error(t, err)
}

func TestEncodeDataBatchOverCapErrors(t *testing.T) {
	batch := make([]NodeData, 18)
	_, err := NewData(batch).Encode()
	require.Error(t, err)
}
