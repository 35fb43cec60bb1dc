package sim

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/johannesneyer/lightning/protocol"
	"github.com/stretchr/testify/require"
)

type stubRadio struct {
	tuned protocol.Channel
	sent  []protocol.Message
	inbox chan protocol.Message
}

func newStubRadio() *stubRadio {
	return &stubRadio{inbox: make(chan protocol.Message, 4)}
}

func (r *stubRadio) Tune(channel protocol.Channel) { r.tuned = channel }

func (r *stubRadio) Send(msg protocol.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func (r *stubRadio) Receive(ctx context.Context, deadline time.Time) (protocol.Message, bool) {
	select {
	case m := <-r.inbox:
		return m, true
	default:
		return protocol.Message{}, false
	}
}

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// stepAsync runs one Step call on its own goroutine and returns a channel
// for its result, since clockwork.FakeClock.Sleep blocks its caller until
// Advance is invoked from elsewhere.
func stepAsync(t *testing.T, d *Driver, msg *protocol.Message) <-chan StepResult {
	t.Helper()
	out := make(chan StepResult, 1)
	go func() {
		res, err := d.Step(context.Background(), msg)
		require.NoError(t, err)
		out <- res
	}()
	return out
}

func TestDriverStepTransmitSendsOverRadio(t *testing.T) {
	node := protocol.NewLightning(protocol.NodeId(1), false, nil, nil)
	node.SetPayload(protocol.Payload(7))
	radio := newStubRadio()
	clock := clockwork.NewFakeClock()
	rng := rand.New(rand.NewSource(1))

	d := NewDriver(node, radio, clock, rng, nil, epoch)

	// A leaf transmits only after hearing a beacon twice (discovery, then
	// confirmation), so queue two sink beacons for it to receive.
	radio.inbox <- protocol.NewBeacon(0, 3, nil)
	radio.inbox <- protocol.NewBeacon(0, 3, nil)

	var msg *protocol.Message
	for i := 0; i < 64 && len(radio.sent) == 0; i++ {
		resCh := stepAsync(t, d, msg)
		var res StepResult
		select {
		case res = <-resCh:
		case <-time.After(10 * time.Millisecond):
			// Step is blocked in clock.Sleep (Wait/Receive/Transmit delay);
			// advance the fake clock to release it.
			clock.Advance(time.Hour)
			res = <-resCh
		}
		msg = res.Received
	}
	require.NotEmpty(t, radio.sent, "driver never transmitted over the stub radio")
}

func TestDriverRunStopsOnContextCancel(t *testing.T) {
	node := protocol.NewLightning(protocol.NodeId(1), true, nil, nil)
	radio := newStubRadio()
	clock := clockwork.NewFakeClock()
	rng := rand.New(rand.NewSource(1))
	d := NewDriver(node, radio, clock, rng, nil, epoch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
