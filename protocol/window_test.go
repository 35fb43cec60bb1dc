package protocol

import (
	"math/rand"
	"testing"

	"github.com/johannesneyer/lightning/common"
	"github.com/stretchr/testify/require"
)

func fixedDuration(beacon, child, parent uint64) DurationFunc {
	return func(k WindowKind) uint64 {
		switch k {
		case Beacon:
			return beacon
		case Child:
			return child
		case Parent:
			return parent
		}
		return 0
	}
}

// TestWindowConflictScenario is spec §8 scenario S6.
func TestWindowConflictScenario(t *testing.T) {
	w := NewWindows(50, fixedDuration(200, 100, 100), nil)

	require.NoError(t, w.Push(Window{Kind: Beacon, Start: 1000}))
	require.NoError(t, w.Push(Window{Kind: Child, Start: 1000}))

	first, err := w.Pop()
	require.NoError(t, err)
	require.Equal(t, Window{Kind: Child, Start: 1000}, first)

	second, err := w.Pop()
	require.NoError(t, err)
	require.Equal(t, Window{Kind: Beacon, Start: 1150}, second)
}

func TestWindowsIsFull(t *testing.T) {
	w := NewWindows(50, fixedDuration(10, 10, 10), nil)
	for i := 0; i < 6; i++ {
		require.NoError(t, w.Push(Window{Kind: Child, Start: TimeMs(i * 1000)}))
		require.Equal(t, i == 5, w.IsFull())
	}
	err := w.Push(Window{Kind: Child, Start: 100000})
	require.ErrorIs(t, err, common.ErrCapacityExceeded)
}

func TestWindowsDuplicateSingletonRejected(t *testing.T) {
	w := NewWindows(50, fixedDuration(10, 10, 10), nil)
	require.NoError(t, w.Push(Window{Kind: Parent, Start: 1000}))
	err := w.Push(Window{Kind: Parent, Start: 5000})
	require.Error(t, err)
}

func TestWindowsParentDropsOverlappingChild(t *testing.T) {
	w := NewWindows(50, fixedDuration(200, 100, 100), nil)
	require.NoError(t, w.Push(Window{Kind: Child, Start: 1000}))
	require.NoError(t, w.Push(Window{Kind: Parent, Start: 1000}))

	win, err := w.Pop()
	require.NoError(t, err)
	require.Equal(t, Parent, win.Kind)
	require.Equal(t, 0, w.Len())
}

func TestWindowsChildDroppedWhenParentPresent(t *testing.T) {
	w := NewWindows(50, fixedDuration(200, 100, 100), nil)
	require.NoError(t, w.Push(Window{Kind: Parent, Start: 1000}))
	require.NoError(t, w.Push(Window{Kind: Child, Start: 1000}))

	require.Equal(t, 1, w.Len())
	win, _ := w.Pop()
	require.Equal(t, Parent, win.Kind)
}

// TestWindowsInvariantProperty is spec §8 invariant 1: after every push,
// the queue stays ordered by start with clearance respected between
// adjacent entries.
func TestWindowsInvariantProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		w := NewWindows(300, DefaultDuration, nil)
		childCount := 0
		haveBeacon := false
		haveParent := false

		for i := 0; i < 20; i++ {
			var kind WindowKind
			switch rng.Intn(3) {
			case 0:
				if haveBeacon {
					continue
				}
				kind = Beacon
				haveBeacon = true
			case 1:
				if haveParent {
					continue
				}
				kind = Parent
				haveParent = true
			default:
				if childCount >= 6 {
					continue
				}
				kind = Child
				childCount++
			}
			start := TimeMs(rng.Intn(200_000))
			_ = w.Push(Window{Kind: kind, Start: start})
			assertOrderedAndClear(t, w)
		}
	}
}

func assertOrderedAndClear(t *testing.T, w *Windows) {
	t.Helper()
	for i := 1; i < len(w.entries); i++ {
		prev := w.entries[i-1]
		cur := w.entries[i]
		require.LessOrEqual(t, prev.Start, cur.Start)
		require.GreaterOrEqual(t, uint64(cur.Start), uint64(prev.Start)+w.duration(prev.Kind)+w.clearance)
	}
}

func TestWindowsPeekAndPopKind(t *testing.T) {
	w := NewWindows(50, fixedDuration(10, 10, 10), nil)
	require.NoError(t, w.Push(Window{Kind: Beacon, Start: 2000}))
	require.NoError(t, w.Push(Window{Kind: Child, Start: 5000}))

	next, err := w.PeekNext()
	require.NoError(t, err)
	require.Equal(t, TimeMs(2000), next)

	start, ok := w.PeekNextKind(Child)
	require.True(t, ok)
	require.Equal(t, TimeMs(5000), start)

	win, ok := w.PopKind(Beacon)
	require.True(t, ok)
	require.Equal(t, TimeMs(2000), win.Start)
	require.Equal(t, 1, w.Len())
}
