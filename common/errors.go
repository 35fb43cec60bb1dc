package common

import "errors"

// ErrCapacityExceeded indicates a bounded collection (window queue,
// child-data buffer, beacon shortlist) was asked to hold more than its
// cap. Per spec §7 this is fatal: capacity breaches indicate topology
// assumptions were violated, and silent truncation would corrupt uplink
// data.
var ErrCapacityExceeded = errors.New("lightning: capacity exceeded")

// ErrInvariantBreach indicates a scheduling or protocol invariant was
// about to be violated (Parent-vs-Parent or Child-vs-Child window
// conflict, a negative time offset). Fatal: it indicates a bug, not a
// recoverable runtime condition.
var ErrInvariantBreach = errors.New("lightning: invariant breach")

// ErrQueueEmpty is returned by Windows.Pop/PeekNext when there is
// nothing to return.
var ErrQueueEmpty = errors.New("lightning: window queue empty")

// ErrHopsOverflow indicates a node's hop count would overflow, a fatal
// condition per spec §3.
var ErrHopsOverflow = errors.New("lightning: hops overflow")
