package application

import (
	"sync"
	"time"
)

// Status is the lifecycle state of a data-bound view region.
type Status int

const (
	// StatusUnloaded means no request has been issued yet.
	StatusUnloaded Status = iota
	// StatusLoading means a request is in flight.
	StatusLoading
	// StatusPopulated means the last request succeeded with one or more items.
	StatusPopulated
	// StatusEmpty means the last request succeeded and confirmed there are no items.
	StatusEmpty
	// StatusFailed means the last request failed. Earlier good data is kept.
	StatusFailed
)

// String returns the lowercase status name used in metrics and markup.
func (s Status) String() string {
	switch s {
	case StatusUnloaded:
		return "unloaded"
	case StatusLoading:
		return "loading"
	case StatusPopulated:
		return "populated"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// settled reports whether s is a terminal success state.
func (s Status) settled() bool {
	return s == StatusPopulated || s == StatusEmpty
}

// ViewObserver receives view-state transitions and registry sizes.
// *observability.Metrics satisfies it.
type ViewObserver interface {
	ObserveTransition(view, status string)
	ObserveStale(view string)
	ObserveTracked(visitors, regions int)
}

// Ticket identifies one request against a Resource. Only the ticket from the
// most recent Begin can settle the resource.
type Ticket struct {
	epoch uint64
}

// Epoch returns the request generation this ticket was issued for.
func (t Ticket) Epoch() uint64 { return t.epoch }

// Snapshot is a point-in-time copy of a Resource.
type Snapshot[T any] struct {
	Status Status
	// Settled is the status of the last successful request: StatusPopulated,
	// StatusEmpty, or StatusUnloaded when no request has succeeded yet.
	Settled   Status
	Value     T
	Params    string
	Err       error
	Epoch     uint64
	UpdatedAt time.Time
}

// HasData reports whether Value holds the result of a successful request.
func (s Snapshot[T]) HasData() bool {
	return s.Settled.settled()
}

// Resource holds one server-owned value and the state of the requests that
// fetch it. Each completed request replaces the state at most once, and a
// result whose ticket is older than the latest Begin is discarded.
type Resource[T any] struct {
	mu       sync.Mutex
	view     string
	observer ViewObserver
	now      func() time.Time

	status    Status
	settled   Status
	value     T
	params    string
	err       error
	epoch     uint64
	updatedAt time.Time
}

// NewResource creates an unloaded Resource. view names the region in metrics.
// observer may be nil.
func NewResource[T any](view string, observer ViewObserver) *Resource[T] {
	return &Resource[T]{view: view, observer: observer, now: time.Now}
}

// Begin starts a request for params and moves the resource to StatusLoading.
// Any ticket issued earlier becomes stale.
func (r *Resource[T]) Begin(params string) Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.epoch++
	r.params = params
	r.status = StatusLoading
	r.updatedAt = r.now()
	r.observe(StatusLoading)

	return Ticket{epoch: r.epoch}
}

// Resolve settles the request identified by t with value. count is the number
// of items value holds: zero means StatusEmpty, anything else StatusPopulated.
// The previous value is replaced whole. Resolve returns false and changes
// nothing when t is stale.
func (r *Resource[T]) Resolve(t Ticket, value T, count int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.epoch != r.epoch {
		r.stale()
		return false
	}

	status := StatusPopulated
	if count == 0 {
		status = StatusEmpty
	}

	r.status = status
	r.settled = status
	r.value = value
	r.err = nil
	r.updatedAt = r.now()
	r.observe(status)

	return true
}

// Reject records a failed request. The last good value and its settled status
// are left untouched. Reject returns false and changes nothing when t is stale.
func (r *Resource[T]) Reject(t Ticket, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.epoch != r.epoch {
		r.stale()
		return false
	}

	r.status = StatusFailed
	r.err = err
	r.updatedAt = r.now()
	r.observe(StatusFailed)

	return true
}

// Snapshot returns a copy of the current state.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot[T]{
		Status:    r.status,
		Settled:   r.settled,
		Value:     r.value,
		Params:    r.params,
		Err:       r.err,
		Epoch:     r.epoch,
		UpdatedAt: r.updatedAt,
	}
}

func (r *Resource[T]) observe(s Status) {
	if r.observer != nil {
		r.observer.ObserveTransition(r.view, s.String())
	}
}

func (r *Resource[T]) stale() {
	if r.observer != nil {
		r.observer.ObserveStale(r.view)
	}
}
