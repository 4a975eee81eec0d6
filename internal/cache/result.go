package cache

import "time"

type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Result is the last value a view can render. Data survives Loading and Failed so a view
// keeps showing the previous snapshot until a successful fetch replaces it.
type Result[T any] struct {
	State     State
	Data      T
	Err       error
	UpdatedAt time.Time

	// inflight counts loads not yet applied or dropped. settled is what the slot showed
	// before the first of them started.
	inflight     int
	settledState State
	settledErr   error
}

func (r Result[T]) Loading() bool { return r.State == StateLoading }
func (r Result[T]) Failed() bool  { return r.State == StateFailed }

func (r *Result[T]) begin() {
	if r.inflight == 0 {
		r.settledState, r.settledErr = r.State, r.Err
	}
	r.inflight++
	r.State = StateLoading
	r.Err = nil
}

func (r *Result[T]) apply(data T, err error, onError func(prev Result[T]) T, now time.Time) {
	if r.inflight > 0 {
		r.inflight--
	}
	if err != nil {
		r.State = StateFailed
		r.Err = err
		if onError != nil {
			r.Data = onError(*r)
		}
	} else {
		r.State = StateLoaded
		r.Err = nil
		r.Data = data
		r.UpdatedAt = now
	}
	r.settledState, r.settledErr = r.State, r.Err
}

// abandon forgets one dropped load. When none is left the slot goes back to what it
// showed before loading started.
func (r *Result[T]) abandon() {
	if r.inflight > 0 {
		r.inflight--
	}
	if r.inflight == 0 {
		r.settle()
	}
}

// settle gives up on every outstanding load.
func (r *Result[T]) settle() {
	r.inflight = 0
	if r.State == StateLoading {
		r.State, r.Err = r.settledState, r.settledErr
	}
}
