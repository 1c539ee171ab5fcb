package rangefilter

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"ejmap/internal/layers"
)

// Phase is the interaction state of the slider.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Committed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Committed:
		return "committed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Selection is a closed numeric range with Low <= High.
type Selection struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether v lies in the selection.
func (s Selection) Contains(v float64) bool { return v >= s.Low && v <= s.High }

// Full returns the selection covering all of d.
func Full(d layers.Domain) Selection { return Selection{Low: d.Min, High: d.Max} }

// Normalize swaps an inverted pair and clamps both ends to d. A NaN end
// falls back to the matching domain bound.
func Normalize(low, high float64, d layers.Domain) Selection {
	if math.IsNaN(low) {
		low = d.Min
	}
	if math.IsNaN(high) {
		high = d.Max
	}
	if low > high {
		low, high = high, low
	}
	return Selection{Low: d.Clamp(low), High: d.Clamp(high)}
}

// State holds the committed range of one indicator session and notifies
// subscribers when a new range is committed. It is not safe for concurrent
// use; callers drive it from a single event loop.
type State struct {
	domain    layers.Domain
	phase     Phase
	committed Selection
	pending   Selection
	emitted   *Selection

	subs  map[uuid.UUID]func(Selection)
	order []uuid.UUID
}

// New starts Committed with the full domain. Nothing is emitted until the
// first Commit or Reset, since no subscriber exists yet.
func New(d layers.Domain) *State {
	full := Full(d)
	return &State{
		domain:    d,
		phase:     Committed,
		committed: full,
		pending:   full,
		subs:      make(map[uuid.UUID]func(Selection)),
	}
}

func (s *State) Phase() Phase { return s.phase }

func (s *State) Domain() layers.Domain { return s.domain }

// Range returns the committed selection.
func (s *State) Range() Selection { return s.committed }

// Pending returns the in-progress selection while dragging, otherwise the
// committed one.
func (s *State) Pending() Selection {
	if s.phase == Dragging {
		return s.pending
	}
	return s.committed
}

// Subscribe registers fn for committed selections.
func (s *State) Subscribe(fn func(Selection)) uuid.UUID {
	id := uuid.New()
	s.subs[id] = fn
	s.order = append(s.order, id)
	return id
}

// Unsubscribe removes a subscriber; unknown ids are ignored.
func (s *State) Unsubscribe(id uuid.UUID) {
	if _, ok := s.subs[id]; !ok {
		return
	}
	delete(s.subs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Drag moves the slider thumbs without notifying anyone.
func (s *State) Drag(low, high float64) {
	s.pending = Normalize(low, high, s.domain)
	s.phase = Dragging
}

// Commit confirms the current drag. Subscribers hear about it only when the
// value differs from the last one emitted.
func (s *State) Commit() {
	if s.phase == Dragging {
		s.committed = s.pending
	}
	s.phase = Committed
	if s.emitted != nil && *s.emitted == s.committed {
		return
	}
	s.emit()
}

// Cancel abandons a drag and returns to the committed range.
func (s *State) Cancel() {
	s.pending = s.committed
	s.phase = Idle
}

// Set is a drag followed by a commit.
func (s *State) Set(low, high float64) {
	s.Drag(low, high)
	s.Commit()
}

// Reset switches to a new domain, selects all of it and always emits.
func (s *State) Reset(d layers.Domain) {
	s.domain = d
	s.committed = Full(d)
	s.pending = s.committed
	s.phase = Committed
	s.emit()
}

func (s *State) emit() {
	v := s.committed
	s.emitted = &v
	for _, id := range s.order {
		s.subs[id](v)
	}
}
