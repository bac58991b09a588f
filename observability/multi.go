package observability

import "context"

// MultiObserver fans out events to multiple observers in order.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver creates a MultiObserver over the given observers,
// dropping nil entries and NoOpObserver values.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		switch obs.(type) {
		case nil, NoOpObserver, *NoOpObserver:
			continue
		}
		filtered = append(filtered, obs)
	}
	return &MultiObserver{observers: filtered}
}

// Len returns the number of observers events are forwarded to.
func (m *MultiObserver) Len() int {
	return len(m.observers)
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}

// Combine returns a single observer for the given set: NoOpObserver when
// none remain, the observer itself when one does, a MultiObserver otherwise.
func Combine(observers ...Observer) Observer {
	multi := NewMultiObserver(observers...)
	switch multi.Len() {
	case 0:
		return NoOpObserver{}
	case 1:
		return multi.observers[0]
	default:
		return multi
	}
}
