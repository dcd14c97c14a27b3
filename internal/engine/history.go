package engine

import "time"

// History is a fixed-capacity record of an entity's recent refreshes, oldest
// first once full. It is not safe for concurrent use; the owning Poller
// guards it.
type History struct {
	samples []StateSample
	next    int
	full    bool
}

// NewHistory returns an empty History holding at most capacity samples.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{samples: make([]StateSample, 0, capacity)}
}

// Add records s, dropping the oldest sample when the history is full.
func (h *History) Add(s StateSample) {
	if !h.full {
		h.samples = append(h.samples, s)
		if len(h.samples) == cap(h.samples) {
			h.full = true
		}
		return
	}
	h.samples[h.next] = s
	h.next = (h.next + 1) % len(h.samples)
}

// Len is the number of samples held.
func (h *History) Len() int {
	return len(h.samples)
}

// Samples returns a copy ordered oldest to newest.
func (h *History) Samples() []StateSample {
	out := make([]StateSample, 0, len(h.samples))
	out = append(out, h.samples[h.next:]...)
	return append(out, h.samples[:h.next]...)
}

// Last returns the newest sample.
func (h *History) Last() (StateSample, bool) {
	if len(h.samples) == 0 {
		return StateSample{}, false
	}
	i := h.next - 1
	if i < 0 {
		i = len(h.samples) - 1
	}
	return h.samples[i], true
}

// LastChange returns when the entity entered its current state, as far back
// as the history reaches. Failed polls are skipped; they say nothing about
// the entity.
func (h *History) LastChange() (time.Time, bool) {
	samples := h.Samples()
	var (
		current string
		since   time.Time
		found   bool
	)
	for i := len(samples) - 1; i >= 0; i-- {
		s := samples[i]
		if s.Err {
			continue
		}
		if !found {
			current, since, found = s.State, s.Timestamp, true
			continue
		}
		if s.State != current {
			break
		}
		since = s.Timestamp
	}
	return since, found
}
