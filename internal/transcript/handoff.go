package transcript

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyDelivered is returned when a Handoff receives a second value.
var ErrAlreadyDelivered = errors.New("transcript: cue list already delivered")

// Handoff carries exactly one cue list (or one error) from an acquisition
// step to a formatting step.
type Handoff struct {
	once sync.Once
	done chan struct{}
	cues []Cue
	err  error
}

func NewHandoff() *Handoff {
	return &Handoff{done: make(chan struct{})}
}

// Deliver publishes the cue list. Only the first Deliver or Fail wins.
func (h *Handoff) Deliver(cues []Cue) error {
	return h.settle(cues, nil)
}

// Fail publishes an acquisition error instead of a cue list.
func (h *Handoff) Fail(err error) error {
	if err == nil {
		err = errors.New("transcript: acquisition failed")
	}
	return h.settle(nil, err)
}

func (h *Handoff) settle(cues []Cue, err error) error {
	settled := false
	h.once.Do(func() {
		h.cues = cues
		h.err = err
		settled = true
		close(h.done)
	})
	if !settled {
		return ErrAlreadyDelivered
	}
	return nil
}

// Await blocks until the cue list is delivered or ctx is done.
func (h *Handoff) Await(ctx context.Context) ([]Cue, error) {
	select {
	case <-h.done:
		return h.cues, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
