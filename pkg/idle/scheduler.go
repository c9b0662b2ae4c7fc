package idle

import "sync"

// Callback is invoked with the deadline of the idle period it runs in.
type Callback func(Deadline)

// Scheduler invokes callbacks during idle periods. Each registration fires
// at most once.
type Scheduler interface {
	RequestIdleCallback(cb Callback)
}

// Manual is a Scheduler driven explicitly by Step.
type Manual struct {
	mu      sync.Mutex
	pending []Callback
}

// NewManual creates a Manual scheduler with nothing pending.
func NewManual() *Manual {
	return &Manual{}
}

// RequestIdleCallback implements Scheduler.
func (m *Manual) RequestIdleCallback(cb Callback) {
	m.mu.Lock()
	m.pending = append(m.pending, cb)
	m.mu.Unlock()
}

// Step runs the callbacks registered before the call with deadline d and
// returns how many ran. Callbacks registered while stepping wait for the
// next Step.
func (m *Manual) Step(d Deadline) int {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, cb := range batch {
		cb(d)
	}
	return len(batch)
}

// Pending returns the number of registered callbacks waiting for Step.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// maxDrainSteps bounds Drain so a callback that keeps making work cannot
// hang a test.
const maxDrainSteps = 10000

// Drain steps with an unlimited deadline until busy reports false and
// returns the number of steps taken.
func (m *Manual) Drain(busy func() bool) int {
	steps := 0
	for busy() && steps < maxDrainSteps {
		if m.Step(Unlimited()) == 0 {
			break
		}
		steps++
	}
	return steps
}
