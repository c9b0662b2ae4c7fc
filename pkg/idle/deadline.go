package idle

import (
	"math"
	"time"
)

// Deadline reports how much time is left in the current idle period.
type Deadline interface {
	TimeRemaining() time.Duration
}

// DeadlineFunc adapts a function to the Deadline interface.
type DeadlineFunc func() time.Duration

// TimeRemaining implements Deadline.
func (f DeadlineFunc) TimeRemaining() time.Duration { return f() }

type timeDeadline struct {
	end time.Time
}

func (d timeDeadline) TimeRemaining() time.Duration {
	left := time.Until(d.end)
	if left < 0 {
		return 0
	}
	return left
}

// At returns a Deadline that expires at end.
func At(end time.Time) Deadline {
	return timeDeadline{end: end}
}

// After returns a Deadline that expires d from now.
func After(d time.Duration) Deadline {
	return timeDeadline{end: time.Now().Add(d)}
}

// Unlimited returns a Deadline that never expires.
func Unlimited() Deadline {
	return DeadlineFunc(func() time.Duration { return math.MaxInt64 })
}

// Expired returns a Deadline with no time left.
func Expired() Deadline {
	return DeadlineFunc(func() time.Duration { return 0 })
}

// CountdownDeadline reports ample time for a fixed number of queries and
// none afterwards.
type CountdownDeadline struct {
	left int
}

// Countdown returns a Deadline whose first n TimeRemaining calls report an
// hour and every later call reports zero. The engine asks once before each
// unit of work, so Countdown(n) allows exactly n units.
func Countdown(n int) *CountdownDeadline {
	return &CountdownDeadline{left: n}
}

// TimeRemaining implements Deadline.
func (c *CountdownDeadline) TimeRemaining() time.Duration {
	if c.left <= 0 {
		return 0
	}
	c.left--
	return time.Hour
}

// Left returns how many more queries will report time remaining.
func (c *CountdownDeadline) Left() int {
	return c.left
}
