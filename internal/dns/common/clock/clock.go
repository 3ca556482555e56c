// Package clock abstracts the wall clock so lookup timings can be asserted
// in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (c RealClock) Now() time.Time {
	return time.Now()
}

// MockClock returns CurrentTime and, when Step is set, advances by Step
// after every call.
type MockClock struct {
	CurrentTime time.Time
	Step        time.Duration
}

func (c *MockClock) Now() time.Time {
	now := c.CurrentTime
	c.CurrentTime = c.CurrentTime.Add(c.Step)
	return now
}

func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Elapsed returns the time passed on c since start.
func Elapsed(c Clock, start time.Time) time.Duration {
	return c.Now().Sub(start)
}
