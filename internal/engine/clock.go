package engine

import "time"

// Clock supplies the current instant. The tracker derives the initial month
// and "today" from it, and the feed stamps DTSTAMP with it.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always reports At.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
