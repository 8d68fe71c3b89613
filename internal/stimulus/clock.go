package stimulus

import "time"

// Clock is the host's time base in microseconds.
type Clock interface {
	NowMicros() int64
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() int64

func (f ClockFunc) NowMicros() int64 { return f() }

// SystemClock counts microseconds on the monotonic clock from its creation.
type SystemClock struct {
	origin time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{origin: time.Now()}
}

func (c *SystemClock) NowMicros() int64 {
	return time.Since(c.origin).Microseconds()
}
