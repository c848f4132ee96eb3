package scene

import "time"

// TimeSource returns seconds on a monotonic timeline.
type TimeSource func() float64

// Clock reports seconds elapsed since it was started.
type Clock struct {
	now   TimeSource
	start float64
}

func NewClock(now TimeSource) *Clock {
	return &Clock{now: now, start: now()}
}

// SystemClock uses the process monotonic clock.
func SystemClock() *Clock {
	origin := time.Now()
	return NewClock(func() float64 { return time.Since(origin).Seconds() })
}

func (c *Clock) Elapsed() float32 {
	return float32(c.now() - c.start)
}

// Reset restarts the clock at zero.
func (c *Clock) Reset() {
	c.start = c.now()
}

// FixedStep returns the time of frame n at fps frames per second.
func FixedStep(n int, fps int) float32 {
	if fps <= 0 {
		return 0
	}
	return float32(float64(n) / float64(fps))
}
