package realtime

import "time"

// DefaultTickInterval is the wall-clock length of one countdown tick.
const DefaultTickInterval = time.Second

// Countdown maps wall-clock time onto discrete ticks. It does not know how many
// ticks a timer has left; the owner applies each due tick to its own clock and
// calls Stop once that clock runs out or the session ends.
type Countdown struct {
	Interval time.Duration
	Started  time.Time
	Applied  int
	Stopped  bool
}

// NewCountdown returns a countdown ticking every interval (DefaultTickInterval if <= 0).
func NewCountdown(interval time.Duration) Countdown {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return Countdown{Interval: interval}
}

// Start anchors tick zero at now and clears any previous progress.
func (c *Countdown) Start(now time.Time) {
	if c.Interval <= 0 {
		c.Interval = DefaultTickInterval
	}
	c.Started = now
	c.Applied = 0
	c.Stopped = false
}

// Running reports whether the countdown has started and not been stopped.
func (c *Countdown) Running() bool {
	return !c.Started.IsZero() && !c.Stopped
}

// Advance returns how many ticks became due since the last call and marks them
// as handed out. A stopped or unstarted countdown never yields ticks.
func (c *Countdown) Advance(now time.Time) int {
	if !c.Running() || now.Before(c.Started) {
		return 0
	}
	total := int(now.Sub(c.Started) / c.Interval)
	due := total - c.Applied
	if due <= 0 {
		return 0
	}
	c.Applied = total
	return due
}

// NextWake returns when the next tick becomes due, and whether the countdown is active.
func (c *Countdown) NextWake(now time.Time) (time.Time, bool) {
	if !c.Running() {
		return time.Time{}, false
	}
	next := c.Started.Add(time.Duration(c.Applied+1) * c.Interval)
	if next.Before(now) {
		return now, true
	}
	return next, true
}

// Stop freezes the countdown; later Advance calls return zero.
func (c *Countdown) Stop() {
	c.Stopped = true
}
