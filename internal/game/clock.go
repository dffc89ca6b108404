package game

// Clock is the session countdown in whole seconds. It only counts while running.
type Clock struct {
	total     int
	remaining int
	running   bool
}

// NewClock returns a stopped clock set to seconds.
func NewClock(seconds int) Clock {
	if seconds < 0 {
		seconds = 0
	}
	return Clock{total: seconds, remaining: seconds}
}

// Start lets ticks through.
func (c *Clock) Start() {
	c.running = true
}

// Freeze stops the clock for good.
func (c *Clock) Freeze() {
	c.running = false
}

// Tick decrements the countdown by one second and reports whether it has
// just reached zero. Ticks on a stopped clock are ignored.
func (c *Clock) Tick() bool {
	if !c.running || c.remaining <= 0 {
		return false
	}
	c.remaining--
	return c.remaining == 0
}

// Remaining returns the seconds left.
func (c *Clock) Remaining() int {
	return c.remaining
}

// Total returns the configured duration in seconds.
func (c *Clock) Total() int {
	return c.total
}

// Elapsed returns total minus remaining.
func (c *Clock) Elapsed() int {
	return c.total - c.remaining
}

// Running reports whether ticks are being counted.
func (c *Clock) Running() bool {
	return c.running
}
