package session

// Clock is a per-phase countdown. It is not safe for concurrent use; the
// session runner serializes all access.
//
// A clock never goes negative and signals expiry exactly once per budget:
// after Tick returns true the clock stays stopped until the state machine
// resets it for the next phase or part.
type Clock struct {
	remaining int
	running   bool
	fired     bool
}

// NewClock returns a running clock with the given budget in seconds. A zero
// or negative budget produces a stopped clock that never expires.
func NewClock(budget int) *Clock {
	c := &Clock{}
	c.Reset(budget)
	return c
}

// Reset arms the clock with a new budget and clears any previous expiry.
func (c *Clock) Reset(budget int) {
	if budget <= 0 {
		c.remaining = 0
		c.running = false
		c.fired = false
		return
	}
	c.remaining = budget
	c.running = true
	c.fired = false
}

// Tick decrements the countdown by one second. It returns true on the single
// tick that reaches zero and false on every other call, including calls after
// expiry.
func (c *Clock) Tick() bool {
	if c == nil || !c.running {
		return false
	}
	c.remaining--
	if c.remaining > 0 {
		return false
	}
	c.remaining = 0
	c.running = false
	if c.fired {
		return false
	}
	c.fired = true
	return true
}

// Remaining returns the seconds left in the current budget.
func (c *Clock) Remaining() int {
	if c == nil {
		return 0
	}
	return c.remaining
}

// Running reports whether the clock is still counting down.
func (c *Clock) Running() bool {
	return c != nil && c.running
}

// Stop halts the countdown without firing expiry. Used when a phase
// transition supersedes the budget.
func (c *Clock) Stop() {
	if c == nil {
		return
	}
	c.running = false
}
