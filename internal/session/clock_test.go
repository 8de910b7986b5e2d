package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_FiresExactlyOnce(t *testing.T) {
	c := NewClock(3)

	assert.True(t, c.Running())
	assert.False(t, c.Tick())
	assert.False(t, c.Tick())
	assert.True(t, c.Tick(), "the tick reaching zero fires")
	assert.Equal(t, 0, c.Remaining())
	assert.False(t, c.Running())

	// Expired clocks never fire again or go negative.
	assert.False(t, c.Tick())
	assert.Equal(t, 0, c.Remaining())
}

func TestClock_ZeroBudgetNeverExpires(t *testing.T) {
	c := NewClock(0)
	assert.False(t, c.Running())
	for i := 0; i < 5; i++ {
		assert.False(t, c.Tick())
	}
	assert.Equal(t, 0, c.Remaining())
}

func TestClock_ResetRearmsAfterExpiry(t *testing.T) {
	c := NewClock(1)
	assert.True(t, c.Tick())

	c.Reset(2)
	assert.True(t, c.Running())
	assert.Equal(t, 2, c.Remaining())
	assert.False(t, c.Tick())
	assert.True(t, c.Tick())
}

func TestClock_StopSuppressesExpiry(t *testing.T) {
	c := NewClock(2)
	assert.False(t, c.Tick())
	c.Stop()
	assert.False(t, c.Tick())
	assert.Equal(t, 1, c.Remaining())
}

func TestClock_NilReceiverIsInert(t *testing.T) {
	var c *Clock
	assert.False(t, c.Tick())
	assert.False(t, c.Running())
	assert.Equal(t, 0, c.Remaining())
	c.Stop()
}
