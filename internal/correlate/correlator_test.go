package correlate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleDeliversOnce(t *testing.T) {
	c := New()
	p := c.Register("msg_1", time.Second)

	require.True(t, c.Settle("msg_1", "ok"))
	out := <-p.Done()
	assert.Equal(t, "ok", out.Result)
	assert.NoError(t, out.Err)
	assert.Equal(t, 0, c.Len())

	// Second settlement for the same id is a no-op.
	assert.False(t, c.Settle("msg_1", "again"))
	assert.False(t, c.Fail("msg_1", errors.New("late")))
}

func TestFail(t *testing.T) {
	c := New()
	p := c.Register("msg_2", time.Second)

	require.True(t, c.Fail("msg_2", errors.New("native call failed")))
	out := <-p.Done()
	assert.EqualError(t, out.Err, "native call failed")
	assert.Equal(t, 0, c.Len())
}

func TestTimeoutExpiresEntry(t *testing.T) {
	c := New()
	p := c.Register("msg_3", 20*time.Millisecond)

	select {
	case out := <-p.Done():
		var timeout ErrTimeout
		require.ErrorAs(t, out.Err, &timeout)
		assert.Equal(t, "msg_3", timeout.ID)
		assert.Equal(t, "TimeoutError", timeout.ErrorName())
	case <-time.After(time.Second):
		t.Fatal("timeout never fired")
	}

	assert.Equal(t, 0, c.Len())
	// Late completion after expiry is discarded.
	assert.False(t, c.Settle("msg_3", "too late"))
}

func TestRegisterSameIDReturnsLiveHandle(t *testing.T) {
	c := New()
	first := c.Register("msg_4", time.Second)
	second := c.Register("msg_4", time.Second)

	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())
}

func TestRejectAll(t *testing.T) {
	c := New()
	a := c.Register("msg_a", time.Hour)
	b := c.Register("msg_b", time.Hour)

	c.RejectAll(errors.New("adapter uninstalled"))

	for _, p := range []*Pending{a, b} {
		out := <-p.Done()
		assert.EqualError(t, out.Err, "adapter uninstalled")
	}
	assert.Equal(t, 0, c.Len())
}

func TestDefaultTimeoutApplied(t *testing.T) {
	c := New()
	p := c.Register("msg_5", 0)

	select {
	case <-p.Done():
		t.Fatal("default budget should not expire instantly")
	case <-time.After(30 * time.Millisecond):
	}
	require.True(t, c.Settle("msg_5", nil))
}
