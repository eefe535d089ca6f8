package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFake_AdvanceFiresInDeadlineOrder(t *testing.T) {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	f := NewFake(start)

	var order []string
	f.After(3*time.Minute, func() { order = append(order, "c") })
	f.After(time.Minute, func() { order = append(order, "a") })
	f.After(2*time.Minute, func() { order = append(order, "b") })

	f.Advance(2 * time.Minute)
	require.Equal(t, []string{"a", "b"}, order)
	require.Equal(t, start.Add(2*time.Minute), f.Now())

	f.Advance(time.Minute)
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestFake_EveryAndCancel(t *testing.T) {
	f := NewFake(time.Now())
	ticks := 0
	var h Handle
	h = f.Every(time.Second, func() {
		ticks++
		if ticks == 3 {
			f.Cancel(h)
		}
	})

	oneShot, recurring := f.Pending()
	require.Zero(t, oneShot)
	require.Equal(t, 1, recurring)

	f.Advance(10 * time.Second)
	require.Equal(t, 3, ticks)

	_, recurring = f.Pending()
	require.Zero(t, recurring)
}

func TestFake_CallbackSeesItsDeadline(t *testing.T) {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	f := NewFake(start)

	var seen time.Time
	f.After(90*time.Second, func() { seen = f.Now() })
	f.Advance(5 * time.Minute)

	require.Equal(t, start.Add(90*time.Second), seen)
	require.Equal(t, start.Add(5*time.Minute), f.Now())
}

func TestFake_CancelledDuringAdvanceDoesNotFire(t *testing.T) {
	f := NewFake(time.Now())
	fired := false

	var second Handle
	f.After(time.Second, func() { f.Cancel(second) })
	second = f.After(time.Second, func() { fired = true })

	f.Advance(time.Second)
	require.False(t, fired)
}
