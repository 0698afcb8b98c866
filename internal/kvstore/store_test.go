package kvstore

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type settings struct {
	Theme string `json:"theme"`
	Limit int    `json:"limit"`
}

// countingSubstrate counts physical writes going through Set.
type countingSubstrate struct {
	*MemorySubstrate
	sets atomic.Int64
}

func newCountingSubstrate() *countingSubstrate {
	return &countingSubstrate{MemorySubstrate: NewMemorySubstrate()}
}

func (c *countingSubstrate) Set(ctx context.Context, key string, value []byte) error {
	c.sets.Add(1)
	return c.MemorySubstrate.Set(ctx, key, value)
}

// failingSubstrate errors on every operation.
type failingSubstrate struct{ err error }

func (f *failingSubstrate) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.err
}
func (f *failingSubstrate) Set(context.Context, string, []byte) error { return f.err }
func (f *failingSubstrate) Delete(context.Context, string) error      { return f.err }

func TestStore_Get_LazyDefault(t *testing.T) {
	ctx := context.Background()
	sub := NewMemorySubstrate()

	calls := 0
	s := New(sub, nil, "settings", Options[settings]{
		Default: func() settings {
			calls++
			return settings{Theme: "dark", Limit: 7}
		},
	})

	require.Equal(t, 0, calls, "default must not be evaluated before first read")
	got := s.Get(ctx)
	require.Equal(t, settings{Theme: "dark", Limit: 7}, got)
	require.Equal(t, 1, calls)

	// Cached afterwards; the producer does not run again.
	_ = s.Get(ctx)
	require.Equal(t, 1, calls)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	sub := NewMemorySubstrate()

	s := New(sub, nil, "settings", Options[settings]{})
	s.Set(ctx, settings{Theme: "light", Limit: 3})

	// A fresh store over the same key sees the persisted value.
	s2 := New(sub, nil, "settings", Options[settings]{})
	require.Equal(t, settings{Theme: "light", Limit: 3}, s2.Get(ctx))
}

func TestStore_Get_CorruptedValueDegradesToDefault(t *testing.T) {
	ctx := context.Background()
	sub := NewMemorySubstrate()
	require.NoError(t, sub.Set(ctx, "settings", []byte("{not json")))

	s := New(sub, nil, "settings", Options[settings]{
		Default: func() settings { return settings{Theme: "fallback"} },
	})
	require.Equal(t, settings{Theme: "fallback"}, s.Get(ctx))
}

func TestStore_Get_SubstrateErrorDegradesToDefault(t *testing.T) {
	ctx := context.Background()
	s := New(&failingSubstrate{err: errors.New("disk gone")}, nil, "settings", Options[settings]{
		Default: func() settings { return settings{Limit: 1} },
	})
	require.Equal(t, settings{Limit: 1}, s.Get(ctx))
}

func TestStore_Set_WriteErrorKeepsLocalValue(t *testing.T) {
	ctx := context.Background()
	s := New(&failingSubstrate{err: errors.New("quota exceeded")}, nil, "settings", Options[settings]{})

	s.Set(ctx, settings{Theme: "local"})
	require.Equal(t, settings{Theme: "local"}, s.Get(ctx), "in-memory value stays authoritative")
}

func TestStore_Update_ReadModifyWrite(t *testing.T) {
	ctx := context.Background()
	sub := NewMemorySubstrate()
	s := New(sub, nil, "counter", Options[int]{})

	for i := 0; i < 5; i++ {
		s.Update(ctx, func(v int) int { return v + 1 })
	}
	require.Equal(t, 5, s.Get(ctx))

	s2 := New(sub, nil, "counter", Options[int]{})
	require.Equal(t, 5, s2.Get(ctx))
}

func TestStore_Debounce_CoalescesWrites(t *testing.T) {
	ctx := context.Background()
	sub := newCountingSubstrate()

	st := New(sub, nil, "settings", Options[settings]{Debounce: 50 * time.Millisecond})

	for i := 1; i <= 10; i++ {
		st.Set(ctx, settings{Limit: i})
	}
	require.Equal(t, int64(0), sub.sets.Load(), "no physical write inside the window")

	st.Flush(ctx)
	require.Equal(t, int64(1), sub.sets.Load(), "coalesced into a single write")

	s2 := New(sub, nil, "settings", Options[settings]{})
	require.Equal(t, 10, s2.Get(ctx).Limit, "last value wins")
}

func TestStore_Debounce_TimerFires(t *testing.T) {
	ctx := context.Background()
	sub := newCountingSubstrate()

	st := New(sub, nil, "settings", Options[settings]{Debounce: 10 * time.Millisecond})
	st.Set(ctx, settings{Limit: 42})

	require.Eventually(t, func() bool {
		return sub.sets.Load() == 1
	}, time.Second, 5*time.Millisecond)

	s2 := New(sub, nil, "settings", Options[settings]{})
	require.Equal(t, 42, s2.Get(ctx).Limit)
}

func TestStore_ZeroDebounce_WritesSynchronously(t *testing.T) {
	ctx := context.Background()
	sub := newCountingSubstrate()

	st := New(sub, nil, "settings", Options[settings]{})
	st.Set(ctx, settings{Limit: 1})
	st.Set(ctx, settings{Limit: 2})
	require.Equal(t, int64(2), sub.sets.Load())
}

func TestStore_CrossContextNotification(t *testing.T) {
	ctx := context.Background()
	sub := NewMemorySubstrate()
	bus := NewBus()

	a := New(sub, bus, "settings", Options[settings]{})
	b := New(sub, bus, "settings", Options[settings]{})

	var notified []settings
	unsubscribe := b.Subscribe(func(v settings) { notified = append(notified, v) })

	a.Set(ctx, settings{Theme: "dark"})
	require.Len(t, notified, 1)
	require.Equal(t, settings{Theme: "dark"}, notified[0])
	require.Equal(t, settings{Theme: "dark"}, b.Get(ctx))

	// Writing the structurally identical value again must not re-notify.
	a.Set(ctx, settings{Theme: "dark"})
	require.Len(t, notified, 1)

	unsubscribe()
	a.Set(ctx, settings{Theme: "light"})
	require.Len(t, notified, 1, "handler removed after unsubscribe")
	require.Equal(t, settings{Theme: "light"}, b.Get(ctx), "state still follows the substrate")
}

func TestStore_NotificationIgnoresOtherKeys(t *testing.T) {
	ctx := context.Background()
	sub := NewMemorySubstrate()
	bus := NewBus()

	a := New(sub, bus, "alpha", Options[int]{})
	b := New(sub, bus, "beta", Options[int]{})

	fired := false
	b.Subscribe(func(int) { fired = true })

	a.Set(ctx, 9)
	require.False(t, fired)
}

func TestStore_Close_FlushesPendingWrite(t *testing.T) {
	ctx := context.Background()
	sub := newCountingSubstrate()

	st := New(sub, nil, "settings", Options[settings]{Debounce: time.Hour})
	st.Set(ctx, settings{Limit: 5})
	require.Equal(t, int64(0), sub.sets.Load())

	st.Close(ctx)
	require.Equal(t, int64(1), sub.sets.Load())

	s2 := New(sub, nil, "settings", Options[settings]{})
	require.Equal(t, 5, s2.Get(ctx).Limit)
}
