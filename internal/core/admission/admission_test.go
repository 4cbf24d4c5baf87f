package admission

import (
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCheckCountsWithinWindow(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctrl := NewController()
	ctrl.Clock = func() time.Time { return clock }

	for i := 0; i < 30; i++ {
		res := ctrl.Check("10.0.0.1", "messages", 30, time.Minute)
		require.True(t, res.Allowed, "call %d should be admitted", i+1)
		require.Equal(t, 30-(i+1), res.Remaining)
	}

	res := ctrl.Check("10.0.0.1", "messages", 30, time.Minute)
	require.False(t, res.Allowed)
	require.Equal(t, 0, res.Remaining)
	require.Equal(t, clock.Add(time.Minute), res.ResetAt)
}

func TestCheckResetsAfterWindowElapsed(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctrl := NewController()
	ctrl.Clock = func() time.Time { return clock }

	for i := 0; i < 12; i++ {
		ctrl.Check("10.0.0.1", "swipes", 10, time.Minute)
	}

	res := ctrl.Check("10.0.0.1", "swipes", 10, time.Minute)
	require.False(t, res.Allowed)

	clock = clock.Add(time.Minute + time.Second)

	res = ctrl.Check("10.0.0.1", "swipes", 10, time.Minute)
	require.True(t, res.Allowed)
	require.Equal(t, 9, res.Remaining)
	require.Equal(t, clock.Add(time.Minute), res.ResetAt)
}

func TestCheckSingleRequestWindow(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctrl := NewController()
	ctrl.Clock = func() time.Time { return clock }

	first := ctrl.Check("10.0.0.1", "email_validation", 1, time.Minute)
	require.True(t, first.Allowed)
	require.Equal(t, 0, first.Remaining)

	second := ctrl.Check("10.0.0.1", "email_validation", 1, time.Minute)
	require.False(t, second.Allowed)
	require.Equal(t, 0, second.Remaining)
}

func TestCheckIsolatesCallersAndClasses(t *testing.T) {
	ctrl := NewController()

	for i := 0; i < 5; i++ {
		ctrl.Check("10.0.0.1", "messages", 5, time.Minute)
	}
	require.False(t, ctrl.Check("10.0.0.1", "messages", 5, time.Minute).Allowed)

	require.True(t, ctrl.Check("10.0.0.2", "messages", 5, time.Minute).Allowed)
	require.True(t, ctrl.Check("10.0.0.1", "swipes", 5, time.Minute).Allowed)
}

func TestCheckConcurrentCallersNeverExceedLimit(t *testing.T) {
	ctrl := NewController()

	const callers = 8
	const perCaller = 50
	const limit = 20

	var wg sync.WaitGroup
	admitted := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			caller := fmt.Sprintf("10.0.0.%d", idx)
			for j := 0; j < perCaller; j++ {
				if ctrl.Check(caller, "swipes", limit, time.Minute).Allowed {
					admitted[idx]++
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.Equal(t, limit, admitted[i])
	}
}

func TestSweepRemovesExpiredWindows(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctrl := NewController()
	ctrl.Clock = func() time.Time { return clock }

	ctrl.Check("10.0.0.1", "messages", 30, time.Minute)
	ctrl.Check("10.0.0.2", "messages", 30, 10*time.Minute)
	require.Equal(t, 2, ctrl.Len())

	clock = clock.Add(2 * time.Minute)

	removed := ctrl.Sweep()
	require.Equal(t, 1, removed)
	require.Equal(t, 1, ctrl.Len())
}

func TestCallerKey(t *testing.T) {
	t.Run("FirstForwardedEntry", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/messages", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		require.Equal(t, "203.0.113.7", CallerKey(req))
	})

	t.Run("MissingHeaderUsesSharedBucket", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/messages", nil)
		require.Equal(t, UnknownCaller, CallerKey(req))
	})

	t.Run("BlankHeaderUsesSharedBucket", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/messages", nil)
		req.Header.Set("X-Forwarded-For", " , 10.0.0.1")
		require.Equal(t, UnknownCaller, CallerKey(req))
	})
}
