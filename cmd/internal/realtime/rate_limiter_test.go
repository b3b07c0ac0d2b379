package realtime

import (
	"testing"
	"time"
)

func TestRateLimiter_AllowsUpToLimitWithinWindow(t *testing.T) {
	t.Parallel()

	now := time.Now()
	rl := NewRateLimiter(3, time.Second)

	for i := 0; i < 3; i++ {
		if !rl.Allow(now) {
			t.Fatalf("frame %d: expected allow", i)
		}
	}
	if rl.Allow(now) {
		t.Fatalf("expected frame over limit to be denied")
	}
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	t.Parallel()

	now := time.Now()
	rl := NewRateLimiter(2, time.Second)

	if !rl.Allow(now) || !rl.Allow(now) {
		t.Fatalf("expected first two frames to be allowed")
	}
	if rl.Allow(now.Add(500 * time.Millisecond)) {
		t.Fatalf("expected denial inside the window")
	}
	if !rl.Allow(now.Add(1100 * time.Millisecond)) {
		t.Fatalf("expected allowance after the window slid past the burst")
	}
}

func TestRateLimiter_InvalidInputsFallBackToDefaults(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0, 0)
	if rl.limit != rateLimitFrames || rl.window != rateLimitWindow {
		t.Fatalf("expected defaults, got limit=%d window=%v", rl.limit, rl.window)
	}
}
