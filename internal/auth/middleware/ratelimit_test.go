package auth

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewRateLimiter(3, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("attempt 4 should be denied")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatalf("other keys are independent")
	}

	now = now.Add(2 * time.Minute)
	if !l.Allow("1.2.3.4") {
		t.Fatalf("window expiry should reset the counter")
	}
}

func TestRateLimiterReset(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	if !l.Allow("k") {
		t.Fatal("first attempt allowed")
	}
	if l.Allow("k") {
		t.Fatal("second attempt denied")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Fatal("reset should clear the counter")
	}
}
