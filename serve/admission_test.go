package serve

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAcquireGlobal(t *testing.T) {
	a := NewAdmission(2, 1, time.Minute)

	r1, ok := a.AcquireGlobal()
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	r2, ok := a.AcquireGlobal()
	if !ok {
		t.Fatal("second acquire should succeed")
	}
	if _, ok := a.AcquireGlobal(); ok {
		t.Error("third acquire should fail with both slots held")
	}

	r1()
	r3, ok := a.AcquireGlobal()
	if !ok {
		t.Error("acquire after release should succeed")
	}
	r2()
	r3()
}

func TestAcquirePerIP(t *testing.T) {
	a := NewAdmission(4, 1, time.Minute)

	r1, ok := a.AcquirePerIP("198.51.100.7")
	if !ok {
		t.Fatal("first per-ip acquire should succeed")
	}
	if _, ok := a.AcquirePerIP("198.51.100.7"); ok {
		t.Error("second acquire for the same ip should fail")
	}
	if r2, ok := a.AcquirePerIP("198.51.100.8"); !ok {
		t.Error("another ip should have its own bucket")
	} else {
		r2()
	}

	r1()
	if r3, ok := a.AcquirePerIP("198.51.100.7"); !ok {
		t.Error("acquire after release should succeed")
	} else {
		r3()
	}
}

func TestNewAdmissionClamps(t *testing.T) {
	a := NewAdmission(0, 99, time.Minute)
	if cap(a.global) != 1 {
		t.Errorf("global capacity = %d, want clamp to 1", cap(a.global))
	}
	if a.perIPMax != 1 {
		t.Errorf("perIPMax = %d, want clamp to global cap", a.perIPMax)
	}
}

func TestCleanupEvictsIdleBuckets(t *testing.T) {
	a := NewAdmission(4, 2, time.Millisecond)

	r, _ := a.AcquirePerIP("203.0.113.1")
	r()
	time.Sleep(5 * time.Millisecond)

	// Cleanup runs on the Nth acquisition; drive the counter there.
	for i := 0; i < ipTableCleanupEvery; i++ {
		if rel, ok := a.AcquirePerIP("203.0.113.2"); ok {
			rel()
		}
	}

	a.mu.Lock()
	_, stale := a.buckets["203.0.113.1"]
	a.mu.Unlock()
	if stale {
		t.Error("idle bucket should have been evicted")
	}
}

func TestCleanupKeepsBusyBuckets(t *testing.T) {
	a := NewAdmission(4, 2, time.Millisecond)

	release, _ := a.AcquirePerIP("203.0.113.9")
	defer release()
	time.Sleep(5 * time.Millisecond)

	for i := 0; i < ipTableCleanupEvery; i++ {
		if rel, ok := a.AcquirePerIP("203.0.113.2"); ok {
			rel()
		}
	}

	a.mu.Lock()
	_, kept := a.buckets["203.0.113.9"]
	a.mu.Unlock()
	if !kept {
		t.Error("bucket with a held slot must survive cleanup")
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
		ok         bool
	}{
		{"peer address", "203.0.113.10:4242", "", "203.0.113.10", true},
		{"loopback peer", "127.0.0.1:4242", "", "", false},
		{"unspecified peer", "0.0.0.0:4242", "", "", false},
		{"xff single", "127.0.0.1:4242", "198.51.100.1", "198.51.100.1", true},
		{"xff chain picks last", "127.0.0.1:4242", "198.51.100.1, 198.51.100.2", "198.51.100.2", true},
		{"xff with port", "127.0.0.1:4242", "198.51.100.3:9999", "198.51.100.3", true},
		{"xff garbage falls back", "203.0.113.10:4242", "not-an-ip", "203.0.113.10", true},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
		req.RemoteAddr = c.remoteAddr
		if c.xff != "" {
			req.Header.Set("X-Forwarded-For", c.xff)
		}
		ip, ok := clientIP(req)
		if ip != c.want || ok != c.ok {
			t.Errorf("clientIP(%s) = %q, %v; want %q, %v", c.name, ip, ok, c.want, c.ok)
		}
	}
}
