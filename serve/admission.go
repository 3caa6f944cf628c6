package serve

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// softWait is how long a request waits for a global slot before 503.
	softWait = 50 * time.Millisecond

	// ipTableCleanupEvery amortizes idle-bucket eviction across
	// acquisitions instead of running a background timer.
	ipTableCleanupEvery = 256
)

// Admission gates inference-running requests: a global concurrency cap with
// a short soft wait, plus a smaller per-IP cap so one client cannot hold
// every slot.
type Admission struct {
	global   chan struct{}
	perIPMax int
	ttl      time.Duration

	mu      sync.Mutex
	buckets map[string]*ipBucket
	counter atomic.Uint64
}

type ipBucket struct {
	sem      chan struct{}
	lastSeen time.Time
}

func NewAdmission(maxInfer, perIPMax int, ttl time.Duration) *Admission {
	if maxInfer < 1 {
		maxInfer = 1
	}
	if perIPMax < 1 {
		perIPMax = 1
	}
	if perIPMax > maxInfer {
		perIPMax = maxInfer
	}
	return &Admission{
		global:   make(chan struct{}, maxInfer),
		perIPMax: perIPMax,
		ttl:      ttl,
		buckets:  make(map[string]*ipBucket),
	}
}

// AcquireGlobal takes a global slot. It fails fast when all slots are busy,
// after a short wait for one to free up.
func (a *Admission) AcquireGlobal() (func(), bool) {
	select {
	case a.global <- struct{}{}:
	default:
		select {
		case a.global <- struct{}{}:
		case <-time.After(softWait):
			return nil, false
		}
	}
	return func() { <-a.global }, true
}

// AcquirePerIP takes a slot in the client's bucket, creating the bucket on
// first sight. It never blocks.
func (a *Admission) AcquirePerIP(ip string) (func(), bool) {
	a.mu.Lock()
	now := time.Now()
	a.maybeCleanup(now)

	b, ok := a.buckets[ip]
	if !ok {
		b = &ipBucket{sem: make(chan struct{}, a.perIPMax)}
		a.buckets[ip] = b
	}
	b.lastSeen = now
	a.mu.Unlock()

	select {
	case b.sem <- struct{}{}:
		return func() { <-b.sem }, true
	default:
		return nil, false
	}
}

// maybeCleanup drops idle buckets. Buckets with slots still held survive
// regardless of age. Caller holds a.mu.
func (a *Admission) maybeCleanup(now time.Time) {
	if a.counter.Add(1)%ipTableCleanupEvery != 0 {
		return
	}
	for ip, b := range a.buckets {
		if now.Sub(b.lastSeen) > a.ttl && len(b.sem) == 0 {
			delete(a.buckets, ip)
		}
	}
}

// clientIP picks the address used for per-IP limiting: the last parseable
// X-Forwarded-For entry, else the peer address unless it is loopback or
// unspecified. No reliable address means no per-IP limit, so clients behind
// the same local proxy do not share one bucket.
func clientIP(r *http.Request) (string, bool) {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		for i := len(parts) - 1; i >= 0; i-- {
			part := strings.TrimSpace(parts[i])
			if part == "" {
				continue
			}
			if ip := net.ParseIP(part); ip != nil {
				return ip.String(), true
			}
			if host, _, err := net.SplitHostPort(part); err == nil {
				if ip := net.ParseIP(host); ip != nil {
					return ip.String(), true
				}
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.IsLoopback() || ip.IsUnspecified() {
		return "", false
	}
	return ip.String(), true
}
