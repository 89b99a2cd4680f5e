package ratelimit

import (
	"math"
	"sync"
	"time"
)

// TokenBucket implements a token bucket rate limiter with fractional refill
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	lastUsed   time.Time
	now        func() time.Time
}

// NewTokenBucket creates a full bucket
func NewTokenBucket(capacity, refillRate int, now func() time.Time) *TokenBucket {
	if now == nil {
		now = time.Now
	}
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: float64(refillRate),
		lastRefill: now(),
		lastUsed:   now(),
		now:        now,
	}
}

// Allow consume un token si hay disponible
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	tb.lastUsed = tb.now()
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// Tokens devuelve los tokens enteros disponibles
func (tb *TokenBucket) Tokens() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return int(math.Floor(tb.tokens))
}

// RetryAfter tiempo hasta el próximo token
func (tb *TokenBucket) RetryAfter() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1 || tb.refillRate <= 0 {
		return 0
	}
	missing := 1 - tb.tokens
	return time.Duration(missing / tb.refillRate * float64(time.Second))
}

// idleFull reports whether the bucket is full and unused since cutoff
func (tb *TokenBucket) idleFull(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return tb.tokens >= tb.capacity && tb.lastUsed.Before(cutoff)
}

// refill must be called with lock held
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	tb.tokens = math.Min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// RateLimiterCollection mantiene un bucket por cliente
type RateLimiterCollection struct {
	mu              sync.Mutex
	buckets         map[string]*TokenBucket
	capacity        int
	refillRate      int
	now             func() time.Time
	lastCleanup     time.Time
	cleanupInterval time.Duration
	idleCutoff      time.Duration
}

// NewRateLimiterCollection creates a new collection of rate limiters
func NewRateLimiterCollection(capacity, refillRate int, now func() time.Time) *RateLimiterCollection {
	if now == nil {
		now = time.Now
	}
	return &RateLimiterCollection{
		buckets:         make(map[string]*TokenBucket),
		capacity:        capacity,
		refillRate:      refillRate,
		now:             now,
		lastCleanup:     now(),
		cleanupInterval: 10 * time.Minute,
		idleCutoff:      30 * time.Minute,
	}
}

// Bucket devuelve (creando si hace falta) el bucket de clientID
func (rlc *RateLimiterCollection) Bucket(clientID string) *TokenBucket {
	rlc.mu.Lock()
	defer rlc.mu.Unlock()

	bucket, ok := rlc.buckets[clientID]
	if !ok {
		bucket = NewTokenBucket(rlc.capacity, rlc.refillRate, rlc.now)
		rlc.buckets[clientID] = bucket
		rlc.maybeCleanup()
	}
	return bucket
}

// maybeCleanup removes idle full buckets. Must be called with lock held.
func (rlc *RateLimiterCollection) maybeCleanup() {
	now := rlc.now()
	if now.Sub(rlc.lastCleanup) < rlc.cleanupInterval {
		return
	}

	cutoff := now.Add(-rlc.idleCutoff)
	for clientID, bucket := range rlc.buckets {
		if bucket.idleFull(cutoff) {
			delete(rlc.buckets, clientID)
		}
	}
	rlc.lastCleanup = now
}

func (rlc *RateLimiterCollection) Len() int {
	rlc.mu.Lock()
	defer rlc.mu.Unlock()
	return len(rlc.buckets)
}
