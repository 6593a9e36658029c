// Package ratelimit applies per-method request limits backed by a shared
// Redis token bucket, so the limits hold across service replicas.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// Rule is the limit for one HTTP method: a sustained rate per minute and a
// burst allowance. A zero Burst defaults to PerMinute.
type Rule struct {
	PerMinute int
	Burst     int
}

// DefaultRules mirror the per-method limits of the service: reads are the
// cheapest, deletes the most restricted.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		"GET":    {PerMinute: 60},
		"POST":   {PerMinute: 30},
		"PUT":    {PerMinute: 20},
		"DELETE": {PerMinute: 15},
	}
}

// Backend performs one atomic token-bucket check.
type Backend interface {
	CheckRateLimit(ctx context.Context, key string, maxTokens int, refillRate float64, requested int) (allowed bool, remaining int, err error)
}

// Limiter applies per-method Rules through a Backend.
type Limiter struct {
	backend  Backend
	rules    map[string]Rule
	fallback Rule
}

// New creates a Limiter. Methods without a rule fall back to the given
// default; a zero-value fallback means 1 request per minute.
func New(backend Backend, rules map[string]Rule, fallback Rule) *Limiter {
	if rules == nil {
		rules = make(map[string]Rule)
	}
	if fallback.PerMinute <= 0 {
		fallback.PerMinute = 1
	}
	return &Limiter{backend: backend, rules: rules, fallback: fallback}
}

// Result is the outcome of one rate-limit check.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Allow checks whether one request by the given caller and method may
// proceed.
func (l *Limiter) Allow(ctx context.Context, caller, method string) (Result, error) {
	rule := l.rule(method)
	burst := rule.Burst
	if burst <= 0 {
		burst = rule.PerMinute
	}
	refillRate := float64(rule.PerMinute) / 60.0

	key := caller + ":" + strings.ToUpper(method)
	allowed, remaining, err := l.backend.CheckRateLimit(ctx, key, burst, refillRate, 1)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit check: %w", err)
	}

	res := Result{Allowed: allowed, Remaining: remaining}
	if !allowed {
		// Time until one token refills.
		res.RetryAfter = time.Duration(math.Ceil(1/refillRate)) * time.Second
	}
	return res, nil
}

func (l *Limiter) rule(method string) Rule {
	if r, ok := l.rules[strings.ToUpper(method)]; ok {
		return r
	}
	return l.fallback
}
