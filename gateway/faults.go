package gateway

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// FaultInjector produces the artificial latency and failure probability
// applied to mutating routes. The RNG is injected so tests can force or
// forbid failures deterministically.
type FaultInjector struct {
	mu           sync.Mutex
	rng          *rand.Rand
	minLatency   time.Duration
	maxLatency   time.Duration
	failureRates map[string]float64
}

// FaultConfig tunes the injector. Zero values fall back to the defaults
// documented in this package.
type FaultConfig struct {
	MinLatency   time.Duration
	MaxLatency   time.Duration
	FailureRates map[string]float64
}

// NewFaultInjector builds an injector from config. A nil rng gets a
// time-seeded one.
func NewFaultInjector(cfg FaultConfig, rng *rand.Rand) *FaultInjector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	min, max, rates := cfg.normalize()
	return &FaultInjector{
		rng:          rng,
		minLatency:   min,
		maxLatency:   max,
		failureRates: rates,
	}
}

// normalize fills zero values with the package defaults and merges the rate
// overrides onto the default per-route rates.
func (cfg FaultConfig) normalize() (min, max time.Duration, rates map[string]float64) {
	min = cfg.MinLatency
	if min <= 0 {
		min = 200 * time.Millisecond
	}
	max = cfg.MaxLatency
	if max < min {
		max = 800 * time.Millisecond
	}
	rates = DefaultFailureRates()
	for route, rate := range cfg.FailureRates {
		rates[route] = rate
	}
	return min, max, rates
}

// Reconfigure swaps the latency window and failure rates at runtime, with the
// same zero-value defaulting as NewFaultInjector. Requests already waiting in
// Delay keep their drawn duration.
func (f *FaultInjector) Reconfigure(cfg FaultConfig) {
	min, max, rates := cfg.normalize()

	f.mu.Lock()
	f.minLatency = min
	f.maxLatency = max
	f.failureRates = rates
	f.mu.Unlock()
}

// Delay suspends the caller for a uniformly random duration within the
// configured window. Waiting is per-request: unrelated requests proceed in
// the meantime. Respects context cancellation.
func (f *FaultInjector) Delay(ctx context.Context) error {
	f.mu.Lock()
	window := f.maxLatency - f.minLatency
	d := f.minLatency
	if window > 0 {
		d += time.Duration(f.rng.Int63n(int64(window)))
	}
	f.mu.Unlock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ShouldFail rolls the dice for a mutating route.
func (f *FaultInjector) ShouldFail(route string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	rate, ok := f.failureRates[route]
	if !ok || rate <= 0 {
		return false
	}
	return f.rng.Float64() < rate
}
