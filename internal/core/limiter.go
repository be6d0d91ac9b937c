package core

import (
	"context"
	"errors"
	"time"
)

// ErrTooManyConversions means every conversion slot stayed busy for the
// whole wait window. The HTTP layer maps it to 503 with a retry hint.
var ErrTooManyConversions = errors.New("too many concurrent conversions, please try again later")

const (
	// DefaultMaxConcurrentConversions bounds parallel HTTP conversions.
	DefaultMaxConcurrentConversions = 2

	// DefaultMaxWaitTime is the queueing budget for one conversion request.
	DefaultMaxWaitTime = 30 * time.Second

	drainPoll = 50 * time.Millisecond
)

// ConversionLimiter caps how many uploaded documents are extracted and
// normalized at once. Batch runs size their own worker pool and do not use it.
//
// A slot is a token in a buffered channel, so the number of tokens held is
// the number of running conversions.
type ConversionLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
}

// NewConversionLimiter returns a limiter with maxConcurrent slots. Non-positive
// arguments fall back to the defaults.
func NewConversionLimiter(maxConcurrent int, maxWait time.Duration) *ConversionLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentConversions
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ConversionLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, queueing for at most the configured wait. Every nil
// return must be paired with one Release.
func (l *ConversionLimiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	default:
	}

	wait := time.NewTimer(l.maxWait)
	defer wait.Stop()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-wait.C:
		return ErrTooManyConversions
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *ConversionLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release returns a slot. It panics when no slot is held, since that means
// a conversion was released twice.
func (l *ConversionLimiter) Release() {
	select {
	case <-l.slots:
	default:
		panic("core: ConversionLimiter.Release without Acquire")
	}
}

// ActiveCount is the number of conversions holding a slot.
func (l *ConversionLimiter) ActiveCount() int {
	return len(l.slots)
}

func (l *ConversionLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

func (l *ConversionLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain returns once no conversion holds a slot. Server shutdown calls
// it after the listener is closed.
func (l *ConversionLimiter) WaitForDrain(ctx context.Context) error {
	if l.ActiveCount() == 0 {
		return nil
	}
	tick := time.NewTicker(drainPoll)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// LimiterStatus is the body of the convert status endpoint.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *ConversionLimiter) Status() LimiterStatus {
	active := len(l.slots)
	return LimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - active,
		MaxConcurrent: cap(l.slots),
	}
}
