// Package service defines the generative-service boundary consumed by the
// compaction engine, plus the shared overflow classification that adapters
// map provider-specific rejections onto.
package service

import (
	"context"

	"github.com/turnwise/recap/turns"
)

// Service is the generative text service the engine talks to. Invoke replays
// a turn list and returns the service's reply as a single turn.
//
// Implementations should map provider "input too large" rejections onto the
// overflow class (see ErrContextTooLarge) so the engine can distinguish a
// recoverable size problem from a fatal failure.
type Service interface {
	Invoke(ctx context.Context, ts []turns.Turn) (turns.Turn, error)
}

// Limiter is an optional capability: services that know their maximum input
// size (in estimator units, see the engine's size estimator) implement it.
// A return of 0 means the limit is unknown.
type Limiter interface {
	MaxInputSize() int
}

// MaxInput reports the service's maximum input size, if it declares one.
func MaxInput(s Service) (int, bool) {
	l, ok := s.(Limiter)
	if !ok {
		return 0, false
	}
	n := l.MaxInputSize()
	if n <= 0 {
		return 0, false
	}
	return n, true
}

// Func adapts a plain function to the Service interface.
type Func func(ctx context.Context, ts []turns.Turn) (turns.Turn, error)

// Invoke implements Service
func (f Func) Invoke(ctx context.Context, ts []turns.Turn) (turns.Turn, error) {
	return f(ctx, ts)
}

// static is a fixed-reply service used by tests and offline tooling.
type static struct {
	reply    string
	maxInput int
}

// NewStatic creates a Service that always replies with the same agent turn.
// maxInput (estimator units) is reported via the Limiter capability when
// positive.
func NewStatic(reply string, maxInput int) Service {
	return &static{reply: reply, maxInput: maxInput}
}

// Invoke implements Service
func (s *static) Invoke(ctx context.Context, ts []turns.Turn) (turns.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return turns.Agent{Text: s.reply}, nil
}

// MaxInputSize implements Limiter
func (s *static) MaxInputSize() int {
	return s.maxInput
}
