package auth

import (
	"context"
	"sync"
)

// Pending is the outcome of one authentication attempt. It settles exactly
// once, either resolved with a token or rejected with an error, and any number
// of goroutines may wait on it.
type Pending struct {
	done  chan struct{}
	once  sync.Once
	token string
	err   error
}

// NewPending creates an unsettled Pending.
func NewPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Resolved creates a Pending already settled with token.
func Resolved(token string) *Pending {
	p := NewPending()
	p.Resolve(token)

	return p
}

// Rejected creates a Pending already settled with err.
func Rejected(err error) *Pending {
	p := NewPending()
	p.Reject(err)

	return p
}

// Resolve settles p with token. Only the first settle takes effect.
func (p *Pending) Resolve(token string) {
	p.once.Do(func() {
		p.token = token
		close(p.done)
	})
}

// Reject settles p with err. Only the first settle takes effect.
func (p *Pending) Reject(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done is closed once p has settled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether p has settled.
func (p *Pending) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Wait blocks until p settles or ctx is done.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.token, p.err
	default:
	}

	select {
	case <-p.done:
		return p.token, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
