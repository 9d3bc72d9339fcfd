package queue

import "context"

// Publisher fans auth lifecycle events out to the broker. Publishing is
// fire-and-forget from the engine's point of view; a lost event never fails
// the operation that produced it.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, event any, reqID string) error
	Close() error
}

type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	return nil
}
func (NoopPub) Close() error { return nil }
