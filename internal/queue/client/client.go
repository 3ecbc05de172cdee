package client

import (
	"context"
	"errors"
	"sync"

	"github.com/investhub/backend/internal/config"
	"github.com/investhub/backend/internal/queue/asynqserver"

	"github.com/hibiken/asynq"
)

type ctxKey int

const (
	_ ctxKey = iota
	asyncQCtxKey
)

var ErrNoClient = errors.New("asynq client is not configured")

var (
	globalClient *asynq.Client
	globalMu     sync.RWMutex
)

// New connects a producer to the same redis the task server consumes from.
func New(cfg config.Cache) *asynq.Client {
	return asynq.NewClient(asynqserver.RedisOptions(cfg))
}

// WithClient scopes client to ctx, taking precedence over the global one.
func WithClient(ctx context.Context, client *asynq.Client) context.Context {
	return context.WithValue(ctx, asyncQCtxKey, client)
}

// GetClient returns the Client scoped to ctx, or the global one set with SetClient.
// It's safe for concurrent use.
func GetClient(ctx context.Context) *asynq.Client {
	c := ctx.Value(asyncQCtxKey)
	if c != nil {
		client, ok := c.(*asynq.Client)
		if !ok {
			return nil
		}

		return client
	}

	globalMu.RLock()
	client := globalClient
	globalMu.RUnlock()

	return client
}

// SetClient replaces the global Client, and returns a
// function to restore the original value. It's safe for concurrent use.
func SetClient(client *asynq.Client) func() {
	globalMu.Lock()
	prev := globalClient
	globalClient = client
	globalMu.Unlock()
	return func() { SetClient(prev) }
}

// Enqueuer enqueues through whichever client GetClient resolves.
type Enqueuer struct{}

func (Enqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	c := GetClient(ctx)
	if c == nil {
		return nil, ErrNoClient
	}

	return c.EnqueueContext(ctx, task, opts...)
}
