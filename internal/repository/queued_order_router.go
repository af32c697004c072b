package repository

import (
	"context"

	"asdts/internal/domain/models"
	"asdts/internal/domain/repository"
	"asdts/pkg/queue"
)

// OrderSubmitJobType is the queue message type for deferred order
// submissions.
const OrderSubmitJobType = "order.submit"

// QueuedOrderRouter wraps an OrderRouter with a durable retry path:
// when a submit fails, the intent is parked on the Redis queue and
// re-submitted by the retry job instead of being lost.
type QueuedOrderRouter struct {
	inner repository.OrderRouter
	queue queue.Service
}

func NewQueuedOrderRouter(inner repository.OrderRouter, q queue.Service) repository.OrderRouter {
	return &QueuedOrderRouter{inner: inner, queue: q}
}

func (r *QueuedOrderRouter) Submit(ctx context.Context, intent *models.OrderIntent) error {
	err := r.inner.Submit(ctx, intent)
	if err == nil {
		return nil
	}
	if qerr := r.queue.Enqueue(ctx, OrderSubmitJobType, intent); qerr != nil {
		// queue also unavailable; surface the original failure
		return err
	}
	return nil
}

func (r *QueuedOrderRouter) Close() error {
	return r.inner.Close()
}
