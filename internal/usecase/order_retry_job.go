package usecase

import (
	"context"
	"encoding/json"

	"asdts/internal/domain/models"
	domrepo "asdts/internal/domain/repository"
	"asdts/pkg/queue"
)

// OrderRetryJob re-submits order intents that failed their first
// publish. The queue applies the retry delay and dead-letters intents
// that keep failing.
type OrderRetryJob struct {
	router domrepo.OrderRouter
}

func NewOrderRetryJob(router domrepo.OrderRouter) *OrderRetryJob {
	return &OrderRetryJob{router: router}
}

func (j *OrderRetryJob) Name() string { return "order-retry" }

func (j *OrderRetryJob) Type() string { return "order.submit" }

func (j *OrderRetryJob) Handle(ctx context.Context, payload json.RawMessage) error {
	intent, err := queue.ParsePayload[models.OrderIntent](payload)
	if err != nil {
		return err
	}
	return j.router.Submit(ctx, intent)
}
