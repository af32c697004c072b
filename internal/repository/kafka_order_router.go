package repository

import (
	"context"

	"asdts/internal/domain/models"
	"asdts/internal/domain/repository"
	pkgkafka "asdts/pkg/kafka"
)

// KafkaOrderRouter publishes order intents to the execution
// collaborator's topic, keyed by symbol so per-symbol ordering is
// preserved across partitions.
type KafkaOrderRouter struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaOrderRouter(producer *pkgkafka.Producer, topic string) repository.OrderRouter {
	return &KafkaOrderRouter{producer: producer, topic: topic}
}

func (r *KafkaOrderRouter) Submit(ctx context.Context, intent *models.OrderIntent) error {
	return r.producer.Publish(ctx, r.topic, []byte(intent.Symbol), intent)
}

func (r *KafkaOrderRouter) Close() error {
	return r.producer.Close()
}
