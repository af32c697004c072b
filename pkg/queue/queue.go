package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Service is the producer-side interface for enqueuing messages.
type Service interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
}

// Config contains worker and retry settings for a queue.
type Config struct {
	Workers    int
	RetryLimit int
	RetryDelay time.Duration
}

// Message is the envelope stored in the queue.
type Message struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	Timestamp time.Time       `json:"timestamp"`
}

// ParsePayload unmarshals a message payload into T.
func ParsePayload[T any](payload json.RawMessage) (*T, error) {
	var result T
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return &result, nil
}
