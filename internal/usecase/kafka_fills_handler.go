package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"asdts/internal/domain/models"
)

type fillEnvelope struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"qty"` // signed: positive buy, negative sell
	Timestamp int64   `json:"t"`   // unix seconds
}

// KafkaFillsHandler applies execution fills from the fills topic to
// the position ledger via the engine.
type KafkaFillsHandler struct {
	topic  string
	engine *Engine
}

func NewKafkaFillsHandler(topic string, engine *Engine) *KafkaFillsHandler {
	return &KafkaFillsHandler{topic: topic, engine: engine}
}

func (h *KafkaFillsHandler) Topic() string { return h.topic }

func (h *KafkaFillsHandler) Handle(ctx context.Context, data []byte) error {
	var env fillEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode fill: %w", err)
	}

	fill := models.Fill{
		Symbol:    env.Symbol,
		Price:     env.Price,
		Quantity:  env.Quantity,
		Timestamp: time.Unix(env.Timestamp, 0),
	}
	return h.engine.OnFill(ctx, fill)
}
