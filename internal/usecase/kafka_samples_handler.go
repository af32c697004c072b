package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"asdts/internal/domain/models"
	"asdts/internal/middleware"
)

type sampleEnvelope struct {
	Symbol     string  `json:"symbol"`
	Source     string  `json:"source"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Timestamp  int64   `json:"t"` // unix seconds
}

// KafkaSamplesHandler decodes sentiment samples from the samples topic
// and feeds them through the ingest pipeline.
type KafkaSamplesHandler struct {
	topic    string
	pipeline *middleware.SamplePipeline
}

func NewKafkaSamplesHandler(topic string, pipeline *middleware.SamplePipeline) *KafkaSamplesHandler {
	return &KafkaSamplesHandler{topic: topic, pipeline: pipeline}
}

func (h *KafkaSamplesHandler) Topic() string { return h.topic }

func (h *KafkaSamplesHandler) Handle(ctx context.Context, data []byte) error {
	var env sampleEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode sample: %w", err)
	}

	sample := &models.SentimentSample{
		Symbol:     env.Symbol,
		Source:     models.Source(env.Source),
		Score:      env.Score,
		Confidence: env.Confidence,
		Timestamp:  time.Unix(env.Timestamp, 0),
	}
	return h.pipeline.Ingest(ctx, sample)
}
