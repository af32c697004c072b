package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"asdts/internal/domain/models"
	domrepo "asdts/internal/domain/repository"
	"asdts/internal/service/ratelimit"
)

// Ingestor is the minimal downstream interface the pipeline needs.
type Ingestor interface {
	Ingest(ctx context.Context, s *models.SentimentSample) error
}

// SamplePipeline sits between sample sources (Kafka, market feed) and
// the engine. It throttles per symbol and buffers when the downstream
// rejects, so a burst of provider messages cannot starve evaluation.
type SamplePipeline struct {
	down    Ingestor
	metrics domrepo.Metrics
	limiter *ratelimit.Limiter

	maxRPS  float64
	bufCh   chan *models.SentimentSample
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
}

type PipelineOption func(*SamplePipeline)

// WithMaxRPS sets the max accepted samples per second per symbol.
func WithMaxRPS(n float64) PipelineOption {
	return func(p *SamplePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer size.
func WithBufferSize(n int) PipelineOption {
	return func(p *SamplePipeline) {
		if n > 0 {
			p.bufCh = make(chan *models.SentimentSample, n)
		}
	}
}

// NewSamplePipeline creates a new pipeline in front of down.
func NewSamplePipeline(down Ingestor, metrics domrepo.Metrics, opts ...PipelineOption) *SamplePipeline {
	p := &SamplePipeline{
		down:    down,
		metrics: metrics,
		limiter: ratelimit.New(),
		maxRPS:  20,
		bufCh:   make(chan *models.SentimentSample, 1000),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches background flushing of buffered samples. A stopped
// pipeline can be started again.
func (p *SamplePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-stopCh:
				return
			case s := <-p.bufCh:
				if s == nil {
					continue
				}
				if err := p.down.Ingest(ctx, s); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					select {
					case p.bufCh <- s:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *SamplePipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.started = false
	close(p.stopCh)
}

// Ingest throttles and forwards a sample downstream, buffering on
// downstream errors. Throttled samples are dropped, not errors.
func (p *SamplePipeline) Ingest(ctx context.Context, s *models.SentimentSample) error {
	if s == nil {
		return fmt.Errorf("sample nil")
	}
	start := time.Now()

	if !p.limiter.Allow(s.Symbol, p.maxRPS, p.maxRPS) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.down.Ingest(ctx, s); err != nil {
		if errors.Is(err, models.ErrInvalidSample) {
			p.metrics.RecordError("pipeline_validate")
			return err
		}
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- s:
			p.metrics.RecordLatency("pipeline_buffer_depth", float64(len(p.bufCh)))
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_ingest", time.Since(start).Seconds())
	return nil
}
