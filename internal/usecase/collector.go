package usecase

import (
	"context"
	"time"

	domrepo "asdts/internal/domain/repository"
	"asdts/internal/middleware"
	"asdts/internal/service/marketfeed"
	applogger "asdts/pkg/logger"
)

// MarketCollector runs the market feed: connects the stream, scores
// prints into market-source samples, and pushes them through the
// ingest pipeline. Every print also refreshes the engine's mark, so
// exposure and unrealized P&L track the feed even between samples.
type MarketCollector struct {
	stream   domrepo.SampleStream
	scorer   *marketfeed.MomentumScorer
	pipeline *middleware.SamplePipeline
	engine   *Engine
	metrics  domrepo.Metrics
	log      *applogger.Logger
}

func NewMarketCollector(
	stream domrepo.SampleStream,
	scorer *marketfeed.MomentumScorer,
	pipeline *middleware.SamplePipeline,
	engine *Engine,
	metrics domrepo.Metrics,
	log *applogger.Logger,
) *MarketCollector {
	return &MarketCollector{
		stream:   stream,
		scorer:   scorer,
		pipeline: pipeline,
		engine:   engine,
		metrics:  metrics,
		log:      log.With("collector"),
	}
}

// Start connects and consumes the stream until ctx is cancelled,
// reconnecting with the stream's own delay on read failures.
func (c *MarketCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	c.pipeline.Start(ctx)

	for {
		prints, errs := c.stream.Read(ctx)

	consume:
		for {
			select {
			case <-ctx.Done():
				return nil
			case tp, ok := <-prints:
				if !ok {
					break consume
				}
				if tp == nil {
					continue
				}
				c.engine.SetMark(tp.Symbol, tp.Price)
				if sample := c.scorer.Observe(tp); sample != nil {
					if err := c.pipeline.Ingest(ctx, sample); err != nil {
						c.log.Warn("market sample rejected",
							applogger.String("symbol", sample.Symbol), applogger.Error(err))
					}
				}
			case err, ok := <-errs:
				if !ok {
					break consume
				}
				if err != nil {
					c.metrics.RecordError("stream_read")
					c.log.Warn("stream error", applogger.Error(err))
				}
				break consume
			}
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		c.log.Info("reconnecting market feed")
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("stream_reconnect")
			c.log.Error("reconnect failed", applogger.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *MarketCollector) Shutdown(ctx context.Context) error {
	c.pipeline.Stop()
	return c.stream.Close()
}
