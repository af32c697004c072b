package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfiguration marks invalid startup configuration. Validation
// failures are fatal: the pipeline never runs on a bad snapshot.
var ErrConfiguration = errors.New("invalid configuration")

// SymbolConfig is the per-symbol execution metadata snapshot: the
// exchange's minimum tradable increment and the base order notional.
type SymbolConfig struct {
	Name         string  `yaml:"name"`
	QtyStep      float64 `yaml:"qty_step"`
	BaseNotional float64 `yaml:"base_notional"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Trading struct {
		Symbols         []SymbolConfig `yaml:"symbols"`
		Equity          float64        `yaml:"equity"`
		MaxPositionSize float64        `yaml:"max_position_size"` // fraction of equity
		StopLossPct     float64        `yaml:"stop_loss_pct"`
		TakeProfitPct   float64        `yaml:"take_profit_pct"`
		DailyLossCap    float64        `yaml:"daily_loss_cap"` // absolute, per symbol per day
	} `yaml:"trading"`
	Sentiment struct {
		Window             time.Duration `yaml:"window"`
		HalfLife           time.Duration `yaml:"half_life"` // decay half-life; defaults to window/2
		OutlierClamp       float64       `yaml:"outlier_clamp"`
		ThresholdEnter     float64       `yaml:"threshold_enter"`
		ThresholdExit      float64       `yaml:"threshold_exit"`
		UpdateInterval     time.Duration `yaml:"update_interval"`
		MinEvalInterval    time.Duration `yaml:"min_eval_interval"`
		ClockSkewTolerance time.Duration `yaml:"clock_skew_tolerance"`
	} `yaml:"sentiment"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		SamplesTopic string   `yaml:"samples_topic"`
		OrdersTopic  string   `yaml:"orders_topic"`
		FillsTopic   string   `yaml:"fills_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	MarketFeed struct {
		Enabled         bool          `yaml:"enabled"`
		WebSocketURL    string        `yaml:"websocket_url"`
		APIKey          string        `yaml:"api_key"`
		ReconnectDelay  time.Duration `yaml:"reconnect_delay"`
		PingInterval    time.Duration `yaml:"ping_interval"`
		MomentumWindow  time.Duration `yaml:"momentum_window"`
		ScoreGain       float64       `yaml:"score_gain"`
		SampleInterval  time.Duration `yaml:"sample_interval"`
		ThrottleRPS     float64       `yaml:"throttle_rps"`
		IngestBuffer    int           `yaml:"ingest_buffer"`
	} `yaml:"marketfeed"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Queue struct {
		Workers    int           `yaml:"workers"`
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"queue"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MARKETFEED_API_KEY"); v != "" {
		c.MarketFeed.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Sentiment.Window == 0 {
		c.Sentiment.Window = 30 * time.Minute
	}
	// Default half-life is half the aggregation window.
	if c.Sentiment.HalfLife == 0 {
		c.Sentiment.HalfLife = c.Sentiment.Window / 2
	}
	if c.Sentiment.UpdateInterval == 0 {
		c.Sentiment.UpdateInterval = 5 * time.Minute
	}
	if c.Sentiment.MinEvalInterval == 0 {
		c.Sentiment.MinEvalInterval = 2 * time.Second
	}
	if c.Sentiment.ClockSkewTolerance == 0 {
		c.Sentiment.ClockSkewTolerance = 5 * time.Second
	}
	if c.Sentiment.OutlierClamp == 0 {
		c.Sentiment.OutlierClamp = 0.2
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Second
	}
}

// Validate checks if the configuration is valid. All failures wrap
// ErrConfiguration and are fatal at startup.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("%w: environment is required", ErrConfiguration)
	}
	if len(c.Trading.Symbols) == 0 {
		return fmt.Errorf("%w: trading.symbols cannot be empty", ErrConfiguration)
	}
	for _, s := range c.Trading.Symbols {
		if s.Name == "" {
			return fmt.Errorf("%w: symbol name is required", ErrConfiguration)
		}
		if s.QtyStep <= 0 {
			return fmt.Errorf("%w: qty_step must be positive for %s", ErrConfiguration, s.Name)
		}
		if s.BaseNotional <= 0 {
			return fmt.Errorf("%w: base_notional must be positive for %s", ErrConfiguration, s.Name)
		}
	}
	if c.Trading.Equity <= 0 {
		return fmt.Errorf("%w: trading.equity must be positive", ErrConfiguration)
	}
	if c.Trading.MaxPositionSize <= 0 || c.Trading.MaxPositionSize > 1 {
		return fmt.Errorf("%w: max_position_size must be in (0,1], got %.4f",
			ErrConfiguration, c.Trading.MaxPositionSize)
	}
	if c.Trading.StopLossPct <= 0 {
		return fmt.Errorf("%w: stop_loss_pct must be positive", ErrConfiguration)
	}
	if c.Trading.TakeProfitPct <= 0 {
		return fmt.Errorf("%w: take_profit_pct must be positive", ErrConfiguration)
	}
	if c.Trading.DailyLossCap < 0 {
		return fmt.Errorf("%w: daily_loss_cap cannot be negative", ErrConfiguration)
	}
	if c.Sentiment.ThresholdEnter <= 0 || c.Sentiment.ThresholdEnter > 1 {
		return fmt.Errorf("%w: threshold_enter must be in (0,1], got %.4f",
			ErrConfiguration, c.Sentiment.ThresholdEnter)
	}
	if c.Sentiment.ThresholdExit < 0 {
		return fmt.Errorf("%w: threshold_exit cannot be negative", ErrConfiguration)
	}
	if c.Sentiment.ThresholdExit >= c.Sentiment.ThresholdEnter {
		return fmt.Errorf("%w: threshold_exit (%.4f) must be less than threshold_enter (%.4f)",
			ErrConfiguration, c.Sentiment.ThresholdExit, c.Sentiment.ThresholdEnter)
	}
	if c.Sentiment.Window <= 0 {
		return fmt.Errorf("%w: sentiment.window must be positive", ErrConfiguration)
	}
	if c.Sentiment.HalfLife <= 0 {
		return fmt.Errorf("%w: sentiment.half_life must be positive", ErrConfiguration)
	}
	if c.Sentiment.OutlierClamp <= 0 {
		return fmt.Errorf("%w: sentiment.outlier_clamp must be positive", ErrConfiguration)
	}
	return nil
}

// SymbolNames returns the configured symbol identifiers.
func (c *Config) SymbolNames() []string {
	out := make([]string, 0, len(c.Trading.Symbols))
	for _, s := range c.Trading.Symbols {
		out = append(out, s.Name)
	}
	return out
}

// Symbol returns the configuration for a symbol, if present.
func (c *Config) Symbol(name string) (SymbolConfig, bool) {
	for _, s := range c.Trading.Symbols {
		if s.Name == name {
			return s, true
		}
	}
	return SymbolConfig{}, false
}
