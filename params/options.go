package params

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Option is a functional option for configuring a Validator or Params.
type Option func(*config) error

// config holds the configuration for validation.
type config struct {
	logger        Logger
	registerer    prometheus.Registerer
	handlerName   string
	strictBool    bool
	zeroIsPresent bool
	maxBodySize   int64 // 0 = DefaultMaxBodySize
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		logger:      NopLogger{},
		handlerName: "default",
	}
}

func applyOptions(opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithLogger sets the logger. Default is NopLogger.
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return fmt.Errorf("restparams: logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithRegisterer enables Prometheus metrics, registered with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) error {
		c.registerer = reg
		return nil
	}
}

// WithHandlerName sets the handler label used in logs and metrics.
// Default is "default".
func WithHandlerName(name string) Option {
	return func(c *config) error {
		if name == "" {
			return fmt.Errorf("restparams: handler name cannot be empty")
		}
		c.handlerName = name
		return nil
	}
}

// WithStrictBool makes Bool parameters parse their value with
// strconv.ParseBool ("false" and "0" become false, "maybe" is rejected)
// instead of using truthiness, under which every non-empty value is true.
// Default is false.
func WithStrictBool(strict bool) Option {
	return func(c *config) error {
		c.strictBool = strict
		return nil
	}
}

// WithZeroIsPresent makes false and numeric zero count as supplied values.
// By default they are treated like a missing parameter, so a required
// parameter sent as 0 is rejected and an optional one takes its default.
func WithZeroIsPresent(present bool) Option {
	return func(c *config) error {
		c.zeroIsPresent = present
		return nil
	}
}

// WithMaxBodySize sets the request body limit used by the HTTP middleware.
// Default: 10 MiB.
func WithMaxBodySize(n int64) Option {
	return func(c *config) error {
		if n < 0 {
			return fmt.Errorf("restparams: maxBodySize cannot be negative")
		}
		c.maxBodySize = n
		return nil
	}
}
