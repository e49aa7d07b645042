package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/tradeops/health"
	"github.com/jonwraymond/tradeops/observe"
	"github.com/jonwraymond/tradeops/resilience"
	"github.com/jonwraymond/tradeops/traderr"
)

// RetrySettings configures the default retry policy for platform calls.
type RetrySettings struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Exponential bool
	MaxDelay    time.Duration
}

// Policy converts the settings into a retry policy retrying transient
// kinds.
func (s RetrySettings) Policy() resilience.Policy {
	return resilience.Policy{
		MaxAttempts:    s.MaxAttempts,
		BaseDelay:      s.BaseDelay,
		Exponential:    s.Exponential,
		MaxDelay:       s.MaxDelay,
		RetryableKinds: traderr.Transient(),
	}
}

// HealthSettings configures the health aggregator.
type HealthSettings struct {
	CheckTimeout time.Duration
	CacheTTL     time.Duration
	Critical     []string
}

// AggregatorConfig converts the settings into an aggregator config.
func (s HealthSettings) AggregatorConfig(version string) health.AggregatorConfig {
	return health.AggregatorConfig{
		CheckTimeout: s.CheckTimeout,
		CacheTTL:     s.CacheTTL,
		Version:      version,
	}
}

// MonitorSettings configures background connection monitors.
type MonitorSettings struct {
	Interval         time.Duration
	FailureThreshold int
	Timeout          time.Duration
}

// MonitorConfig converts the settings into a monitor config.
func (s MonitorSettings) MonitorConfig() health.MonitorConfig {
	return health.MonitorConfig{
		Interval:         s.Interval,
		FailureThreshold: s.FailureThreshold,
		Timeout:          s.Timeout,
	}
}

// ObserveSettings configures the observability stack.
type ObserveSettings struct {
	ServiceName     string
	Version         string
	Environment     string
	TracingEnabled  bool
	TracingExporter string
	SamplePct       float64
	MetricsEnabled  bool
	MetricsExporter string
	LogLevel        string
}

// ObserveConfig converts the settings into an observe config.
func (s ObserveSettings) ObserveConfig() observe.Config {
	return observe.Config{
		ServiceName: s.ServiceName,
		Version:     s.Version,
		Environment: s.Environment,
		Tracing: observe.TracingConfig{
			Enabled:   s.TracingEnabled,
			Exporter:  s.TracingExporter,
			SamplePct: s.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  s.MetricsEnabled,
			Exporter: s.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   s.LogLevel,
		},
	}
}

// Settings is the full application configuration, loaded from
// TRADEOPS_* environment variables.
type Settings struct {
	Retry   RetrySettings
	Health  HealthSettings
	Monitor MonitorSettings
	Observe ObserveSettings
}

// Load reads settings from the environment. Unset variables take their
// defaults; malformed values are an error rather than silently ignored.
func Load() (Settings, error) {
	var errs []string
	s := Settings{
		Retry: RetrySettings{
			MaxAttempts: envInt("TRADEOPS_RETRY_MAX_ATTEMPTS", 3, &errs),
			BaseDelay:   envDuration("TRADEOPS_RETRY_BASE_DELAY", time.Second, &errs),
			Exponential: envBool("TRADEOPS_RETRY_EXPONENTIAL", true, &errs),
			MaxDelay:    envDuration("TRADEOPS_RETRY_MAX_DELAY", 10*time.Second, &errs),
		},
		Health: HealthSettings{
			CheckTimeout: envDuration("TRADEOPS_HEALTH_CHECK_TIMEOUT", 5*time.Second, &errs),
			CacheTTL:     envDuration("TRADEOPS_HEALTH_CACHE_TTL", 10*time.Second, &errs),
			Critical:     envList("TRADEOPS_HEALTH_CRITICAL"),
		},
		Monitor: MonitorSettings{
			Interval:         envDuration("TRADEOPS_MONITOR_INTERVAL", 30*time.Second, &errs),
			FailureThreshold: envInt("TRADEOPS_MONITOR_FAILURE_THRESHOLD", 3, &errs),
			Timeout:          envDuration("TRADEOPS_MONITOR_TIMEOUT", 5*time.Second, &errs),
		},
		Observe: ObserveSettings{
			ServiceName:     envString("TRADEOPS_SERVICE_NAME", "tradeops"),
			Version:         envString("TRADEOPS_VERSION", ""),
			Environment:     envString("TRADEOPS_ENV", "development"),
			TracingEnabled:  envBool("TRADEOPS_TRACING_ENABLED", false, &errs),
			TracingExporter: envString("TRADEOPS_TRACING_EXPORTER", "none"),
			SamplePct:       envFloat("TRADEOPS_TRACING_SAMPLE_PCT", 1.0, &errs),
			MetricsEnabled:  envBool("TRADEOPS_METRICS_ENABLED", false, &errs),
			MetricsExporter: envString("TRADEOPS_METRICS_EXPORTER", "none"),
			LogLevel:        envString("TRADEOPS_LOG_LEVEL", "info"),
		},
	}

	if len(errs) > 0 {
		return Settings{}, fmt.Errorf("config: invalid environment: %s", strings.Join(errs, "; "))
	}
	return s, nil
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envList(key string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envInt(key string, def int, errs *[]string) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s=%q is not an integer", key, v))
		return def
	}
	return n
}

func envFloat(key string, def float64, errs *[]string) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s=%q is not a number", key, v))
		return def
	}
	return f
}

func envBool(key string, def bool, errs *[]string) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s=%q is not a boolean", key, v))
		return def
	}
	return b
}

func envDuration(key string, def time.Duration, errs *[]string) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s=%q is not a duration", key, v))
		return def
	}
	return d
}
