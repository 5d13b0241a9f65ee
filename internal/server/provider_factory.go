package server

import (
	"log/slog"
	"time"

	"strafenkasse-service/internal/config"
	"strafenkasse-service/internal/metrics"
	"strafenkasse-service/internal/providers"
	"strafenkasse-service/internal/providers/fixture"
	"strafenkasse-service/internal/providers/spond"
)

// Spacing between upstream calls; Spond tolerates bursts but the sync loop
// never needs more than this.
const minProviderInterval = 2 * time.Second

// providerFactory assembles the provider with shared wrappers
// (telemetry + rate limit + retry).
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: metrics}
}

func (f providerFactory) build(cfg config.Config) providers.DataProvider {
	base, name := selectProvider(cfg, f.logger)

	var recorder providers.CallRecorder
	if f.metrics != nil {
		recorder = f.metrics
	}
	instrumented := providers.NewInstrumentedProvider(base, name, recorder)
	limited := providers.NewRateLimitedProvider(instrumented, minProviderInterval, f.logger)
	return providers.NewRetryingProvider(limited, f.logger, 0, 0)
}

func selectProvider(cfg config.Config, logger *slog.Logger) (providers.DataProvider, string) {
	switch cfg.Provider {
	case "fixture", "":
		return fixture.New(), "fixture"
	case "spond":
		return spond.NewClient(spond.Config{
			BaseURL:  cfg.Spond.BaseURL,
			Email:    cfg.Spond.Email,
			Password: cfg.Spond.Password,
		}), "spond"
	default:
		if logger != nil {
			logger.Warn("unknown provider, falling back to fixture", slog.String("provider", cfg.Provider))
		}
		return fixture.New(), "fixture"
	}
}
