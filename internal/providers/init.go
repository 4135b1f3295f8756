// Package providers builds the configured SEC provider from application
// settings.
package providers

import (
	"github.com/rs/zerolog"

	"github.com/seenimoa/sharesrange/internal/config"
	"github.com/seenimoa/sharesrange/internal/infra"
	"github.com/seenimoa/sharesrange/internal/provider"
	"github.com/seenimoa/sharesrange/internal/providers/sec"
)

// relayDefaultRetries is the retry budget of the relay transport when
// retry.max_retries is unset.
const relayDefaultRetries = 2

// NewSEC creates the SEC provider with the transport and retry policy named
// by cfg. A missing endpoint setting is reported as
// *provider.ConfigurationError.
func NewSEC(cfg *config.Config, log zerolog.Logger) (*sec.Provider, error) {
	transport, err := sec.NewTransport(sec.TransportOptions{
		Mode:        cfg.Transport.Mode,
		BaseURL:     cfg.SEC.BaseURL,
		UserAgent:   cfg.SEC.UserAgent,
		RateLimit:   cfg.SEC.RateLimit,
		FallbackDir: cfg.Transport.FallbackDir,
		ProxyURL:    cfg.Transport.ProxyURL,
		RelayURL:    cfg.Transport.RelayURL,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	retries := MaxRetries(cfg)
	log.Debug().
		Str("transport", transport.Name()).
		Int("max_retries", retries).
		Dur("backoff", cfg.Retry.Backoff()).
		Msg("sec provider configured")

	return sec.New(transport,
		sec.WithRetry(infra.NewRetryPolicy(retries, infra.LinearBackoff(cfg.Retry.Backoff()), provider.IsRetryable)),
		sec.WithTimeout(cfg.SEC.Timeout()),
		sec.WithLogger(log),
	), nil
}

// MaxRetries resolves the retry budget: an explicit setting wins, otherwise
// only the relay transport retries.
func MaxRetries(cfg *config.Config) int {
	n := cfg.Retry.MaxRetries
	if n <= config.RetriesUnset {
		if cfg.Transport.Mode == sec.ModeRelay {
			n = relayDefaultRetries
		} else {
			n = 0
		}
	}
	if n > infra.MaxRetryLimit {
		n = infra.MaxRetryLimit
	}
	return n
}
