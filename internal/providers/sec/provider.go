// Package sec implements the SEC EDGAR shares-outstanding provider.
// It fetches the dei:EntityCommonStockSharesOutstanding company concept for
// one CIK and reports the extreme observations after a cutoff year.
//
// No API key required. Must include a User-Agent header per SEC policy.
// Docs: https://www.sec.gov/edgar/sec-api-documentation
// Rate limit: 10 requests/second per user-agent.
package sec

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seenimoa/sharesrange/internal/infra"
	"github.com/seenimoa/sharesrange/internal/provider"
	"github.com/seenimoa/sharesrange/pkg/models"
)

const (
	providerName = "sec"

	// SEC EDGAR JSON data API.
	edgarDataURL = "https://data.sec.gov"

	conceptTaxonomy = "dei"
	conceptTag      = "EntityCommonStockSharesOutstanding"

	// SEC requires a User-Agent with company name, email for EDGAR requests.
	secUserAgent = "sharesrange/1.0 (github.com/seenimoa/sharesrange)"

	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 15 * time.Second

	unknownEntity = "Unknown Entity"
)

// Provider retrieves and extracts the shares-outstanding series.
type Provider struct {
	transport provider.Transport
	retry     infra.RetryPolicy
	timeout   time.Duration
	log       zerolog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithRetry sets the retry policy wrapped around each request.
func WithRetry(policy infra.RetryPolicy) Option {
	return func(p *Provider) { p.retry = policy }
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Provider) { p.log = log }
}

// New creates a provider that reaches EDGAR through transport. By default a
// request is attempted once with DefaultTimeout.
func New(transport provider.Transport, opts ...Option) *Provider {
	p := &Provider{
		transport: transport,
		retry:     infra.NoRetry(),
		timeout:   DefaultTimeout,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Info returns metadata about the provider.
func (p *Provider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		Description: "SEC EDGAR - XBRL company concept API",
		Website:     "https://www.sec.gov/edgar",
		Metric:      conceptTaxonomy + "/" + conceptTag,
		Transport:   p.transport.Name(),
	}
}

// Ping checks connectivity through the configured transport.
func (p *Provider) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.transport.Get(ctx, padCIK("320193")); err != nil { // Apple
		return fmt.Errorf("sec ping: %w", err)
	}
	return nil
}

// FetchAndExtract fetches the shares-outstanding series for identifier and
// returns the entity name with the maximum and minimum observations whose
// year is strictly after cutoffYear.
//
// Errors are one of *provider.InvalidIdentifierError, *provider.NetworkError,
// *provider.MalformedResponseError or *provider.NoMatchingDataError, possibly
// wrapped. Only network errors are retried, per the retry policy.
func (p *Provider) FetchAndExtract(ctx context.Context, identifier string, cutoffYear int) (*models.ExtractionResult, error) {
	cik, err := NormalizeCIK(identifier)
	if err != nil {
		return nil, err
	}

	log := p.log.With().
		Str("invocation", uuid.NewString()).
		Str("cik", cik).
		Str("transport", p.transport.Name()).
		Logger()
	ctx = log.WithContext(ctx)

	body, err := p.fetch(ctx, cik)
	if err != nil {
		return nil, fmt.Errorf("sec shares outstanding for CIK %s: %w", cik, err)
	}

	concept, path, err := decodeConcept(body)
	if err != nil {
		return nil, fmt.Errorf("decode company concept for CIK %s: %w", cik, err)
	}
	log.Debug().
		Str("decode_path", string(path)).
		Str("unit", concept.unit).
		Int("entries", len(concept.entries)).
		Msg("decoded company concept")

	observations := filterObservations(concept.entries, cutoffYear)
	hi, lo, ok := selectExtrema(observations)
	if !ok {
		return nil, &provider.NoMatchingDataError{CIK: cik, CutoffYear: cutoffYear}
	}

	result := &models.ExtractionResult{
		CIK:        cik,
		EntityName: entityName(concept),
		Max:        hi,
		Min:        lo,
		Considered: len(observations),
		DecodePath: path,
		Transport:  p.transport.Name(),
	}
	log.Info().
		Str("entity", result.EntityName).
		Float64("max", hi.Value).
		Str("max_year", hi.RawYearLabel).
		Float64("min", lo.Value).
		Str("min_year", lo.RawYearLabel).
		Int("considered", result.Considered).
		Msg("extracted shares outstanding range")
	return result, nil
}

// fetch runs the transport under the retry policy with a fresh deadline per
// attempt.
func (p *Provider) fetch(ctx context.Context, cik string) ([]byte, error) {
	policy := p.retry
	retryable := policy.Retryable
	policy.Retryable = func(err error) bool {
		// a cancelled caller is not a network failure worth retrying
		return ctx.Err() == nil && retryable != nil && retryable(err)
	}
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		zerolog.Ctx(ctx).Warn().Err(err).
			Int("attempt", attempt).
			Int("max_retries", policy.MaxRetries).
			Dur("backoff", wait).
			Msg("retrying request")
	}

	var body []byte
	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		b, err := p.transport.Get(attemptCtx, cik)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

func entityName(c *decodedConcept) string {
	switch {
	case c.entityName != "":
		return c.entityName
	case c.altName != "":
		return c.altName
	default:
		return unknownEntity
	}
}
