package sec

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/sharesrange/internal/infra"
	"github.com/seenimoa/sharesrange/internal/provider"
)

// Transport modes.
const (
	ModeDirect   = "direct"
	ModeFallback = "fallback"
	ModeProxy    = "proxy"
	ModeRelay    = "relay"
)

// TransportOptions selects and configures a transport variant.
type TransportOptions struct {
	Mode        string
	BaseURL     string // EDGAR data host, e.g. https://data.sec.gov
	UserAgent   string
	RateLimit   int    // requests per second
	FallbackDir string // ModeFallback: directory holding CIK##########.json files
	ProxyURL    string // ModeProxy: prefix the escaped EDGAR URL is appended to
	RelayURL    string // ModeRelay: first-party relay endpoint
	Logger      zerolog.Logger
}

// NewTransport builds the transport for opts.Mode. Missing settings are
// reported as *provider.ConfigurationError before any request is made.
func NewTransport(opts TransportOptions) (provider.Transport, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = edgarDataURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = secUserAgent
	}
	client := infra.NewHTTPClient(infra.HTTPOptions{
		Headers:   secHeaders(opts.UserAgent),
		RateLimit: opts.RateLimit,
		Logger:    opts.Logger,
	})

	switch strings.ToLower(strings.TrimSpace(opts.Mode)) {
	case "", ModeDirect:
		return NewDirectTransport(client, opts.BaseURL), nil
	case ModeFallback:
		if opts.FallbackDir == "" {
			return nil, &provider.ConfigurationError{Setting: "transport.fallback_dir", Detail: "required when transport.mode is fallback"}
		}
		return NewFileFallbackTransport(NewDirectTransport(client, opts.BaseURL), opts.FallbackDir), nil
	case ModeProxy:
		return NewProxyTransport(client, opts.BaseURL, opts.ProxyURL)
	case ModeRelay:
		return NewRelayTransport(client, opts.RelayURL)
	default:
		return nil, &provider.ConfigurationError{Setting: "transport.mode", Detail: fmt.Sprintf("unknown mode %q", opts.Mode)}
	}
}

// secHeaders returns the default request headers. SEC asks for a descriptive
// User-Agent; relays and proxies may drop it.
func secHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent": userAgent,
		"Accept":     "application/json",
	}
}

// conceptURL builds the company concept URL for a normalized CIK.
func conceptURL(baseURL, cik string) string {
	return fmt.Sprintf("%s/api/xbrl/companyconcept/CIK%s/%s/%s.json",
		strings.TrimRight(baseURL, "/"), cik, conceptTaxonomy, conceptTag)
}

// networkError wraps a client failure as *provider.NetworkError.
func networkError(ctx context.Context, u string, err error) error {
	ne := &provider.NetworkError{URL: u, Err: err}
	var statusErr *infra.StatusError
	if errors.As(err, &statusErr) {
		ne.StatusCode = statusErr.StatusCode
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		ne.Timeout = true
	}
	return ne
}

// ---- Direct ----

// DirectTransport calls the EDGAR API itself.
type DirectTransport struct {
	client  *infra.HTTPClient
	baseURL string
}

func NewDirectTransport(client *infra.HTTPClient, baseURL string) *DirectTransport {
	return &DirectTransport{client: client, baseURL: baseURL}
}

func (t *DirectTransport) Name() string { return ModeDirect }

func (t *DirectTransport) Get(ctx context.Context, cik string) ([]byte, error) {
	u := conceptURL(t.baseURL, cik)
	body, err := t.client.Get(ctx, u, nil)
	if err != nil {
		return nil, networkError(ctx, u, err)
	}
	return body, nil
}

// ---- Direct with local-file fallback ----

// FileFallbackTransport serves {dir}/CIK##########.json when the primary
// transport fails with a network error. If no file exists the primary error
// is returned unchanged.
type FileFallbackTransport struct {
	primary provider.Transport
	dir     string
}

func NewFileFallbackTransport(primary provider.Transport, dir string) *FileFallbackTransport {
	return &FileFallbackTransport{primary: primary, dir: dir}
}

func (t *FileFallbackTransport) Name() string { return ModeFallback }

func (t *FileFallbackTransport) Get(ctx context.Context, cik string) ([]byte, error) {
	body, err := t.primary.Get(ctx, cik)
	if err == nil || provider.KindOf(err) != provider.KindNetwork {
		return body, err
	}

	path := filepath.Join(t.dir, "CIK"+cik+".json")
	data, ferr := os.ReadFile(path)
	if ferr != nil {
		zerolog.Ctx(ctx).Debug().Str("path", path).Err(ferr).Msg("no local fallback file")
		return nil, err
	}
	zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("remote fetch failed, serving local file")
	return data, nil
}

// ---- Third-party CORS proxy ----

// ProxyTransport routes the EDGAR URL through a third-party relay that takes
// the escaped target URL as a suffix, e.g. https://api.allorigins.win/raw?url=.
type ProxyTransport struct {
	client   *infra.HTTPClient
	baseURL  string
	proxyURL string
}

func NewProxyTransport(client *infra.HTTPClient, baseURL, proxyURL string) (*ProxyTransport, error) {
	if strings.TrimSpace(proxyURL) == "" {
		return nil, &provider.ConfigurationError{Setting: "transport.proxy_url", Detail: "required when transport.mode is proxy"}
	}
	return &ProxyTransport{client: client, baseURL: baseURL, proxyURL: proxyURL}, nil
}

func (t *ProxyTransport) Name() string { return ModeProxy }

func (t *ProxyTransport) Get(ctx context.Context, cik string) ([]byte, error) {
	u := t.proxyURL + url.QueryEscape(conceptURL(t.baseURL, cik))
	body, err := t.client.Get(ctx, u, nil)
	if err != nil {
		return nil, networkError(ctx, u, err)
	}
	return body, nil
}

// ---- First-party relay ----

// RelayTransport calls a same-origin relay as {relay_url}?cik=##########.
type RelayTransport struct {
	client   *infra.HTTPClient
	endpoint *url.URL
}

func NewRelayTransport(client *infra.HTTPClient, relayURL string) (*RelayTransport, error) {
	if strings.TrimSpace(relayURL) == "" {
		return nil, &provider.ConfigurationError{Setting: "transport.relay_url", Detail: "required when transport.mode is relay"}
	}
	endpoint, err := url.Parse(relayURL)
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, &provider.ConfigurationError{Setting: "transport.relay_url", Detail: fmt.Sprintf("invalid URL %q", relayURL)}
	}
	return &RelayTransport{client: client, endpoint: endpoint}, nil
}

func (t *RelayTransport) Name() string { return ModeRelay }

func (t *RelayTransport) Get(ctx context.Context, cik string) ([]byte, error) {
	u := *t.endpoint
	q := u.Query()
	q.Set("cik", cik)
	u.RawQuery = q.Encode()

	body, err := t.client.Get(ctx, u.String(), nil)
	if err != nil {
		return nil, networkError(ctx, u.String(), err)
	}
	return body, nil
}
