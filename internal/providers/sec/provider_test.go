package sec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/sharesrange/internal/infra"
	"github.com/seenimoa/sharesrange/internal/provider"
	"github.com/seenimoa/sharesrange/pkg/models"
)

const fixtureConceptPath = "/api/xbrl/companyconcept/CIK0000002969/dei/EntityCommonStockSharesOutstanding.json"

const fixtureConceptJSON = `{"cik":2969,"entityName":"Fixture Corp","units":{"shares":[
	{"fy":2021,"val":100},
	{"fy":2022,"val":300},
	{"fy":2019,"val":50}
]}}`

// edgarServer serves handler and counts requests.
func edgarServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func directProvider(t *testing.T, baseURL string, opts ...Option) *Provider {
	t.Helper()
	transport, err := NewTransport(TransportOptions{Mode: ModeDirect, BaseURL: baseURL, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	return New(transport, opts...)
}

func fastRetry(n int) Option {
	return WithRetry(infra.NewRetryPolicy(n, infra.LinearBackoff(time.Millisecond), provider.IsRetryable))
}

func TestProviderInfo(t *testing.T) {
	p := directProvider(t, "http://localhost")
	info := p.Info()
	if info.Name != "sec" {
		t.Errorf("expected name sec, got %s", info.Name)
	}
	if info.Website == "" {
		t.Error("expected non-empty website")
	}
	if info.Metric != "dei/EntityCommonStockSharesOutstanding" {
		t.Errorf("unexpected metric %s", info.Metric)
	}
	if info.Transport != ModeDirect {
		t.Errorf("expected transport direct, got %s", info.Transport)
	}
}

func TestFetchAndExtract(t *testing.T) {
	ts, hits := edgarServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != fixtureConceptPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != secUserAgent {
			t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixtureConceptJSON))
	})

	p := directProvider(t, ts.URL)
	result, err := p.FetchAndExtract(context.Background(), "2969", 2020)
	if err != nil {
		t.Fatalf("FetchAndExtract: %v", err)
	}

	if result.CIK != "0000002969" {
		t.Errorf("CIK = %s", result.CIK)
	}
	if result.EntityName != "Fixture Corp" {
		t.Errorf("EntityName = %s", result.EntityName)
	}
	if result.Max.Value != 300 || result.Max.RawYearLabel != "2022" {
		t.Errorf("Max = %+v", result.Max)
	}
	if result.Min.Value != 100 || result.Min.RawYearLabel != "2021" {
		t.Errorf("Min = %+v", result.Min)
	}
	if result.Considered != 2 {
		t.Errorf("Considered = %d, want 2", result.Considered)
	}
	if result.DecodePath != models.DecodeStrict {
		t.Errorf("DecodePath = %s", result.DecodePath)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 request, got %d", hits.Load())
	}
}

func TestFetchAndExtractHeuristicFallback(t *testing.T) {
	ts, _ := edgarServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Alt Co","units":{"shares":[{"fy":"FY2021","val":"7"},{"fy":"FY2023","val":"9"}]}}`))
	})

	result, err := directProvider(t, ts.URL).FetchAndExtract(context.Background(), "2969", 2020)
	if err != nil {
		t.Fatalf("FetchAndExtract: %v", err)
	}
	if result.DecodePath != models.DecodeHeuristic {
		t.Errorf("DecodePath = %s, want heuristic", result.DecodePath)
	}
	if result.EntityName != "Alt Co" {
		t.Errorf("EntityName = %s", result.EntityName)
	}
	if result.Max.Value != 9 || result.Min.Value != 7 {
		t.Errorf("unexpected range %+v / %+v", result.Max, result.Min)
	}
}

func TestFetchAndExtractSkipsNullValues(t *testing.T) {
	ts, _ := edgarServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entityName":"Fixture Corp","units":{"shares":[
			{"fy":2021,"val":100},
			{"fy":2022,"val":null},
			{"fy":2023}
		]}}`))
	})

	result, err := directProvider(t, ts.URL).FetchAndExtract(context.Background(), "2969", 2020)
	if err != nil {
		t.Fatalf("FetchAndExtract: %v", err)
	}
	if result.Considered != 1 {
		t.Errorf("Considered = %d, want 1", result.Considered)
	}
	if result.Min.Value != 100 || result.Min.RawYearLabel != "2021" {
		t.Errorf("Min = %+v, want {100 2021}", result.Min)
	}
}

func TestFetchAndExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		input   string
		want    provider.Kind
		wantHit int32
	}{
		{"server error", http.StatusInternalServerError, "oops", "2969", provider.KindNetwork, 1},
		{"not found", http.StatusNotFound, "", "2969", provider.KindNetwork, 1},
		{"malformed", http.StatusOK, "<html>", "2969", provider.KindMalformedResponse, 1},
		{"no units", http.StatusOK, `{"entityName":"X"}`, "2969", provider.KindMalformedResponse, 1},
		{"no data after cutoff", http.StatusOK, `{"entityName":"X","units":{"shares":[{"fy":2019,"val":1}]}}`, "2969", provider.KindNoMatchingData, 1},
		{"empty series", http.StatusOK, `{"entityName":"X","units":{"shares":[]}}`, "2969", provider.KindNoMatchingData, 1},
		{"invalid identifier", http.StatusOK, fixtureConceptJSON, "AAPL", provider.KindInvalidIdentifier, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, hits := edgarServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := directProvider(t, ts.URL).FetchAndExtract(context.Background(), tt.input, 2020)
			if got := provider.KindOf(err); got != tt.want {
				t.Errorf("KindOf(%v) = %s, want %s", err, got, tt.want)
			}
			if hits.Load() != tt.wantHit {
				t.Errorf("requests = %d, want %d", hits.Load(), tt.wantHit)
			}
		})
	}
}

func TestFetchAndExtractStatusCode(t *testing.T) {
	ts, _ := edgarServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := directProvider(t, ts.URL).FetchAndExtract(context.Background(), "2969", 2020)
	var netErr *provider.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if netErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", netErr.StatusCode)
	}
}

func TestFetchAndExtractRetriesNetworkErrors(t *testing.T) {
	ts, hits := edgarServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := directProvider(t, ts.URL, fastRetry(2)).FetchAndExtract(context.Background(), "2969", 2020)
	if provider.KindOf(err) != provider.KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("requests = %d, want 3 (1 + 2 retries)", hits.Load())
	}
}

func TestFetchAndExtractRetryRecovers(t *testing.T) {
	var calls atomic.Int32
	ts, _ := edgarServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(fixtureConceptJSON))
	})

	result, err := directProvider(t, ts.URL, fastRetry(2)).FetchAndExtract(context.Background(), "2969", 2020)
	if err != nil {
		t.Fatalf("FetchAndExtract: %v", err)
	}
	if result.Max.Value != 300 {
		t.Errorf("Max = %+v", result.Max)
	}
	if calls.Load() != 2 {
		t.Errorf("requests = %d, want 2", calls.Load())
	}
}

func TestFetchAndExtractDoesNotRetryMalformed(t *testing.T) {
	ts, hits := edgarServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := directProvider(t, ts.URL, fastRetry(2)).FetchAndExtract(context.Background(), "2969", 2020)
	if provider.KindOf(err) != provider.KindMalformedResponse {
		t.Fatalf("expected malformed response, got %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("requests = %d, want 1", hits.Load())
	}
}

func TestFetchAndExtractTimeout(t *testing.T) {
	ts, hits := edgarServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	p := directProvider(t, ts.URL, WithTimeout(50*time.Millisecond), fastRetry(2))
	_, err := p.FetchAndExtract(context.Background(), "2969", 2020)

	var netErr *provider.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if !netErr.Timeout {
		t.Errorf("expected Timeout to be set: %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("requests = %d, want 3", hits.Load())
	}
}

func TestFetchAndExtractCallerCancelNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ts, hits := edgarServer(t, func(w http.ResponseWriter, r *http.Request) {
		cancel()
		<-r.Context().Done()
	})

	_, err := directProvider(t, ts.URL, fastRetry(2)).FetchAndExtract(ctx, "2969", 2020)
	if err == nil {
		t.Fatal("expected error")
	}
	if hits.Load() != 1 {
		t.Errorf("requests = %d, want 1", hits.Load())
	}
}

func TestPing(t *testing.T) {
	ts, _ := edgarServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/xbrl/companyconcept/CIK0000320193/dei/EntityCommonStockSharesOutstanding.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(fixtureConceptJSON))
	})

	if err := directProvider(t, ts.URL).Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
