package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coinwidget/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://price.coin.space"

// CoinSpaceProvider fetches listing and ticker data from the pricing API.
// It is the only component that touches the network; callers go through the
// cached service layer instead of hitting it directly.
type CoinSpaceProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

// NewCoinSpaceProvider creates a provider with built-in rate limiting
// toward the shared public API. An empty baseURL selects the production
// host.
func NewCoinSpaceProvider(baseURL string, tracer trace.Tracer) *CoinSpaceProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &CoinSpaceProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tracer:  tracer,
		limiter: rate.NewLimiter(rate.Every(time.Second), 4),
	}
}

// CryptosURL is the listing endpoint, also used as its cache key.
func (p *CoinSpaceProvider) CryptosURL() string {
	return p.baseURL + "/api/v1/cryptos"
}

// PricesURL composes the ticker endpoint for one chunk of compound ids,
// also used as that chunk's cache key.
func (p *CoinSpaceProvider) PricesURL(ids []string, fiat string) string {
	return fmt.Sprintf("%s/api/v1/prices/public?fiat=%s&cryptoIds=%s",
		p.baseURL, fiat, strings.Join(ids, ","))
}

// LogoURL resolves a normalized logo path against the logo endpoint. Image
// retrieval itself belongs to the host's image pipeline.
func (p *CoinSpaceProvider) LogoURL(logo string) string {
	return p.baseURL + "/logo/" + logo
}

// FetchCryptos fetches the full raw listing, unfiltered.
func (p *CoinSpaceProvider) FetchCryptos(ctx context.Context) ([]domain.Crypto, error) {
	_, span := p.tracer.Start(ctx, "coinspace.fetch-cryptos")
	defer span.End()

	body, err := p.doRequest(ctx, p.CryptosURL())
	if err != nil {
		return nil, fmt.Errorf("fetch cryptos: %w", err)
	}

	var cryptos []domain.Crypto
	if err := json.Unmarshal(body, &cryptos); err != nil {
		return nil, fmt.Errorf("parse cryptos: %w", err)
	}
	return cryptos, nil
}

// FetchTickers fetches tickers for one chunk of compound ids. The remote
// API caps a request at 30 ids; chunking is the caller's job.
func (p *CoinSpaceProvider) FetchTickers(ctx context.Context, ids []string, fiat string) ([]domain.Ticker, error) {
	_, span := p.tracer.Start(ctx, "coinspace.fetch-tickers")
	defer span.End()

	body, err := p.doRequest(ctx, p.PricesURL(ids, fiat))
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}

	var tickers []domain.Ticker
	if err := json.Unmarshal(body, &tickers); err != nil {
		return nil, fmt.Errorf("parse tickers: %w", err)
	}
	return tickers, nil
}

func (p *CoinSpaceProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("price API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
