package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coinwidget/internal/cache"
	"coinwidget/internal/domain"
	"coinwidget/internal/store"

	"go.opentelemetry.io/otel/trace"
)

const (
	defaultListingTTL = 12 * time.Hour
	defaultPriceTTL   = 60 * time.Second

	// The prices endpoint rejects requests with more than 30 ids.
	maxBatchIDs = 30
)

// ErrFetchFailed is the single error kind callers see for any transport or
// decode failure. A widget renders it as an "unknown value" placeholder; it
// carries no server-down vs bad-payload distinction.
var ErrFetchFailed = errors.New("price fetch failed")

// PriceProvider is the raw HTTP client underneath the cached service.
type PriceProvider interface {
	CryptosURL() string
	PricesURL(ids []string, fiat string) string
	FetchCryptos(ctx context.Context) ([]domain.Crypto, error)
	FetchTickers(ctx context.Context, ids []string, fiat string) ([]domain.Ticker, error)
}

// PriceService is the caller-facing read API: listing and prices, each
// routed through a single-flight TTL cache keyed by request URL. Safe for
// concurrent use by any number of widget instances.
type PriceService struct {
	tracer   trace.Tracer
	provider PriceProvider
	deltas   *DeltaTracker
	state    store.Store

	listings   *cache.Cache[[]domain.Crypto]
	prices     *cache.Cache[[]domain.Ticker]
	listingTTL time.Duration
	priceTTL   time.Duration
}

// NewPriceService wires the cached read operations over provider and the
// injected persistent store. Non-positive TTLs select the defaults
// (12h listing, 60s prices).
func NewPriceService(
	tracer trace.Tracer,
	provider PriceProvider,
	state store.Store,
	listingTTL, priceTTL time.Duration,
) *PriceService {
	if listingTTL <= 0 {
		listingTTL = defaultListingTTL
	}
	if priceTTL <= 0 {
		priceTTL = defaultPriceTTL
	}
	return &PriceService{
		tracer:     tracer,
		provider:   provider,
		deltas:     NewDeltaTracker(state),
		state:      state,
		listings:   cache.New[[]domain.Crypto](),
		prices:     cache.New[[]domain.Ticker](),
		listingTTL: listingTTL,
		priceTTL:   priceTTL,
	}
}

// ListCryptos returns the caller-visible listing: deprecated and logoless
// entries removed, logo paths normalized. With uniqueAssets, per-platform
// duplicates collapse to the first listing per asset key. Both modes share
// one cache entry holding the full normalized set; dedup happens per call.
func (s *PriceService) ListCryptos(ctx context.Context, uniqueAssets bool) ([]domain.Crypto, error) {
	_, span := s.tracer.Start(ctx, "price-service.list-cryptos")
	defer span.End()

	cryptos, err := s.listings.Fetch(ctx, s.provider.CryptosURL(), s.listingTTL,
		s.provider.FetchCryptos, domain.NormalizeListing)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if uniqueAssets {
		return domain.UniqueAssets(cryptos), nil
	}
	return append([]domain.Crypto(nil), cryptos...), nil
}

// FetchPrices returns tickers for the given compound ids in input order.
// Ids are chunked to the API's 30-id batch limit; every chunk is an
// independent cache entry, so overlapping widget configurations reuse each
// other's fetches. Ids absent from the response are omitted, not errors.
// If any chunk fails the whole call fails with no partial result.
func (s *PriceService) FetchPrices(ctx context.Context, ids []string, fiat string) ([]domain.Ticker, error) {
	_, span := s.tracer.Start(ctx, "price-service.fetch-prices")
	defer span.End()

	if len(ids) == 0 {
		return []domain.Ticker{}, nil
	}

	var fetched []domain.Ticker
	for _, chunk := range chunkIDs(ids, maxBatchIDs) {
		chunk := chunk
		tickers, err := s.prices.Fetch(ctx, s.provider.PricesURL(chunk, fiat), s.priceTTL,
			func(ctx context.Context) ([]domain.Ticker, error) {
				return s.provider.FetchTickers(ctx, chunk, fiat)
			}, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		fetched = append(fetched, tickers...)
	}

	byID := make(map[string]domain.Ticker, len(fetched))
	for _, tk := range fetched {
		if _, ok := byID[tk.CryptoID]; !ok {
			byID[tk.CryptoID] = tk
		}
	}

	result := make([]domain.Ticker, 0, len(ids))
	for _, id := range ids {
		if tk, ok := byID[id]; ok {
			result = append(result, tk)
		}
	}

	s.deltas.Annotate(ctx, ids, fiat, result)
	return result, nil
}

func chunkIDs(ids []string, size int) [][]string {
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
