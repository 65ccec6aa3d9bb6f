package service

import (
	"context"
	"encoding/json"
	"log"

	"coinwidget/internal/domain"
)

// holdingsKey is where the host wallet app writes the signed-in user's
// positions; the core only reads it.
const holdingsKey = "portfolioCryptos"

// PortfolioTotalID is the compound id carried by the aggregate ticker.
const PortfolioTotalID = "portfolio"

// Portfolio values the host user's holdings in the given fiat currency.
// A nil portfolio with nil error means the user is not signed in (no
// holdings blob, or one the core cannot read). Holdings for assets the
// listing no longer knows, or with no ticker in the response, are dropped
// from the valuation.
//
// Total.Price is the summed fiat value, Total.PriceChange1D the
// value-weighted 1-day change, and Total.Delta the change since the last
// portfolio fetch for this currency.
func (s *PriceService) Portfolio(ctx context.Context, fiat string) (*domain.Portfolio, error) {
	_, span := s.tracer.Start(ctx, "price-service.portfolio")
	defer span.End()

	data, err := s.state.Get(ctx, holdingsKey)
	if err != nil {
		log.Printf("holdings read error: %v", err)
		return nil, nil
	}
	if data == nil {
		return nil, nil
	}
	var holdings []domain.Holding
	if err := json.Unmarshal(data, &holdings); err != nil {
		log.Printf("holdings decode error: %v", err)
		return nil, nil
	}

	// Full per-platform listing: the same asset held on two platforms is
	// two positions.
	cryptos, err := s.ListCryptos(ctx, false)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Crypto, len(cryptos))
	for _, c := range cryptos {
		byID[c.ID] = c
	}

	var (
		items []domain.PortfolioItem
		ids   []string
	)
	for _, h := range holdings {
		c, ok := byID[h.CryptoID]
		if !ok {
			continue
		}
		ids = append(ids, h.CryptoID)
		items = append(items, domain.PortfolioItem{Crypto: c, Balance: h.Balance})
	}

	tickers, err := s.FetchPrices(ctx, ids, fiat)
	if err != nil {
		return nil, err
	}
	tickerByID := make(map[string]domain.Ticker, len(tickers))
	for _, tk := range tickers {
		tickerByID[tk.CryptoID] = tk
	}

	var balance, balanceChange float64
	valued := items[:0]
	for _, item := range items {
		tk, ok := tickerByID[item.Crypto.ID]
		if !ok {
			continue
		}
		item.Ticker = tk
		item.Fiat = item.Balance * tk.Price
		balance += item.Fiat
		if tk.PriceChange1D != nil {
			balanceChange += item.Fiat * *tk.PriceChange1D
		}
		valued = append(valued, item)
	}

	changePct := 0.0
	if balance != 0 {
		changePct = balanceChange / balance
	}
	total := domain.Ticker{
		CryptoID:      PortfolioTotalID,
		Price:         balance,
		PriceChange1D: &changePct,
	}
	s.deltas.AnnotateTotal(ctx, "portfolio:"+fiat, &total)

	return &domain.Portfolio{Total: total, Items: valued}, nil
}
