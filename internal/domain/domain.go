package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Crypto is one tradeable coin or token known to the pricing service.
// ID is the compound identifier used for price lookups ("tether@ethereum"),
// Asset is the bare asset key shared by the same asset on every platform.
type Crypto struct {
	ID         string `json:"_id"`
	Asset      string `json:"asset"`
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	Type       string `json:"type"`
	Deprecated bool   `json:"deprecated"`
	Platform   string `json:"platform,omitempty"`
	Logo       string `json:"logo,omitempty"`
}

const (
	TypeCoin  = "coin"
	TypeToken = "token"
)

// Ticker is an instantaneous price observation for one compound id.
// Delta is computed locally against the previously persisted price and is
// never part of the wire payload.
type Ticker struct {
	CryptoID      string   `json:"cryptoId"`
	Price         float64  `json:"price"`
	PriceChange1D *float64 `json:"price_change_1d,omitempty"`
	Delta         *float64 `json:"-"`
}

// Holding is one portfolio position written by the host wallet app. The
// balance arrives as a decimal string; a malformed balance decodes to 0
// rather than failing the whole blob.
type Holding struct {
	CryptoID string
	Balance  float64
}

func (h *Holding) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string `json:"_id"`
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	h.CryptoID = raw.ID
	if v, err := strconv.ParseFloat(raw.Balance, 64); err == nil {
		h.Balance = v
	} else {
		h.Balance = 0
	}
	return nil
}

// Portfolio is the valuation of the host user's holdings in one fiat
// currency. Total.Price carries the summed value, Total.PriceChange1D the
// value-weighted 1-day change.
type Portfolio struct {
	Total Ticker
	Items []PortfolioItem
}

// PortfolioItem pairs a held crypto with its ticker and fiat value.
type PortfolioItem struct {
	Crypto  Crypto
	Ticker  Ticker
	Balance float64
	Fiat    float64
}

// NormalizeLogo rewrites a logo path's extension to the raster suffix the
// logo endpoint serves. Paths without an extension gain one.
func NormalizeLogo(logo string) string {
	if logo == "" {
		return ""
	}
	if i := strings.LastIndexByte(logo, '.'); i >= 0 {
		return logo[:i] + ".png"
	}
	return logo + ".png"
}

// NormalizeListing filters a raw listing down to caller-visible entries:
// deprecated entries and entries without a logo are dropped, surviving logo
// paths are normalized. Order is preserved.
func NormalizeListing(cryptos []Crypto) []Crypto {
	out := make([]Crypto, 0, len(cryptos))
	for _, c := range cryptos {
		if c.Deprecated || c.Logo == "" {
			continue
		}
		c.Logo = NormalizeLogo(c.Logo)
		out = append(out, c)
	}
	return out
}

// UniqueAssets keeps the first entry per asset key, preserving order. The
// same asset listed on several platforms collapses to its first listing.
func UniqueAssets(cryptos []Crypto) []Crypto {
	seen := make(map[string]struct{}, len(cryptos))
	out := make([]Crypto, 0, len(cryptos))
	for _, c := range cryptos {
		if _, ok := seen[c.Asset]; ok {
			continue
		}
		seen[c.Asset] = struct{}{}
		out = append(out, c)
	}
	return out
}
