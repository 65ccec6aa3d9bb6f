package service

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"

	"coinwidget/internal/domain"
	"coinwidget/internal/store"
)

// DeltaTracker computes each ticker's price change since the last
// successful fetch of the same id-set and currency, using the injected
// store so callers carry no history. History is keyed by the exact
// combination: two widgets watching different subsets of the same assets
// track independent baselines.
//
// Snapshot-store failures never fail a price fetch; deltas degrade to
// unset and the error is logged.
type DeltaTracker struct {
	store store.Store
}

func NewDeltaTracker(st store.Store) *DeltaTracker {
	return &DeltaTracker{store: st}
}

// SnapshotKey derives the persisted-snapshot key for an id-set+currency
// combination. The id list is sorted so request order does not fragment
// history.
func SnapshotKey(ids []string, fiat string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return "prices:" + strings.Join(sorted, ",") + ":" + fiat
}

// Annotate sets Delta on each ticker with a prior baseline, then persists
// the current prices as the new baseline. The new snapshot always
// overwrites the old one, even when some ids returned no ticker; their
// baselines drop. Tickers without a prior entry keep a nil Delta: unknown,
// not zero.
func (d *DeltaTracker) Annotate(ctx context.Context, ids []string, fiat string, tickers []domain.Ticker) {
	if d.store == nil {
		return
	}
	key := SnapshotKey(ids, fiat)

	prior := map[string]float64{}
	if data, err := d.store.Get(ctx, key); err != nil {
		log.Printf("price snapshot read error for %s: %v", key, err)
	} else if data != nil {
		if err := json.Unmarshal(data, &prior); err != nil {
			log.Printf("price snapshot decode error for %s: %v", key, err)
			prior = map[string]float64{}
		}
	}

	current := make(map[string]float64, len(tickers))
	for i := range tickers {
		if p, ok := prior[tickers[i].CryptoID]; ok {
			delta := tickers[i].Price - p
			tickers[i].Delta = &delta
		}
		current[tickers[i].CryptoID] = tickers[i].Price
	}

	data, err := json.Marshal(current)
	if err != nil {
		log.Printf("price snapshot encode error for %s: %v", key, err)
		return
	}
	if err := d.store.Set(ctx, key, data); err != nil {
		log.Printf("price snapshot write error for %s: %v", key, err)
	}
}

// AnnotateTotal delta-tracks a single aggregate ticker (the portfolio
// total) under its own key. Only the price persists as baseline; Delta is
// never part of the stored payload.
func (d *DeltaTracker) AnnotateTotal(ctx context.Context, key string, total *domain.Ticker) {
	if d.store == nil {
		return
	}

	if data, err := d.store.Get(ctx, key); err != nil {
		log.Printf("total snapshot read error for %s: %v", key, err)
	} else if data != nil {
		var prior domain.Ticker
		if err := json.Unmarshal(data, &prior); err != nil {
			log.Printf("total snapshot decode error for %s: %v", key, err)
		} else {
			delta := total.Price - prior.Price
			total.Delta = &delta
		}
	}

	data, err := json.Marshal(total)
	if err != nil {
		log.Printf("total snapshot encode error for %s: %v", key, err)
		return
	}
	if err := d.store.Set(ctx, key, data); err != nil {
		log.Printf("total snapshot write error for %s: %v", key, err)
	}
}
