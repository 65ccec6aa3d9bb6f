package domain

import (
	"encoding/json"
	"testing"
)

func TestNormalizeLogo(t *testing.T) {
	tests := map[string]string{
		"btc.svg":          "btc.png",
		"tether.svg":       "tether.png",
		"already.png":      "already.png",
		"noextension":      "noextension.png",
		"dir/ethereum.svg": "dir/ethereum.png",
		"":                 "",
	}
	for in, expected := range tests {
		if got := NormalizeLogo(in); got != expected {
			t.Fatalf("NormalizeLogo(%q) = %q, expected %q", in, got, expected)
		}
	}
}

func TestNormalizeListing(t *testing.T) {
	raw := []Crypto{
		{ID: "bitcoin@bitcoin", Asset: "bitcoin", Logo: "btc.svg"},
		{ID: "old@old", Asset: "old", Logo: "old.svg", Deprecated: true},
		{ID: "nologo@nologo", Asset: "nologo"},
		{ID: "tether@ethereum", Asset: "tether", Logo: "usdt.svg"},
	}

	got := NormalizeListing(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != "bitcoin@bitcoin" || got[0].Logo != "btc.png" {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
	if got[1].Logo != "usdt.png" {
		t.Fatalf("logo not normalized: %+v", got[1])
	}
}

func TestUniqueAssetsKeepsFirst(t *testing.T) {
	cryptos := []Crypto{
		{ID: "tether@ethereum", Asset: "tether"},
		{ID: "bitcoin@bitcoin", Asset: "bitcoin"},
		{ID: "tether@tron", Asset: "tether"},
	}

	got := UniqueAssets(cryptos)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != "tether@ethereum" || got[1].ID != "bitcoin@bitcoin" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestHoldingDecodesStringBalance(t *testing.T) {
	var holdings []Holding
	payload := `[{"_id":"bitcoin@bitcoin","balance":"0.5"},{"_id":"tether@ethereum","balance":"120"}]`
	if err := json.Unmarshal([]byte(payload), &holdings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if holdings[0].Balance != 0.5 || holdings[1].Balance != 120 {
		t.Fatalf("unexpected balances: %+v", holdings)
	}
}

func TestHoldingMalformedBalanceIsZero(t *testing.T) {
	var holding Holding
	if err := json.Unmarshal([]byte(`{"_id":"x@x","balance":"abc"}`), &holding); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if holding.CryptoID != "x@x" || holding.Balance != 0 {
		t.Fatalf("unexpected holding: %+v", holding)
	}
}

func TestTickerDeltaNotMarshalled(t *testing.T) {
	delta := 10.0
	data, err := json.Marshal(Ticker{CryptoID: "bitcoin@bitcoin", Price: 110, Delta: &delta})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var raw map[string]any
	_ = json.Unmarshal(data, &raw)
	if _, ok := raw["delta"]; ok {
		t.Fatalf("delta should not be marshalled: %s", data)
	}
}
