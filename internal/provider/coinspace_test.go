package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func fakeProvider(t *testing.T, fn roundTripFunc) *CoinSpaceProvider {
	t.Helper()
	p := NewCoinSpaceProvider("http://example", testTracer)
	p.client = &http.Client{Transport: fn}
	return p
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func TestFetchCryptos(t *testing.T) {
	t.Parallel()

	p := fakeProvider(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/v1/cryptos" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `[
			{"_id":"bitcoin@bitcoin","asset":"bitcoin","name":"Bitcoin","symbol":"BTC","type":"coin","logo":"btc.svg"},
			{"_id":"tether@ethereum","asset":"tether","name":"Tether","symbol":"USDT","type":"token","platform":"ethereum","logo":"usdt.svg"}
		]`), nil
	})

	cryptos, err := p.FetchCryptos(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cryptos) != 2 {
		t.Fatalf("expected 2 cryptos, got %d", len(cryptos))
	}
	if cryptos[1].ID != "tether@ethereum" || cryptos[1].Platform != "ethereum" {
		t.Fatalf("unexpected crypto: %+v", cryptos[1])
	}
}

func TestFetchTickersComposesURL(t *testing.T) {
	t.Parallel()

	var gotURL string
	p := fakeProvider(t, func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return jsonResponse(http.StatusOK, `[
			{"cryptoId":"bitcoin@bitcoin","price":97000.5,"price_change_1d":2.3},
			{"cryptoId":"tether@ethereum","price":1.0}
		]`), nil
	})

	tickers, err := p.FetchTickers(context.Background(), []string{"bitcoin@bitcoin", "tether@ethereum"}, "usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotURL != "http://example/api/v1/prices/public?fiat=usd&cryptoIds=bitcoin@bitcoin,tether@ethereum" {
		t.Fatalf("unexpected url: %s", gotURL)
	}
	if len(tickers) != 2 {
		t.Fatalf("expected 2 tickers, got %d", len(tickers))
	}
	if tickers[0].PriceChange1D == nil || *tickers[0].PriceChange1D != 2.3 {
		t.Fatalf("unexpected change: %+v", tickers[0])
	}
	if tickers[1].PriceChange1D != nil {
		t.Fatalf("expected nil change for tether, got %v", *tickers[1].PriceChange1D)
	}
}

func TestDoRequestNon200(t *testing.T) {
	t.Parallel()

	p := fakeProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, "upstream down"), nil
	})

	_, err := p.FetchCryptos(context.Background())
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestFetchCryptosDecodeError(t *testing.T) {
	t.Parallel()

	p := fakeProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"not":"a list"}`), nil
	})

	if _, err := p.FetchCryptos(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLogoURL(t *testing.T) {
	t.Parallel()

	p := NewCoinSpaceProvider("http://example/", testTracer)
	if got := p.LogoURL("btc.png"); got != "http://example/logo/btc.png" {
		t.Fatalf("unexpected logo url: %s", got)
	}
}
