package priceapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestEthPriceAndCache(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if !strings.Contains(r.URL.Path, "/usd_price/ethereum/") {
			t.Errorf("path %q does not carry the chain name segment", r.URL.Path)
		}
		switch {
		case strings.Contains(r.URL.Path, strings.ToLower(WETHAddress.Hex())) || strings.Contains(r.URL.Path, WETHAddress.Hex()):
			w.Write([]byte(`{"data":{"usd_price":2000.0}}`))
		default:
			w.Write([]byte(`{"data":{"usd_price":1.0}}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	token := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")

	price, err := c.EthPrice(context.Background(), 1, token)
	if err != nil {
		t.Fatalf("EthPrice: %v", err)
	}
	if price.IsZero() {
		t.Fatal("expected non-zero price")
	}
	callsAfterFirst := calls

	if _, err := c.EthPrice(context.Background(), 1, token); err != nil {
		t.Fatalf("EthPrice (cached): %v", err)
	}
	if calls != callsAfterFirst {
		t.Errorf("expected cache hit to avoid new HTTP calls, calls went from %d to %d", callsAfterFirst, calls)
	}
}

func TestEthPriceRejectsUnknownChain(t *testing.T) {
	c := NewClient("http://unused.invalid/")
	token := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")

	if _, err := c.EthPrice(context.Background(), 99999, token); err == nil {
		t.Fatal("expected error for unmapped chain id")
	}
}

func TestEthPriceRejectsNonPositive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"usd_price":0}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	token := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")

	if _, err := c.EthPrice(context.Background(), 1, token); err == nil {
		t.Fatal("expected error for non-positive usd price")
	}
}
