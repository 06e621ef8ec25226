package auction

import (
	"strings"
	"testing"
)

const sampleEnvelope = `{
	"id": "1",
	"tokens": {
		"0xf5f5B97624542D72A9E06f04804Bf81baA15e2B4": {
			"decimals": 18,
			"symbol": "TricryptoUSDT",
			"availableBalance": "1000000000000000000",
			"trusted": true
		},
		"0xf939E0A03FB07F59A73314E73794Be0E57ac1b4E": {
			"decimals": 18,
			"symbol": "crvUSD",
			"referencePrice": "598672283383404855983005159",
			"availableBalance": "0",
			"trusted": true
		}
	},
	"orders": [
		{
			"uid": "0x0101",
			"sellToken": "0xf5f5B97624542D72A9E06f04804Bf81baA15e2B4",
			"buyToken": "0xf939E0A03FB07F59A73314E73794Be0E57ac1b4E",
			"sellAmount": "1000000000000000000",
			"buyAmount": "1",
			"kind": "sell",
			"class": "market",
			"partiallyFillable": false,
			"sellTokenSource": "erc20",
			"buyTokenDestination": "erc20"
		}
	],
	"liquidity": [],
	"effectiveGasPrice": "15000000000",
	"deadline": "2099-01-01T00:00:00.000Z",
	"surplusCapturingJitOrderOwners": []
}`

func TestDecodeEnvelopeAndToDomain(t *testing.T) {
	env, err := DecodeEnvelope([]byte(sampleEnvelope))
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if len(env.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(env.Orders))
	}

	auc, err := env.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	if len(auc.Orders) != 1 {
		t.Fatalf("expected 1 domain order, got %d", len(auc.Orders))
	}
	order := auc.Orders[0]
	if order.Side != 0 {
		t.Errorf("expected Sell side, got %v", order.Side)
	}
	if order.Sell.Amount.Dec() != "1000000000000000000" {
		t.Errorf("sell amount = %s, want 1000000000000000000", order.Sell.Amount.Dec())
	}

	info, ok := auc.Tokens[order.Buy.Token]
	if !ok || info.ReferencePrice == nil {
		t.Fatalf("expected buy token to carry a reference price")
	}
	if info.ReferencePrice.Dec() != "598672283383404855983005159" {
		t.Errorf("reference price = %s, want 598672283383404855983005159", info.ReferencePrice.Dec())
	}
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	if _, err := DecodeEnvelope([]byte("not json")); err == nil {
		t.Fatal("expected decode error for invalid JSON")
	}
}

func TestToDomainRejectsBadDeadline(t *testing.T) {
	bad := strings.Replace(sampleEnvelope, `"2099-01-01T00:00:00.000Z"`, `"not-a-date"`, 1)
	env, err := DecodeEnvelope([]byte(bad))
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if _, err := env.ToDomain(); err == nil {
		t.Fatal("expected error for malformed deadline")
	}
}
