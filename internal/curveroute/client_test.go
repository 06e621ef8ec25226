package curveroute

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/relaydex/curve-lp-solver/internal/solvererr"
)

const (
	tricryptoLP = "0xf5f5B97624542D72A9E06f04804Bf81baA15e2B4"
	usdt        = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
)

// Single-step oracle response: tricrypto LP -> USDT, amountOut in 6-decimal
// units, no zap pool.
const singleStepResponse = `[
	{
		"amountOut": "1769.022968",
		"route": [
			{
				"tokenIn": ["` + tricryptoLP + `"],
				"tokenOut": ["` + usdt + `"],
				"args": {
					"poolId": "factory-tricrypto-4",
					"swapAddress": "` + tricryptoLP + `",
					"swapParams": [0, 0, 6, 30, 3],
					"poolAddress": "0x0000000000000000000000000000000000000000"
				}
			}
		]
	}
]`

func serveBody(t *testing.T, status int, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("amountIn"); got == "" {
			t.Errorf("missing amountIn query parameter")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestFetchNormalizesSingleStep(t *testing.T) {
	c := serveBody(t, http.StatusOK, singleStepResponse)

	route, err := c.Fetch(
		context.Background(),
		1,
		common.HexToAddress(tricryptoLP),
		common.HexToAddress(usdt),
		uint256.NewInt(1_000_000_000_000_000_000),
		18,
		6,
	)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if route.Path[0] != common.HexToAddress(tricryptoLP) {
		t.Errorf("path[0] = %s, want %s", route.Path[0], tricryptoLP)
	}
	if route.Path[1] != common.HexToAddress(tricryptoLP) {
		t.Errorf("path[1] = %s, want %s", route.Path[1], tricryptoLP)
	}
	if route.Path[2] != common.HexToAddress(usdt) {
		t.Errorf("path[2] = %s, want %s", route.Path[2], usdt)
	}
	if route.ExpectedOutput.Dec() != "1769022968" {
		t.Errorf("expected_output = %s, want 1769022968", route.ExpectedOutput.Dec())
	}
	if route.SwapParams[0] != [5]uint64{0, 0, 6, 30, 3} {
		t.Errorf("swap_params[0] = %v, want [0 0 6 30 3]", route.SwapParams[0])
	}
	if route.Pools[0] != (common.Address{}) {
		t.Errorf("pools[0] = %s, want zero address", route.Pools[0])
	}
	if route.BuyToken() != common.HexToAddress(usdt) {
		t.Errorf("BuyToken() = %s, want %s", route.BuyToken(), usdt)
	}
}

func TestFetchRejectsWrongSellToken(t *testing.T) {
	c := serveBody(t, http.StatusOK, singleStepResponse)

	_, err := c.Fetch(
		context.Background(),
		1,
		common.HexToAddress(usdt), // route actually starts with the LP token
		common.HexToAddress(usdt),
		uint256.NewInt(1000),
		18,
		6,
	)
	var ire *solvererr.InvalidRouteError
	if !errors.As(err, &ire) {
		t.Fatalf("expected *InvalidRouteError, got %v", err)
	}
}

func TestFetchRejectsWrongBuyToken(t *testing.T) {
	c := serveBody(t, http.StatusOK, singleStepResponse)

	_, err := c.Fetch(
		context.Background(),
		1,
		common.HexToAddress(tricryptoLP),
		common.HexToAddress(tricryptoLP), // route actually ends with USDT
		uint256.NewInt(1000),
		18,
		6,
	)
	var ire *solvererr.InvalidRouteError
	if !errors.As(err, &ire) {
		t.Fatalf("expected *InvalidRouteError, got %v", err)
	}
}

func TestFetchRejectsDisjointHops(t *testing.T) {
	const (
		dai     = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
		crvUSD  = "0xf939E0A03FB07F59A73314E73794Be0E57ac1b4E"
		twoHops = `[
			{
				"amountOut": "1.0",
				"route": [
					{
						"tokenIn": ["` + tricryptoLP + `"],
						"tokenOut": ["` + usdt + `"],
						"args": {
							"poolId": "p0",
							"swapAddress": "` + tricryptoLP + `",
							"swapParams": [0, 0, 6, 30, 3],
							"poolAddress": ""
						}
					},
					{
						"tokenIn": ["` + dai + `"],
						"tokenOut": ["` + crvUSD + `"],
						"args": {
							"poolId": "p1",
							"swapAddress": "` + dai + `",
							"swapParams": [0, 1, 1, 10, 2],
							"poolAddress": ""
						}
					}
				]
			}
		]`
	)
	c := serveBody(t, http.StatusOK, twoHops)

	// Hop 1's input token is not hop 0's output token.
	_, err := c.Fetch(context.Background(), 1, common.HexToAddress(tricryptoLP), common.HexToAddress(crvUSD), uint256.NewInt(1000), 18, 18)
	var ire *solvererr.InvalidRouteError
	if !errors.As(err, &ire) {
		t.Fatalf("expected *InvalidRouteError, got %v", err)
	}
}

func TestFetchRejectsNegativeSwapParam(t *testing.T) {
	bad := `[
		{
			"amountOut": "1.0",
			"route": [
				{
					"tokenIn": ["` + tricryptoLP + `"],
					"tokenOut": ["` + usdt + `"],
					"args": {
						"poolId": "p",
						"swapAddress": "` + tricryptoLP + `",
						"swapParams": [0, -1, 6, 30, 3],
						"poolAddress": ""
					}
				}
			]
		}
	]`
	c := serveBody(t, http.StatusOK, bad)

	_, err := c.Fetch(context.Background(), 1, common.HexToAddress(tricryptoLP), common.HexToAddress(usdt), uint256.NewInt(1000), 18, 6)
	var pe *solvererr.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestFetchApiError(t *testing.T) {
	c := serveBody(t, http.StatusInternalServerError, "internal error")

	_, err := c.Fetch(context.Background(), 1, common.HexToAddress(tricryptoLP), common.HexToAddress(usdt), uint256.NewInt(1000), 18, 6)
	var ae *solvererr.ApiError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *ApiError, got %v", err)
	}
	if ae.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", ae.Status)
	}
}

func TestFetchRejectsEmptyOptions(t *testing.T) {
	c := serveBody(t, http.StatusOK, "[]")

	_, err := c.Fetch(context.Background(), 1, common.HexToAddress(tricryptoLP), common.HexToAddress(usdt), uint256.NewInt(1000), 18, 6)
	var pe *solvererr.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}
