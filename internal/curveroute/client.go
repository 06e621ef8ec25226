package curveroute

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/relaydex/curve-lp-solver/internal/amount"
	"github.com/relaydex/curve-lp-solver/internal/solvererr"
)

// requestTimeout is the hard per-request transport timeout.
const requestTimeout = 10 * time.Second

// Client fetches route quotes from the route oracle HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a route oracle client against baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type routeOption struct {
	AmountOut string    `json:"amountOut"`
	Route     []hopJSON `json:"route"`
}

type hopJSON struct {
	TokenIn  []string `json:"tokenIn"`
	TokenOut []string `json:"tokenOut"`
	Args     hopArgs  `json:"args"`
}

type hopArgs struct {
	PoolID      string  `json:"poolId"`
	SwapAddress string  `json:"swapAddress"`
	SwapParams  []int64 `json:"swapParams"`
	PoolAddress string  `json:"poolAddress"`
}

// Fetch issues a route quote request and normalizes the first returned
// option into a validated Route.
func (c *Client) Fetch(ctx context.Context, chainID uint64, tokenIn, tokenOut common.Address, amountInWei *uint256.Int, decimalsIn, decimalsOut uint8) (*Route, error) {
	amountInStr, err := amount.Format(amountInWei, decimalsIn)
	if err != nil {
		return nil, &solvererr.ParseError{Cause: fmt.Sprintf("format amountIn: %v", err)}
	}

	q := url.Values{}
	q.Set("chainId", strconv.FormatUint(chainID, 10))
	q.Set("tokenIn", tokenIn.Hex())
	q.Set("tokenOut", tokenOut.Hex())
	q.Set("amountIn", amountInStr)

	reqURL := c.baseURL + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &solvererr.NetworkError{Op: "build request", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &solvererr.NetworkError{Op: "GET " + c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &solvererr.NetworkError{Op: "read body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &solvererr.ApiError{Status: resp.StatusCode, Body: string(body)}
	}

	var options []routeOption
	if err := json.Unmarshal(body, &options); err != nil {
		return nil, &solvererr.ParseError{Cause: fmt.Sprintf("decode route options: %v", err)}
	}
	if len(options) == 0 {
		return nil, &solvererr.ParseError{Cause: "route oracle returned zero options"}
	}

	route, err := normalize(options[0], decimalsOut)
	if err != nil {
		return nil, err
	}

	if err := Validate(route, tokenIn, tokenOut); err != nil {
		return nil, err
	}

	return route, nil
}

var zeroAddressHex = common.Address{}.Hex()

// normalize builds the fixed-shape Route from a route-oracle option.
func normalize(opt routeOption, decimalsOut uint8) (*Route, error) {
	route := &Route{}

	steps := opt.Route
	if len(steps) > NumHops {
		steps = steps[:NumHops]
	}

	for i, step := range steps {
		if len(step.TokenIn) == 0 || len(step.TokenOut) == 0 {
			return nil, &solvererr.ParseError{Cause: fmt.Sprintf("hop %d: missing tokenIn/tokenOut", i)}
		}
		if !common.IsHexAddress(step.TokenIn[0]) {
			return nil, &solvererr.ParseError{Cause: fmt.Sprintf("hop %d: invalid tokenIn address", i)}
		}
		if !common.IsHexAddress(step.TokenOut[0]) {
			return nil, &solvererr.ParseError{Cause: fmt.Sprintf("hop %d: invalid tokenOut address", i)}
		}
		if !common.IsHexAddress(step.Args.SwapAddress) {
			return nil, &solvererr.ParseError{Cause: fmt.Sprintf("hop %d: invalid swapAddress", i)}
		}

		tokenIn := common.HexToAddress(step.TokenIn[0])
		if i > 0 && route.Path[2*i] != tokenIn {
			return nil, &solvererr.InvalidRouteError{Detail: fmt.Sprintf("hop %d input token does not match hop %d output token", i, i-1)}
		}
		route.Path[2*i] = tokenIn
		route.Path[2*i+1] = common.HexToAddress(step.Args.SwapAddress)
		route.Path[2*i+2] = common.HexToAddress(step.TokenOut[0])

		params := step.Args.SwapParams
		if len(params) > 5 {
			params = params[:5]
		}
		for j, p := range params {
			if p < 0 {
				return nil, &solvererr.ParseError{Cause: fmt.Sprintf("hop %d: negative swap param %d", i, p)}
			}
			route.SwapParams[i][j] = uint64(p)
		}

		poolAddr := step.Args.PoolAddress
		if poolAddr != "" && poolAddr != zeroAddressHex && common.IsHexAddress(poolAddr) {
			route.Pools[i] = common.HexToAddress(poolAddr)
		}
	}

	expectedOutput, err := amount.Parse(opt.AmountOut, decimalsOut)
	if err != nil {
		return nil, &solvererr.ParseError{Cause: fmt.Sprintf("parse amountOut: %v", err)}
	}
	route.ExpectedOutput = expectedOutput

	return route, nil
}
