// Package priceapi fetches USD-denominated spot prices and derives a
// native-asset-denominated price, cached for 60 seconds per token via a
// hashicorp/golang-lru expirable cache.
package priceapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/holiman/uint256"
	"github.com/relaydex/curve-lp-solver/internal/solvererr"
)

// WETHAddress is the pivot token between USD-quoted oracle prices and
// native-asset-denominated internal prices.
var WETHAddress = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

const (
	requestTimeout = 10 * time.Second
	cacheTTL       = 60 * time.Second
	cacheSize      = 4096
)

// priceCeiling is 2^128; derived prices at or above it are rejected so
// the later uint256 conversion cannot truncate.
var priceCeiling = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 128))

// chainNames maps chain ids to the chain-name path segment the price API
// expects (/v1/usd_price/{chain}/{token} is keyed by name, not id).
var chainNames = map[uint64]string{
	1:     "ethereum",
	10:    "optimism",
	100:   "xdai",
	137:   "polygon",
	250:   "fantom",
	8453:  "base",
	42161: "arbitrum",
}

type cacheKey struct {
	chain string
	token common.Address
}

// Client fetches and caches eth-denominated token prices.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *expirable.LRU[cacheKey, *uint256.Int]
}

// NewClient builds a price oracle client against baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		cache:   expirable.NewLRU[cacheKey, *uint256.Int](cacheSize, nil, cacheTTL),
	}
}

type usdPriceResponse struct {
	Data struct {
		UsdPrice float64 `json:"usd_price"`
	} `json:"data"`
}

// EthPrice returns "wei of the native asset equivalent to 10^18 of token",
// using a 60-second TTL cache guarded by the expirable LRU's own locking.
func (c *Client) EthPrice(ctx context.Context, chainID uint64, token common.Address) (*uint256.Int, error) {
	chain, ok := chainNames[chainID]
	if !ok {
		return nil, &solvererr.ParseError{Cause: fmt.Sprintf("no price api chain name for chain id %d", chainID)}
	}

	key := cacheKey{chain: chain, token: token}
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	tokenUSD, err := c.usdPrice(ctx, chain, token)
	if err != nil {
		return nil, err
	}
	wethUSD, err := c.usdPrice(ctx, chain, WETHAddress)
	if err != nil {
		return nil, err
	}

	if tokenUSD <= 0 || !isFinite(tokenUSD) || wethUSD <= 0 || !isFinite(wethUSD) {
		return nil, &solvererr.ParseError{Cause: "non-finite or non-positive usd price"}
	}

	ratio := new(big.Float).Quo(big.NewFloat(tokenUSD), big.NewFloat(wethUSD))
	ethPrice := new(big.Float).Mul(ratio, new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)))

	if !ethPrice.IsInf() && ethPrice.Sign() <= 0 {
		return nil, &solvererr.ParseError{Cause: "non-positive eth price"}
	}
	if ethPrice.Cmp(priceCeiling) >= 0 {
		return nil, &solvererr.ParseError{Cause: "eth price exceeds 2^128 ceiling"}
	}

	intPrice, _ := ethPrice.Int(nil)
	result, overflow := uint256.FromBig(intPrice)
	if overflow {
		return nil, &solvererr.ParseError{Cause: "eth price overflows uint256"}
	}

	c.cache.Add(key, result)
	return result, nil
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func (c *Client) usdPrice(ctx context.Context, chain string, token common.Address) (float64, error) {
	reqURL := fmt.Sprintf("%sv1/usd_price/%s/%s", c.baseURL, chain, token.Hex())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, &solvererr.NetworkError{Op: "build request", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &solvererr.NetworkError{Op: "GET " + reqURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &solvererr.NetworkError{Op: "read body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &solvererr.ApiError{Status: resp.StatusCode, Body: string(body)}
	}

	var parsed usdPriceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, &solvererr.ParseError{Cause: fmt.Sprintf("decode usd_price: %v", err)}
	}
	return parsed.Data.UsdPrice, nil
}
