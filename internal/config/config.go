// Package config loads the solver's configuration from a JSON file with
// kebab-case keys. Unknown keys are rejected; optional keys fall back to
// defaults after decode.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultSlippageBps is the default slippage bound (1%).
const DefaultSlippageBps = 100

// DefaultMaxQuoteDeviationBps is the default oracle-vs-onchain tolerance (0.5%).
const DefaultMaxQuoteDeviationBps = 50

// SettlementOverhead is the fixed gas overhead CoW-style batch settlement
// attributes to each trade, used as the default solution-gas-offset.
const SettlementOverhead = 106391

// Config holds the solver's startup configuration.
type Config struct {
	ChainID              uint64
	LPTokens             []common.Address // empty => accept any sell token
	AllowedBuyTokens     []common.Address // empty => accept any buy token
	CurveAPIURL          string
	CurvePriceAPIURL     string
	NodeURL              string
	SlippageBps          uint32
	MaxQuoteDeviationBps uint32
	SolutionGasOffset    int64
	SettlementContract   common.Address
}

type rawConfig struct {
	ChainID              *uint64  `json:"chain-id"`
	LPTokens             []string `json:"lp-tokens"`
	AllowedBuyTokens     []string `json:"allowed-buy-tokens"`
	CurveAPIURL          *string  `json:"curve-api-url"`
	CurvePriceAPIURL     *string  `json:"curve-price-api-url"`
	NodeURL              *string  `json:"node-url"`
	SlippageBps          *uint32  `json:"slippage-bps"`
	MaxQuoteDeviationBps *uint32  `json:"max-quote-deviation-bps"`
	SolutionGasOffset    *int64   `json:"solution-gas-offset"`
	SettlementContract   *string  `json:"settlement-contract"`
}

// Load reads and validates a config file at path. Unknown keys are
// rejected. Startup config errors are meant to be fatal; see cmd/solve.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw rawConfig
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return fromRaw(raw)
}

func fromRaw(raw rawConfig) (*Config, error) {
	if raw.ChainID == nil {
		return nil, fmt.Errorf("config: chain-id is required")
	}
	if raw.CurveAPIURL == nil {
		return nil, fmt.Errorf("config: curve-api-url is required")
	}
	if raw.CurvePriceAPIURL == nil {
		return nil, fmt.Errorf("config: curve-price-api-url is required")
	}
	if raw.NodeURL == nil {
		return nil, fmt.Errorf("config: node-url is required")
	}
	if raw.SettlementContract == nil {
		return nil, fmt.Errorf("config: settlement-contract is required")
	}
	if !common.IsHexAddress(*raw.SettlementContract) {
		return nil, fmt.Errorf("config: settlement-contract is not a valid address: %s", *raw.SettlementContract)
	}

	lpTokens, err := parseAddresses("lp-tokens", raw.LPTokens)
	if err != nil {
		return nil, err
	}
	allowedBuyTokens, err := parseAddresses("allowed-buy-tokens", raw.AllowedBuyTokens)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ChainID:              *raw.ChainID,
		LPTokens:             lpTokens,
		AllowedBuyTokens:     allowedBuyTokens,
		CurveAPIURL:          *raw.CurveAPIURL,
		CurvePriceAPIURL:     *raw.CurvePriceAPIURL,
		NodeURL:              *raw.NodeURL,
		SlippageBps:          DefaultSlippageBps,
		MaxQuoteDeviationBps: DefaultMaxQuoteDeviationBps,
		SolutionGasOffset:    SettlementOverhead,
		SettlementContract:   common.HexToAddress(*raw.SettlementContract),
	}
	if raw.SlippageBps != nil {
		cfg.SlippageBps = *raw.SlippageBps
	}
	if raw.MaxQuoteDeviationBps != nil {
		cfg.MaxQuoteDeviationBps = *raw.MaxQuoteDeviationBps
	}
	if raw.SolutionGasOffset != nil {
		cfg.SolutionGasOffset = *raw.SolutionGasOffset
	}

	return cfg, nil
}

func parseAddresses(key string, raw []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(raw))
	for _, s := range raw {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("config: %s contains invalid address %q", key, s)
		}
		out = append(out, common.HexToAddress(s))
	}
	return out, nil
}
