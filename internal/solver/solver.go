// Package solver runs the per-order solve pipeline: eligibility -> oracle
// -> on-chain check -> slippage -> fee -> emit.
package solver

import (
	"context"
	"log"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/relaydex/curve-lp-solver/internal/curveroute"
	"github.com/relaydex/curve-lp-solver/internal/domain"
	"github.com/relaydex/curve-lp-solver/internal/eth"
	"github.com/relaydex/curve-lp-solver/internal/interaction"
	"github.com/relaydex/curve-lp-solver/internal/priceapi"
	"github.com/relaydex/curve-lp-solver/internal/routerabi"
	"github.com/relaydex/curve-lp-solver/internal/solvererr"
)

// baseGasEstimate is the fixed gas estimate before the configured offset.
const baseGasEstimate = 350_000

// Config is the subset of the startup configuration the per-order
// pipeline needs.
type Config struct {
	ChainID              uint64
	LPTokens             []common.Address
	AllowedBuyTokens     []common.Address
	SlippageBps          uint32
	MaxQuoteDeviationBps uint32
	SolutionGasOffset    int64
	SettlementContract   common.Address
}

// Deps bundles the external collaborators the pipeline calls out to.
type Deps struct {
	Route *curveroute.Client
	Eth   *eth.Client
	Price *priceapi.Client
}

func containsAddress(set []common.Address, addr common.Address) bool {
	for _, a := range set {
		if a == addr {
			return true
		}
	}
	return false
}

// Eligible reports whether an order should be solved at all: sell side
// only, and both tokens pass their whitelists (an empty whitelist accepts
// any token).
func Eligible(order *domain.Order, cfg Config) bool {
	if order.Side != domain.Sell {
		return false
	}
	if len(cfg.LPTokens) > 0 && !containsAddress(cfg.LPTokens, order.Sell.Token) {
		return false
	}
	if len(cfg.AllowedBuyTokens) > 0 && !containsAddress(cfg.AllowedBuyTokens, order.Buy.Token) {
		return false
	}
	return true
}

// DeviationBps computes the symmetric deviation in basis points between two
// quotes, saturating at math.MaxUint32. Either side zero means infinity.
func DeviationBps(a, b *uint256.Int) uint32 {
	if a.IsZero() || b.IsZero() {
		return math.MaxUint32
	}

	hi, lo := a, b
	if lo.Cmp(hi) > 0 {
		hi, lo = lo, hi
	}

	diff := new(uint256.Int).Sub(hi, lo)
	scaled, overflow := new(uint256.Int).MulOverflow(diff, uint256.NewInt(10_000))
	if overflow {
		return math.MaxUint32
	}
	bps := new(uint256.Int).Div(scaled, lo)
	if !bps.IsUint64() || bps.Uint64() > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(bps.Uint64())
}

// ApplySlippage computes min_out = onChainOut * (10000 - slippageBps) /
// 10000, integer division truncating, saturating multiplication.
// slippage_bps1 <= slippage_bps2 => ApplySlippage(x,s1) >= ApplySlippage(x,s2).
func ApplySlippage(onChainOut *uint256.Int, slippageBps uint32) *uint256.Int {
	if slippageBps > 10_000 {
		slippageBps = 10_000
	}
	factor := uint256.NewInt(uint64(10_000 - slippageBps))
	scaled, overflow := new(uint256.Int).MulOverflow(onChainOut, factor)
	if overflow {
		scaled = new(uint256.Int).SetAllOne()
	}
	return new(uint256.Int).Div(scaled, uint256.NewInt(10_000))
}

// SolveOrder runs the full pipeline for one order, returning a Solution or
// a typed error from solvererr. Errors are local to the order: the caller
// logs and drops it, never retries, never aborts the auction.
func SolveOrder(ctx context.Context, auction *domain.Auction, order *domain.Order, index uint64, cfg Config, deps Deps) (*domain.Solution, error) {
	route, err := deps.Route.Fetch(
		ctx,
		cfg.ChainID,
		order.Sell.Token,
		order.Buy.Token,
		order.Sell.Amount,
		decimalsOf(auction, order.Sell.Token),
		decimalsOf(auction, order.Buy.Token),
	)
	if err != nil {
		return nil, err
	}

	onChainOut, err := verifyOnChain(ctx, deps.Eth, route, order.Sell.Amount)
	if err != nil {
		return nil, err
	}

	deviation := DeviationBps(route.ExpectedOutput, onChainOut)
	if deviation > cfg.MaxQuoteDeviationBps {
		return nil, &solvererr.QuoteDeviationError{DeviationBps: deviation, MaxBps: cfg.MaxQuoteDeviationBps}
	}

	minOut := ApplySlippage(onChainOut, cfg.SlippageBps)
	if minOut.Cmp(order.Buy.Amount) < 0 {
		return nil, &solvererr.InsufficientOutputError{MinOut: minOut.Dec(), Limit: order.Buy.Amount.Dec()}
	}

	gas, fee, err := estimateFee(ctx, auction, order, cfg, deps)
	if err != nil {
		return nil, err
	}

	ix, err := interaction.BuildExchange(route, order.Sell.Token, order.Sell.Amount, order.Buy.Token, minOut, cfg.SettlementContract)
	if err != nil {
		return nil, &solvererr.SolutionConstructionError{Detail: err.Error()}
	}

	return &domain.Solution{
		ID:          index,
		Order:       order,
		Interaction: ix,
		Gas:         gas,
		Fee:         fee,
	}, nil
}

func decimalsOf(auction *domain.Auction, token common.Address) uint8 {
	if info, ok := auction.Tokens[token]; ok {
		return info.Decimals
	}
	return 18
}

func verifyOnChain(ctx context.Context, client *eth.Client, route *curveroute.Route, amountIn *uint256.Int) (*uint256.Int, error) {
	calldata, err := routerabi.EncodeGetDy(route, amountIn)
	if err != nil {
		return nil, &solvererr.OnchainVerificationError{Err: err}
	}
	result, err := client.CallContract(ctx, routerabi.RouterAddress, calldata)
	if err != nil {
		return nil, &solvererr.OnchainVerificationError{Err: err}
	}
	return routerabi.DecodeGetDy(result)
}

// estimateFee computes the fixed gas estimate, the gas cost in wei,
// resolves a sell-token price (auction reference price, then the price
// oracle), and converts the gas cost into sell-token units.
func estimateFee(ctx context.Context, auction *domain.Auction, order *domain.Order, cfg Config, deps Deps) (uint64, *uint256.Int, error) {
	estimatedGas := baseGasEstimate + cfg.SolutionGasOffset
	if estimatedGas < 0 {
		estimatedGas = 0
	}
	gasUint := uint256.NewInt(uint64(estimatedGas))

	gasCostWei, overflow := new(uint256.Int).MulOverflow(gasUint, auction.GasPrice)
	if overflow {
		gasCostWei = new(uint256.Int).SetAllOne()
	}

	price, err := resolveSellTokenPrice(ctx, auction, order, cfg, deps)
	if err != nil {
		return 0, nil, err
	}
	if price.IsZero() {
		return 0, nil, &solvererr.FeeCalculationError{Detail: "sell token price is zero"}
	}

	fee, err := etherValue(gasCostWei, price)
	if err != nil {
		return 0, nil, &solvererr.FeeCalculationError{Detail: err.Error()}
	}

	return uint64(estimatedGas), fee, nil
}

func resolveSellTokenPrice(ctx context.Context, auction *domain.Auction, order *domain.Order, cfg Config, deps Deps) (*uint256.Int, error) {
	if info, ok := auction.Tokens[order.Sell.Token]; ok && info.ReferencePrice != nil {
		return info.ReferencePrice, nil
	}
	price, err := deps.Price.EthPrice(ctx, cfg.ChainID, order.Sell.Token)
	if err != nil {
		return nil, &solvererr.NoPriceForSellTokenError{Token: order.Sell.Token.Hex()}
	}
	return price, nil
}

// etherValue converts weiAmount (denominated in native asset) into units of
// a token whose ether_value price is "wei of native asset per 10^18 of
// token": result = weiAmount * 10^18 / price.
func etherValue(weiAmount, price *uint256.Int) (*uint256.Int, error) {
	oneEther := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	oneEtherU256, overflow := uint256.FromBig(oneEther)
	if overflow {
		return nil, errOneEtherOverflow
	}

	scaled, overflow := new(uint256.Int).MulOverflow(weiAmount, oneEtherU256)
	if overflow {
		scaled = new(uint256.Int).SetAllOne()
	}
	return new(uint256.Int).Div(scaled, price), nil
}

var errOneEtherOverflow = errConst("solver: 10^18 overflows uint256")

type errConst string

func (e errConst) Error() string { return string(e) }

// LogDropped logs an order being dropped from the output.
func LogDropped(order *domain.Order, err error) {
	log.Printf("solver: order %s skipped: %v", order.UID, err)
}
