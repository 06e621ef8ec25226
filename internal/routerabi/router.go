// Package routerabi produces call-data for the Curve router's get_dy (view)
// and exchange (state-changing) entrypoints, and decodes get_dy's return
// value.
package routerabi

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/relaydex/curve-lp-solver/internal/curveroute"
	"github.com/relaydex/curve-lp-solver/internal/solvererr"
)

// RouterAddress is the fixed mainnet v1.2 Curve router address.
var RouterAddress = common.HexToAddress("0x45312ea0eFf7E09C83CBE249fa1d7598c4C8cd4e")

const routerABIJSON = `[
	{
		"name": "get_dy",
		"inputs": [
			{"name": "_route", "type": "address[11]"},
			{"name": "_swap_params", "type": "uint256[5][5]"},
			{"name": "_amount", "type": "uint256"},
			{"name": "_pools", "type": "address[5]"}
		],
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"name": "exchange",
		"inputs": [
			{"name": "_route", "type": "address[11]"},
			{"name": "_swap_params", "type": "uint256[5][5]"},
			{"name": "_amount", "type": "uint256"},
			{"name": "_min_dy", "type": "uint256"},
			{"name": "_pools", "type": "address[5]"},
			{"name": "_receiver", "type": "address"}
		],
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "payable",
		"type": "function"
	}
]`

var parsedABI abi.ABI

func init() {
	var err error
	parsedABI, err = abi.JSON(strings.NewReader(routerABIJSON))
	if err != nil {
		panic(fmt.Sprintf("routerabi: parse ABI: %v", err))
	}
}

func widenSwapParams(route *curveroute.Route) [5][5]*big.Int {
	var out [5][5]*big.Int
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			out[i][j] = new(big.Int).SetUint64(route.SwapParams[i][j])
		}
	}
	return out
}

// EncodeGetDy packs calldata for the get_dy view call.
func EncodeGetDy(route *curveroute.Route, amountIn *uint256.Int) ([]byte, error) {
	calldata, err := parsedABI.Pack("get_dy", route.Path, widenSwapParams(route), amountIn.ToBig(), route.Pools)
	if err != nil {
		return nil, fmt.Errorf("routerabi: pack get_dy: %w", err)
	}
	return calldata, nil
}

// EncodeExchange packs calldata for the state-changing exchange entrypoint.
func EncodeExchange(route *curveroute.Route, amountIn, minOut *uint256.Int, receiver common.Address) ([]byte, error) {
	calldata, err := parsedABI.Pack(
		"exchange",
		route.Path,
		widenSwapParams(route),
		amountIn.ToBig(),
		minOut.ToBig(),
		route.Pools,
		receiver,
	)
	if err != nil {
		return nil, fmt.Errorf("routerabi: pack exchange: %w", err)
	}
	return calldata, nil
}

// DecodeGetDy decodes the uint256 return value of get_dy.
func DecodeGetDy(data []byte) (*uint256.Int, error) {
	unpacked, err := parsedABI.Unpack("get_dy", data)
	if err != nil {
		return nil, &solvererr.OnchainVerificationError{Err: fmt.Errorf("unpack get_dy: %w", err)}
	}
	if len(unpacked) != 1 {
		return nil, &solvererr.OnchainVerificationError{Err: fmt.Errorf("unexpected get_dy return arity %d", len(unpacked))}
	}
	raw, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, &solvererr.OnchainVerificationError{Err: fmt.Errorf("get_dy return not a uint256")}
	}
	out, overflow := uint256.FromBig(raw)
	if overflow {
		return nil, &solvererr.OnchainVerificationError{Err: fmt.Errorf("get_dy return overflows uint256")}
	}
	return out, nil
}
