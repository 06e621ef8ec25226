// Package interaction packages a route, amounts, and a receiver into a
// settlement-layer directive with allowances and asset flows. The builder
// is pure; any error comes only from the upstream ABI encoder.
package interaction

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/relaydex/curve-lp-solver/internal/curveroute"
	"github.com/relaydex/curve-lp-solver/internal/routerabi"
)

// Asset pairs a token with an amount, used for interaction inputs/outputs.
type Asset struct {
	Token  common.Address
	Amount *uint256.Int
}

// Allowance authorizes spender to pull amount of token.
type Allowance struct {
	Spender common.Address
	Token   common.Address
	Amount  *uint256.Int
}

// Interaction is the settlement-layer directive executed on-chain.
type Interaction struct {
	Target      common.Address
	Value       *uint256.Int
	Calldata    []byte
	Inputs      []Asset
	Outputs     []Asset
	Allowances  []Allowance
	Internalize bool
}

// BuildExchange packages (route, sell_token, sell_amount, buy_token,
// min_output, receiver) into an Interaction calling the router's exchange
// entrypoint.
func BuildExchange(
	route *curveroute.Route,
	sellToken common.Address,
	sellAmount *uint256.Int,
	buyToken common.Address,
	minOutput *uint256.Int,
	receiver common.Address,
) (*Interaction, error) {
	calldata, err := routerabi.EncodeExchange(route, sellAmount, minOutput, receiver)
	if err != nil {
		return nil, err
	}

	return &Interaction{
		Target:   routerabi.RouterAddress,
		Value:    uint256.NewInt(0),
		Calldata: calldata,
		Inputs: []Asset{
			{Token: sellToken, Amount: sellAmount},
		},
		Outputs: []Asset{
			{Token: buyToken, Amount: minOutput},
		},
		Allowances: []Allowance{
			{Spender: routerabi.RouterAddress, Token: sellToken, Amount: sellAmount},
		},
		Internalize: false,
	}, nil
}
