// Auction JSON decoding. The envelope is dictated by the surrounding
// auction framework: tokens keyed by checksummed address with
// referencePrice/decimals, orders with uid/sellToken/sellAmount/buyToken/
// buyAmount/kind/class, effectiveGasPrice, deadline as RFC-3339, and
// surplusCapturingJitOrderOwners.
package auction

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/relaydex/curve-lp-solver/internal/domain"
)

type tokenJSON struct {
	Decimals         uint8   `json:"decimals"`
	Symbol           string  `json:"symbol"`
	ReferencePrice   *string `json:"referencePrice"`
	AvailableBalance string  `json:"availableBalance"`
	Trusted          bool    `json:"trusted"`
}

type orderJSON struct {
	UID                 string `json:"uid"`
	SellToken           string `json:"sellToken"`
	BuyToken            string `json:"buyToken"`
	SellAmount          string `json:"sellAmount"`
	BuyAmount           string `json:"buyAmount"`
	Kind                string `json:"kind"`
	Class               string `json:"class"`
	PartiallyFillable   bool   `json:"partiallyFillable"`
	SellTokenSource     string `json:"sellTokenSource"`
	BuyTokenDestination string `json:"buyTokenDestination"`
}

// Envelope is the top-level auction request decoded from JSON.
type Envelope struct {
	ID                             string               `json:"id"`
	Tokens                         map[string]tokenJSON `json:"tokens"`
	Orders                         []orderJSON          `json:"orders"`
	Liquidity                      []json.RawMessage    `json:"liquidity"`
	EffectiveGasPrice              string               `json:"effectiveGasPrice"`
	Deadline                       string               `json:"deadline"`
	SurplusCapturingJitOrderOwners []string             `json:"surplusCapturingJitOrderOwners"`
}

// DecodeEnvelope unmarshals raw auction JSON into an Envelope.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("auction: decode envelope: %w", err)
	}
	return &env, nil
}

// ToDomain converts the decoded envelope into the domain.Auction the solve
// pipeline operates on. Only sell-kind orders are meaningful downstream,
// but "buy" kind orders are still decoded so the eligibility gate can
// observe and reject them.
func (env *Envelope) ToDomain() (*domain.Auction, error) {
	tokens := make(map[common.Address]domain.TokenInfo, len(env.Tokens))
	for addrStr, t := range env.Tokens {
		if !common.IsHexAddress(addrStr) {
			return nil, fmt.Errorf("auction: invalid token address %q", addrStr)
		}
		info := domain.TokenInfo{Decimals: t.Decimals}
		if t.ReferencePrice != nil {
			price, err := uint256.FromDecimal(*t.ReferencePrice)
			if err != nil {
				return nil, fmt.Errorf("auction: token %s referencePrice: %w", addrStr, err)
			}
			info.ReferencePrice = price
		}
		tokens[common.HexToAddress(addrStr)] = info
	}

	orders := make([]*domain.Order, 0, len(env.Orders))
	for _, o := range env.Orders {
		if !common.IsHexAddress(o.SellToken) {
			return nil, fmt.Errorf("auction: order %s: invalid sellToken", o.UID)
		}
		if !common.IsHexAddress(o.BuyToken) {
			return nil, fmt.Errorf("auction: order %s: invalid buyToken", o.UID)
		}
		sellAmount, err := uint256.FromDecimal(o.SellAmount)
		if err != nil {
			return nil, fmt.Errorf("auction: order %s: sellAmount: %w", o.UID, err)
		}
		buyAmount, err := uint256.FromDecimal(o.BuyAmount)
		if err != nil {
			return nil, fmt.Errorf("auction: order %s: buyAmount: %w", o.UID, err)
		}

		side := domain.Buy
		if o.Kind == "sell" {
			side = domain.Sell
		}

		orders = append(orders, &domain.Order{
			UID:  o.UID,
			Side: side,
			Sell: domain.AssetAmount{Token: common.HexToAddress(o.SellToken), Amount: sellAmount},
			Buy:  domain.AssetAmount{Token: common.HexToAddress(o.BuyToken), Amount: buyAmount},
			Wrappers: map[string]any{
				"class":               o.Class,
				"partiallyFillable":   o.PartiallyFillable,
				"sellTokenSource":     o.SellTokenSource,
				"buyTokenDestination": o.BuyTokenDestination,
			},
		})
	}

	gasPrice, err := uint256.FromDecimal(env.EffectiveGasPrice)
	if err != nil {
		return nil, fmt.Errorf("auction: effectiveGasPrice: %w", err)
	}

	deadline, err := time.Parse(time.RFC3339, env.Deadline)
	if err != nil {
		return nil, fmt.Errorf("auction: deadline: %w", err)
	}

	return &domain.Auction{
		Orders:   orders,
		Tokens:   tokens,
		GasPrice: gasPrice,
		Deadline: deadline,
	}, nil
}

// solutionJSON is the wire shape for one emitted Solution.
type solutionJSON struct {
	ID               uint64            `json:"id"`
	Kind             string            `json:"kind"`
	Inputs           []assetJSON       `json:"inputs"`
	Outputs          []assetJSON       `json:"outputs"`
	Gas              uint64            `json:"gas"`
	Fee              string            `json:"fee,omitempty"`
	PreInteractions  []any             `json:"preInteractions"`
	Interactions     []interactionJSON `json:"interactions"`
	PostInteractions []any             `json:"postInteractions"`
}

type assetJSON struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

type interactionJSON struct {
	Kind        string          `json:"kind"`
	Target      string          `json:"target"`
	Value       string          `json:"value"`
	CallData    string          `json:"callData"`
	Allowances  []allowanceJSON `json:"allowances"`
	Inputs      []assetJSON     `json:"inputs"`
	Outputs     []assetJSON     `json:"outputs"`
	Internalize bool            `json:"internalize"`
}

type allowanceJSON struct {
	Spender string `json:"spender"`
	Token   string `json:"token"`
	Amount  string `json:"amount"`
}

// EncodeSolutions marshals the driver's output into the `{solutions: [...]}`
// response shape.
func EncodeSolutions(sols []*domain.Solution) ([]byte, error) {
	out := make([]solutionJSON, 0, len(sols))
	for _, sol := range sols {
		ix := sol.Interaction

		allowances := make([]allowanceJSON, 0, len(ix.Allowances))
		for _, a := range ix.Allowances {
			allowances = append(allowances, allowanceJSON{
				Spender: a.Spender.Hex(),
				Token:   a.Token.Hex(),
				Amount:  a.Amount.Dec(),
			})
		}
		inputs := make([]assetJSON, 0, len(ix.Inputs))
		for _, a := range ix.Inputs {
			inputs = append(inputs, assetJSON{Token: a.Token.Hex(), Amount: a.Amount.Dec()})
		}
		outputs := make([]assetJSON, 0, len(ix.Outputs))
		for _, a := range ix.Outputs {
			outputs = append(outputs, assetJSON{Token: a.Token.Hex(), Amount: a.Amount.Dec()})
		}

		out = append(out, solutionJSON{
			ID:      sol.ID,
			Kind:    "swap",
			Inputs:  inputs,
			Outputs: outputs,
			Gas:     sol.Gas,
			Fee:     sol.Fee.Dec(),
			PreInteractions: []any{},
			Interactions: []interactionJSON{{
				Kind:        "custom",
				Target:      ix.Target.Hex(),
				Value:       ix.Value.Dec(),
				CallData:    "0x" + fmt.Sprintf("%x", ix.Calldata),
				Allowances:  allowances,
				Inputs:      inputs,
				Outputs:     outputs,
				Internalize: ix.Internalize,
			}},
			PostInteractions: []any{},
		})
	}

	return json.Marshal(struct {
		Solutions []solutionJSON `json:"solutions"`
	}{Solutions: out})
}
