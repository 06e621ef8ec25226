// Package domain holds the auction/order/solution data model shared across
// the solve pipeline, the auction driver, and their callers.
package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/relaydex/curve-lp-solver/internal/interaction"
)

// OrderSide distinguishes sell orders (the only kind this solver handles)
// from buy orders.
type OrderSide int

const (
	Sell OrderSide = iota
	Buy
)

// AssetAmount pairs a token with an amount, used for both sides of an Order.
type AssetAmount struct {
	Token  common.Address
	Amount *uint256.Int
}

// Order is one row of the auction's order book. Wrappers carries any
// opaque order metadata the outer auction framework attaches that this
// solver does not interpret.
type Order struct {
	UID      string
	Side     OrderSide
	Sell     AssetAmount
	Buy      AssetAmount
	Wrappers map[string]any
}

// TokenInfo describes a token as known to the auction: its decimals and,
// optionally, a reference price the solver should prefer over the price
// oracle fallback.
type TokenInfo struct {
	ReferencePrice *uint256.Int // nil if absent
	Decimals       uint8
}

// Auction is the batch of orders this solver attempts, in the order they
// must be processed.
type Auction struct {
	Orders   []*Order
	Tokens   map[common.Address]TokenInfo
	GasPrice *uint256.Int
	Deadline time.Time
}

// Solution is a settlement proposal for one order: the originating order,
// the interaction directive, a gas estimate, a fee in sell-token units, and
// a monotonic id scoped to the auction.
type Solution struct {
	ID          uint64
	Order       *Order
	Interaction *interaction.Interaction
	Gas         uint64
	Fee         *uint256.Int
}
