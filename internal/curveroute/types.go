// Package curveroute fetches and normalizes a canonical route descriptor
// from the HTTP route oracle, and defines the Route type the rest of the
// solve pipeline consumes.
package curveroute

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// NumHops is the number of hops the router's fixed-shape ABI supports.
const NumHops = 5

// Route is the router-call descriptor; its shape is mandated by the router
// contract and must never be trimmed, even when fewer than 5 hops are used.
type Route struct {
	// Path lays out [tok0, pool0, tok1, pool1, tok2, pool2, tok3, pool3,
	// tok4, pool4, tok5]. Trailing unused slots are the zero address.
	Path [2*NumHops + 1]common.Address

	// SwapParams[i] = [in_index, out_index, swap_type, pool_type, n_coins]
	// for hop i. An all-zero row marks "no hop".
	SwapParams [NumHops][5]uint64

	// Pools[i] is used only for hops whose swap_type == 3 (zap swaps).
	Pools [NumHops]common.Address

	// ExpectedOutput is the oracle's predicted output, buy-token units.
	ExpectedOutput *uint256.Int
}

var zeroAddress common.Address

// SellToken returns path[0], the requested sell token per invariant 1.
func (r *Route) SellToken() common.Address {
	return r.Path[0]
}

// BuyToken returns the last non-zero address in Path, per invariant 3.
func (r *Route) BuyToken() common.Address {
	for i := len(r.Path) - 1; i >= 0; i-- {
		if r.Path[i] != zeroAddress {
			return r.Path[i]
		}
	}
	return zeroAddress
}
