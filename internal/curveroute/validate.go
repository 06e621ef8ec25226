package curveroute

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/relaydex/curve-lp-solver/internal/solvererr"
)

func isZeroRow(row [5]uint64) bool {
	for _, v := range row {
		if v != 0 {
			return false
		}
	}
	return true
}

// Validate checks the route shape invariants for a route requested for
// sellToken -> buyToken: starts at the sell token, has at least one hop,
// ends at the buy token, and every hop names a pool.
func Validate(r *Route, sellToken, buyToken common.Address) error {
	if r.Path[0] != sellToken {
		return &solvererr.InvalidRouteError{Detail: "route starts with a different token than requested sell token"}
	}
	if isZeroRow(r.SwapParams[0]) {
		return &solvererr.InvalidRouteError{Detail: "no hops: swap_params[0] is all-zero"}
	}
	if r.BuyToken() != buyToken {
		return &solvererr.InvalidRouteError{Detail: "route ends with a different token than requested buy token"}
	}
	for i := 0; i < NumHops; i++ {
		if isZeroRow(r.SwapParams[i]) {
			continue
		}
		poolIdx := 2*i + 1
		if poolIdx >= len(r.Path) {
			continue
		}
		if r.Path[poolIdx] == zeroAddress {
			return &solvererr.InvalidRouteError{Detail: "hop has non-zero swap_params but zero pool address"}
		}
	}
	return nil
}
