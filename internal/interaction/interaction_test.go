package interaction

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/relaydex/curve-lp-solver/internal/curveroute"
	"github.com/relaydex/curve-lp-solver/internal/routerabi"
)

func repeatAddress(b byte) common.Address {
	var a common.Address
	for i := range a {
		a[i] = b
	}
	return a
}

// Even a zero-filled route yields the fixed directive shape: one input,
// one output, one allowance, the router as both target and spender.
func TestBuildExchangeShape(t *testing.T) {
	sellToken := repeatAddress(1)
	buyToken := repeatAddress(2)
	receiver := repeatAddress(3)

	route := &curveroute.Route{ExpectedOutput: uint256.NewInt(1000)}
	route.Path[0] = sellToken

	ix, err := BuildExchange(route, sellToken, uint256.NewInt(1000), buyToken, uint256.NewInt(990), receiver)
	if err != nil {
		t.Fatalf("BuildExchange: %v", err)
	}

	if ix.Target != routerabi.RouterAddress {
		t.Errorf("target = %s, want %s", ix.Target, routerabi.RouterAddress)
	}
	if len(ix.Inputs) != 1 || ix.Inputs[0].Token != sellToken {
		t.Errorf("inputs = %+v, want single sell_token entry", ix.Inputs)
	}
	if len(ix.Outputs) != 1 || ix.Outputs[0].Token != buyToken {
		t.Errorf("outputs = %+v, want single buy_token entry", ix.Outputs)
	}
	if len(ix.Allowances) != 1 || ix.Allowances[0].Spender != routerabi.RouterAddress {
		t.Errorf("allowances = %+v, want single router-spender entry", ix.Allowances)
	}
	if ix.Internalize {
		t.Error("internalize should be false")
	}
}
