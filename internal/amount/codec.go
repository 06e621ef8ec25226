// Package amount converts between 256-bit integer "wei" amounts and
// fixed-precision decimal strings, the way route and price oracles report
// them.
package amount

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// MaxDecimals is the largest decimals value the codec accepts. 10^77 still
// fits below the uint256 ceiling, 10^78 does not.
const MaxDecimals = 77

// ParseError reports a decimal string that could not be turned into a U256.
type ParseError struct {
	Input string
	Cause string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("amount: parse %q: %s", e.Input, e.Cause)
}

func pow10(d uint8) (*uint256.Int, error) {
	if d > MaxDecimals {
		return nil, fmt.Errorf("amount: decimals %d exceeds max %d", d, MaxDecimals)
	}
	result := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := uint8(0); i < d; i++ {
		var overflow bool
		result, overflow = result.MulOverflow(result, ten)
		if overflow {
			return nil, fmt.Errorf("amount: 10^%d overflows uint256", d)
		}
	}
	return result, nil
}

// Format renders amount as a decimal string with d fractional digits,
// trimming trailing zeros. format(0, 18) == "0"; format(10^18, 18) == "1".
func Format(value *uint256.Int, d uint8) (string, error) {
	div, err := pow10(d)
	if err != nil {
		return "", err
	}
	if d == 0 {
		return value.Dec(), nil
	}

	whole := new(uint256.Int)
	rem := new(uint256.Int)
	whole.DivMod(value, div, rem)

	if rem.IsZero() {
		return whole.Dec(), nil
	}

	remStr := rem.Dec()
	padded := strings.Repeat("0", int(d)-len(remStr)) + remStr
	trimmed := strings.TrimRight(padded, "0")
	return whole.Dec() + "." + trimmed, nil
}

// Parse inverts Format. The fractional part is truncated (never rounded) to
// d digits when longer, and zero-padded when shorter. parse(format(x,d),d)
// == x for every x and d.
func Parse(s string, d uint8) (*uint256.Int, error) {
	div, err := pow10(d)
	if err != nil {
		return nil, &ParseError{Input: s, Cause: err.Error()}
	}

	wholeStr, fracStr, hasFrac := strings.Cut(s, ".")
	if wholeStr == "" {
		return nil, &ParseError{Input: s, Cause: "empty whole part"}
	}

	whole, err := parseDigits(wholeStr)
	if err != nil {
		return nil, &ParseError{Input: s, Cause: err.Error()}
	}

	result, overflow := new(uint256.Int).MulOverflow(whole, div)
	if overflow {
		return nil, &ParseError{Input: s, Cause: "whole part overflows uint256"}
	}

	if !hasFrac {
		return result, nil
	}

	if d == 0 {
		return result, nil
	}

	if len(fracStr) > int(d) {
		fracStr = fracStr[:d]
	} else if len(fracStr) < int(d) {
		fracStr = fracStr + strings.Repeat("0", int(d)-len(fracStr))
	}

	fracVal, err := parseDigits(fracStr)
	if err != nil {
		return nil, &ParseError{Input: s, Cause: err.Error()}
	}

	sum, overflow := new(uint256.Int).AddOverflow(result, fracVal)
	if overflow {
		return nil, &ParseError{Input: s, Cause: "sum overflows uint256"}
	}
	return sum, nil
}

func parseDigits(s string) (*uint256.Int, error) {
	if s == "" {
		return uint256.NewInt(0), nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("non-digit character %q", r)
		}
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, nil
}
