package x402

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// USDCDecimals is the number of decimal places of USDC on every supported network.
const USDCDecimals = 6

// ParseMoney converts a price into USDC base units.
//
// Strings are dollar amounts: an optional leading "$" is stripped and the rest is
// parsed as a decimal number, scaled by 10^6 and truncated toward zero, so
// "$0.01" becomes 10000 and "0.0000019" becomes 1.
// Integers (any Go integer kind, *big.Int or an integral decimal.Decimal) are
// already base units and pass through unchanged. Floats are accepted only when
// they hold an integral value. Negative amounts are rejected.
func ParseMoney(amount interface{}) (*big.Int, error) {
	switch v := amount.(type) {
	case string:
		return parseDollars(v)
	case int:
		return nonNegative(big.NewInt(int64(v)), amount)
	case int8:
		return nonNegative(big.NewInt(int64(v)), amount)
	case int16:
		return nonNegative(big.NewInt(int64(v)), amount)
	case int32:
		return nonNegative(big.NewInt(int64(v)), amount)
	case int64:
		return nonNegative(big.NewInt(v), amount)
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("%w: nil", ErrInvalidAmount)
		}
		return nonNegative(new(big.Int).Set(v), amount)
	case big.Int:
		return nonNegative(new(big.Int).Set(&v), amount)
	case decimal.Decimal:
		return integralDecimal(v, amount)
	case float32:
		if !isFinite(float64(v)) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, v)
		}
		return integralDecimal(decimal.NewFromFloat32(v), amount)
	case float64:
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, v)
		}
		return integralDecimal(decimal.NewFromFloat(v), amount)
	case nil:
		return nil, fmt.Errorf("%w: missing", ErrInvalidAmount)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, amount)
	}
}

// FormatMoney renders base units as a dollar amount without the "$" sign.
func FormatMoney(baseUnits *big.Int) string {
	if baseUnits == nil {
		return "0"
	}
	return decimal.NewFromBigInt(baseUnits, -USDCDecimals).String()
}

func parseDollars(raw string) (*big.Int, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return nil, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, raw)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, raw)
	}

	return d.Shift(USDCDecimals).Truncate(0).BigInt(), nil
}

func integralDecimal(d decimal.Decimal, original interface{}) (*big.Int, error) {
	if !d.Equal(d.Truncate(0)) {
		return nil, fmt.Errorf("%w: %v is not a whole number of base units", ErrInvalidAmount, original)
	}
	return nonNegative(d.BigInt(), original)
}

func nonNegative(n *big.Int, original interface{}) (*big.Int, error) {
	if n.Sign() < 0 {
		return nil, fmt.Errorf("%w: %v is negative", ErrInvalidAmount, original)
	}
	return n, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
