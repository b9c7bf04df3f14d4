package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxPriceScale bounds the number of decimal places a tick may carry
const MaxPriceScale = 12

// ParsePrice converts a decimal string into integer ticks at the given scale.
// Values with more decimal places than the scale are rejected rather than rounded.
func ParsePrice(s string, scale int32) (int64, error) {
	if scale < 0 || scale > MaxPriceScale {
		return 0, fmt.Errorf("price scale %d out of range [0,%d]", scale, MaxPriceScale)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	shifted := d.Shift(scale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("price %q has more than %d decimal places", s, scale)
	}
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("price %q overflows tick range", s)
	}
	return shifted.IntPart(), nil
}

// FormatPrice renders ticks as a decimal string with exactly scale decimal places
func FormatPrice(ticks int64, scale int32) string {
	return decimal.New(ticks, -scale).StringFixed(scale)
}
