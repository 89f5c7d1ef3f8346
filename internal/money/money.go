package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in the venue currency, held as whole cents.
// All billing arithmetic happens in integer cents so repeated charges
// never accumulate floating-point drift. Rounding policy: half away
// from zero at cent precision.
type Money int64

// ErrInvalidAmount is returned when an amount string cannot be parsed.
var ErrInvalidAmount = errors.New("money: invalid amount")

// FromUnits builds a Money from whole currency units.
func FromUnits(units int64) Money {
	return Money(units * 100)
}

// Parse reads a decimal amount with at most two fraction digits.
func Parse(value string) (Money, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrInvalidAmount
	}
	negative := false
	if strings.HasPrefix(value, "-") {
		negative = true
		value = value[1:]
		if value == "" {
			return 0, ErrInvalidAmount
		}
	}
	wholePart, fracPart, hasFrac := strings.Cut(value, ".")
	if wholePart == "" {
		wholePart = "0"
	}
	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	var frac int64
	if hasFrac {
		if len(fracPart) == 0 || len(fracPart) > 2 {
			return 0, ErrInvalidAmount
		}
		frac, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil || frac < 0 {
			return 0, ErrInvalidAmount
		}
		if len(fracPart) == 1 {
			frac *= 10
		}
	}
	cents := whole*100 + frac
	if negative {
		cents = -cents
	}
	return Money(cents), nil
}

// MulQuantity multiplies a unit price by an item quantity.
func (m Money) MulQuantity(quantity int) Money {
	return m * Money(quantity)
}

// Cents returns the raw cent count.
func (m Money) Cents() int64 { return int64(m) }

// String renders the amount with two decimals, e.g. "9300.00".
func (m Money) String() string {
	cents := int64(m)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON emits the amount as a plain JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	parsed, err := Parse(text)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UnmarshalYAML accepts a decimal scalar from config files.
func (m *Money) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		var number float64
		if err := unmarshal(&number); err != nil {
			return err
		}
		raw = strconv.FormatFloat(number, 'f', 2, 64)
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ScaleRoundHalfUp computes value*numerator/denominator in integer cents,
// rounding half away from zero. Used for the duration-based charge.
func ScaleRoundHalfUp(value Money, numerator, denominator int64) Money {
	if denominator == 0 {
		return 0
	}
	product := int64(value) * numerator
	half := denominator / 2
	if product < 0 {
		return Money((product - half) / denominator)
	}
	return Money((product + half) / denominator)
}
