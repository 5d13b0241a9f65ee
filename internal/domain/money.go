package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents is a euro amount in minor units. Penalty amounts are always fixed-point;
// binary floats never enter the ledger.
type Cents int64

// String renders the amount as "12.50".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Euro renders the amount with the currency symbol, e.g. "12.50 €".
func (c Cents) Euro() string {
	return c.String() + " €"
}

// ParseCents reads operator input such as "5", "2.50", "2,50" or "5 €".
// At most two decimal places are accepted.
func ParseCents(raw string) (Cents, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	euros, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	var cents int64
	if frac != "" {
		if len(frac) > 2 {
			return 0, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, raw)
		}
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
		}
	}

	total := euros*100 + cents
	if neg {
		total = -total
	}
	return Cents(total), nil
}
