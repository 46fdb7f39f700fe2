package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reThousandsComma = regexp.MustCompile(`^[+-]?\d{1,3}(?:,\d{3})+$`)
	reNumber         = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?$`)
)

// ParseQuantity converts a quantity cell into an exact decimal. Blank cells
// count as zero. A lone dot is always the decimal point, so "2.125" stays
// 2.125; a dot counts as a thousands separator only next to a decimal comma
// ("1.234,75"). Accounting style "(3)" is read as -3.
func ParseQuantity(input string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.NewReplacer("\u00A0", "", "\u202F", "", " ", "").Replace(input))
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	norm := normalizeNumericToken(s)
	if !reNumber.MatchString(norm) {
		return decimal.Zero, fmt.Errorf("not a number: %q", input)
	}
	return decimal.NewFromString(norm)
}

func normalizeNumericToken(token string) string {
	if reThousandsComma.MatchString(token) {
		return strings.ReplaceAll(token, ",", "")
	}
	comma := strings.LastIndex(token, ",")
	dot := strings.LastIndex(token, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		return strings.ReplaceAll(strings.ReplaceAll(token, ".", ""), ",", ".")
	case comma >= 0 && dot >= 0:
		return strings.ReplaceAll(token, ",", "")
	case comma >= 0:
		return strings.ReplaceAll(token, ",", ".")
	}
	return token
}
