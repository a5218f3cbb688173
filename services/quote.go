package services

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/0xzenith/zenith-go/models"
)

// QuoteDigits is the fixed fractional precision of quoted amounts.
const QuoteDigits = 6

// ComputeQuote derives the counter-amount for a prospective swap. It is
// pure: same inputs, same output, no dependence on prior calls. An
// empty or unparsable amount yields (nil, false); "no quote yet" is a
// valid state, not an error. Same-asset pairs quote at rate 1; the
// orchestrator, not the calculator, rejects them.
func ComputeQuote(amount string, from, to *models.Asset) (*models.Quote, bool) {
	amt, ok := parseDecimal(amount)
	if !ok {
		return nil, false
	}

	rate := new(big.Rat).SetFrac(big.NewInt(from.Price), big.NewInt(to.Price))
	out := new(big.Rat).Mul(amt, rate)

	return &models.Quote{
		Rate:         formatFixed(roundHalfAwayFromZero(rate, QuoteDigits), QuoteDigits),
		OutputAmount: formatFixed(roundHalfAwayFromZero(out, QuoteDigits), QuoteDigits),
	}, true
}

// ScaleToUnits converts a decimal amount into integer token units,
// amount·10^decimals. Fractional digits beyond the asset's precision
// are truncated toward zero, the single scaling policy used across
// quoting, submission, and balance display.
func ScaleToUnits(amount string, decimals int) (*big.Int, error) {
	intPart, fracPart, ok := splitDecimal(amount)
	if !ok {
		return nil, fmt.Errorf("invalid decimal amount %q", amount)
	}
	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	scaled, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal amount %q", amount)
	}
	return scaled, nil
}

// FormatUnits is the inverse of ScaleToUnits for non-negative values;
// trailing fractional zeros are trimmed.
func FormatUnits(units *big.Int, decimals int) string {
	s := units.String()
	if decimals == 0 {
		return s
	}
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

// parseDecimal accepts a plain non-negative decimal ("2", "0.5",
// ".25"). No signs, exponents, or separators.
func parseDecimal(s string) (*big.Rat, bool) {
	intPart, fracPart, ok := splitDecimal(s)
	if !ok {
		return nil, false
	}
	num, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, false
	}
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(fracPart))), nil)
	return new(big.Rat).SetFrac(num, den), true
}

func splitDecimal(s string) (intPart, fracPart string, ok bool) {
	if s == "" {
		return "", "", false
	}
	intPart, fracPart, found := strings.Cut(s, ".")
	if found && fracPart == "" {
		return "", "", false
	}
	if intPart == "" {
		if !found {
			return "", "", false
		}
		intPart = "0"
	}
	for _, part := range []string{intPart, fracPart} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return "", "", false
			}
		}
	}
	return intPart, fracPart, true
}

// roundHalfAwayFromZero rounds r·10^digits to the nearest integer, ties
// away from zero.
func roundHalfAwayFromZero(r *big.Rat, digits int) *big.Int {
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(pow))

	num := scaled.Num()
	den := scaled.Denom() // always > 0

	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	rem.Abs(rem)
	rem.Lsh(rem, 1) // 2·|rem|
	if rem.Cmp(den) >= 0 {
		if num.Sign() < 0 {
			quo.Sub(quo, big.NewInt(1))
		} else {
			quo.Add(quo, big.NewInt(1))
		}
	}
	return quo
}

// formatFixed renders an integer scaled by 10^digits with exactly
// `digits` fractional places, e.g. 4000000000 → "4000.000000".
func formatFixed(scaled *big.Int, digits int) string {
	neg := scaled.Sign() < 0
	s := new(big.Int).Abs(scaled).String()
	if len(s) <= digits {
		s = strings.Repeat("0", digits-len(s)+1) + s
	}
	out := s[:len(s)-digits] + "." + s[len(s)-digits:]
	if neg {
		out = "-" + out
	}
	return out
}
