package glparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	isoCurrencyAffix = regexp.MustCompile(`^[A-Za-z]{3}\s*|\s*[A-Za-z]{3}$`)
	plainNumber      = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)
	rawFloat         = regexp.MustCompile(`^-?\d*\.\d+$`)
	amountNoise      = strings.NewReplacer(
		"$", "", "€", "", "£", "", "¥", "", "₹", "",
		" ", "", "\u00a0", "", "\u202f", "", "'", "", "\u2019", "",
	)
)

// parseAmount converts a formatted monetary cell into an exact decimal.
// Blank cells and lone dashes are zero. Parentheses, a leading minus or a
// trailing minus mark negatives. Separators are resolved by position: when
// both '.' and ',' occur the last one is the decimal point; a lone ',' followed
// by one or two digits is a decimal comma.
func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || s == "–" || s == "—" {
		return decimal.Zero, nil
	}

	s = isoCurrencyAffix.ReplaceAllString(s, "")
	s = amountNoise.Replace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	} else if strings.HasSuffix(s, "-") {
		negative = !negative
		s = s[:len(s)-1]
	}
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return decimal.Zero, fmt.Errorf("no digits in amount %q", raw)
	}

	normalized := normalizeSeparators(s)
	if !plainNumber.MatchString(normalized) {
		return decimal.Zero, fmt.Errorf("malformed amount %q", raw)
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed amount %q: %w", raw, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 1.234,56
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		// 1,234.56
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			decimals := len(s) - lastComma - 1
			if decimals == 1 || decimals == 2 {
				return strings.Replace(s, ",", ".", 1)
			}
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	default:
		return s
	}
}

// excelSignificantDigits is the precision Excel keeps for numbers.
const excelSignificantDigits = 15

// trimFloatNoise rounds a raw numeric workbook cell such as "1234.5600000000001" to
// Excel's 15 significant digits. Cells with 15 or fewer significant digits, and
// anything that is not a plain decimal, are returned unchanged.
func trimFloatNoise(cell string) string {
	if !rawFloat.MatchString(cell) || significantDigits(cell) <= excelSignificantDigits {
		return cell
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return cell
	}
	d, err := decimal.NewFromString(strconv.FormatFloat(f, 'g', excelSignificantDigits, 64))
	if err != nil {
		return cell
	}
	return d.String()
}

func significantDigits(s string) int {
	digits := strings.TrimLeft(strings.NewReplacer("-", "", ".", "").Replace(s), "0")
	return len(strings.TrimRight(digits, "0"))
}
