package models

import (
	"regexp"
	"strings"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,19}$`)

// NormalizeSymbol trims and upper-cases s. ok is false when the result is not a plausible ticker.
func NormalizeSymbol(s string) (symbol string, ok bool) {
	symbol = strings.ToUpper(strings.TrimSpace(s))
	return symbol, symbolPattern.MatchString(symbol)
}
