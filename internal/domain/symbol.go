package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// Exchange is the listing venue of an A-share instrument.
type Exchange string

const (
	ExchangeShanghai Exchange = "SH"
	ExchangeShenzhen Exchange = "SZ"
	ExchangeBeijing  Exchange = "BJ"
)

// Symbol is a canonical instrument identifier: a six-digit code plus
// its exchange. Providers want the code in different shapes; the
// accessors below produce each of them.
type Symbol struct {
	Code     string // plain numeric code, e.g. "002104"
	Exchange Exchange
}

// ParseSymbol accepts any of the shapes that appear in user input or
// upstream data and normalizes it:
//
//	"002104.SZ" -> {002104 SZ}
//	"SZ002104"  -> {002104 SZ}
//	"002104"    -> exchange inferred from the leading digit
//
// Inference rule: codes starting with 6 list on Shanghai, 4 and 8 on
// Beijing, everything else on Shenzhen.
func ParseSymbol(s string) (Symbol, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Symbol{}, fmt.Errorf("empty symbol")
	}

	if i := strings.IndexByte(s, '.'); i >= 0 {
		code, suffix := s[:i], strings.ToUpper(s[i+1:])
		ex, err := parseExchange(suffix)
		if err != nil {
			return Symbol{}, fmt.Errorf("symbol %q: %w", s, err)
		}
		if err := validateCode(code); err != nil {
			return Symbol{}, fmt.Errorf("symbol %q: %w", s, err)
		}
		return Symbol{Code: code, Exchange: ex}, nil
	}

	if len(s) > 2 && unicode.IsLetter(rune(s[0])) {
		ex, err := parseExchange(strings.ToUpper(s[:2]))
		if err != nil {
			return Symbol{}, fmt.Errorf("symbol %q: %w", s, err)
		}
		code := s[2:]
		if err := validateCode(code); err != nil {
			return Symbol{}, fmt.Errorf("symbol %q: %w", s, err)
		}
		return Symbol{Code: code, Exchange: ex}, nil
	}

	if err := validateCode(s); err != nil {
		return Symbol{}, fmt.Errorf("symbol %q: %w", s, err)
	}
	return Symbol{Code: s, Exchange: inferExchange(s)}, nil
}

// MustParseSymbol is ParseSymbol that panics on error. For tests and
// static tables only.
func MustParseSymbol(s string) Symbol {
	sym, err := ParseSymbol(s)
	if err != nil {
		panic(err)
	}
	return sym
}

// Plain returns the bare numeric code, e.g. "002104".
func (s Symbol) Plain() string {
	return s.Code
}

// Prefixed returns the exchange-prefixed shape, e.g. "SZ002104".
func (s Symbol) Prefixed() string {
	return string(s.Exchange) + s.Code
}

// Suffixed returns the dotted shape, e.g. "002104.SZ". Yahoo and
// tushare both use this form.
func (s Symbol) Suffixed() string {
	return s.Code + "." + string(s.Exchange)
}

// String returns the suffixed shape, the canonical textual form.
func (s Symbol) String() string {
	return s.Suffixed()
}

func parseExchange(s string) (Exchange, error) {
	switch Exchange(s) {
	case ExchangeShanghai, ExchangeShenzhen, ExchangeBeijing:
		return Exchange(s), nil
	}
	return "", fmt.Errorf("unknown exchange %q", s)
}

func validateCode(code string) error {
	if len(code) != 6 {
		return fmt.Errorf("code must be 6 digits, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return fmt.Errorf("code must be numeric, got %q", code)
		}
	}
	return nil
}

func inferExchange(code string) Exchange {
	switch code[0] {
	case '6':
		return ExchangeShanghai
	case '4', '8':
		return ExchangeBeijing
	default:
		return ExchangeShenzhen
	}
}
