package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ConvertFunc normalizes one provider-native cell value into the
// canonical representation for a field kind. A nil result with nil
// error means "treat as absent".
type ConvertFunc func(v any) (any, error)

// dateLayouts covers the shapes the providers emit.
var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"2006/01/02",
	"2006-01-02 15:04:05",
}

// asString renders the cell as a trimmed string.
func asString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == "-" {
			return nil, nil
		}
		return s, nil
	case float64:
		return decimal.NewFromFloat(x).String(), nil
	case int64:
		return decimal.NewFromInt(x).String(), nil
	default:
		return nil, fmt.Errorf("not a string: %T", v)
	}
}

// asDate normalizes the provider date shapes to a UTC time:
// formatted strings, YYYYMMDD numbers, unix seconds, and unix
// milliseconds (xueqiu).
func asDate(v any) (any, error) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == "-" {
			return nil, nil
		}
		// list-event dates arrive as "2025-12-19 00:00:00"
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, fmt.Errorf("unparseable date %q", s)
	case float64:
		return numericDate(int64(x))
	case int64:
		return numericDate(x)
	default:
		return nil, fmt.Errorf("not a date: %T", v)
	}
}

// numericDate disambiguates the three numeric date encodings by
// magnitude: 8-digit YYYYMMDD, 10-digit unix seconds, 13-digit unix
// milliseconds.
func numericDate(n int64) (any, error) {
	switch {
	case n <= 0:
		return nil, nil
	case n < 1e8:
		t, err := time.Parse("20060102", fmt.Sprintf("%08d", n))
		if err != nil {
			return nil, fmt.Errorf("unparseable date number %d", n)
		}
		return t.UTC(), nil
	case n < 1e11:
		return time.Unix(n, 0).UTC(), nil
	default:
		return time.UnixMilli(n).UTC(), nil
	}
}

// unitScales maps Chinese magnitude suffixes to their multipliers.
// Longest suffix first so 万亿 is not mistaken for 亿.
var unitScales = []struct {
	suffix string
	scale  decimal.Decimal
}{
	{"万亿", decimal.New(1, 12)},
	{"亿", decimal.New(1, 8)},
	{"万", decimal.New(1, 4)},
}

// asAmount normalizes a monetary or share figure to float64 CNY
// (or shares). String inputs may carry a magnitude suffix ("3.5亿").
func asAmount(v any) (any, error) {
	d, err := amountDecimal(v)
	if err != nil || d == nil {
		return nil, err
	}
	f, _ := d.Float64()
	return f, nil
}

// asShares normalizes a share count to int64, truncating fractions
// introduced by scaled string inputs.
func asShares(v any) (any, error) {
	d, err := amountDecimal(v)
	if err != nil || d == nil {
		return nil, err
	}
	return d.IntPart(), nil
}

func amountDecimal(v any) (*decimal.Decimal, error) {
	switch x := v.(type) {
	case float64:
		d := decimal.NewFromFloat(x)
		return &d, nil
	case int64:
		d := decimal.NewFromInt(x)
		return &d, nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", ""))
		if s == "" || s == "-" {
			return nil, nil
		}
		scale := decimal.New(1, 0)
		for _, unit := range unitScales {
			if strings.HasSuffix(s, unit.suffix) {
				s = strings.TrimSuffix(s, unit.suffix)
				scale = unit.scale
				break
			}
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("unparseable amount %q", x)
		}
		d = d.Mul(scale)
		return &d, nil
	default:
		return nil, fmt.Errorf("not an amount: %T", v)
	}
}

// asListStatus maps tushare list_status codes onto the canonical
// Chinese status values the other providers use.
func asListStatus(v any) (any, error) {
	s, err := asString(v)
	if err != nil || s == nil {
		return nil, err
	}
	switch s.(string) {
	case "L":
		return "上市", nil
	case "D":
		return "退市", nil
	case "P":
		return "停牌", nil
	default:
		return s, nil
	}
}
