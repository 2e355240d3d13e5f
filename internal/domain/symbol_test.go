package domain

import "testing"

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		in       string
		code     string
		exchange Exchange
	}{
		{"002104.SZ", "002104", ExchangeShenzhen},
		{"600000.SH", "600000", ExchangeShanghai},
		{"SZ002104", "002104", ExchangeShenzhen},
		{"SH600000", "600000", ExchangeShanghai},
		{"002104", "002104", ExchangeShenzhen},
		{"600000", "600000", ExchangeShanghai},
		{"830799", "830799", ExchangeBeijing},
		{"430047", "430047", ExchangeBeijing},
		{"002104.sz", "002104", ExchangeShenzhen},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sym, err := ParseSymbol(tt.in)
			if err != nil {
				t.Fatalf("ParseSymbol(%q) failed: %v", tt.in, err)
			}
			if sym.Code != tt.code {
				t.Errorf("Code = %q, want %q", sym.Code, tt.code)
			}
			if sym.Exchange != tt.exchange {
				t.Errorf("Exchange = %q, want %q", sym.Exchange, tt.exchange)
			}
		})
	}
}

func TestParseSymbol_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "00210", "0021045.SZ", "002104.XX", "XX002104", "00210a"} {
		if _, err := ParseSymbol(in); err == nil {
			t.Errorf("ParseSymbol(%q) succeeded, want error", in)
		}
	}
}

func TestSymbolShapes(t *testing.T) {
	sym := MustParseSymbol("002104")

	if got := sym.Plain(); got != "002104" {
		t.Errorf("Plain() = %q", got)
	}
	if got := sym.Prefixed(); got != "SZ002104" {
		t.Errorf("Prefixed() = %q", got)
	}
	if got := sym.Suffixed(); got != "002104.SZ" {
		t.Errorf("Suffixed() = %q", got)
	}
}
