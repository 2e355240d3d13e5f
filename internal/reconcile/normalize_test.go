package reconcile

import (
	"testing"
	"time"
)

func TestAsDate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string // YYYY-MM-DD, "" means absent
		err  bool
	}{
		{"iso string", "2006-05-17", "2006-05-17", false},
		{"compact string", "20060517", "2006-05-17", false},
		{"slash string", "2006/05/17", "2006-05-17", false},
		{"datetime string", "2025-12-19 00:00:00", "2025-12-19", false},
		{"compact number", float64(20060517), "2006-05-17", false},
		{"unix seconds", float64(1147824000), "2006-05-17", false},
		{"unix millis", float64(1147824000000), "2006-05-17", false},
		{"zero", float64(0), "", false},
		{"dash placeholder", "-", "", false},
		{"empty", "", "", false},
		{"garbage", "soon", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := asDate(tt.in)
			if tt.err {
				if err == nil {
					t.Fatalf("asDate(%v) = %v, want error", tt.in, v)
				}
				return
			}
			if err != nil {
				t.Fatalf("asDate(%v): %v", tt.in, err)
			}
			if tt.want == "" {
				if v != nil {
					t.Fatalf("asDate(%v) = %v, want absent", tt.in, v)
				}
				return
			}
			if got := v.(time.Time).Format("2006-01-02"); got != tt.want {
				t.Errorf("asDate(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestAsAmountUnitSuffixes(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{"3.5万", 3.5e4},
		{"2亿", 2e8},
		{"1.2万亿", 1.2e12},
		{"7,092,751", 7092751},
		{float64(150.5), 150.5},
	}
	for _, tt := range tests {
		v, err := asAmount(tt.in)
		if err != nil {
			t.Fatalf("asAmount(%v): %v", tt.in, err)
		}
		if got := v.(float64); got != tt.want {
			t.Errorf("asAmount(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAsShares(t *testing.T) {
	v, err := asShares("7.09亿")
	if err != nil {
		t.Fatalf("asShares: %v", err)
	}
	if got := v.(int64); got != 709000000 {
		t.Errorf("asShares(7.09亿) = %d, want 709000000", got)
	}
	if _, err := asShares("a lot"); err == nil {
		t.Error("asShares(garbage) should error")
	}
}

func TestAsListStatus(t *testing.T) {
	for in, want := range map[string]string{"L": "上市", "D": "退市", "P": "停牌", "上市": "上市"} {
		v, err := asListStatus(in)
		if err != nil {
			t.Fatalf("asListStatus(%q): %v", in, err)
		}
		if v.(string) != want {
			t.Errorf("asListStatus(%q) = %q, want %q", in, v, want)
		}
	}
}
