package match

import "testing"

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"zero", 0, "$0"},
		{"under a thousand", 999, "$999"},
		{"rounds sub-dollar", 999.6, "$1000"},
		{"exactly a thousand", 1_000, "$1K"},
		{"thousands round", 45_250, "$45K"},
		{"thousands round up", 45_500, "$46K"},
		{"just below a million", 999_499, "$999K"},
		{"exactly a million", 1_000_000, "$1.0M"},
		{"millions one decimal", 1_500_000, "$1.5M"},
		{"large total", 38_800_000, "$38.8M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAmount(tt.amount); got != tt.want {
				t.Errorf("FormatAmount(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}
