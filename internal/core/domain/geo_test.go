package domain_test

import (
	"testing"

	"github.com/samirrijal/geovocab/internal/core/domain"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"48.8566", 48.8566, true},
		{"-180.5", -180.5, true},
		{"362.3522", 362.3522, true},
		{"91", 91, true},
		{"NaN", 0, false},
		{"nan", 0, false},
		{"Inf", 0, false},
		{"-infinity", 0, false},
		{"north", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := domain.ParseCoordinate(tt.in)
		if tt.ok != (err == nil) {
			t.Errorf("ParseCoordinate(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseCoordinate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
