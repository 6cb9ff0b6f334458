package geospatial

import (
	"math"
	"testing"

	"github.com/samirrijal/geovocab/internal/core/domain"
)

func TestDistance(t *testing.T) {
	paris := domain.GeoPoint{Lat: 48.8566, Lon: 2.3522}
	london := domain.GeoPoint{Lat: 51.5074, Lon: -0.1278}

	if d := Distance(paris, paris); d != 0 {
		t.Errorf("distance to self = %v", d)
	}
	d := Distance(paris, london)
	if math.Abs(d-343_500) > 2_000 {
		t.Errorf("paris-london = %.0f m, want about 343.5 km", d)
	}
	if math.Abs(Distance(london, paris)-d) > 1e-6 {
		t.Error("distance is not symmetric")
	}
}

func TestFormatDistance(t *testing.T) {
	tests := map[float64]string{
		0:       "0 m",
		849.6:   "850 m",
		1000:    "1.0 km",
		12345.0: "12.3 km",
	}
	for in, want := range tests {
		if got := FormatDistance(in); got != want {
			t.Errorf("FormatDistance(%v) = %q, want %q", in, got, want)
		}
	}
}
