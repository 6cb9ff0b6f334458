package domain

import (
	"errors"
	"math"
	"strconv"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WorldCenter is where the map rests when nothing is selected.
var WorldCenter = GeoPoint{Lat: 20, Lon: 0}

var errNotFinite = errors.New("coordinate is not a finite number")

// ParseCoordinate reads a latitude or longitude as typed by a user. Ranges
// are left to the geovocab service; only NaN and infinities are refused.
func ParseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// FormatCoordinate renders a latitude or longitude the way the result panel shows it.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Point returns the result's coordinates as a GeoPoint.
func (r GeoVocabResult) Point() GeoPoint {
	return GeoPoint{Lat: r.Latitude, Lon: r.Longitude}
}
