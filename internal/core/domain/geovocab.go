package domain

// GeoVocabResult is what both lookup directions return: a point and its names.
type GeoVocabResult struct {
	GeoVocab  string  `json:"geoVocab"`
	GeoHash   string  `json:"geoHash"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Envelope wraps every response of the geovocab API.
type Envelope[T any] struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Data    T      `json:"data"`
}

// PremiumRequest is the body of a premium phrase registration.
type PremiumRequest struct {
	GeoHash    string `json:"geoHash"`
	MagicWords string `json:"magicwords"`
}
