// Package geolocation provides the ways a renderer can answer "where am I".
package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/samirrijal/geovocab/internal/core/domain"
)

// DefaultIPEndpoint is the free ip-api JSON endpoint.
const DefaultIPEndpoint = "http://ip-api.com/json/?fields=status,message,lat,lon"

// BrowserFix is a fix the browser already took. A nil Err with a zero point
// is a valid fix at 0,0.
type BrowserFix struct {
	Point domain.GeoPoint
	Err   error
}

// CurrentPosition returns the recorded fix.
func (b BrowserFix) CurrentPosition(ctx context.Context) (domain.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return domain.GeoPoint{}, err
	}
	if b.Err != nil {
		return domain.GeoPoint{}, b.Err
	}
	return b.Point, nil
}

// Static always reports the same point.
type Static domain.GeoPoint

// CurrentPosition returns the configured point.
func (s Static) CurrentPosition(context.Context) (domain.GeoPoint, error) {
	return domain.GeoPoint(s), nil
}

// HTTPDoer is the subset of *http.Client the IP locator needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// IPLocator estimates the position from the caller's public IP address
// using an ip-api compatible endpoint.
type IPLocator struct {
	endpoint string
	client   HTTPDoer
	limiter  *rate.Limiter
}

// NewIPLocator creates a locator. ip-api allows 45 requests per minute
// without a key, so calls are paced to stay under that.
func NewIPLocator(endpoint string, client HTTPDoer) *IPLocator {
	if endpoint == "" {
		endpoint = DefaultIPEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &IPLocator{
		endpoint: endpoint,
		client:   client,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/45), 1),
	}
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CurrentPosition asks the endpoint for the caller's position. Any failure
// is reported as domain.ErrGeolocationDenied wrapping the cause.
func (l *IPLocator) CurrentPosition(ctx context.Context) (domain.GeoPoint, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return domain.GeoPoint{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: %w", domain.ErrGeolocationDenied, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.GeoPoint{}, fmt.Errorf("%w: ip lookup status %d", domain.ErrGeolocationDenied, resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: decode ip lookup: %w", domain.ErrGeolocationDenied, err)
	}
	if body.Status != "success" {
		msg := body.Message
		if msg == "" {
			msg = "status " + body.Status
		}
		return domain.GeoPoint{}, fmt.Errorf("%w: %s", domain.ErrGeolocationDenied, msg)
	}
	return domain.GeoPoint{Lat: body.Lat, Lon: body.Lon}, nil
}

// FromBrowser turns what the page reported into a Locator. unsupported means
// the browser has no geolocation API at all.
func FromBrowser(p *domain.GeoPoint, errMsg string, unsupported bool) BrowserFix {
	switch {
	case unsupported:
		return BrowserFix{Err: domain.ErrGeolocationUnsupported}
	case errMsg != "":
		return BrowserFix{Err: fmt.Errorf("%w: %s", domain.ErrGeolocationDenied, errMsg)}
	case p == nil:
		return BrowserFix{Err: errors.New("browser reported no position")}
	default:
		return BrowserFix{Point: *p}
	}
}
