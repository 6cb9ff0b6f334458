// Package geovocabapi talks to the remote geovocab service.
package geovocabapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/geovocab/internal/core/domain"
	"github.com/samirrijal/geovocab/internal/pkg/metrics"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

const (
	opWords    = "words_for_coordinates"
	opLocation = "location_for_words"
	opPremium  = "register_premium"
)

// maxBodySize caps how much of a response is read before decoding.
const maxBodySize = 1 << 20

// HTTPDoer is the part of *http.Client the client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.GeoVocabAPI over HTTP.
type Client struct {
	baseURL string
	http    HTTPDoer
	tracer  trace.Tracer
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(d HTTPDoer) Option {
	return func(c *Client) { c.http = d }
}

// WithLogger sets the logger used for per-call debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:5000/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("empty baseURL, use " + DefaultBaseURL)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse baseURL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("baseURL must be http or https, got %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tracer:  otel.Tracer("github.com/samirrijal/geovocab/internal/adapters/geovocabapi"),
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the root every request path is appended to.
func (c *Client) BaseURL() string { return c.baseURL }

// WordsForCoordinates returns the three-word phrase for a point.
func (c *Client) WordsForCoordinates(ctx context.Context, lat, lon float64) (*domain.GeoVocabResult, error) {
	path := fmt.Sprintf("/geovocab/latitude/%s/longitude/%s/words", formatFloat(lat), formatFloat(lon))
	return c.call(ctx, opWords, http.MethodGet, path, nil,
		attribute.Float64("geovocab.latitude", lat),
		attribute.Float64("geovocab.longitude", lon),
	)
}

// LocationForWords resolves a phrase back to a point. The phrase is sent verbatim.
func (c *Client) LocationForWords(ctx context.Context, phrase string) (*domain.GeoVocabResult, error) {
	path := "/geovocab/words/" + url.PathEscape(phrase) + "/location"
	return c.call(ctx, opLocation, http.MethodGet, path, nil,
		attribute.String("geovocab.words", phrase),
	)
}

// RegisterPremium asks the service to bind phrase to geoHash.
func (c *Client) RegisterPremium(ctx context.Context, geoHash, phrase string) (*domain.GeoVocabResult, error) {
	body := domain.PremiumRequest{GeoHash: geoHash, MagicWords: phrase}
	return c.call(ctx, opPremium, http.MethodPost, "/geovocab/premium", body,
		attribute.String("geovocab.geohash", geoHash),
		attribute.String("geovocab.words", phrase),
	)
}

func (c *Client) call(ctx context.Context, op, method, path string, body any, attrs ...attribute.KeyValue) (*domain.GeoVocabResult, error) {
	ctx, span := c.tracer.Start(ctx, "geovocab."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	res, err := c.roundTrip(ctx, op, method, path, body)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	metrics.UpstreamRequests.WithLabelValues(op, outcome).Inc()
	metrics.UpstreamDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	c.logger.DebugContext(ctx, "geovocab api call",
		"op", op,
		"method", method,
		"path", path,
		"outcome", outcome,
		"latency", elapsed.String(),
	)
	return res, err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body any) (*domain.GeoVocabResult, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &domain.LookupError{Op: op, Kind: domain.KindMalformed, Err: fmt.Errorf("encode body: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &domain.LookupError{Op: op, Kind: domain.KindNetwork, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.LookupError{Op: op, Kind: domain.KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &domain.LookupError{Op: op, Kind: domain.KindNetwork, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	var env domain.Envelope[*domain.GeoVocabResult]
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		le := &domain.LookupError{
			Op:     op,
			Kind:   kindForStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
		if decodeErr == nil {
			le.Message = env.Message
		}
		return nil, le
	}

	if decodeErr != nil {
		return nil, &domain.LookupError{Op: op, Kind: domain.KindMalformed, Status: resp.StatusCode, Err: fmt.Errorf("decode envelope: %w", decodeErr)}
	}
	if env.Data == nil {
		return nil, &domain.LookupError{Op: op, Kind: domain.KindMalformed, Status: resp.StatusCode, Err: errors.New("envelope has no data")}
	}
	return env.Data, nil
}

func kindForStatus(status int) domain.ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return domain.KindNotFound
	case status >= 500:
		return domain.KindServer
	case status >= 400:
		return domain.KindRejected
	default:
		// 1xx/3xx that the transport did not resolve
		return domain.KindMalformed
	}
}

// formatFloat renders a coordinate in its shortest exact form.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
