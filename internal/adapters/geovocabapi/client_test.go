package geovocabapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/geovocab/internal/adapters/geovocabapi"
	"github.com/samirrijal/geovocab/internal/core/domain"
)

const parisEnvelope = `{"message":"Here's the 3 magic words to your location","status":200,"data":{"geoVocab":"lamp-tree-door","geoHash":"u09tvu","latitude":48.8566,"longitude":2.3522}}`

func newServer(t *testing.T, handler http.HandlerFunc) *geovocabapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := geovocabapi.New(srv.URL + "/api/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"empty", "", true},
		{"no scheme", "localhost:5000/api", true},
		{"ftp", "ftp://example.com/api", true},
		{"default", geovocabapi.DefaultBaseURL, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := geovocabapi.New(tt.baseURL)
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c, err := geovocabapi.New("http://localhost:5000/api/")
	if err != nil {
		t.Fatal(err)
	}
	if c.BaseURL() != "http://localhost:5000/api" {
		t.Errorf("expected trimmed base URL, got %s", c.BaseURL())
	}
}

func TestWordsForCoordinates_Success(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/geovocab/latitude/48.8566/longitude/2.3522/words" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(parisEnvelope))
	})

	res, err := client.WordsForCoordinates(context.Background(), 48.8566, 2.3522)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.GeoVocabResult{GeoVocab: "lamp-tree-door", GeoHash: "u09tvu", Latitude: 48.8566, Longitude: 2.3522}
	if *res != want {
		t.Errorf("expected %+v, got %+v", want, *res)
	}
}

func TestWordsForCoordinates_NegativeCoordinates(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/geovocab/latitude/-33.8688/longitude/151.2093/words" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"message":"ok","status":200,"data":{"geoVocab":"a-b-c","geoHash":"r3gx2f","latitude":-33.8688,"longitude":151.2093}}`))
	})

	if _, err := client.WordsForCoordinates(context.Background(), -33.8688, 151.2093); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLocationForWords_PathAndEscaping(t *testing.T) {
	tests := []struct {
		name    string
		phrase  string
		rawPath string
	}{
		{"plain phrase", "lamp-tree-door", "/api/geovocab/words/lamp-tree-door/location"},
		{"slash is escaped", "lamp/tree-door", "/api/geovocab/words/lamp%2Ftree-door/location"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.EscapedPath() != tt.rawPath {
					t.Errorf("expected %s, got %s", tt.rawPath, r.URL.EscapedPath())
				}
				_, _ = w.Write([]byte(parisEnvelope))
			})
			if _, err := client.LocationForWords(context.Background(), tt.phrase); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRegisterPremium_Body(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/geovocab/premium" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["geoHash"] != "u09tvuxyz" || body["magicwords"] != "lamp-tree-door" {
			t.Errorf("unexpected body %v", body)
		}
		_, _ = w.Write([]byte(`{"message":"Successfully added a premium GeoVocab","status":200,"data":{"geoVocab":"lamp-tree-door","geoHash":"u09tvuxyz","latitude":48.8566,"longitude":2.3522}}`))
	})

	res, err := client.RegisterPremium(context.Background(), "u09tvuxyz", "lamp-tree-door")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.GeoHash != "u09tvuxyz" {
		t.Errorf("expected geohash u09tvuxyz, got %s", res.GeoHash)
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    domain.ErrorKind
		wantMessage string
	}{
		{"not found", 404, `{"message":"No such place","status":404,"data":null}`, domain.KindNotFound, "No such place"},
		{"rejected with envelope", 400, `{"message":"Could not find a location associated to the geovocab","status":400,"data":null}`, domain.KindRejected, "Could not find a location associated to the geovocab"},
		{"server error without envelope", 500, `<html>oops</html>`, domain.KindServer, ""},
		{"bad gateway", 502, ``, domain.KindServer, ""},
		{"malformed 200", 200, `not json`, domain.KindMalformed, ""},
		{"200 without data", 200, `{"message":"ok","status":200,"data":null}`, domain.KindMalformed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			res, err := client.LocationForWords(context.Background(), "lamp-tree-door")
			if res != nil {
				t.Errorf("expected nil result, got %+v", res)
			}
			var le *domain.LookupError
			if !errors.As(err, &le) {
				t.Fatalf("expected *domain.LookupError, got %T: %v", err, err)
			}
			if le.Kind != tt.wantKind {
				t.Errorf("expected kind %s, got %s", tt.wantKind, le.Kind)
			}
			if le.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, le.Message)
			}
			if tt.status >= 400 && le.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, le.Status)
			}
		})
	}
}

type failingDoer struct{ err error }

func (f failingDoer) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	client, err := geovocabapi.New(geovocabapi.DefaultBaseURL, geovocabapi.WithHTTPClient(failingDoer{err: cause}))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.WordsForCoordinates(context.Background(), 1, 2)
	if domain.KindOf(err) != domain.KindNetwork {
		t.Fatalf("expected network kind, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected transport cause to be wrapped")
	}
	if msg := domain.UserMessage(err, "Failed to get words for this location"); msg != "Failed to get words for this location" {
		t.Errorf("expected fallback message, got %q", msg)
	}
}

func TestContextCancelled(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(parisEnvelope))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.WordsForCoordinates(ctx, 48.8566, 2.3522)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDeadlineComesFromContext(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.LocationForWords(ctx, "lamp-tree-door")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if domain.KindOf(err) != domain.KindNetwork {
		t.Errorf("expected network kind, got %v", err)
	}
}
