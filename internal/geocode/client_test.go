package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(srv.URL, "test-key", 2*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestReverseLookup(t *testing.T) {
	var gotPath, gotAPIKey, gotLat, gotLng string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-API-Key")
		gotLat = r.URL.Query().Get("lat")
		gotLng = r.URL.Query().Get("lng")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"words":        "index.home.raft",
			"nearestPlace": "Westminster",
		})
	})

	address, err := client.ReverseLookup(context.Background(), 51.5007, -0.1246)
	if err != nil {
		t.Fatalf("ReverseLookup: %v", err)
	}
	if address != "///index.home.raft (Westminster)" {
		t.Fatalf("address = %q", address)
	}
	if gotPath != "/reverse" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAPIKey != "test-key" {
		t.Fatalf("api key = %q", gotAPIKey)
	}
	if gotLat != "51.500700" || gotLng != "-0.124600" {
		t.Fatalf("coordinates = (%s, %s)", gotLat, gotLng)
	}
}

func TestReverseLookup_NoNearestPlace(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"words": "filled.count.soap"})
	})

	address, err := client.ReverseLookup(context.Background(), 10, 20)
	if err != nil {
		t.Fatalf("ReverseLookup: %v", err)
	}
	if address != "///filled.count.soap" {
		t.Fatalf("address = %q", address)
	}
}

func TestReverseLookup_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	if _, err := client.ReverseLookup(context.Background(), 0, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReverseLookup_EmptyWordsIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"words": ""})
	})

	if _, err := client.ReverseLookup(context.Background(), 0, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReverseLookup_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ReverseLookup(context.Background(), 0, 0)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want opaque upstream error", err)
	}
}

func TestReverseLookup_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.ReverseLookup(ctx, 0, 0); err == nil {
		t.Fatalf("expected error on cancelled context")
	}
}

func TestDisabledClient(t *testing.T) {
	if _, err := Disabled().ReverseLookup(context.Background(), 1, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// TestContractSmoke exercises a live reverse-geocode deployment. It is skipped
// unless W3W_URL and W3W_API_KEY are set.
func TestContractSmoke(t *testing.T) {
	baseURL := os.Getenv("W3W_URL")
	apiKey := os.Getenv("W3W_API_KEY")
	if baseURL == "" || apiKey == "" {
		t.Skip("W3W_URL and W3W_API_KEY not set; skipping contract smoke test")
	}

	client, err := NewHTTPClient(baseURL, apiKey, 5*time.Second, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	address, err := client.ReverseLookup(ctx, 51.5007, -0.1246)
	if err != nil && !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReverseLookup against live service: %v", err)
	}
	if err == nil && address == "" {
		t.Fatalf("live service returned empty address without error")
	}
}
