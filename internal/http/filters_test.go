package httpserver

import (
	"net/url"
	"testing"

	"github.com/scenepin/scenepin/internal/config"
)

func TestBuildFilmFilters(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
		check   func(t *testing.T, got filtersView)
	}{
		{
			name:  "empty query",
			query: "",
			check: func(t *testing.T, got filtersView) {
				if got.q != nil || got.segment != nil || got.limit != 0 || got.hasCursor {
					t.Fatalf("expected zero filters, got %+v", got)
				}
			},
		},
		{
			name:  "search and segment",
			query: "q=blade&segment=goat",
			check: func(t *testing.T, got filtersView) {
				if got.q == nil || *got.q != "blade" {
					t.Fatalf("q = %v", got.q)
				}
				if got.segment == nil || *got.segment != "goat" {
					t.Fatalf("segment = %v", got.segment)
				}
			},
		},
		{
			name:  "whitespace trimmed to absent",
			query: "q=%20%20&segment=%20",
			check: func(t *testing.T, got filtersView) {
				if got.q != nil || got.segment != nil {
					t.Fatalf("expected blank values dropped, got %+v", got)
				}
			},
		},
		{
			name:  "explicit limit",
			query: "limit=50",
			check: func(t *testing.T, got filtersView) {
				if got.limit != 50 {
					t.Fatalf("limit = %d, want 50", got.limit)
				}
			},
		},
		{name: "non-numeric limit", query: "limit=ten", wantErr: true},
		{name: "garbage cursor", query: "cursor=%21%21not-base64", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			filters, err := buildFilmFilters(values)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildFilmFilters(%q): %v", tt.query, err)
			}
			tt.check(t, filtersView{
				q:         filters.Query,
				segment:   filters.Segment,
				limit:     filters.Limit,
				hasCursor: filters.Cursor != nil,
			})
		})
	}
}

type filtersView struct {
	q         *string
	segment   *string
	limit     int
	hasCursor bool
}

func FuzzBuildFilmFilters(f *testing.F) {
	f.Add("q=blade&limit=10")
	f.Add("segment=goat&cursor=eyJjcmVhdGVkQXQiOiIyMDI0LTAxLTAxVDAwOjAwOjAwWiIsImlkIjoiYSJ9")
	f.Add("limit=-1")
	f.Add("cursor=!!!")
	f.Add("")

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			t.Skip()
		}
		filters, err := buildFilmFilters(values)
		if err != nil {
			return
		}
		// A successful parse never yields blank pointer values.
		if filters.Query != nil && *filters.Query == "" {
			t.Fatalf("blank query pointer for %q", raw)
		}
		if filters.Segment != nil && *filters.Segment == "" {
			t.Fatalf("blank segment pointer for %q", raw)
		}
	})
}

func TestVerifyBearer(t *testing.T) {
	s := &Server{cfg: config.Config{AuthToken: "sekret"}}

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid token", "Bearer sekret", true},
		{"empty header", "", false},
		{"missing prefix", "sekret", false},
		{"wrong token", "Bearer nope", false},
		{"lowercase scheme", "bearer sekret", false},
		{"token with padding", "Bearer  sekret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.verifyBearer(tt.header); got != tt.want {
				t.Fatalf("verifyBearer(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestNormalizeStringPtr(t *testing.T) {
	blank := "   "
	padded := "  value  "
	if got := normalizeStringPtr(nil); got != nil {
		t.Fatalf("nil input produced %v", got)
	}
	if got := normalizeStringPtr(&blank); got != nil {
		t.Fatalf("blank input produced %v", got)
	}
	got := normalizeStringPtr(&padded)
	if got == nil || *got != "value" {
		t.Fatalf("padded input produced %v", got)
	}
}
