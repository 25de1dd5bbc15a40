package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("reading fixture %s: %v", name, err)
	}
	return data
}

// fixtureServer serves fixtures keyed by request URI. Unknown URIs get a 404.
func fixtureServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "concert-events") {
			t.Errorf("User-Agent = %q, should contain 'concert-events'", ua)
		}
		name, ok := routes[r.URL.RequestURI()]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(readFixture(t, name)) // nolint:errcheck
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_Document(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantError  bool
	}{
		{name: "ok", statusCode: http.StatusOK},
		{name: "not found", statusCode: http.StatusNotFound, wantError: true},
		{name: "server error", statusCode: http.StatusInternalServerError, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte("<html><body><p>hello</p></body></html>")) // nolint:errcheck
			}))
			defer server.Close()

			doc, err := NewClient(time.Second).Document(context.Background(), server.URL)
			if tt.wantError {
				if err == nil {
					t.Fatal("Document() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Document() unexpected error: %v", err)
			}
			if got := doc.Find("p").Text(); got != "hello" {
				t.Errorf("Document() p = %q, want %q", got, "hello")
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"Dvořák", 4, "Dvoř"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestAbsURL(t *testing.T) {
	page := "https://www.msmnyc.edu/performances/?date=Oct-2026"
	tests := []struct {
		href string
		want string
	}{
		{"/performances/recital/", "https://www.msmnyc.edu/performances/recital/"},
		{"https://www.msmnyc.edu/x/", "https://www.msmnyc.edu/x/"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := absURL(page, tt.href); got != tt.want {
			t.Errorf("absURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestMonthStart(t *testing.T) {
	dec := time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC)
	if got := monthStart(dec, 1); got.Format("2006-01-02") != "2027-01-01" {
		t.Errorf("monthStart(Dec 31, 1) = %s, want 2027-01-01", got.Format("2006-01-02"))
	}
	if got := monthStart(dec, 0); got.Format("2006-01-02") != "2026-12-01" {
		t.Errorf("monthStart(Dec 31, 0) = %s, want 2026-12-01", got.Format("2006-01-02"))
	}
}

func TestDefault(t *testing.T) {
	sources := Default(Options{})
	want := []string{NYCRName, TrinityName, KaufmanName, JuilliardName, MSMName}
	if len(sources) != len(want) {
		t.Fatalf("Default() returned %d sources, want %d", len(sources), len(want))
	}
	for i, s := range sources {
		if s.Name() != want[i] {
			t.Errorf("Default()[%d] = %q, want %q", i, s.Name(), want[i])
		}
		if s.URL() == "" {
			t.Errorf("Default()[%d] has empty URL", i)
		}
	}

	if _, ok := sources[3].(DirectExtractor); !ok {
		t.Error("Juilliard should be a DirectExtractor")
	}
	for _, i := range []int{0, 1, 2, 4} {
		if _, ok := sources[i].(PageFetcher); !ok {
			t.Errorf("%s should be a PageFetcher", sources[i].Name())
		}
	}
}
