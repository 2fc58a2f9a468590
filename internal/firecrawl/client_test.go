package firecrawl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/Bahjat/llms-txt-generator/internal/model"
	"github.com/Bahjat/llms-txt-generator/internal/platform/errs"
)

func newTestClient(ts *httptest.Server, defaultKey string) *Client {
	c := NewClient(ts.URL+"/", defaultKey)
	c.client = ts.Client()
	return c
}

func TestClient_Discover(t *testing.T) {
	var got mapRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/map" {
			t.Errorf("request = %s %s, want POST /v1/map", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer fc-caller" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"success":true,"links":["https://example.com","https://example.com/docs"]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts, "fc-server")
	links, err := c.Discover(context.Background(), "https://example.com", model.Credentials{FirecrawlKey: "fc-caller"}, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"https://example.com", "https://example.com/docs"}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("links = %v, want %v", links, want)
	}
	if got != (mapRequest{URL: "https://example.com", Limit: 7}) {
		t.Errorf("map request = %+v", got)
	}
}

func TestClient_Discover_UsesServerKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer fc-server" {
			t.Errorf("Authorization = %q, want server key", auth)
		}
		_, _ = w.Write([]byte(`{"success":true,"links":[]}`))
	}))
	defer ts.Close()

	if _, err := newTestClient(ts, "fc-server").Discover(context.Background(), "https://example.com", model.Credentials{}, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_MissingKey(t *testing.T) {
	c := NewClient("", "")

	_, err := c.Discover(context.Background(), "https://example.com", model.Credentials{}, 5)
	if errs.KindOf(err) != errs.Unauthorized {
		t.Errorf("Discover error = %v, want Unauthorized", err)
	}
	_, err = c.Fetch(context.Background(), "https://example.com", model.Credentials{})
	if errs.KindOf(err) != errs.Unauthorized {
		t.Errorf("Fetch error = %v, want Unauthorized", err)
	}
}

func TestClient_Fetch(t *testing.T) {
	var got scrapeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/scrape" {
			t.Errorf("path = %s, want /v1/scrape", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"success":true,"data":{"markdown":"# Docs\n\nHello"}}`))
	}))
	defer ts.Close()

	md, err := newTestClient(ts, "fc-server").Fetch(context.Background(), "https://example.com/docs", model.Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md != "# Docs\n\nHello" {
		t.Errorf("markdown = %q", md)
	}

	want := scrapeRequest{
		URL:             "https://example.com/docs",
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
		Timeout:         30000,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scrape request = %+v, want %+v", got, want)
	}
}

func TestClient_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    errs.Kind
		wantMessage string
	}{
		{name: "unsuccessful scrape", status: 200, body: `{"success":false,"error":"blocked"}`, wantKind: errs.NoContent, wantMessage: "Scraping failed"},
		{name: "empty markdown", status: 200, body: `{"success":true,"data":{"markdown":"  "}}`, wantKind: errs.NoContent, wantMessage: "Scraping failed"},
		{name: "bad json", status: 200, body: `{"success":`, wantKind: errs.ParsingFailed},
		{name: "rejected key", status: 401, wantKind: errs.Unauthorized},
		{name: "quota", status: 429, wantKind: errs.RateLimited},
		{name: "upstream timeout", status: 504, wantKind: errs.Timeout},
		{name: "server error", status: 500, wantKind: errs.Unreachable, wantMessage: "Scraping failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := newTestClient(ts, "k").Fetch(context.Background(), "https://example.com", model.Credentials{})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if errs.KindOf(err) != tt.wantKind {
				t.Errorf("kind = %v, want %v (err %v)", errs.KindOf(err), tt.wantKind, err)
			}
			if tt.wantMessage != "" && errs.Message(err) != tt.wantMessage {
				t.Errorf("message = %q, want %q", errs.Message(err), tt.wantMessage)
			}
		})
	}
}

func TestClient_Discover_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantKind    errs.Kind
		wantMessage string
	}{
		{name: "server error", status: 500, wantKind: errs.Unreachable, wantMessage: mapFailedMessage},
		{name: "bad gateway", status: 502, wantKind: errs.Unreachable, wantMessage: mapFailedMessage},
		{name: "rejected key", status: 403, wantKind: errs.Unauthorized, wantMessage: "The Firecrawl API key was rejected."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			_, err := newTestClient(ts, "k").Discover(context.Background(), "https://example.com", model.Credentials{}, 5)
			if errs.KindOf(err) != tt.wantKind {
				t.Errorf("kind = %v, want %v (err %v)", errs.KindOf(err), tt.wantKind, err)
			}
			if errs.Message(err) != tt.wantMessage {
				t.Errorf("message = %q, want %q", errs.Message(err), tt.wantMessage)
			}
		})
	}
}

func TestClient_Discover_Unsuccessful(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"invalid url"}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts, "k").Discover(context.Background(), "https://example.com", model.Credentials{}, 5)
	if errs.KindOf(err) != errs.Unreachable || errs.Message(err) != mapFailedMessage {
		t.Errorf("error = %v, want Unreachable %q", err, mapFailedMessage)
	}
}
