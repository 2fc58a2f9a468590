package sitecrawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestHTTPClient_Get(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("User-Agent = %q, want %q", r.Header.Get("User-Agent"), userAgent)
		}
		if r.Header.Get("Accept") != resourcePolicies[SitemapResource].accept {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = fmt.Fprint(w, "<urlset></urlset>")
	}))
	defer ts.Close()

	c := &HTTPClient{client: ts.Client()}
	resp, err := c.Get(context.Background(), ts.URL, SitemapResource)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "<urlset></urlset>" {
		t.Errorf("body = %q", data)
	}
}

func TestHTTPClient_Get_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/docs/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, "<html><body>docs</body></html>")
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := &HTTPClient{client: ts.Client()}
	resp, err := c.Get(context.Background(), ts.URL+"/old", PageResource)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.URL.Path != "/docs/" {
		t.Errorf("served from %s, want /docs/", resp.URL)
	}
}

func TestHTTPClient_Get_RejectsNonHTMLPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = fmt.Fprint(w, "%PDF-1.7")
	}))
	defer ts.Close()

	c := &HTTPClient{client: ts.Client()}
	if _, err := c.Get(context.Background(), ts.URL, PageResource); !errors.Is(err, errNotHTML) {
		t.Errorf("error = %v, want errNotHTML", err)
	}
}

func TestIsHTML(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{contentType: "", want: true},
		{contentType: "text/html", want: true},
		{contentType: "text/html; charset=utf-8", want: true},
		{contentType: "application/xhtml+xml", want: true},
		{contentType: "application/json", want: false},
		{contentType: "image/png", want: false},
		{contentType: ";;", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			if got := isHTML(tt.contentType); got != tt.want {
				t.Errorf("isHTML(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestHTTPClient_BlocksLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	_, err := NewHTTPClient().Get(context.Background(), ts.URL, PageResource)
	if err == nil {
		t.Fatal("expected the public-only dialer to refuse a loopback server")
	}
}

func TestHTTPClient_Get_InvalidURL(t *testing.T) {
	if _, err := NewHTTPClient().Get(context.Background(), "://bad-url", PageResource); err == nil {
		t.Fatal("expected error for invalid URL, got nil")
	}
}

func TestRedirectPolicy(t *testing.T) {
	tests := []struct {
		name    string
		scheme  string
		via     int
		wantErr bool
	}{
		{name: "within limit", scheme: "https", via: 4, wantErr: false},
		{name: "too many redirects", scheme: "https", via: 5, wantErr: true},
		{name: "ftp blocked", scheme: "ftp", via: 0, wantErr: true},
		{name: "file blocked", scheme: "file", via: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &http.Request{URL: &url.URL{Scheme: tt.scheme, Host: "example.com"}}
			err := redirectPolicy(req, make([]*http.Request, tt.via))
			if (err != nil) != tt.wantErr {
				t.Errorf("redirectPolicy() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
