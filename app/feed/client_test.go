package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const clientTestFeed = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Client Test Feed</title>
    <link>https://example.com</link>
    <item>
      <title>Story</title>
      <link>https://example.com/story</link>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestClientFetch(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(clientTestFeed))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "TestAgent/1.0", 5*time.Second)

	items, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].Title != "Story" {
		t.Errorf("Expected title 'Story', got %q", items[0].Title)
	}
	if gotUserAgent != "TestAgent/1.0" {
		t.Errorf("Expected configured user agent, got %q", gotUserAgent)
	}
}

func TestClientFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.Client(), "TestAgent/1.0", 5*time.Second)

	if _, err := client.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestClientFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(clientTestFeed))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "TestAgent/1.0", 50*time.Millisecond)

	_, err := client.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrFeedTimeout) {
		t.Errorf("Expected ErrFeedTimeout, got: %v", err)
	}
}

func TestClientFetchInvalidFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "TestAgent/1.0", 5*time.Second)

	if _, err := client.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Expected error for unparsable feed body")
	}
}
