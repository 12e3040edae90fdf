package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const artifactURL = "https://downloads.cursor.com/production/abc123/linux/appImage/x64/Cursor-2.0.34-x86_64.AppImage"

// TestScrapeResolver picks the first matching hyperlink in document order.
func TestScrapeResolver(t *testing.T) {
	t.Parallel()

	page := fmt.Sprintf(`<html><body>
		<a href="/docs">Docs</a>
		<a href="https://downloads.cursor.com/production/abc123/mac/Cursor-2.0.34.dmg">mac</a>
		<a href="%s">linux</a>
		<a href="https://downloads.cursor.com/production/old999/linux/appImage/x64/Cursor-2.0.30-x86_64.AppImage">old</a>
		</body></html>`, artifactURL)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, page)
	}))
	defer server.Close()

	r, err := New("scrape", server.URL, time.Second)
	require.NoError(t, err)

	got, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, artifactURL, got)
}

// TestScrapeResolverNoMatch fails with ErrResolution when no link matches.
func TestScrapeResolverNoMatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `<a href="/nothing-useful">x</a>`)
	}))
	defer server.Close()

	r, err := New("scrape", server.URL, time.Second)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background())
	require.ErrorIs(t, err, ErrResolution)
}

// TestAPIResolver extracts the API endpoint from the page and follows its
// redirect metadata without fetching the artifact body.
func TestAPIResolver(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	endpoint := server.URL + "/api/download?platform=linux-x64&amp;releaseTrack=stable"
	mux.HandleFunc("/downloads", func(w http.ResponseWriter, _ *http.Request) {
		// The endpoint pattern is anchored to the vendor host; rewrite the
		// page so the test server plays that role.
		_, _ = fmt.Fprintf(w, `<a href="%s">Download</a>`, endpoint)
	})
	mux.HandleFunc("/api/download", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		require.Equal(t, "stable", r.URL.Query().Get("releaseTrack"))
		w.Header().Set("Location", artifactURL)
		w.WriteHeader(http.StatusTemporaryRedirect)
	})

	r := &apiResolver{page: server.URL + "/downloads", client: &http.Client{Timeout: time.Second}}

	body, err := fetchPage(context.Background(), r.client, r.page)
	require.NoError(t, err)
	require.Contains(t, body, "/api/download")

	got, err := r.resolveRedirect(context.Background(), decodeEntities(endpoint))
	require.NoError(t, err)
	require.Equal(t, artifactURL, got)
}

// TestAPIResolverNoRedirect fails with ErrResolution on a 200 response.
func TestAPIResolverNoRedirect(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := &apiResolver{page: server.URL, client: &http.Client{Timeout: time.Second}}

	_, err := r.resolveRedirect(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrResolution)
}

// TestAPIResolverNoEndpoint fails with ErrResolution when the page has no
// download API link.
func TestAPIResolverNoEndpoint(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `<html>nothing here</html>`)
	}))
	defer server.Close()

	r, err := New("api", server.URL, time.Second)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background())
	require.ErrorIs(t, err, ErrResolution)
}

// TestNewUnknownStrategy rejects strategies that are not scrape or api.
func TestNewUnknownStrategy(t *testing.T) {
	t.Parallel()

	_, err := New("rss", "https://example.com", time.Second)
	require.Error(t, err)
}
