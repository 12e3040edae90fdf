package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrResolution indicates that no download URL for the latest build could be
// discovered. It is fatal to the whole pipeline and never retried.
var ErrResolution = errors.New("latest artifact URL not found")

// maxPageSize caps how much of the vendor page is read into memory.
const maxPageSize = 8 << 20

// Resolver discovers the newest artifact download URL.
type Resolver interface {
	// Resolve returns the latest artifact URL or ErrResolution when the
	// vendor page yields no usable candidate.
	Resolve(ctx context.Context) (string, error)
}

// New returns the resolver for the given strategy name ("scrape" or "api").
//
//nolint:ireturn // Strategy selection is the point of this constructor.
func New(strategy, downloadsPage string, timeout time.Duration) (Resolver, error) {
	client := &http.Client{Timeout: timeout}

	switch strategy {
	case "scrape":
		return &scrapeResolver{page: downloadsPage, client: client}, nil
	case "api":
		return &apiResolver{page: downloadsPage, client: client}, nil
	default:
		return nil, fmt.Errorf("unknown resolver strategy %q", strategy)
	}
}

// fetchPage downloads the vendor page body as text.
func fetchPage(ctx context.Context, client *http.Client, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", err
	}

	response, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %s", pageURL, response.Status)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxPageSize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}

	return string(body), nil
}
