package prefetch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrHashFetch indicates that no content hash could be obtained for the
// artifact. The pipeline aborts before touching the manifest.
var ErrHashFetch = errors.New("empty artifact hash")

// prefetchCommand is the content-addressing utility: it downloads the
// artifact (or serves it from its URL-keyed cache) and prints the hash in
// the manifest's native encoding.
const prefetchCommand = "nix-prefetch-url"

// Fetcher retrieves the content hash of the artifact at a URL.
type Fetcher interface {
	// Fetch returns the hash string or ErrHashFetch when none is produced.
	Fetch(ctx context.Context, artifactURL string) (string, error)
}

// commandRunner runs an external command and returns its standard output.
// It exists so tests can substitute the prefetch utility.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// NixPrefetcher fetches hashes by running nix-prefetch-url.
type NixPrefetcher struct {
	run     commandRunner
	timeout time.Duration
}

// NewNixPrefetcher returns a Fetcher backed by nix-prefetch-url.
func NewNixPrefetcher(timeout time.Duration) *NixPrefetcher {
	return &NixPrefetcher{
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
		timeout: timeout,
	}
}

// Fetch implements Fetcher.
func (p *NixPrefetcher) Fetch(ctx context.Context, artifactURL string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	output, err := p.run(runCtx, prefetchCommand, artifactURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s failed: %v", ErrHashFetch, prefetchCommand, err)
	}

	hash := lastLine(string(output))
	if hash == "" {
		return "", fmt.Errorf("%w: %s produced no output", ErrHashFetch, prefetchCommand)
	}

	return hash, nil
}

// lastLine returns the last non-empty line of s. nix-prefetch-url prints
// progress noise before the hash, so only the final line matters.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")

	return strings.TrimSpace(lines[len(lines)-1])
}
