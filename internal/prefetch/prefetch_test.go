package prefetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestFetchReturnsLastLine takes the hash from the final output line.
func TestFetchReturnsLastLine(t *testing.T) {
	t.Parallel()

	p := &NixPrefetcher{
		run: func(_ context.Context, name string, args ...string) ([]byte, error) {
			require.Equal(t, "nix-prefetch-url", name)
			require.Equal(t, []string{"https://example.com/a.AppImage"}, args)

			return []byte("path is '/nix/store/xyz'\n0c0ffee0c0ffee\n"), nil
		},
		timeout: time.Second,
	}

	hash, err := p.Fetch(context.Background(), "https://example.com/a.AppImage")
	require.NoError(t, err)
	require.Equal(t, "0c0ffee0c0ffee", hash)
}

// TestFetchEmptyOutput fails with ErrHashFetch.
func TestFetchEmptyOutput(t *testing.T) {
	t.Parallel()

	p := &NixPrefetcher{
		run: func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return []byte("\n"), nil
		},
		timeout: time.Second,
	}

	_, err := p.Fetch(context.Background(), "https://example.com/a.AppImage")
	require.ErrorIs(t, err, ErrHashFetch)
}

// TestFetchCommandFailure wraps the command error in ErrHashFetch.
func TestFetchCommandFailure(t *testing.T) {
	t.Parallel()

	p := &NixPrefetcher{
		run: func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return nil, errors.New("exit status 1")
		},
		timeout: time.Second,
	}

	_, err := p.Fetch(context.Background(), "https://example.com/a.AppImage")
	require.ErrorIs(t, err, ErrHashFetch)
}
