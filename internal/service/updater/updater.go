package updater

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	goversion "github.com/hashicorp/go-version"

	"github.com/oshokin/cursor-flake-updater/internal/buildcheck"
	"github.com/oshokin/cursor-flake-updater/internal/config"
	"github.com/oshokin/cursor-flake-updater/internal/logger"
	"github.com/oshokin/cursor-flake-updater/internal/manifest"
	"github.com/oshokin/cursor-flake-updater/internal/prefetch"
	"github.com/oshokin/cursor-flake-updater/internal/resolver"
)

// Release describes the newest published build. It is constructed
// progressively across the pipeline stages and discarded afterwards.
type Release struct {
	// Version is the version string embedded in the artifact URL.
	Version string
	// URL is the artifact download URL.
	URL string
	// Hash is the artifact content hash in the manifest's encoding.
	Hash string
}

// runner holds the collaborators and state for a single pipeline execution.
// It is intentionally unexported—call Run(ctx, Options) from callers.
type runner struct {
	cfg      *config.Config           // Validated settings for this run.
	file     *manifest.File           // Manifest bound to its path, with snapshot support.
	resolver resolver.Resolver        // Latest-release discovery strategy.
	fetcher  prefetch.Fetcher         // Content hash retrieval.
	builder  buildcheck.Builder       // External build and result verification.
	provider resolver.VersionProvider // Fallback when the URL embeds no version.
	lock     *flock.Flock             // Advisory lock guarding the manifest.
}

// run drives the four pipeline stages strictly forward: read the manifest,
// resolve the latest release, fetch its hash, rewrite and verify. The first
// fatal error aborts the run; only a build failure triggers a rollback.
func (r *runner) run(ctx context.Context) error {
	content, err := r.file.Read()
	if err != nil {
		return err
	}

	current := manifest.Extract(content)
	if current.Version == "" {
		logger.Info(ctx, "Could not determine the current version from the manifest")
	} else {
		logger.InfoKV(ctx, "Current manifest state", "version", current.Version)
	}

	logger.InfoKV(ctx, "Resolving the latest release", "strategy", r.cfg.Strategy)

	release, upToDate, err := r.resolveRelease(ctx, current)
	if err != nil {
		return err
	}

	if upToDate {
		logger.InfoKV(ctx, "Manifest is already up to date", "version", current.Version)
		return nil
	}

	logger.InfoKV(ctx, "Fetching the artifact hash", "url", release.URL)

	release.Hash, err = r.fetcher.Fetch(ctx, release.URL)
	if err != nil {
		return err
	}

	if err = r.rewriteAndVerify(ctx, content, current, release); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Manifest updated",
		"old_version", current.Version,
		"new_version", release.Version,
		"strategy", r.cfg.Strategy)

	return nil
}

// resolveRelease discovers the latest artifact URL and derives its version.
// upToDate reports the normal terminal state where the resolved URL equals
// the manifest's current one.
func (r *runner) resolveRelease(ctx context.Context, current manifest.Fields) (*Release, bool, error) {
	latestURL, err := r.resolver.Resolve(ctx)
	if err != nil {
		return nil, false, err
	}

	if latestURL == current.URL {
		return nil, true, nil
	}

	release := &Release{URL: latestURL}

	release.Version, err = r.resolveVersion(ctx, latestURL)
	if err != nil {
		return nil, false, err
	}

	r.logVersionDirection(ctx, current.Version, release.Version)

	return release, false, nil
}

// resolveVersion extracts the version from the artifact URL, falling back to
// the injected provider when the filename does not match the fixed pattern.
func (r *runner) resolveVersion(ctx context.Context, artifactURL string) (string, error) {
	if v := resolver.ExtractVersion(artifactURL); v != "" {
		return v, nil
	}

	logger.WarnKV(ctx, "Artifact filename does not embed a version", "url", artifactURL)

	v, err := r.provider.ProvideVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("version fallback: %w", err)
	}

	if v == "" {
		return "", fmt.Errorf("%w for %s", ErrVersionResolution, artifactURL)
	}

	return v, nil
}

// logVersionDirection compares the current and resolved versions to report
// whether this is an upgrade. Parse failures are informational only; the
// pipeline's up-to-date decision rests on URL equality alone.
func (r *runner) logVersionDirection(ctx context.Context, currentVersion, newVersion string) {
	current, errCurrent := goversion.NewVersion(currentVersion)
	next, errNext := goversion.NewVersion(newVersion)

	if errCurrent != nil || errNext != nil {
		logger.DebugKV(ctx, "Versions are not comparable",
			"current", currentVersion, "new", newVersion)

		return
	}

	switch {
	case next.GreaterThan(current):
		logger.InfoKV(ctx, "Upgrading", "from", currentVersion, "to", newVersion)
	case next.LessThan(current):
		logger.WarnKV(ctx, "Resolved version is older than the current one",
			"current", currentVersion, "resolved", newVersion)
	default:
		logger.InfoKV(ctx, "Versions are equal but URLs differ",
			"version", newVersion)
	}
}

// rewriteAndVerify applies the three substitutions, builds the package and
// verifies the result, rolling the manifest back byte-for-byte when the
// build fails.
func (r *runner) rewriteAndVerify(ctx context.Context, content string, current manifest.Fields, release *Release) error {
	// The snapshot must exist before the first write so rollback is exact.
	if err := r.file.Snapshot(); err != nil {
		return err
	}

	updated, warnings := manifest.Apply(content, current, manifest.Fields{
		Version: release.Version,
		URL:     release.URL,
		Hash:    release.Hash,
	})
	for _, warning := range warnings {
		logger.Warn(ctx, warning)
	}

	if err := r.file.Write(updated); err != nil {
		return err
	}

	logger.Info(ctx, "Building the package from the updated manifest")

	manifestDir := filepath.Dir(r.file.Path())

	if err := r.builder.Build(ctx, manifestDir); err != nil {
		logger.Warn(ctx, "Build failed, restoring the previous manifest")

		if restoreErr := r.file.Restore(); restoreErr != nil {
			logger.ErrorKV(ctx, "Manifest rollback failed", "error", restoreErr)
		}

		return err
	}

	for _, warning := range r.builder.Verify(ctx, manifestDir, release.Version) {
		logger.Warn(ctx, warning)
	}

	return nil
}

// acquireLock takes the advisory lock next to the manifest so concurrent
// invocations cannot race on the file.
func (r *runner) acquireLock(_ context.Context) error {
	locked, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire manifest lock: %w", err)
	}

	if !locked {
		return errAlreadyRunning
	}

	return nil
}

// cleanup releases the advisory lock. Best-effort.
func (r *runner) cleanup(ctx context.Context) {
	if r.lock == nil {
		return
	}

	if err := r.lock.Unlock(); err != nil {
		logger.WarnKV(ctx, "Could not release manifest lock", "error", err)
	}
}
