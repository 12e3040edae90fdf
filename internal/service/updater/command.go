package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/gofrs/flock"

	"github.com/oshokin/cursor-flake-updater/internal/buildcheck"
	"github.com/oshokin/cursor-flake-updater/internal/config"
	"github.com/oshokin/cursor-flake-updater/internal/logger"
	"github.com/oshokin/cursor-flake-updater/internal/manifest"
	"github.com/oshokin/cursor-flake-updater/internal/prefetch"
	"github.com/oshokin/cursor-flake-updater/internal/resolver"
)

var (
	// ErrDependencyMissing is returned by pre-flight when a required external
	// tool is not on PATH.
	ErrDependencyMissing = errors.New("required external tool not found")

	// ErrWrongDirectory is returned by pre-flight when the manifest does not
	// exist at the configured path.
	ErrWrongDirectory = errors.New("manifest file not found")

	// ErrVersionResolution is returned when no version string is obtainable,
	// even after the fallback provider was asked.
	ErrVersionResolution = errors.New("unable to determine the new version")

	// errAlreadyRunning indicates another updater holds the manifest lock.
	errAlreadyRunning = errors.New("another updater instance holds the manifest lock")
)

// requiredTools are the external commands the pipeline shells out to.
//
//nolint:gochecknoglobals // Static pre-flight checklist.
var requiredTools = []string{"nix", "nix-prefetch-url"}

// Options are inputs accepted by the updater entry point. Non-empty values
// override the corresponding configuration fields.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// ManifestPath overrides the manifest location from the configuration.
	ManifestPath string
	// Strategy overrides the discovery strategy from the configuration.
	Strategy string
	// VersionOverride supplies the new version directly, bypassing both URL
	// extraction and the interactive prompt.
	VersionOverride string
}

// Run executes the manifest update pipeline and is the public entry point
// for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "cursor-updater")

	r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	defer r.cleanup(ctx)

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Update run failed", "error", err)
		return err
	}

	return nil
}

// newRunner loads configuration, performs the pre-flight checks and wires
// the pipeline collaborators.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.ManifestPath != "" {
		cfg.ManifestPath = opts.ManifestPath
	}

	if opts.Strategy != "" {
		cfg.Strategy = opts.Strategy
	}

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	if err = checkDependencies(); err != nil {
		return nil, err
	}

	if _, err = os.Stat(cfg.ManifestPath); err != nil {
		return nil, fmt.Errorf("%w: %s (run the tool next to the flake it maintains)", ErrWrongDirectory, cfg.ManifestPath)
	}

	strategyResolver, err := resolver.New(cfg.Strategy, cfg.DownloadsPage, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	r := &runner{
		cfg:      cfg,
		file:     manifest.NewFile(cfg.ManifestPath),
		resolver: strategyResolver,
		fetcher:  prefetch.NewNixPrefetcher(cfg.Timeout),
		builder:  buildcheck.NewNixBuilder(cfg.Timeout),
		provider: pickProvider(opts.VersionOverride),
		lock:     flock.New(cfg.ManifestPath + ".lock"),
	}

	if err = r.acquireLock(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

// checkDependencies verifies the external tools are present before any work.
func checkDependencies() error {
	for _, tool := range requiredTools {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%w: %s", ErrDependencyMissing, tool)
		}
	}

	return nil
}

// pickProvider selects the version fallback: an operator-supplied override
// or the interactive stdin prompt.
//
//nolint:ireturn // Provider selection is the point of this helper.
func pickProvider(override string) resolver.VersionProvider {
	if override != "" {
		return resolver.StaticVersionProvider(override)
	}

	return &resolver.PromptVersionProvider{In: os.Stdin, Out: os.Stderr}
}
