package buildcheck

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrBuild indicates that the build of the updated manifest failed. The
// pipeline rolls the manifest back when it sees this error.
var ErrBuild = errors.New("build failed")

const (
	// buildCommand builds the flake in the manifest's directory.
	buildCommand = "nix"

	// builtExecutable is where the build places the editor launcher,
	// relative to the manifest directory.
	builtExecutable = "result/bin/cursor"

	// builtIcon is the auxiliary icon resource produced by the build.
	builtIcon = "result/share/icons/hicolor/512x512/apps/cursor.png"

	// builtDesktopFile is the desktop-integration descriptor produced by the build.
	builtDesktopFile = "result/share/applications/cursor.desktop"

	// versionCommandTimeout bounds the built executable's version query.
	versionCommandTimeout = 30 * time.Second
)

// commandRunner runs an external command in a directory and returns its
// standard output. Tests substitute it to avoid invoking nix.
type commandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// Builder runs the external build and verifies its outputs.
type Builder interface {
	// Build attempts to build the manifest in dir; failure is ErrBuild.
	Build(ctx context.Context, dir string) error
	// Verify inspects the build tree and returns non-fatal warnings: a
	// version mismatch reported by the built executable or missing
	// auxiliary outputs.
	Verify(ctx context.Context, dir, wantVersion string) []string
}

// NixBuilder builds the flake with `nix build` and probes the result tree.
type NixBuilder struct {
	run     commandRunner
	timeout time.Duration
}

// NewNixBuilder returns a Builder backed by the nix CLI.
func NewNixBuilder(timeout time.Duration) *NixBuilder {
	return &NixBuilder{
		run: func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
			cmd := exec.CommandContext(ctx, name, args...)
			cmd.Dir = dir

			return cmd.Output()
		},
		timeout: timeout,
	}
}

// Build implements Builder.
func (b *NixBuilder) Build(ctx context.Context, dir string) error {
	runCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if _, err := b.run(runCtx, dir, buildCommand, "build"); err != nil {
		return fmt.Errorf("%w: %v", ErrBuild, err)
	}

	return nil
}

// Verify implements Builder.
func (b *NixBuilder) Verify(ctx context.Context, dir, wantVersion string) []string {
	var warnings []string

	if warning := b.verifyBinaryVersion(ctx, dir, wantVersion); warning != "" {
		warnings = append(warnings, warning)
	}

	for _, relative := range []string{builtIcon, builtDesktopFile} {
		if _, err := os.Stat(filepath.Join(dir, relative)); err != nil {
			warnings = append(warnings, fmt.Sprintf("build output %s is missing", relative))
		}
	}

	return warnings
}

// verifyBinaryVersion runs the built executable and compares its
// self-reported version with the expected one.
func (b *NixBuilder) verifyBinaryVersion(ctx context.Context, dir, wantVersion string) string {
	executable := filepath.Join(dir, builtExecutable)
	if _, err := os.Stat(executable); err != nil {
		return fmt.Sprintf("built executable %s is missing", builtExecutable)
	}

	runCtx, cancel := context.WithTimeout(ctx, versionCommandTimeout)
	defer cancel()

	output, err := b.run(runCtx, dir, executable, "--version")
	if err != nil {
		return fmt.Sprintf("could not query built executable version: %v", err)
	}

	got := firstLine(string(output))
	if got != wantVersion {
		return fmt.Sprintf("built executable reports version %q, expected %q", got, wantVersion)
	}

	return ""
}

// firstLine returns the first line of s, trimmed.
func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")

	return strings.TrimSpace(line)
}
