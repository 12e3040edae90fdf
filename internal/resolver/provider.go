package resolver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/mattn/go-isatty"
)

// artifactFilenameRE captures the version segment of an artifact filename,
// e.g. "Cursor-2.0.34-x86_64.AppImage" -> "2.0.34".
var artifactFilenameRE = regexp.MustCompile(`^Cursor-(.+)-x86_64\.AppImage$`)

// ExtractVersion derives the version string embedded in the artifact URL's
// trailing filename. It returns an empty string when the filename does not
// match the fixed pattern; callers fall back to a VersionProvider.
func ExtractVersion(artifactURL string) string {
	name := path.Base(artifactURL)

	// Strip a query string left over from redirect targets.
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}

	m := artifactFilenameRE.FindStringSubmatch(name)
	if m == nil {
		return ""
	}

	return m[1]
}

// VersionProvider supplies a version string when it cannot be derived from
// the artifact URL.
type VersionProvider interface {
	// ProvideVersion returns a version string; an empty result means the
	// provider has nothing to offer and resolution must fail.
	ProvideVersion(ctx context.Context) (string, error)
}

// StaticVersionProvider returns a fixed version string. Used for the
// --version-override flag and in tests.
type StaticVersionProvider string

// ProvideVersion implements VersionProvider.
func (p StaticVersionProvider) ProvideVersion(_ context.Context) (string, error) {
	return strings.TrimSpace(string(p)), nil
}

// PromptVersionProvider asks the operator for a version on standard input.
// When input is not a terminal it returns an empty string immediately so
// unattended runs fail fast instead of hanging on a read.
type PromptVersionProvider struct {
	// In is the prompt input stream, normally os.Stdin.
	In io.Reader
	// Out is where the prompt text is written, normally os.Stderr.
	Out io.Writer
}

// ProvideVersion implements VersionProvider.
func (p *PromptVersionProvider) ProvideVersion(_ context.Context) (string, error) {
	if file, ok := p.In.(*os.File); ok && !isatty.IsTerminal(file.Fd()) {
		return "", nil
	}

	if _, err := fmt.Fprint(p.Out, "Could not derive the version from the URL. Enter it manually: "); err != nil {
		return "", err
	}

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}

	return strings.TrimSpace(line), nil
}
