package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleManifest = `{
  description = "Cursor editor";

  outputs = { self, nixpkgs }: {
    packages.x86_64-linux.default = appimageTools.wrapType2 {
      pname = "cursor";
      version = "2.0.30";
      src = fetchurl {
        url = "https://downloads.cursor.com/production/abc123/linux/appImage/x64/Cursor-2.0.30-x86_64.AppImage";
        sha256 = "0c0ffeec0ffeec0ffeec0ffeec0ffeec0ffee";
      };
    };
  };
}
`

// TestExtract pulls the three tracked fields out of a realistic manifest.
func TestExtract(t *testing.T) {
	t.Parallel()

	fields := Extract(sampleManifest)
	require.Equal(t, "2.0.30", fields.Version)
	require.Equal(t,
		"https://downloads.cursor.com/production/abc123/linux/appImage/x64/Cursor-2.0.30-x86_64.AppImage",
		fields.URL)
	require.Equal(t, "0c0ffeec0ffeec0ffeec0ffeec0ffeec0ffee", fields.Hash)
}

// TestExtractMissingFields returns empty strings, never errors.
func TestExtractMissingFields(t *testing.T) {
	t.Parallel()

	fields := Extract("{ pname = \"cursor\"; }")
	require.Empty(t, fields.Version)
	require.Empty(t, fields.URL)
	require.Empty(t, fields.Hash)
}

// TestApply rewrites all three fields and leaves the rest of the text intact.
func TestApply(t *testing.T) {
	t.Parallel()

	old := Extract(sampleManifest)
	updated := Fields{
		Version: "2.0.34",
		URL:     "https://downloads.cursor.com/production/def456/linux/appImage/x64/Cursor-2.0.34-x86_64.AppImage",
		Hash:    "1badc0de1badc0de1badc0de1badc0de1badc",
	}

	result, warnings := Apply(sampleManifest, old, updated)
	require.Empty(t, warnings)

	got := Extract(result)
	require.Equal(t, updated.Version, got.Version)
	require.Equal(t, updated.URL, got.URL)
	require.Equal(t, updated.Hash, got.Hash)
	require.NotContains(t, result, old.URL)
	require.Contains(t, result, "pname = \"cursor\"")
}

// TestApplyReplacesEveryURLOccurrence covers manifests that repeat the URL literal.
func TestApplyReplacesEveryURLOccurrence(t *testing.T) {
	t.Parallel()

	content := sampleManifest +
		"# mirror: https://downloads.cursor.com/production/abc123/linux/appImage/x64/Cursor-2.0.30-x86_64.AppImage\n"
	old := Extract(content)
	updated := Fields{
		Version: "2.0.34",
		URL:     "https://downloads.cursor.com/production/def456/linux/appImage/x64/Cursor-2.0.34-x86_64.AppImage",
		Hash:    "1badc0de",
	}

	result, warnings := Apply(content, old, updated)
	require.Empty(t, warnings)
	require.NotContains(t, result, old.URL)
	require.Equal(t, 2, strings.Count(result, updated.URL))
}

// TestApplyEmptyOldURL skips the URL substitution and surfaces a warning
// instead of replacing every empty string in the file.
func TestApplyEmptyOldURL(t *testing.T) {
	t.Parallel()

	content := "version = \"1.0.0\";\nsha256 = \"aaaa\";\n"
	updated := Fields{Version: "2.0.0", URL: "https://downloads.cursor.com/x", Hash: "bbbb"}

	result, warnings := Apply(content, Fields{}, updated)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "URL substitution skipped")

	got := Extract(result)
	require.Equal(t, "2.0.0", got.Version)
	require.Equal(t, "bbbb", got.Hash)
	require.NotContains(t, result, updated.URL)
}

// TestApplyStaleOldURL warns when the previous URL is absent from the text.
func TestApplyStaleOldURL(t *testing.T) {
	t.Parallel()

	content := "version = \"1.0.0\";\nsha256 = \"aaaa\";\n"
	old := Fields{URL: "https://downloads.cursor.com/gone"}
	updated := Fields{Version: "2.0.0", URL: "https://downloads.cursor.com/new", Hash: "bbbb"}

	result, warnings := Apply(content, old, updated)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "matched nothing")
	require.NotContains(t, result, updated.URL)
}

// TestApplyFirstAssignmentOnly ensures only the first version and sha256
// assignments are rewritten.
func TestApplyFirstAssignmentOnly(t *testing.T) {
	t.Parallel()

	content := "version = \"1.0.0\";\nversion = \"keep\";\nsha256 = \"aaaa\";\nsha256 = \"keep\";\n"
	old := Fields{Version: "1.0.0", Hash: "aaaa"}
	updated := Fields{Version: "2.0.0", Hash: "bbbb"}

	result, warnings := Apply(content, old, updated)
	require.Len(t, warnings, 1) // Only the empty-URL warning.
	require.Contains(t, result, "version = \"2.0.0\"")
	require.Contains(t, result, "version = \"keep\"")
	require.Contains(t, result, "sha256 = \"bbbb\"")
	require.Contains(t, result, "sha256 = \"keep\"")
}

// TestFileSnapshotRestore verifies byte-exact rollback through Snapshot and Restore.
func TestFileSnapshotRestore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "flake.nix")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))

	file := NewFile(path)
	require.NoError(t, file.Snapshot())
	require.NoError(t, file.Write("garbage"))

	changed, err := file.Read()
	require.NoError(t, err)
	require.Equal(t, "garbage", changed)

	require.NoError(t, file.Restore())

	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte(sampleManifest), restored)
}

// TestFileRestoreWithoutSnapshot fails instead of writing nothing.
func TestFileRestoreWithoutSnapshot(t *testing.T) {
	t.Parallel()

	file := NewFile(filepath.Join(t.TempDir(), "flake.nix"))
	require.Error(t, file.Restore())
}
