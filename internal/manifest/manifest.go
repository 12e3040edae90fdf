package manifest

import (
	"regexp"
	"strings"
)

// Fields are the three manifest assignments the updater cares about.
// Empty values mean the field was not found; extraction never fails.
type Fields struct {
	// Version is the value of the first `version = "..."` assignment.
	Version string
	// URL is the first source URL on the vendor download host.
	URL string
	// Hash is the value of the first `sha256 = "..."` assignment.
	Hash string
}

var (
	// versionRE matches a `version = "..."` assignment and captures the value.
	versionRE = regexp.MustCompile(`version\s*=\s*"([^"]*)"`)

	// sourceURLRE matches a URL on the vendor's fixed download host.
	sourceURLRE = regexp.MustCompile(`https://downloads\.cursor\.com/[^"\s]+`)

	// hashRE matches a `sha256 = "..."` assignment and captures the value.
	hashRE = regexp.MustCompile(`sha256\s*=\s*"([^"]*)"`)
)

// Extract pulls the current version, source URL and hash out of the manifest
// text. Missing fields yield empty strings so callers can decide how to react.
func Extract(content string) Fields {
	var fields Fields

	if m := versionRE.FindStringSubmatch(content); m != nil {
		fields.Version = m[1]
	}

	if m := sourceURLRE.FindString(content); m != "" {
		fields.URL = m
	}

	if m := hashRE.FindStringSubmatch(content); m != nil {
		fields.Hash = m[1]
	}

	return fields
}

// Apply rewrites the three fields in the manifest text and returns the new
// content together with human-readable warnings for substitutions that
// matched nothing. The three substitutions are independent: the first
// `version` assignment value, every literal occurrence of the old URL, and
// the first `sha256` assignment value, in that order.
func Apply(content string, old, updated Fields) (string, []string) {
	var warnings []string

	content, replaced := replaceFirstGroup(versionRE, content, updated.Version)
	if !replaced {
		warnings = append(warnings, "no version assignment found in manifest, version not updated")
	}

	switch {
	case old.URL == "":
		// Substituting an empty string would match everywhere, so skip it.
		warnings = append(warnings, "no previous source URL found in manifest, URL substitution skipped")
	case !strings.Contains(content, old.URL):
		warnings = append(warnings, "previous source URL not present in manifest, URL substitution matched nothing")
	default:
		content = strings.ReplaceAll(content, old.URL, updated.URL)
	}

	content, replaced = replaceFirstGroup(hashRE, content, updated.Hash)
	if !replaced {
		warnings = append(warnings, "no sha256 assignment found in manifest, hash not updated")
	}

	return content, warnings
}

// replaceFirstGroup substitutes the first capture group of the first match of
// re in content with value. It reports whether a match was found.
func replaceFirstGroup(re *regexp.Regexp, content, value string) (string, bool) {
	loc := re.FindStringSubmatchIndex(content)
	if loc == nil {
		return content, false
	}

	// loc[2]:loc[3] bound the first capture group.
	return content[:loc[2]] + value + content[loc[3]:], true
}
