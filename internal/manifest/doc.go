// Package manifest reads and rewrites the three tracked fields of the flake
// manifest: the version assignment, the vendor source URL and the sha256
// assignment.
//
// The manifest is treated as opaque text. Extraction takes the first match
// of each field; the URL substitution replaces every literal occurrence of
// the old URL. File adds snapshot and restore for byte-exact rollback.
package manifest
