// Package updater orchestrates the manifest update pipeline: read the
// current manifest fields, resolve the latest published artifact URL and
// version, fetch the content hash, rewrite the manifest and verify the
// build, rolling back on build failure.
//
// Control flows strictly forward. Any stage failure aborts the run; a
// resolved URL equal to the manifest's current one is a successful no-op.
package updater
