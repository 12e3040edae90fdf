// Package buildcheck runs the external nix build against the updated
// manifest and verifies the produced tree: the launcher's self-reported
// version plus the icon and desktop-integration outputs. Verification
// findings are warnings; only the build itself can fail the pipeline.
package buildcheck
