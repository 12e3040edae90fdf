// Package prefetch obtains the content hash of a remote artifact through
// nix-prefetch-url, in the encoding the flake manifest expects.
package prefetch
