// Package config defines updater settings and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type holds the manifest path, the discovery strategy, the
// vendor downloads page and the timeout applied to external calls.
package config
