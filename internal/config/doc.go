// Package config defines the settings used by the uinstall commands and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the versions cache path, the target platform and
// the self-update manifest URL.
package config
