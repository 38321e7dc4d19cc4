// Package versions implements the operations the uinstall CLI performs on
// the local Unity versions cache: listing, lookup, package inspection,
// refresh via an injected catalog discovery and clearing.
package versions
