// Package types contains the shared declarations used across bamlink:
// the filesystem abstraction, the resolved-sample records produced by the
// resolver, and the options and counters consumed by the linker.
package types
