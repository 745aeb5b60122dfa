// Package filesystem provides implementations of the types.FS interface.
//
// NewOS returns the real filesystem used in production. NewAferoFS wraps
// an afero filesystem (typically MemMapFs) for tests that do not depend
// on symlink semantics.
package filesystem
