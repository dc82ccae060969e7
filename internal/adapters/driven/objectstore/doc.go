// Package objectstore groups the durable object store backends.
//
// Both backends refuse to overwrite: a Put against an existing key returns
// domain.ErrAlreadyExists and leaves the stored object untouched.
package objectstore
