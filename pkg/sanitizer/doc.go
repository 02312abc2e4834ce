// Package sanitizer normalizes user-supplied text before validation and
// storage.
//
// All functions are idempotent and never fail: invalid input comes back as
// an empty string or slice.
//
// Normalization includes:
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Class ids: strip all whitespace ("3 - 1" becomes "3-1")
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
