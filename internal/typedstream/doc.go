// Package typedstream recovers human-readable text from the legacy
// object-serialization blobs some message rows store instead of plain text.
//
// The format has no public description, so every routine here is
// best-effort: malformed input yields an empty result, never an error.
package typedstream
