// Package document loads, encodes and validates the persisted YAML document.
//
// Loading is all-or-nothing: Load either returns a fully populated
// model.Document or a *model.Error with one of
//   - NOT_FOUND: the file does not exist
//   - EMPTY_DOCUMENT: the file exists but holds no YAML content
//   - MALFORMED_DOCUMENT: the YAML does not parse into the document shape
//
// Validate is a pure function over a model.Document. It reports every
// violation it finds (no fail-fast), in a fixed order, so callers can show
// all problems at once. CheckSchema adds a stricter CUE-based type check.
package document
