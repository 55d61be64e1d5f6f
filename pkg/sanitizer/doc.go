// Package sanitizer provides input normalization for leasing data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Plot names: Collapse internal whitespace, trim leading/trailing spaces
//   - Statuses: Trim and uppercase so query parameters match stored values
//   - Slices: Remove duplicates and empty values after normalization
package sanitizer
