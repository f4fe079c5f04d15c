// Package value provides the record value model used across xmsync.
//
// Source rows, configured defaults and resolved records are all expressed
// with the same small set of types: String, Bool, Int, Number, List, Object
// and Null. This package imports nothing internal so every other package can
// depend on it.
//
// Key constraints:
//   - Values keep the type they were supplied with; no coercion happens here
//   - Number preserves the literal text of non-integer JSON numbers
//   - Object iteration order is only deterministic through SortedKeys
//   - Canonical JSON (RFC 8785 key order, NFC strings) backs content hashes
package value
