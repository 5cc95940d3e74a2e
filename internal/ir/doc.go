// Package ir provides canonical intermediate representation types for weft.
//
// This package contains type definitions and pure functions only. All other
// internal packages import ir; ir imports nothing internal. This ensures IR
// remains the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - Quads are immutable value types; identity is structural equality
//   - All content hashing uses RFC 8785 canonical JSON and SHA-256 with
//     domain separation
//   - Deterministic ordering everywhere: quads compare lexicographically by
//     (subject, predicate, object, graph), object keys by UTF-16 code units
package ir
