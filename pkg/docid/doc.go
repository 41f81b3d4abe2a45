// Package docid provides stable logical document identifiers.
//
// A document ID names a logical document, not a stored row: every draft,
// published, and per-locale version of the same document carries the same
// document ID. IDs are minted once when the first version of a document is
// created and never change afterwards, except when a document is cloned
// (the clone receives a fresh identity).
//
// # Core Concepts
//
//  1. ID: Opaque, collision-resistant identifier for the logical document.
//     Serialized as a canonical lowercase UUID string in JSON and in the
//     database.
//
//  2. Generator: The minting interface the document repository consumes.
//     Production code uses the UUID-backed generator; tests may substitute
//     a deterministic one.
package docid
