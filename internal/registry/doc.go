// Package registry maintains the library-wide index of item id to owning
// task and classifies ownership collisions.
//
// An item id denotes one semantic variable across the whole library. When
// a second task claims an id, the collision is classified:
//
//   - version_candidate: the two task names share a prefix after
//     normalization, or the item id's leading alphabetic token appears in
//     both. The caller routes these to the version merger.
//   - duplicate: anything else, and any collision between two
//     registrations of the same import batch. Duplicates are library
//     integrity errors.
//
// Entries carry a tier (official, local, import). A local entry silently
// shadows an official entry with the same id.
//
// A Registry is built fresh for every run and is not safe for concurrent use.
package registry
