// Package sbm holds the state of a hierarchical stochastic block model over
// a typed (unipartite or multipartite) network, and the incremental
// operations a Metropolis-Hastings search needs.
//
// A Network owns a stack of Levels. Level 0 holds the input nodes; every
// level above holds blocks, each of which owns a set of children in the level
// below and carries the union of its children's edge entries, split by the
// type of the neighbouring node. Entries always name leaves, so the block of
// a neighbour at any depth is found with Level.Ancestor.
//
// Moves are evaluated without touching the state (MoveEntropyDelta,
// GetMoveResults) and applied with Level.Swap, which keeps every level above
// in step. Structural invariants are checked with panics wrapping
// ErrInconsistent; malformed input is reported through the sentinel errors
// in errors.go.
package sbm
