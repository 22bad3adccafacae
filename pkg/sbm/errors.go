package sbm

import (
	"errors"
	"fmt"
)

// Input validation errors. Construction wraps these with the offending node
// or edge, so callers should match with errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnknownType        = errors.New("node type not found in provided node types")
	ErrTypeOrder          = errors.New("nodes not supplied in type order")
	ErrDuplicateNode      = errors.New("duplicate node id")
	ErrUnknownNode        = errors.New("node was not provided in list of nodes")
	ErrSameTypeEdge       = errors.New("can't have an edge between two nodes of the same type in multipartite networks")
	ErrUndeclaredEdgeType = errors.New("edge type was not specified in allowed edge types")
	ErrTooManyBlocks      = errors.New("more blocks requested than nodes of type")
	ErrOutOfRange         = errors.New("index out of range")
	ErrNoIDs              = errors.New("block levels have no external ids")
	ErrLevelTaken         = errors.New("level already has a block level built on it")
)

// ErrInconsistent marks a broken structural invariant. It is only ever
// raised through panic.
var ErrInconsistent = errors.New("sbm: inconsistent state")

func inconsistent(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrInconsistent, fmt.Sprintf(format, args...)))
}
