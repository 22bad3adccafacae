package sbm

import (
	"fmt"
	"slices"

	"github.com/gilchrisn/sbm-clustering-service/pkg/pair"
)

// EdgeType is the unordered pair of node type indices an edge connects
type EdgeType = pair.Pair[int]

// legality decides which edge types a multipartite network may contain.
// inferringLegality learns them from the data, frozenLegality only accepts
// what the caller declared up front.
type legality interface {
	admit(et EdgeType) error
	types() pair.Set[int]
	frozen() bool
}

type inferringLegality struct {
	seen pair.Set[int]
}

func (l inferringLegality) admit(et EdgeType) error {
	l.seen.Add(et)
	return nil
}

func (l inferringLegality) types() pair.Set[int] { return l.seen }
func (l inferringLegality) frozen() bool         { return false }

type frozenLegality struct {
	allowed pair.Set[int]
}

func (l frozenLegality) admit(et EdgeType) error {
	if !l.allowed.Has(et) {
		return ErrUndeclaredEdgeType
	}
	return nil
}

func (l frozenLegality) types() pair.Set[int] { return l.allowed }
func (l frozenLegality) frozen() bool         { return true }

// EdgeContainer is the validated edge list of a network, in input order
type EdgeContainer struct {
	edges         []pair.Pair[NodeID] // leaf ids
	legal         legality
	neighborTypes [][]int
}

// NewEdgeContainer resolves and validates the from/to edge list against the
// leaf level and registers every edge on both endpoints. allowedFrom/allowedTo
// optionally declare the legal type pairs of a multipartite network; when
// given, any other edge type is rejected.
//
// Construction is all-or-nothing: no node is touched unless every edge is valid.
func NewEdgeContainer(from, to []string, leaves *Level, allowedFrom, allowedTo []string) (*EdgeContainer, error) {
	if leaves == nil || !leaves.IsLeaf() {
		return nil, fmt.Errorf("%w: edges must be attached to a leaf level", ErrInvalidInput)
	}
	if leaves.parent != nil || leaves.hasEdges {
		return nil, fmt.Errorf("%w: leaf level already has edges or blocks", ErrInvalidInput)
	}
	if len(from) != len(to) {
		return nil, fmt.Errorf("%w: %d edge sources but %d edge targets", ErrInvalidInput, len(from), len(to))
	}

	multipartite := leaves.IsMultipartite()

	legal, err := newLegality(leaves, allowedFrom, allowedTo)
	if err != nil {
		return nil, err
	}

	index, err := leaves.IDIndex()
	if err != nil {
		return nil, err
	}
	resolve := func(id string, i int) (NodeID, error) {
		n, ok := index[id]
		if !ok {
			return NoNode, fmt.Errorf("%w: node %s from edge %s - %s", ErrUnknownNode, id, from[i], to[i])
		}
		return n, nil
	}

	ec := &EdgeContainer{
		edges: make([]pair.Pair[NodeID], 0, len(from)),
		legal: legal,
	}
	resolved := make([][2]NodeID, 0, len(from))

	for i := range from {
		a, err := resolve(from[i], i)
		if err != nil {
			return nil, err
		}
		b, err := resolve(to[i], i)
		if err != nil {
			return nil, err
		}

		if multipartite {
			et := pair.New(leaves.nodes[a].TypeIndex, leaves.nodes[b].TypeIndex)
			if et.IsMatching() {
				return nil, fmt.Errorf("%w: edge %s - %s", ErrSameTypeEdge, from[i], to[i])
			}
			if err := legal.admit(et); err != nil {
				return nil, fmt.Errorf("%w: edge %s - %s", err, from[i], to[i])
			}
		}

		resolved = append(resolved, [2]NodeID{a, b})
		ec.edges = append(ec.edges, pair.New(a, b))
	}

	for _, e := range resolved {
		an, bn := &leaves.nodes[e[0]], &leaves.nodes[e[1]]
		an.edges.add(bn.TypeIndex, e[1])
		bn.edges.add(an.TypeIndex, e[0])
	}
	leaves.hasEdges = true

	if !multipartite {
		legal.types().Add(pair.New(0, 0))
	}
	ec.neighborTypes = buildNeighborTypes(leaves.NumTypes(), legal.types())

	return ec, nil
}

func newLegality(leaves *Level, allowedFrom, allowedTo []string) (legality, error) {
	if len(allowedFrom) != len(allowedTo) {
		return nil, fmt.Errorf("%w: %d allowed type sources but %d targets", ErrInvalidInput, len(allowedFrom), len(allowedTo))
	}
	// unipartite networks never check edge types
	if len(allowedFrom) == 0 || !leaves.IsMultipartite() {
		return inferringLegality{seen: pair.NewSet[int]()}, nil
	}

	allowed := pair.NewSet[int]()
	for i := range allowedFrom {
		a, ok := leaves.TypeIndex(allowedFrom[i])
		if !ok {
			return nil, fmt.Errorf("%w: allowed edge type %s - %s", ErrUnknownType, allowedFrom[i], allowedTo[i])
		}
		b, ok := leaves.TypeIndex(allowedTo[i])
		if !ok {
			return nil, fmt.Errorf("%w: allowed edge type %s - %s", ErrUnknownType, allowedFrom[i], allowedTo[i])
		}
		et := pair.New(a, b)
		if et.IsMatching() {
			return nil, fmt.Errorf("%w: allowed edge type %s - %s", ErrSameTypeEdge, allowedFrom[i], allowedTo[i])
		}
		allowed.Add(et)
	}
	return frozenLegality{allowed: allowed}, nil
}

func buildNeighborTypes(numTypes int, legal pair.Set[int]) [][]int {
	out := make([][]int, numTypes)
	for _, et := range legal.Sorted() {
		a, b := et.Get()
		out[a] = append(out[a], b)
		if a != b {
			out[b] = append(out[b], a)
		}
	}
	for t := range out {
		slices.Sort(out[t])
	}
	return out
}

// Size is the number of edges
func (ec *EdgeContainer) Size() int { return len(ec.edges) }

// Edges returns the canonical leaf pairs in input order. The slice is owned by the container.
func (ec *EdgeContainer) Edges() []pair.Pair[NodeID] { return ec.edges }

// EdgeTypes lists the legal type pairs
func (ec *EdgeContainer) EdgeTypes() []EdgeType { return ec.legal.types().Sorted() }

// Frozen reports whether the legal edge types were declared by the caller
func (ec *EdgeContainer) Frozen() bool { return ec.legal.frozen() }

// NeighborTypes lists the node types that nodes of type t may connect to
func (ec *EdgeContainer) NeighborTypes(t int) []int {
	if t < 0 || t >= len(ec.neighborTypes) {
		return nil
	}
	return ec.neighborTypes[t]
}
