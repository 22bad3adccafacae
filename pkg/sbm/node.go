package sbm

import "slices"

// NodeID addresses a node inside the arena of one Level. Ids are stable for the
// life of the level: deleting a block tombstones it instead of compacting.
type NodeID int

// NoNode is the "no parent yet" / "no such node" sentinel
const NoNode NodeID = -1

// EdgePartition holds one multiset of neighbour leaves per node type.
// A block's partition is the multiset union of its children's partitions.
type EdgePartition [][]NodeID

func newEdgePartition(numTypes int) EdgePartition {
	return make(EdgePartition, numTypes)
}

// Len is the total number of entries across all types
func (p EdgePartition) Len() int {
	n := 0
	for _, es := range p {
		n += len(es)
	}
	return n
}

func (p EdgePartition) add(t int, n NodeID) {
	p[t] = append(p[t], n)
}

// absorb merges every entry of o into p
func (p EdgePartition) absorb(o EdgePartition) {
	for t, es := range o {
		if len(es) == 0 {
			continue
		}
		p[t] = append(p[t], es...)
	}
}

// release removes one occurrence of every entry of o from p. Each touched
// type is compacted in a single pass. A missing entry means p was never a
// superset of o, which panics.
func (p EdgePartition) release(o EdgePartition) {
	for t, es := range o {
		if len(es) == 0 {
			continue
		}
		pending := make(map[NodeID]int, len(es))
		for _, n := range es {
			pending[n]++
		}
		left := len(es)

		kept := p[t][:0]
		for _, n := range p[t] {
			if c := pending[n]; c > 0 && left > 0 {
				pending[n] = c - 1
				left--
				continue
			}
			kept = append(kept, n)
		}
		if left != 0 {
			inconsistent("release: %d edge entries of type %d not present in partition", left, t)
		}
		clear(p[t][len(kept):])
		p[t] = kept
	}
}

func (p EdgePartition) clone() EdgePartition {
	out := make(EdgePartition, len(p))
	for t, es := range p {
		out[t] = slices.Clone(es)
	}
	return out
}

// Node is a graph vertex, or a block when it lives in a block level.
// Edge entries always reference nodes of the leaf level; Children reference
// the level below and Parent the level above.
type Node struct {
	Index     int // position in the input arrays, -1 for blocks
	TypeIndex int

	edges    EdgePartition
	children []NodeID
	parent   NodeID
	removed  bool
}

func newNode(index, typeIndex, numTypes int) Node {
	return Node{
		Index:     index,
		TypeIndex: typeIndex,
		edges:     newEdgePartition(numTypes),
		parent:    NoNode,
	}
}

// Degree is the neighbour count across all type partitions
func (n *Node) Degree() int { return n.edges.Len() }

func (n *Node) IsBlock() bool { return n.Index == -1 }

func (n *Node) NumTypes() int { return len(n.edges) }

// EdgesTo returns the neighbour leaves of type t. The slice is owned by the node.
func (n *Node) EdgesTo(t int) []NodeID {
	if t < 0 || t >= len(n.edges) {
		return nil
	}
	return n.edges[t]
}

// Edges returns a copy of the full edge partition
func (n *Node) Edges() EdgePartition { return n.edges.clone() }

func (n *Node) Children() []NodeID { return n.children }
func (n *Node) NumChildren() int   { return len(n.children) }
func (n *Node) Parent() NodeID     { return n.parent }

// Removed reports whether the block was deleted after becoming empty
func (n *Node) Removed() bool { return n.removed }

func (n *Node) addChild(c NodeID) {
	n.children = append(n.children, c)
}

func (n *Node) removeChild(c NodeID) bool {
	i := slices.Index(n.children, c)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	return true
}
