package sbm

// moveView answers ownership and degree questions about a block level either
// as it is, or as it would be after node moved from its block to target.
// Nothing is mutated, so evaluation never has to swap and swap back.
type moveView struct {
	blocks *Level
	node   NodeID
	nn     *Node
	from   NodeID
	to     NodeID
	moved  bool
}

func newMoveView(blocks *Level, node, target NodeID, moved bool) moveView {
	nn := blocks.child.Node(node)
	return moveView{
		blocks: blocks,
		node:   node,
		nn:     nn,
		from:   nn.parent,
		to:     target,
		moved:  moved,
	}
}

// owner is the block holding the given leaf
func (v moveView) owner(leaf NodeID) NodeID {
	a := v.blocks.child.Ancestor(leaf)
	if a == NoNode {
		return NoNode
	}
	if v.moved && a == v.node {
		return v.to
	}
	return v.blocks.child.nodes[a].parent
}

func (v moveView) degree(block NodeID) int {
	d := v.blocks.nodes[block].Degree()
	if !v.moved {
		return d
	}
	switch block {
	case v.from:
		d -= v.nn.Degree()
	case v.to:
		d += v.nn.Degree()
	}
	return d
}

// row counts, per owning block, the edge entries of block b across all types
func (v moveView) row(b NodeID) map[NodeID]int {
	counts := make(map[NodeID]int)
	for _, es := range v.blocks.nodes[b].edges {
		for _, n := range es {
			counts[v.owner(n)]++
		}
	}
	if v.moved && (b == v.from || b == v.to) {
		sign := 1
		if b == v.from {
			sign = -1
		}
		for _, es := range v.nn.edges {
			for _, n := range es {
				counts[v.owner(n)] += sign
			}
		}
	}
	return counts
}

// typeRow returns how many entries block b has towards nodes of type t and
// how many of those are owned by target.
func (v moveView) typeRow(b NodeID, t int, target NodeID) (size, hits int) {
	for _, n := range v.blocks.nodes[b].EdgesTo(t) {
		size++
		if v.owner(n) == target {
			hits++
		}
	}
	if v.moved && (b == v.from || b == v.to) {
		sign := 1
		if b == v.from {
			sign = -1
		}
		for _, n := range v.nn.EdgesTo(t) {
			size += sign
			if v.owner(n) == target {
				hits += sign
			}
		}
	}
	return size, hits
}

// neighborBlocks counts the node's own edge entries per owning block
func (v moveView) neighborBlocks() map[NodeID]int {
	counts := make(map[NodeID]int)
	for _, es := range v.nn.edges {
		for _, n := range es {
			counts[v.owner(n)]++
		}
	}
	return counts
}
