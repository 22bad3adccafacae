package sbm

import "slices"

// Swap moves child, a node of the level below l, from its current block to
// newBlock and carries its edge entries along. Levels above l are kept in
// step: wherever the old and new blocks have different ancestors, those
// ancestors exchange the same entries.
//
// With removeEmpty set, an old block left without children is deleted from
// its type's membership, and so is any ancestor that empties as a result. Swapping back to the old block (with removeEmpty
// unset) restores the previous state exactly, up to ordering.
//
// Swap panics when the hierarchy is inconsistent; none of these conditions
// can be caused by user input.
func (l *Level) Swap(child, newBlock NodeID, removeEmpty bool) {
	if l.child == nil {
		inconsistent("swap called on leaf level")
	}
	cn := l.child.Node(child)
	oldBlock := cn.parent
	if oldBlock == NoNode {
		inconsistent("node %d has no block to leave", child)
	}
	if oldBlock == newBlock {
		return
	}

	ob, nb := l.Node(oldBlock), l.Node(newBlock)
	if nb.removed {
		inconsistent("block %d was removed", newBlock)
	}
	if nb.TypeIndex != cn.TypeIndex {
		inconsistent("node %d of type %d can't join block %d of type %d", child, cn.TypeIndex, newBlock, nb.TypeIndex)
	}
	if !ob.removeChild(child) {
		inconsistent("node %d missing from children of its block %d", child, oldBlock)
	}

	cn.parent = newBlock
	nb.addChild(child)
	nb.edges.absorb(cn.edges)
	ob.edges.release(cn.edges)

	l.propagate(ob.parent, nb.parent, cn.edges)

	if removeEmpty && ob.NumChildren() == 0 {
		l.removeBlock(oldBlock)
	}
}

// propagate transfers moved edge entries between the ancestors of the old
// and new block until the two lineages meet.
func (l *Level) propagate(from, to NodeID, moved EdgePartition) {
	for up := l.parent; up != nil && from != to; up = up.parent {
		if from == NoNode || to == NoNode {
			inconsistent("level %d has blocks without parents", up.depth-1)
		}
		fn, tn := up.Node(from), up.Node(to)
		tn.edges.absorb(moved)
		fn.edges.release(moved)
		from, to = fn.parent, tn.parent
	}
}

func (l *Level) removeBlock(id NodeID) {
	n := l.Node(id)
	members := l.byType[n.TypeIndex]
	i := slices.Index(members, id)
	if i < 0 {
		inconsistent("tried to delete block %d that doesn't exist", id)
	}
	last := len(members) - 1
	members[i] = members[last]
	l.byType[n.TypeIndex] = members[:last]
	n.removed = true

	if n.parent != NoNode && l.parent != nil {
		parent := n.parent
		if !l.parent.Node(parent).removeChild(id) {
			inconsistent("block %d missing from children of its parent %d", id, parent)
		}
		n.parent = NoNode

		// a parent left without children goes too; its type keeps the
		// parent of the block that took the child
		if l.parent.Node(parent).NumChildren() == 0 {
			l.parent.removeBlock(parent)
		}
	}
}
