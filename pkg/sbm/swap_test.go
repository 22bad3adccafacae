package sbm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapRemovesEmptyBlock(t *testing.T) {
	// three types with three nodes each, every node in its own block
	net := mustNetwork(t, Input{
		NodeIDs:   []string{"a1", "a2", "a3", "b1", "b2", "b3", "c1", "c2", "c3"},
		NodeTypes: []string{"a", "a", "a", "b", "b", "b", "c", "c", "c"},
		TypeNames: []string{"a", "b", "c"},
	})
	blocks, err := net.AddBlockLevel(3, newRNG())
	require.NoError(t, err)

	leaves := net.Leaves()
	a, err := leaves.At(0, 0)
	require.NoError(t, err)
	b, err := leaves.At(0, 1)
	require.NoError(t, err)
	oldBlock := leaves.Node(a).Parent()
	require.NotEqual(t, oldBlock, leaves.Node(b).Parent())

	blocks.Swap(a, leaves.Node(b).Parent(), true)

	assert.Equal(t, leaves.Node(a).Parent(), leaves.Node(b).Parent())
	assert.Equal(t, 2, blocks.SizeOfType(0))
	assert.Equal(t, 3, blocks.SizeOfType(1))
	assert.True(t, blocks.Node(oldBlock).Removed())
	assert.NotContains(t, blocks.NodesOfType(0), oldBlock)
	requireUnion(t, blocks)
}

func TestSwapMovesEdgeCounts(t *testing.T) {
	net := mustNetwork(t, tripartiteInput())
	blocks, err := net.AddBlockLevel(2, newRNG())
	require.NoError(t, err)

	leaves := net.Leaves()
	a1, a2 := leaf(t, net, "a1"), leaf(t, net, "a2")
	ba1, ba2 := leaves.Node(a1).Parent(), leaves.Node(a2).Parent()

	// bring a2 into a1's block, keeping the empty block
	blocks.Swap(a2, ba1, false)

	assert.Len(t, blocks.Node(ba1).EdgesTo(1), 4)
	assert.Len(t, blocks.Node(ba1).EdgesTo(2), 3)
	assert.Len(t, blocks.Node(ba2).EdgesTo(1), 0)
	assert.Len(t, blocks.Node(ba2).EdgesTo(2), 0)
	assert.Equal(t, 0, blocks.Node(ba2).NumChildren())
	assert.False(t, blocks.Node(ba2).Removed())
	assert.Equal(t, 2, blocks.SizeOfType(0))
	requireUnion(t, blocks)
}

func TestSwapIsSelfInverse(t *testing.T) {
	net := mustNetwork(t, tripartiteInput())
	blocks, err := net.AddBlockLevel(2, newRNG())
	require.NoError(t, err)

	leaves := net.Leaves()
	for _, id := range leaves.Nodes() {
		n := leaves.Node(id)
		for _, target := range blocks.NodesOfType(n.TypeIndex) {
			before := snapshot(blocks)
			origin := n.Parent()

			blocks.Swap(id, target, false)
			requireUnion(t, blocks)
			blocks.Swap(id, origin, false)

			require.Equal(t, before, snapshot(blocks))
		}
	}
}

func TestSwapToSameBlockIsNoop(t *testing.T) {
	net := mustNetwork(t, ringInput())
	blocks, err := net.AddBlockLevel(3, newRNG())
	require.NoError(t, err)

	n1 := leaf(t, net, "n1")
	before := snapshot(blocks)
	blocks.Swap(n1, net.Leaves().Node(n1).Parent(), true)
	assert.Equal(t, before, snapshot(blocks))
}

func TestSwapInvariantsPanic(t *testing.T) {
	net := mustNetwork(t, tripartiteInput())
	blocks, err := net.AddBlockLevel(2, newRNG())
	require.NoError(t, err)

	a1 := leaf(t, net, "a1")
	bBlock := blocks.NodesOfType(1)[0]

	assert.PanicsWithError(t,
		"sbm: inconsistent state: node 0 of type 0 can't join block 2 of type 1",
		func() { blocks.Swap(a1, bBlock, false) })
	assert.Panics(t, func() { net.Leaves().Swap(a1, a1, false) })
}

func TestSwapEdgeCountInvariant(t *testing.T) {
	net := mustNetwork(t, tripartiteInput())
	blocks, err := net.AddBlockLevel(2, newRNG())
	require.NoError(t, err)

	rng := newRNG()
	leaves := net.Leaves()
	nodes := leaves.Nodes()
	for i := 0; i < 200; i++ {
		id := nodes[rng.Intn(len(nodes))]
		target := ProposeMove(id, blocks, rng, 0.5)
		blocks.Swap(id, target, true)
		requireUnion(t, blocks)
	}

	total := 0
	for _, b := range blocks.Nodes() {
		total += blocks.Node(b).Degree()
	}
	assert.Equal(t, 2*net.Edges().Size(), total)
}

func TestSwapPropagatesUpward(t *testing.T) {
	in := Input{
		NodeIDs:   []string{"n1", "n2", "n3", "n4", "n5", "n6", "n7", "n8"},
		NodeTypes: []string{"a", "a", "a", "a", "a", "a", "a", "a"},
		TypeNames: []string{"a"},
		EdgesFrom: []string{"n1", "n1", "n2", "n3", "n5", "n5", "n6", "n7", "n4"},
		EdgesTo:   []string{"n2", "n3", "n3", "n4", "n6", "n7", "n7", "n8", "n5"},
	}
	net := mustNetwork(t, in)
	mid, err := net.AddBlockLevel(4, newRNG())
	require.NoError(t, err)
	top, err := net.AddBlockLevel(2, newRNG())
	require.NoError(t, err)

	rng := newRNG()
	for i := 0; i < 100; i++ {
		leaves := net.Leaves().Nodes()
		id := leaves[rng.Intn(len(leaves))]
		mid.Swap(id, ProposeMove(id, mid, rng, 0.3), false)

		requireUnion(t, mid)
		requireUnion(t, top)
	}

	// moving mid-level blocks between top blocks
	for i := 0; i < 50; i++ {
		members := mid.Nodes()
		id := members[rng.Intn(len(members))]
		top.Swap(id, ProposeMove(id, top, rng, 0.3), false)

		requireUnion(t, top)
	}
}

func TestSwapRemovedBlockLeavesParent(t *testing.T) {
	net := mustNetwork(t, ringInput())
	mid, err := net.AddBlockLevel(3, newRNG())
	require.NoError(t, err)
	top, err := net.AddBlockLevel(1, newRNG())
	require.NoError(t, err)

	ids := partition(t, net, [][]string{{"n1", "n2"}, {"n3", "n4"}, {"n5", "n6"}})
	mid.Swap(leaf(t, net, "n5"), ids[0], true)
	mid.Swap(leaf(t, net, "n6"), ids[0], true)

	assert.True(t, mid.Node(ids[2]).Removed())
	assert.Equal(t, NoNode, mid.Node(ids[2]).Parent())
	root := top.NodesOfType(0)[0]
	assert.NotContains(t, top.Node(root).Children(), ids[2])
	assert.Equal(t, 2, top.Node(root).NumChildren())
	requireUnion(t, top)
}

func TestSwapEmptiedBlockKeepsUnion(t *testing.T) {
	net := mustNetwork(t, ringInput())
	blocks, err := net.AddBlockLevel(3, newRNG())
	require.NoError(t, err)
	ids := partition(t, net, [][]string{{"n1", "n2"}, {"n3", "n4"}, {"n5", "n6"}})

	before := snapshot(blocks)
	n5, n6 := leaf(t, net, "n5"), leaf(t, net, "n6")
	blocks.Swap(n5, ids[0], false)
	blocks.Swap(n6, ids[0], false)

	assert.Empty(t, blocks.Node(ids[2]).EdgesTo(0))
	requireUnion(t, blocks)

	blocks.Swap(n5, ids[2], false)
	blocks.Swap(n6, ids[2], false)
	requireUnion(t, blocks)
	assert.Equal(t, before, snapshot(blocks))
}

func TestSwapRemovalCascadesUpward(t *testing.T) {
	net := mustNetwork(t, ringInput())
	mid, err := net.AddBlockLevel(3, newRNG())
	require.NoError(t, err)
	top, err := net.AddBlockLevel(3, newRNG())
	require.NoError(t, err)

	ids := partition(t, net, [][]string{{"n1", "n2"}, {"n3", "n4"}, {"n5", "n6"}})
	lonely := mid.Node(ids[2]).Parent()
	require.Equal(t, 1, top.Node(lonely).NumChildren())

	mid.Swap(leaf(t, net, "n5"), ids[0], true)
	mid.Swap(leaf(t, net, "n6"), ids[0], true)

	assert.True(t, mid.Node(ids[2]).Removed())
	assert.True(t, top.Node(lonely).Removed())
	assert.Equal(t, 2, top.SizeOfType(0))
	assert.NotContains(t, top.NodesOfType(0), lonely)
	requireUnion(t, mid)
	requireUnion(t, top)
}
