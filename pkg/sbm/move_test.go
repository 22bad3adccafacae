package sbm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMoveResultsSameBlock(t *testing.T) {
	net := mustNetwork(t, ringInput())
	blocks, err := net.AddBlockLevel(3, newRNG())
	require.NoError(t, err)

	n1 := leaf(t, net, "n1")
	res := GetMoveResults(blocks, n1, net.Leaves().Node(n1).Parent(), 0.1)
	assert.Equal(t, MoveResults{EntropyDelta: 0, ProbRatio: 1}, res)
}

func TestGetMoveResultsLeavesStateAlone(t *testing.T) {
	net := mustNetwork(t, tripartiteInput())
	blocks, err := net.AddBlockLevel(2, newRNG())
	require.NoError(t, err)

	before := snapshot(blocks)
	for _, id := range net.Leaves().Nodes() {
		for _, b := range blocks.NodesOfType(net.Leaves().Node(id).TypeIndex) {
			GetMoveResults(blocks, id, b, 0.2)
		}
	}
	assert.Equal(t, before, snapshot(blocks))
}

func TestGetMoveResultsProbRatio(t *testing.T) {
	const eps = 0.3

	in := ringInput()
	in.EdgesFrom = append(in.EdgesFrom, "n1", "n3", "n2")
	in.EdgesTo = append(in.EdgesTo, "n4", "n6", "n2")
	net := mustNetwork(t, in)
	blocks, err := net.AddBlockLevel(3, newRNG())
	require.NoError(t, err)
	leaves := net.Leaves()

	for _, id := range leaves.Nodes() {
		origin := leaves.Node(id).Parent()
		for _, target := range blocks.NodesOfType(0) {
			if target == origin {
				continue
			}
			res := GetMoveResults(blocks, id, target, eps)

			forward := ProposalProbability(blocks, id, target, eps)
			blocks.Swap(id, target, false)
			backward := ProposalProbability(blocks, id, origin, eps)
			blocks.Swap(id, origin, false)

			require.Greater(t, forward, 0.0)
			assert.InDelta(t, backward/forward, res.ProbRatio, 1e-9, "moving %d to %d", id, target)
			assert.InDelta(t, MoveEntropyDelta(blocks, id, target), res.EntropyDelta, 1e-12)
		}
	}
}

func TestGetMoveResultsUnreachable(t *testing.T) {
	in := Input{
		NodeIDs:   []string{"n1", "n2", "n3", "n4", "n5", "n6"},
		NodeTypes: []string{"a", "a", "a", "a", "a", "a"},
		TypeNames: []string{"a"},
		EdgesFrom: []string{"n1", "n3", "n5"},
		EdgesTo:   []string{"n2", "n4", "n6"},
	}
	net := mustNetwork(t, in)
	_, err := net.AddBlockLevel(3, newRNG())
	require.NoError(t, err)
	ids := partition(t, net, [][]string{{"n1", "n3"}, {"n2", "n4"}, {"n5", "n6"}})

	// with no random jump n1 only ever proposes A
	res := GetMoveResults(net.Top(), leaf(t, net, "n1"), ids[2], 0)
	assert.Equal(t, 0.0, res.ProbRatio)
}

func TestAccept(t *testing.T) {
	rng := newRNG()
	for i := 0; i < 100; i++ {
		assert.True(t, Accept(MoveResults{EntropyDelta: 2, ProbRatio: 1}, 1, rng))
		assert.True(t, Accept(MoveResults{EntropyDelta: -50, ProbRatio: 1}, 0, rng))
		assert.False(t, Accept(MoveResults{EntropyDelta: 3, ProbRatio: 0}, 1, rng))
	}

	accepted := 0
	for i := 0; i < 10000; i++ {
		if Accept(MoveResults{EntropyDelta: -1, ProbRatio: 1}, 1, rng) {
			accepted++
		}
	}
	// exp(-1)
	assert.InDelta(t, 0.3679, float64(accepted)/10000, 0.02)
}
