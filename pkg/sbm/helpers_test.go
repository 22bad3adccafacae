package sbm

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func mustNetwork(t *testing.T, in Input) *Network {
	t.Helper()
	net, err := NewNetwork(in, zerolog.Nop())
	require.NoError(t, err)
	return net
}

// ringInput is a 6-node single-type cycle n1-n2-...-n6-n1
func ringInput() Input {
	return Input{
		NodeIDs:   []string{"n1", "n2", "n3", "n4", "n5", "n6"},
		NodeTypes: []string{"a", "a", "a", "a", "a", "a"},
		TypeNames: []string{"a"},
		EdgesFrom: []string{"n1", "n2", "n3", "n4", "n5", "n6"},
		EdgesTo:   []string{"n2", "n3", "n4", "n5", "n6", "n1"},
	}
}

// tripartiteInput has a-b and a-c connections only
func tripartiteInput() Input {
	return Input{
		NodeIDs:    []string{"a1", "a2", "b1", "b2", "b3", "c1", "c2", "c3"},
		NodeTypes:  []string{"a", "a", "b", "b", "b", "c", "c", "c"},
		TypeNames:  []string{"a", "b", "c"},
		TypeCounts: []int{2, 3, 3},
		EdgesFrom:  []string{"a1", "a1", "a1", "a2", "a2", "a2", "a2"},
		EdgesTo:    []string{"b1", "b2", "c1", "b2", "b3", "c2", "c3"},
	}
}

func leaf(t *testing.T, net *Network, id string) NodeID {
	t.Helper()
	index, err := net.Leaves().IDIndex()
	require.NoError(t, err)
	n, ok := index[id]
	require.True(t, ok, "unknown id %s", id)
	return n
}

// partition rearranges a single-type network's first block level so that
// groups[i] are the children of the i-th block.
func partition(t *testing.T, net *Network, groups [][]string) []NodeID {
	t.Helper()
	blocks := net.Levels()[1]
	ids := slices.Clone(blocks.NodesOfType(0))
	require.Len(t, ids, len(groups))
	for i, group := range groups {
		for _, id := range group {
			blocks.Swap(leaf(t, net, id), ids[i], false)
		}
	}
	return ids
}

type levelSnapshot struct {
	parents  map[NodeID]NodeID
	children map[NodeID][]NodeID
	edges    map[NodeID][][]NodeID
}

// sortedCopy returns nil for an empty partition, since a released partition
// keeps its backing array.
func sortedCopy(ids []NodeID) []NodeID {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}

func snapshot(blocks *Level) levelSnapshot {
	s := levelSnapshot{
		parents:  map[NodeID]NodeID{},
		children: map[NodeID][]NodeID{},
		edges:    map[NodeID][][]NodeID{},
	}
	for _, c := range blocks.Child().Nodes() {
		s.parents[c] = blocks.Child().Node(c).Parent()
	}
	for _, b := range blocks.Nodes() {
		n := blocks.Node(b)
		s.children[b] = sortedCopy(n.Children())
		for ty := 0; ty < n.NumTypes(); ty++ {
			s.edges[b] = append(s.edges[b], sortedCopy(n.EdgesTo(ty)))
		}
	}
	return s
}

// requireUnion checks that every block's partitions are exactly the union of
// its children's.
func requireUnion(t *testing.T, blocks *Level) {
	t.Helper()
	for _, b := range blocks.Nodes() {
		bn := blocks.Node(b)
		sum := 0
		union := make([][]NodeID, bn.NumTypes())
		for _, c := range bn.Children() {
			cn := blocks.Child().Node(c)
			require.Equal(t, b, cn.Parent(), "child %d does not point back to block %d", c, b)
			sum += cn.Degree()
			for ty := range union {
				union[ty] = append(union[ty], cn.EdgesTo(ty)...)
			}
		}
		require.Equal(t, sum, bn.Degree(), "block %d degree", b)
		for ty := range union {
			require.ElementsMatch(t, union[ty], bn.EdgesTo(ty), "block %d type %d", b, ty)
		}
	}
}
