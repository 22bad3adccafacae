package sbm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevelTypeInfo(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		types     []string
		typeNames []string
		want      []TypeInfo
	}{
		{
			name:      "Unipartite",
			ids:       []string{"a1", "a2", "a3"},
			types:     []string{"a", "a", "a"},
			typeNames: []string{"a"},
			want:      []TypeInfo{{Start: 0, Size: 3}},
		},
		{
			name:      "Bipartite",
			ids:       []string{"a1", "a2", "b1", "b2"},
			types:     []string{"a", "a", "b", "b"},
			typeNames: []string{"a", "b"},
			want:      []TypeInfo{{Start: 0, Size: 2}, {Start: 2, Size: 2}},
		},
		{
			name:      "Tripartite",
			ids:       []string{"a1", "a2", "b1", "c1", "c2"},
			types:     []string{"a", "a", "b", "c", "c"},
			typeNames: []string{"a", "b", "c"},
			want:      []TypeInfo{{Start: 0, Size: 2}, {Start: 2, Size: 1}, {Start: 3, Size: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLevel(tt.ids, tt.types, tt.typeNames, nil)
			require.NoError(t, err)
			assert.Equal(t, len(tt.ids), l.Size())
			assert.True(t, l.IsLeaf())

			total := 0
			for ty, want := range tt.want {
				got, err := l.TypeInfo(ty)
				require.NoError(t, err)
				assert.Equal(t, want, got)
				total += l.SizeOfType(ty)
			}
			assert.Equal(t, l.Size(), total)
		})
	}
}

func TestNewLevelValidation(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		types     []string
		typeNames []string
		counts    []int
		wantErr   error
	}{
		{"OutOfOrder", []string{"b1", "a1"}, []string{"b", "a"}, []string{"a", "b"}, nil, ErrTypeOrder},
		{"NotGrouped", []string{"a1", "b1", "a2"}, []string{"a", "b", "a"}, []string{"a", "b"}, nil, ErrTypeOrder},
		{"UnknownType", []string{"a1", "c1"}, []string{"a", "c"}, []string{"a", "b"}, nil, ErrUnknownType},
		{"DuplicateID", []string{"a1", "a1"}, []string{"a", "a"}, []string{"a"}, nil, ErrDuplicateNode},
		{"LengthMismatch", []string{"a1"}, []string{"a", "a"}, []string{"a"}, nil, ErrInvalidInput},
		{"NoTypes", []string{}, []string{}, nil, nil, ErrInvalidInput},
		{"BadCounts", []string{"a1"}, []string{"a"}, []string{"a"}, []int{1, 2}, ErrInvalidInput},
		{"UnsortedTypeNames", []string{"a1", "a2", "a3", "b1"}, []string{"a", "a", "a", "b"}, []string{"b", "a"}, nil, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLevel(tt.ids, tt.types, tt.typeNames, tt.counts)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLevelLookups(t *testing.T) {
	l, err := NewLevel([]string{"a1", "a2", "b1"}, []string{"a", "a", "b"}, []string{"a", "b"}, []int{2, 1})
	require.NoError(t, err)

	id, err := l.At(1, 0)
	require.NoError(t, err)
	name, err := l.ID(id)
	require.NoError(t, err)
	assert.Equal(t, "b1", name)

	_, err = l.At(1, 1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = l.At(2, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	index, err := l.IDIndex()
	require.NoError(t, err)
	assert.Len(t, index, 3)
	assert.Equal(t, 0, l.Node(index["a2"]).TypeIndex)

	ty, ok := l.TypeIndex("b")
	assert.True(t, ok)
	assert.Equal(t, 1, ty)
	assert.True(t, l.IsMultipartite())
	assert.Equal(t, NoNode, l.Node(index["a1"]).Parent())
}

func TestBlockLevelUnipartite(t *testing.T) {
	leaves, err := NewLevel([]string{"a1", "a2", "a3"}, []string{"a", "a", "a"}, []string{"a"}, []int{3})
	require.NoError(t, err)

	for _, id := range leaves.Nodes() {
		assert.Equal(t, NoNode, leaves.Node(id).Parent())
	}

	blocks, err := NewBlockLevel(2, leaves, newRNG())
	require.NoError(t, err)

	assert.Equal(t, 2, blocks.Size())
	assert.Equal(t, 1, blocks.Depth())
	for _, id := range leaves.Nodes() {
		assert.NotEqual(t, NoNode, leaves.Node(id).Parent())
	}
	for _, b := range blocks.Nodes() {
		bn := blocks.Node(b)
		assert.True(t, bn.IsBlock())
		assert.Greater(t, bn.NumChildren(), 0)
	}

	_, err = blocks.IDIndex()
	assert.ErrorIs(t, err, ErrNoIDs)
	_, err = NewBlockLevel(1, leaves, newRNG())
	assert.ErrorIs(t, err, ErrLevelTaken)
}

func TestBlockLevelTooManyBlocks(t *testing.T) {
	leaves, err := NewLevel([]string{"a1", "a2", "a3"}, []string{"a", "a", "a"}, []string{"a"}, nil)
	require.NoError(t, err)
	_, err = NewBlockLevel(4, leaves, newRNG())
	assert.ErrorIs(t, err, ErrTooManyBlocks)
	_, err = NewBlockLevel(0, leaves, newRNG())
	assert.ErrorIs(t, err, ErrInvalidInput)

	tri, err := NewLevel(
		[]string{"a1", "a2", "a3", "b1", "b2", "c1", "c2", "c3"},
		[]string{"a", "a", "a", "b", "b", "c", "c", "c"},
		[]string{"a", "b", "c"}, []int{3, 2, 3})
	require.NoError(t, err)
	// type b only has two nodes
	_, err = NewBlockLevel(3, tri, newRNG())
	assert.ErrorIs(t, err, ErrTooManyBlocks)
}

func TestBlockLevelTripartite(t *testing.T) {
	leaves, err := NewLevel(
		[]string{"a1", "a2", "a3", "b1", "b2", "c1", "c2", "c3"},
		[]string{"a", "a", "a", "b", "b", "c", "c", "c"},
		[]string{"a", "b", "c"}, []int{3, 2, 3})
	require.NoError(t, err)

	blocks, err := NewBlockLevel(2, leaves, newRNG())
	require.NoError(t, err)

	// 2 blocks for each of 3 types
	assert.Equal(t, 6, blocks.Size())
	for ty := 0; ty < 3; ty++ {
		assert.Equal(t, 2, blocks.SizeOfType(ty))
		children := 0
		for _, b := range blocks.NodesOfType(ty) {
			bn := blocks.Node(b)
			assert.Equal(t, ty, bn.TypeIndex)
			assert.Greater(t, bn.NumChildren(), 0)
			children += bn.NumChildren()
		}
		assert.Equal(t, leaves.SizeOfType(ty), children)
	}
	for _, id := range leaves.Nodes() {
		p := leaves.Node(id).Parent()
		require.NotEqual(t, NoNode, p)
		assert.Equal(t, leaves.Node(id).TypeIndex, blocks.Node(p).TypeIndex)
		assert.Equal(t, p, blocks.Ancestor(id))
	}
}

func TestBlockLevelMergesEdges(t *testing.T) {
	net := mustNetwork(t, tripartiteInput())
	_, err := net.AddBlockLevel(2, newRNG())
	require.NoError(t, err)
	blocks := net.Top()

	requireUnion(t, blocks)

	// both a nodes have their own block, which mirrors their edges
	a1, a2 := leaf(t, net, "a1"), leaf(t, net, "a2")
	ba1 := blocks.Node(net.Leaves().Node(a1).Parent())
	ba2 := blocks.Node(net.Leaves().Node(a2).Parent())
	assert.Len(t, ba1.EdgesTo(1), 2)
	assert.Len(t, ba1.EdgesTo(2), 1)
	assert.Len(t, ba2.EdgesTo(1), 2)
	assert.Len(t, ba2.EdgesTo(2), 2)
}

func TestBlockLevelDeterministic(t *testing.T) {
	parents := func() []NodeID {
		net := mustNetwork(t, ringInput())
		_, err := net.AddBlockLevel(3, newRNG())
		require.NoError(t, err)
		var out []NodeID
		for _, id := range net.Leaves().Nodes() {
			out = append(out, net.Leaves().Node(id).Parent())
		}
		return out
	}
	assert.Equal(t, parents(), parents())
}
