package sbm

import (
	"fmt"
	"math/rand"
	"slices"
)

// TypeInfo locates the nodes of one type. For leaf levels Start is the
// position of the type's first node in the input arrays.
type TypeInfo struct {
	Start int `json:"start"`
	Size  int `json:"size"`
}

// Level is an owning, type-partitioned node container: the leaves of the
// network, or one level of blocks above a child level.
type Level struct {
	depth     int
	nodes     []Node     // arena, never compacted
	byType    [][]NodeID // live members per type
	typeNames []string
	typeIndex map[string]int

	ids      []string // leaf levels only
	idIndex  map[string]NodeID
	hasEdges bool

	child  *Level
	parent *Level
	leaves *Level
}

// NewLevel builds the leaf level from parallel id/type slices. typeNames must
// be sorted, and nodes grouped by type in that order. typeCounts is optional
// and only used to pre-size the per-type collections.
func NewLevel(ids, types, typeNames []string, typeCounts []int) (*Level, error) {
	if len(ids) != len(types) {
		return nil, fmt.Errorf("%w: %d node ids but %d node types", ErrInvalidInput, len(ids), len(types))
	}
	if len(typeNames) == 0 {
		return nil, fmt.Errorf("%w: no node types provided", ErrInvalidInput)
	}
	if typeCounts != nil && len(typeCounts) != len(typeNames) {
		return nil, fmt.Errorf("%w: %d type counts for %d types", ErrInvalidInput, len(typeCounts), len(typeNames))
	}

	typeIndex := make(map[string]int, len(typeNames))
	for i, name := range typeNames {
		if _, dup := typeIndex[name]; dup {
			return nil, fmt.Errorf("%w: type %q declared twice", ErrInvalidInput, name)
		}
		if i > 0 && name < typeNames[i-1] {
			return nil, fmt.Errorf("%w: type names must be sorted, %q follows %q", ErrInvalidInput, name, typeNames[i-1])
		}
		typeIndex[name] = i
	}

	numTypes := len(typeNames)
	l := &Level{
		nodes:     make([]Node, 0, len(ids)),
		byType:    make([][]NodeID, numTypes),
		typeNames: slices.Clone(typeNames),
		typeIndex: typeIndex,
		ids:       slices.Clone(ids),
	}
	l.leaves = l
	for t := range l.byType {
		if typeCounts != nil && typeCounts[t] > 0 {
			l.byType[t] = make([]NodeID, 0, typeCounts[t])
		}
	}

	seen := make(map[string]struct{}, len(ids))
	current := ""
	for i, id := range ids {
		nodeType := types[i]
		if i > 0 && nodeType < current {
			return nil, fmt.Errorf("%w: node %s has type %q after type %q; make sure not to modify the node order",
				ErrTypeOrder, id, nodeType, current)
		}
		current = nodeType

		t, ok := typeIndex[nodeType]
		if !ok {
			return nil, fmt.Errorf("%w: node %s has type (%s)", ErrUnknownType, id, nodeType)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, id)
		}
		seen[id] = struct{}{}

		nid := NodeID(len(l.nodes))
		l.nodes = append(l.nodes, newNode(i, t, numTypes))
		l.byType[t] = append(l.byType[t], nid)
	}

	return l, nil
}

// NewBlockLevel creates numBlocks blocks for every node type of child and
// deals the shuffled children of each type round-robin into them.
func NewBlockLevel(numBlocks int, child *Level, rng *rand.Rand) (*Level, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: nil child level", ErrInvalidInput)
	}
	if child.parent != nil {
		return nil, ErrLevelTaken
	}
	if numBlocks < 1 {
		return nil, fmt.Errorf("%w: need at least one block per type, got %d", ErrInvalidInput, numBlocks)
	}
	for t, members := range child.byType {
		if numBlocks > len(members) {
			return nil, fmt.Errorf("%w: %d blocks requested but type %s has %d nodes",
				ErrTooManyBlocks, numBlocks, child.typeNames[t], len(members))
		}
	}

	numTypes := child.NumTypes()
	l := &Level{
		depth:     child.depth + 1,
		nodes:     make([]Node, 0, numBlocks*numTypes),
		byType:    make([][]NodeID, numTypes),
		typeNames: child.typeNames,
		typeIndex: child.typeIndex,
		child:     child,
		leaves:    child.leaves,
	}

	for t, members := range child.byType {
		blocks := make([]NodeID, numBlocks)
		for b := range blocks {
			blocks[b] = NodeID(len(l.nodes))
			l.nodes = append(l.nodes, newNode(-1, t, numTypes))
		}
		l.byType[t] = blocks

		shuffled := slices.Clone(members)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		for i, c := range shuffled {
			b := blocks[i%numBlocks]
			cn := &child.nodes[c]
			cn.parent = b
			block := &l.nodes[b]
			block.addChild(c)
			block.edges.absorb(cn.edges)
		}
	}

	child.parent = l
	return l, nil
}

// Depth is 0 for leaves and increases by one per block level
func (l *Level) Depth() int     { return l.depth }
func (l *Level) IsLeaf() bool   { return l.child == nil }
func (l *Level) Child() *Level  { return l.child }
func (l *Level) Parent() *Level { return l.parent }
func (l *Level) Leaves() *Level { return l.leaves }

func (l *Level) NumTypes() int { return len(l.typeNames) }

// IsMultipartite reports whether the network has more than one node type
func (l *Level) IsMultipartite() bool { return len(l.typeNames) > 1 }

func (l *Level) TypeNames() []string { return slices.Clone(l.typeNames) }

func (l *Level) TypeName(t int) string {
	if t < 0 || t >= len(l.typeNames) {
		return ""
	}
	return l.typeNames[t]
}

func (l *Level) TypeIndex(name string) (int, bool) {
	t, ok := l.typeIndex[name]
	return t, ok
}

// Size is the number of live nodes across all types
func (l *Level) Size() int {
	n := 0
	for _, members := range l.byType {
		n += len(members)
	}
	return n
}

func (l *Level) SizeOfType(t int) int {
	if t < 0 || t >= len(l.byType) {
		return 0
	}
	return len(l.byType[t])
}

// NodesOfType returns the live members of type t. The slice is owned by the level.
func (l *Level) NodesOfType(t int) []NodeID {
	if t < 0 || t >= len(l.byType) {
		return nil
	}
	return l.byType[t]
}

// TypeInfo returns the boundaries of type t in type order
func (l *Level) TypeInfo(t int) (TypeInfo, error) {
	if t < 0 || t >= len(l.byType) {
		return TypeInfo{}, fmt.Errorf("%w: type %d of %d", ErrOutOfRange, t, len(l.byType))
	}
	start := 0
	for i := 0; i < t; i++ {
		start += len(l.byType[i])
	}
	return TypeInfo{Start: start, Size: len(l.byType[t])}, nil
}

// At returns the i-th live node of type t
func (l *Level) At(t, i int) (NodeID, error) {
	if t < 0 || t >= len(l.byType) {
		return NoNode, fmt.Errorf("%w: type %d of %d", ErrOutOfRange, t, len(l.byType))
	}
	if i < 0 || i >= len(l.byType[t]) {
		return NoNode, fmt.Errorf("%w: node %d of %d of type %s", ErrOutOfRange, i, len(l.byType[t]), l.typeNames[t])
	}
	return l.byType[t][i], nil
}

// Node returns the arena entry for id. It panics on an id this level never issued.
func (l *Level) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(l.nodes) {
		inconsistent("node %d not in level %d (%d nodes)", id, l.depth, len(l.nodes))
	}
	return &l.nodes[id]
}

// Nodes lists the live nodes in type order
func (l *Level) Nodes() []NodeID {
	out := make([]NodeID, 0, l.Size())
	for _, members := range l.byType {
		out = append(out, members...)
	}
	return out
}

// ID returns the external id of a leaf
func (l *Level) ID(id NodeID) (string, error) {
	if !l.IsLeaf() {
		return "", ErrNoIDs
	}
	n := l.Node(id)
	return l.ids[n.Index], nil
}

// IDIndex maps external ids to node ids. It is built on first use.
func (l *Level) IDIndex() (map[string]NodeID, error) {
	if !l.IsLeaf() {
		return nil, ErrNoIDs
	}
	if l.idIndex == nil {
		l.idIndex = make(map[string]NodeID, len(l.ids))
		for i := range l.nodes {
			l.idIndex[l.ids[l.nodes[i].Index]] = NodeID(i)
		}
	}
	return l.idIndex, nil
}

// Ancestor returns the node of this level that owns the given leaf, or
// NoNode if the hierarchy is not yet built up to this level.
func (l *Level) Ancestor(leaf NodeID) NodeID {
	id := leaf
	for cur := l.leaves; cur != l; cur = cur.parent {
		if cur == nil || id == NoNode {
			return NoNode
		}
		id = cur.nodes[id].parent
	}
	return id
}
