package sbm

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
)

// Input is the flat description of a network handed over by a loader or
// binding layer. Nodes must be grouped by type, sorted by type name.
type Input struct {
	NodeIDs   []string `json:"node_ids"`
	NodeTypes []string `json:"node_types"`
	TypeNames []string `json:"type_names"`

	// TypeCounts optionally pre-sizes the per-type collections
	TypeCounts []int `json:"type_counts,omitempty"`

	EdgesFrom []string `json:"edges_from"`
	EdgesTo   []string `json:"edges_to"`

	// AllowedFrom/AllowedTo optionally declare the legal edge types of a
	// multipartite network
	AllowedFrom []string `json:"allowed_from,omitempty"`
	AllowedTo   []string `json:"allowed_to,omitempty"`
}

// Network owns the leaf level, the edge list and every block level stacked
// on top of the leaves.
type Network struct {
	levels []*Level
	edges  *EdgeContainer
	logger zerolog.Logger
}

// NewNetwork validates the input and builds the leaf level and edges
func NewNetwork(in Input, logger zerolog.Logger) (*Network, error) {
	leaves, err := NewLevel(in.NodeIDs, in.NodeTypes, in.TypeNames, in.TypeCounts)
	if err != nil {
		return nil, fmt.Errorf("building nodes: %w", err)
	}
	edges, err := NewEdgeContainer(in.EdgesFrom, in.EdgesTo, leaves, in.AllowedFrom, in.AllowedTo)
	if err != nil {
		return nil, fmt.Errorf("building edges: %w", err)
	}

	logger.Debug().
		Int("nodes", leaves.Size()).
		Int("types", leaves.NumTypes()).
		Int("edges", edges.Size()).
		Bool("multipartite", leaves.IsMultipartite()).
		Bool("frozen_edge_types", edges.Frozen()).
		Msg("Network built")

	return &Network{
		levels: []*Level{leaves},
		edges:  edges,
		logger: logger,
	}, nil
}

func (n *Network) Leaves() *Level        { return n.levels[0] }
func (n *Network) Edges() *EdgeContainer { return n.edges }

// Top is the highest level built so far
func (n *Network) Top() *Level { return n.levels[len(n.levels)-1] }

// Levels returns leaves first
func (n *Network) Levels() []*Level { return n.levels }

// AddBlockLevel builds numBlocks blocks per type on top of the current top level
func (n *Network) AddBlockLevel(numBlocks int, rng *rand.Rand) (*Level, error) {
	l, err := NewBlockLevel(numBlocks, n.Top(), rng)
	if err != nil {
		return nil, fmt.Errorf("building level %d: %w", len(n.levels), err)
	}
	n.levels = append(n.levels, l)

	n.logger.Debug().
		Int("level", l.Depth()).
		Int("blocks", l.Size()).
		Msg("Block level built")

	return l, nil
}

// Entropy is CalcEdgeEntropy over the given level
func (n *Network) Entropy(depth int) (float64, error) {
	if depth < 0 || depth >= len(n.levels) {
		return 0, fmt.Errorf("%w: level %d of %d", ErrOutOfRange, depth, len(n.levels))
	}
	return CalcEdgeEntropy(n.levels[depth], n.edges), nil
}

// Info summarises the network's sizes
type Info struct {
	NumNodes    int         `json:"num_nodes"`
	NumTypes    int         `json:"num_types"`
	NumEdges    int         `json:"num_edges"`
	TypeNames   []string    `json:"type_names"`
	Types       []TypeInfo  `json:"types"`
	EdgeTypes   [][2]string `json:"edge_types"`
	LevelBlocks []int       `json:"level_blocks"`
}

func (n *Network) Info() Info {
	leaves := n.Leaves()
	info := Info{
		NumNodes:  leaves.Size(),
		NumTypes:  leaves.NumTypes(),
		NumEdges:  n.edges.Size(),
		TypeNames: leaves.TypeNames(),
	}
	for t := 0; t < leaves.NumTypes(); t++ {
		ti, _ := leaves.TypeInfo(t)
		info.Types = append(info.Types, ti)
	}
	for _, et := range n.edges.EdgeTypes() {
		a, b := et.Get()
		info.EdgeTypes = append(info.EdgeTypes, [2]string{leaves.TypeName(a), leaves.TypeName(b)})
	}
	for _, l := range n.levels[1:] {
		info.LevelBlocks = append(info.LevelBlocks, l.Size())
	}
	return info
}
