package search

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/sbm-clustering-service/pkg/sbm"
)

// LeafGraph converts the network's edge list to a gonum graph keyed by leaf
// NodeID. Parallel edges add up as weight; self loops are left out since
// simple graphs can't hold them (see selfLoops).
func LeafGraph(net *sbm.Network) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, id := range net.Leaves().Nodes() {
		g.AddNode(simple.Node(id))
	}

	for _, e := range net.Edges().Edges() {
		u, v := int64(e.First()), int64(e.Second())
		if u == v {
			continue
		}
		w := 1.0
		if existing := g.WeightedEdge(u, v); existing != nil {
			w += existing.Weight()
		}
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(u), T: simple.Node(v), W: w})
	}
	return g
}

// selfLoops maps each leaf with self loops to twice their count, the
// diagonal entry of the adjacency matrix.
func selfLoops(net *sbm.Network) map[int64]float64 {
	loops := make(map[int64]float64)
	for _, e := range net.Edges().Edges() {
		if e.IsMatching() {
			loops[int64(e.First())] += 2
		}
	}
	return loops
}

// loopGraph reports self loop weights on top of a simple graph, which is
// where community.Q looks for them.
type loopGraph struct {
	*simple.WeightedUndirectedGraph
	loops map[int64]float64
}

func (g loopGraph) Weight(xid, yid int64) (float64, bool) {
	if xid == yid {
		w, ok := g.loops[xid]
		return w, ok
	}
	return g.WeightedUndirectedGraph.Weight(xid, yid)
}

// Modularity scores the partition of the leaves induced by a block level
// with Newman's Q at resolution 1. Self loops count twice towards their
// node's degree, as they do in the block edge counts. A graph without edges
// scores 0.
func Modularity(net *sbm.Network, blocks *sbm.Level) float64 {
	g := loopGraph{LeafGraph(net), selfLoops(net)}
	if g.Edges().Len() == 0 && len(g.loops) == 0 {
		return 0
	}

	members := make(map[sbm.NodeID][]graph.Node)
	for _, id := range net.Leaves().Nodes() {
		b := blocks.Ancestor(id)
		members[b] = append(members[b], simple.Node(id))
	}

	communities := make([][]graph.Node, 0, len(members))
	for _, b := range blocks.Nodes() {
		if len(members[b]) > 0 {
			communities = append(communities, members[b])
		}
	}
	return community.Q(g, communities, 1)
}

// WriteResult saves the result as indented JSON
func WriteResult(result *Result, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	return nil
}
