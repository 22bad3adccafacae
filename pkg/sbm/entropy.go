package sbm

import (
	"math"
	"slices"

	"github.com/gilchrisn/sbm-clustering-service/pkg/pair"
)

// BlockPair keys edge counts between two blocks of the same level
type BlockPair = pair.Pair[NodeID]

// edgeTerm is one block pair's share of the edge entropy,
// e_rs * ln(e_rs / (e_r * e_s)). Self pairs are passed their doubled count
// (both half edges) and contribute half the term.
func edgeTerm(count float64, matching bool, d1, d2 float64) float64 {
	if count <= 0 {
		return 0
	}
	if matching {
		return count * math.Log(count/(d1*d2)) / 2
	}
	return count * math.Log(count/(d1*d2))
}

// BlockEdgeCounts scans every edge once and counts how many fall between each
// pair of blocks of the given level. When blocksOfInterest is non-empty only
// pairs touching one of them are counted.
func BlockEdgeCounts(blocks *Level, edges *EdgeContainer, blocksOfInterest ...NodeID) map[BlockPair]int {
	counts := make(map[BlockPair]int)
	for _, e := range edges.Edges() {
		g1 := blocks.Ancestor(e.First())
		g2 := blocks.Ancestor(e.Second())
		if len(blocksOfInterest) > 0 &&
			!slices.Contains(blocksOfInterest, g1) && !slices.Contains(blocksOfInterest, g2) {
			continue
		}
		counts[pair.New(g1, g2)]++
	}
	return counts
}

// CalcEdgeEntropy folds e_rs * ln(e_rs / (e_r * e_s)) over the block pair
// edge counts of a level. It rescans the whole edge list and is meant as the
// reference for the incremental evaluation in MoveEntropyDelta.
func CalcEdgeEntropy(blocks *Level, edges *EdgeContainer, blocksOfInterest ...NodeID) float64 {
	counts := BlockEdgeCounts(blocks, edges, blocksOfInterest...)

	keys := make([]BlockPair, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, BlockPair.Compare)

	entropy := 0.0
	for _, k := range keys {
		g1, g2 := k.Get()
		n := float64(counts[k])
		if k.IsMatching() {
			n *= 2
		}
		entropy += edgeTerm(n, k.IsMatching(),
			float64(blocks.nodes[g1].Degree()), float64(blocks.nodes[g2].Degree()))
	}
	return entropy
}

// localEntropy is CalcEdgeEntropy restricted to pairs touching r or s, built
// from the two blocks' own edge partitions instead of the edge list.
// Counts from r's partition already hold the doubled self pair, and the
// (r, s) pair is read from r's side only.
func localEntropy(v moveView, r, s NodeID) float64 {
	dr := float64(v.degree(r))
	ds := float64(v.degree(s))

	entropy := 0.0
	rowR := v.row(r)
	for _, t := range sortedKeys(rowR) {
		switch t {
		case r:
			entropy += edgeTerm(float64(rowR[t]), true, dr, dr)
		default:
			entropy += edgeTerm(float64(rowR[t]), false, dr, float64(v.degree(t)))
		}
	}

	rowS := v.row(s)
	for _, t := range sortedKeys(rowS) {
		switch t {
		case r:
			continue
		case s:
			entropy += edgeTerm(float64(rowS[t]), true, ds, ds)
		default:
			entropy += edgeTerm(float64(rowS[t]), false, ds, float64(v.degree(t)))
		}
	}
	return entropy
}

func sortedKeys(m map[NodeID]int) []NodeID {
	keys := make([]NodeID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
