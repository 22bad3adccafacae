package sbm

import (
	"math/rand"
	"slices"
)

// ProposeMove draws a candidate block for node, a member of the level below
// blocks. It follows a random edge of node to a neighbouring block B, then
// either jumps to a uniformly random block of node's type, with probability
// eps*K/(|T|+eps*K), or to the block owning a random entry of T, where T is
// B's edge entries towards node's type and K the number of blocks of that type.
func ProposeMove(node NodeID, blocks *Level, rng *rand.Rand, eps float64) NodeID {
	nn := blocks.child.Node(node)
	candidates := blocks.byType[nn.TypeIndex]
	if len(candidates) == 0 {
		inconsistent("no blocks of type %d", nn.TypeIndex)
	}

	degree := nn.Degree()
	if degree == 0 {
		return candidates[rng.Intn(len(candidates))]
	}

	neighbor := blocks.Ancestor(entryAt(nn.edges, rng.Intn(degree)))
	toType := blocks.nodes[neighbor].EdgesTo(nn.TypeIndex)

	ergo := eps * float64(len(candidates))
	if len(toType) == 0 || rng.Float64() < ergo/(float64(len(toType))+ergo) {
		return candidates[rng.Intn(len(candidates))]
	}
	return blocks.Ancestor(toType[rng.Intn(len(toType))])
}

// ProposalProbability is the chance that ProposeMove returns target for node
// in the current state.
func ProposalProbability(blocks *Level, node, target NodeID, eps float64) float64 {
	return proposalProbability(newMoveView(blocks, node, target, false), target, eps)
}

// proposalProbability sums, over the blocks t holding node's neighbours,
//
//	p_t * (e_t->target + eps) / (|t edges to node's type| + eps*K)
//
// where p_t is the share of node's edges that land in t.
func proposalProbability(v moveView, target NodeID, eps float64) float64 {
	t := v.nn.TypeIndex
	k := float64(len(v.blocks.byType[t]))
	degree := float64(v.nn.Degree())
	if degree == 0 {
		return 1 / k
	}

	counts := v.neighborBlocks()
	keys := make([]NodeID, 0, len(counts))
	for b := range counts {
		keys = append(keys, b)
	}
	slices.Sort(keys)

	prob := 0.0
	for _, b := range keys {
		size, hits := v.typeRow(b, t, target)
		prob += float64(counts[b]) / degree * (float64(hits) + eps) / (float64(size) + eps*k)
	}
	return prob
}

// entryAt returns the i-th entry of p, counting across type partitions in order
func entryAt(p EdgePartition, i int) NodeID {
	for _, es := range p {
		if i < len(es) {
			return es[i]
		}
		i -= len(es)
	}
	inconsistent("edge entry %d out of range", i)
	return NoNode
}
