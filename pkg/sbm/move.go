package sbm

import (
	"math"
	"math/rand"
)

// MoveResults is what an external search loop needs to accept or reject a
// proposed move.
type MoveResults struct {
	EntropyDelta float64 `json:"entropy_delta"`
	ProbRatio    float64 `json:"prob_ratio"`
}

// MoveEntropyDelta returns the change in description length of moving node
// (a member of the level below blocks) from its block to newBlock, pre minus
// post. The description length is the negated edge entropy sum, so the value
// equals post-move CalcEdgeEntropy minus pre-move CalcEdgeEntropy and is
// positive for favourable moves.
//
// Only pairs touching the old or new block are visited, using the edge
// partitions those blocks already hold. No state is modified.
func MoveEntropyDelta(blocks *Level, node, newBlock NodeID) float64 {
	oldBlock := blocks.child.Node(node).parent
	if oldBlock == newBlock {
		return 0
	}
	pre := localEntropy(newMoveView(blocks, node, newBlock, false), oldBlock, newBlock)
	post := localEntropy(newMoveView(blocks, node, newBlock, true), oldBlock, newBlock)
	return post - pre
}

// GetMoveResults evaluates moving node to newBlock: the entropy delta and the
// ratio of proposing the way back after the move to proposing the move now,
// both under ProposeMove's own distribution. No state is modified.
func GetMoveResults(blocks *Level, node, newBlock NodeID, eps float64) MoveResults {
	oldBlock := blocks.child.Node(node).parent
	if oldBlock == newBlock {
		return MoveResults{EntropyDelta: 0, ProbRatio: 1}
	}

	pre := newMoveView(blocks, node, newBlock, false)
	post := newMoveView(blocks, node, newBlock, true)

	res := MoveResults{
		EntropyDelta: localEntropy(post, oldBlock, newBlock) - localEntropy(pre, oldBlock, newBlock),
		ProbRatio:    1,
	}
	if pre.nn.Degree() == 0 {
		return res
	}

	forward := proposalProbability(pre, newBlock, eps)
	backward := proposalProbability(post, oldBlock, eps)
	if forward == 0 {
		// ProposeMove can never produce this move
		res.ProbRatio = 0
		return res
	}
	res.ProbRatio = backward / forward
	return res
}

// Accept runs the Metropolis-Hastings test exp(beta*delta) * ratio >= u
func Accept(res MoveResults, beta float64, rng *rand.Rand) bool {
	return math.Exp(beta*res.EntropyDelta)*res.ProbRatio >= rng.Float64()
}
