// Package search drives the block model: it stacks block levels on a network
// and runs Metropolis-Hastings sweeps over each new level.
package search

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gilchrisn/sbm-clustering-service/pkg/sbm"
	"github.com/gilchrisn/sbm-clustering-service/pkg/utils"
)

// Result represents the search output
type Result struct {
	Network     sbm.Info       `json:"network"`
	Levels      []LevelInfo    `json:"levels"`
	FinalBlocks map[string]int `json:"final_blocks"`
	Entropy     float64        `json:"entropy"`
	NumLevels   int            `json:"num_levels"`
	Statistics  Statistics     `json:"statistics"`
}

// LevelInfo describes one block level once its sweeps are done
type LevelInfo struct {
	Level        int            `json:"level"`
	Blocks       map[string]int `json:"blocks"`
	BlockSizes   []int          `json:"block_sizes"`
	NumBlocks    int            `json:"num_blocks"`
	Entropy      float64        `json:"entropy"`
	Modularity   float64        `json:"modularity"`
	Sweeps       int            `json:"sweeps"`
	NumMoves     int            `json:"num_moves"`
	EntropyTrace []float64      `json:"entropy_trace"`
	RuntimeMS    int64          `json:"runtime_ms"`
}

// Statistics contains sampler totals
type Statistics struct {
	TotalSweeps    int          `json:"total_sweeps"`
	TotalProposed  int          `json:"total_proposed"`
	TotalMoves     int          `json:"total_moves"`
	MeanAcceptRate float64      `json:"mean_accept_rate"`
	RuntimeMS      int64        `json:"runtime_ms"`
	LevelStats     []LevelStats `json:"level_stats"`
}

// LevelStats contains per-level statistics
type LevelStats struct {
	Level          int     `json:"level"`
	Sweeps         int     `json:"sweeps"`
	Proposed       int     `json:"proposed"`
	Moves          int     `json:"moves"`
	InitialEntropy float64 `json:"initial_entropy"`
	FinalEntropy   float64 `json:"final_entropy"`
	BestEntropy    float64 `json:"best_entropy"`
	RuntimeMS      int64   `json:"runtime_ms"`
}

// levelRun accumulates what the sweeps over one level did
type levelRun struct {
	sweeps   int
	proposed int
	moves    int
	trace    []float64
	rates    []float64
}

// Run builds one block level per entry of algorithm.block_counts over the
// network's current top level and samples each with MCMC sweeps.
func Run(ctx context.Context, net *sbm.Network, config *Config) (*Result, error) {
	startTime := time.Now()
	logger := config.CreateLogger()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	for t, name := range net.Top().TypeNames() {
		if net.Top().SizeOfType(t) == 0 {
			return nil, fmt.Errorf("%w: type %q has no nodes to put in blocks", sbm.ErrInvalidInput, name)
		}
	}

	info := net.Info()
	logger.Info().
		Int("nodes", info.NumNodes).
		Int("types", info.NumTypes).
		Int("edges", info.NumEdges).
		Ints("block_counts", config.BlockCounts()).
		Msg("Starting block model search")

	var tracker *utils.MoveTracker
	if config.EnableMoveTracking() {
		var err error
		tracker, err = utils.NewMoveTracker(config.TrackingOutputFile())
		if err != nil {
			return nil, err
		}
		defer tracker.Close()
	}

	rng := rand.New(rand.NewSource(config.RandomSeed()))
	result := &Result{
		Levels:     make([]LevelInfo, 0),
		Statistics: Statistics{LevelStats: make([]LevelStats, 0)},
	}
	var rates []float64

	for _, requested := range config.BlockCounts() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		numBlocks := clampBlocks(requested, net.Top())
		if numBlocks != requested {
			logger.Warn().
				Int("requested", requested).
				Int("blocks", numBlocks).
				Msg("Fewer nodes than requested blocks, clamping")
		}

		levelStart := time.Now()
		blocks, err := net.AddBlockLevel(numBlocks, rng)
		if err != nil {
			return nil, err
		}
		depth := blocks.Depth()
		initial := sbm.CalcEdgeEntropy(blocks, net.Edges())

		logger.Info().
			Int("level", depth).
			Int("blocks", blocks.Size()).
			Float64("initial_entropy", initial).
			Msg("Starting level")

		run, err := sweepLevel(ctx, blocks, config, rng, tracker, logger, initial)
		if err != nil {
			return nil, fmt.Errorf("sampling level %d: %w", depth, err)
		}

		final := sbm.CalcEdgeEntropy(blocks, net.Edges())
		levelTime := time.Since(levelStart)
		labels, sizes := assignment(net, blocks)

		result.Levels = append(result.Levels, LevelInfo{
			Level:        depth,
			Blocks:       labels,
			BlockSizes:   sizes,
			NumBlocks:    blocks.Size(),
			Entropy:      final,
			Modularity:   Modularity(net, blocks),
			Sweeps:       run.sweeps,
			NumMoves:     run.moves,
			EntropyTrace: run.trace,
			RuntimeMS:    levelTime.Milliseconds(),
		})
		result.Statistics.LevelStats = append(result.Statistics.LevelStats, LevelStats{
			Level:          depth,
			Sweeps:         run.sweeps,
			Proposed:       run.proposed,
			Moves:          run.moves,
			InitialEntropy: initial,
			FinalEntropy:   final,
			BestEntropy:    floats.Max(run.trace),
			RuntimeMS:      levelTime.Milliseconds(),
		})
		result.Statistics.TotalSweeps += run.sweeps
		result.Statistics.TotalProposed += run.proposed
		result.Statistics.TotalMoves += run.moves
		rates = append(rates, run.rates...)

		logger.Info().
			Int("level", depth).
			Int("blocks", blocks.Size()).
			Int("moves", run.moves).
			Float64("entropy", final).
			Msg("Level completed")
	}

	last := result.Levels[len(result.Levels)-1]
	result.FinalBlocks = last.Blocks
	result.Entropy = last.Entropy
	result.NumLevels = len(result.Levels)
	result.Network = net.Info()
	if len(rates) > 0 {
		result.Statistics.MeanAcceptRate = stat.Mean(rates, nil)
	}
	result.Statistics.RuntimeMS = time.Since(startTime).Milliseconds()

	logger.Info().
		Int("levels", result.NumLevels).
		Float64("entropy", result.Entropy).
		Int64("runtime_ms", result.Statistics.RuntimeMS).
		Msg("Block model search completed")

	return result, nil
}

// sweepLevel visits every child of blocks once per sweep in shuffled order,
// proposing and possibly accepting one move each. It stops after max_sweeps
// or when a sweep accepts less than min_accept_rate of its proposals.
func sweepLevel(ctx context.Context, blocks *sbm.Level, config *Config, rng *rand.Rand,
	tracker *utils.MoveTracker, logger zerolog.Logger, entropy float64) (levelRun, error) {
	eps, beta := config.Eps(), config.Beta()
	removeEmpty := config.RemoveEmpty()
	child := blocks.Child()
	run := levelRun{trace: []float64{entropy}}

	for sweep := 0; sweep < config.MaxSweeps(); sweep++ {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		nodes := child.Nodes()
		rng.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })

		accepted := 0
		for _, node := range nodes {
			from := child.Node(node).Parent()
			to := sbm.ProposeMove(node, blocks, rng, eps)
			if to == from {
				continue
			}

			res := sbm.GetMoveResults(blocks, node, to, eps)
			if !sbm.Accept(res, beta, rng) {
				continue
			}

			// to is a live block of the node's type, so removal never
			// leaves a type without blocks
			blocks.Swap(node, to, removeEmpty)
			entropy += res.EntropyDelta
			accepted++

			err := tracker.LogMove(utils.MoveEvent{
				Level:     blocks.Depth(),
				Sweep:     sweep,
				Node:      int(node),
				FromBlock: int(from),
				ToBlock:   int(to),
				Delta:     res.EntropyDelta,
				ProbRatio: res.ProbRatio,
				Entropy:   entropy,
			})
			if err != nil {
				return run, fmt.Errorf("tracking move: %w", err)
			}
		}

		rate := 0.0
		if len(nodes) > 0 {
			rate = float64(accepted) / float64(len(nodes))
		}
		run.sweeps++
		run.proposed += len(nodes)
		run.moves += accepted
		run.trace = append(run.trace, entropy)
		run.rates = append(run.rates, rate)

		if config.EnableProgress() && sweep%10 == 0 {
			logger.Info().
				Int("level", blocks.Depth()).
				Int("sweep", sweep+1).
				Int("moves", accepted).
				Float64("entropy", entropy).
				Msg("Sweep progress")
		}

		if rate < config.MinAcceptRate() {
			logger.Debug().Int("sweep", sweep+1).Float64("accept_rate", rate).Msg("Converged: acceptance rate too low")
			break
		}
	}

	return run, nil
}

// clampBlocks caps a requested block count at the smallest type population
// of the level the blocks will be built on.
func clampBlocks(requested int, top *sbm.Level) int {
	k := requested
	for t := 0; t < top.NumTypes(); t++ {
		k = min(k, top.SizeOfType(t))
	}
	return k
}

// assignment labels the live blocks of a level 0..n-1 in type order and maps
// every leaf id to its block's label.
func assignment(net *sbm.Network, blocks *sbm.Level) (map[string]int, []int) {
	labels := make(map[sbm.NodeID]int, blocks.Size())
	for i, b := range blocks.Nodes() {
		labels[b] = i
	}

	leaves := net.Leaves()
	out := make(map[string]int, leaves.Size())
	sizes := make([]int, len(labels))
	for _, id := range leaves.Nodes() {
		name, _ := leaves.ID(id)
		label := labels[blocks.Ancestor(id)]
		out[name] = label
		sizes[label]++
	}
	return out, sizes
}
