package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/sbm-clustering-service/pkg/parser"
	"github.com/gilchrisn/sbm-clustering-service/pkg/sbm"
	"github.com/gilchrisn/sbm-clustering-service/pkg/search"
)

func main() {
	configFile := flag.String("config", "", "optional YAML/JSON search configuration")
	nodesFile := flag.String("nodes", "", "node file: id type")
	edgesFile := flag.String("edges", "", "edge file: from to [count]")
	edgeTypesFile := flag.String("edge-types", "", "optional allowed edge types: type type")
	outFile := flag.String("out", "sbm_result.json", "result JSON path")
	blocksPrefix := flag.String("blocks-prefix", "", "write <prefix>_level_<n>.txt block assignments")
	outputDir := flag.String("output-dir", "", "write .mapping/.hierarchy/.root files to this directory")
	prefix := flag.String("prefix", "sbm", "file prefix for -output-dir")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	if *nodesFile == "" || *edgesFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -nodes <file> -edges <file> [-edge-types <file>] [-config <file>] [-out <file>]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	config := search.NewConfig()
	if *configFile != "" {
		if err := config.LoadFromFile(*configFile); err != nil {
			log.Fatal().Err(err).Str("file", *configFile).Msg("Failed to load configuration")
		}
	}
	logger := config.CreateLogger()

	in, err := parser.LoadNetworkFiles(*nodesFile, *edgesFile, *edgeTypesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse input")
	}

	net, err := sbm.NewNetwork(in, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build network")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := search.Run(ctx, net, config)
	if err != nil {
		log.Fatal().Err(err).Msg("Search failed")
	}

	if err := search.WriteResult(result, *outFile); err != nil {
		log.Fatal().Err(err).Msg("Failed to write result")
	}
	if *blocksPrefix != "" {
		for _, level := range result.Levels {
			path := fmt.Sprintf("%s_level_%d.txt", *blocksPrefix, level.Level)
			if err := parser.SaveBlocks(level.Blocks, path); err != nil {
				log.Fatal().Err(err).Str("file", path).Msg("Failed to write block assignments")
			}
		}
	}
	if *outputDir != "" {
		if err := search.WriteHierarchy(net, *outputDir, *prefix); err != nil {
			log.Fatal().Err(err).Str("dir", *outputDir).Msg("Failed to write hierarchy")
		}
	}

	displayResults(result)
	log.Info().Str("file", *outFile).Msg("Result written")
}

func displayResults(result *search.Result) {
	fmt.Printf("\n=== Block Model Results ===\n")
	fmt.Printf("Nodes: %d  Types: %d  Edges: %d\n",
		result.Network.NumNodes, result.Network.NumTypes, result.Network.NumEdges)
	fmt.Printf("Levels: %d  Final entropy: %.6f\n", result.NumLevels, result.Entropy)
	fmt.Printf("Sweeps: %d  Accepted moves: %d/%d  Mean accept rate: %.3f\n",
		result.Statistics.TotalSweeps, result.Statistics.TotalMoves,
		result.Statistics.TotalProposed, result.Statistics.MeanAcceptRate)

	for _, level := range result.Levels {
		fmt.Printf("\nLevel %d: %d blocks, entropy %.6f, modularity %.6f, %d sweeps, %d moves\n",
			level.Level, level.NumBlocks, level.Entropy, level.Modularity, level.Sweeps, level.NumMoves)

		members := make(map[int][]string)
		for id, block := range level.Blocks {
			members[block] = append(members[block], id)
		}
		labels := make([]int, 0, len(members))
		for label := range members {
			labels = append(labels, label)
		}
		sort.Ints(labels)

		for _, label := range labels {
			ids := members[label]
			sort.Strings(ids)
			if len(ids) > 10 {
				fmt.Printf("  block %d (%d): %v ...\n", label, len(ids), ids[:10])
				continue
			}
			fmt.Printf("  block %d (%d): %v\n", label, len(ids), ids)
		}
	}
}
