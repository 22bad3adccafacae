// Package parser reads networks from plain text files. Lines hold fields
// separated by whitespace or commas; blank lines and lines starting with #
// are skipped, and a leading header row is recognised and dropped.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/gilchrisn/sbm-clustering-service/pkg/sbm"
)

var (
	nodeHeaders     = []string{"id", "node", "node_id"}
	edgeHeaders     = []string{"from", "source", "src"}
	edgeTypeHeaders = []string{"from_type", "type_a", "from"}
)

// LoadNetworkFiles reads a node file (id type), an edge file
// (from to [count]) and an optional edge type file (type type) into a
// normalised sbm.Input. Pass "" as edgeTypesPath to infer edge types.
func LoadNetworkFiles(nodesPath, edgesPath, edgeTypesPath string) (sbm.Input, error) {
	paths := []string{nodesPath, edgesPath}
	if edgeTypesPath != "" {
		paths = append(paths, edgeTypesPath)
	}
	if err := checkFilesExist(paths...); err != nil {
		return sbm.Input{}, err
	}

	nodes, err := os.Open(nodesPath)
	if err != nil {
		return sbm.Input{}, err
	}
	defer nodes.Close()

	edges, err := os.Open(edgesPath)
	if err != nil {
		return sbm.Input{}, err
	}
	defer edges.Close()

	var edgeTypes io.Reader
	if edgeTypesPath != "" {
		f, err := os.Open(edgeTypesPath)
		if err != nil {
			return sbm.Input{}, err
		}
		defer f.Close()
		edgeTypes = f
	}

	return ReadNetwork(nodes, edges, edgeTypes)
}

// ReadNetwork is LoadNetworkFiles over readers. edgeTypes may be nil.
func ReadNetwork(nodes, edges, edgeTypes io.Reader) (sbm.Input, error) {
	var in sbm.Input

	err := scanRecords(nodes, 2, nodeHeaders, func(line int, fields []string) error {
		in.NodeIDs = append(in.NodeIDs, fields[0])
		in.NodeTypes = append(in.NodeTypes, fields[1])
		return nil
	})
	if err != nil {
		return sbm.Input{}, fmt.Errorf("failed to parse nodes: %w", err)
	}

	err = scanRecords(edges, 2, edgeHeaders, func(line int, fields []string) error {
		count := 1
		if len(fields) >= 3 {
			c, err := strconv.Atoi(fields[2])
			if err != nil || c < 1 {
				return fmt.Errorf("line %d: edge count %q is not a positive integer", line, fields[2])
			}
			count = c
		}
		for i := 0; i < count; i++ {
			in.EdgesFrom = append(in.EdgesFrom, fields[0])
			in.EdgesTo = append(in.EdgesTo, fields[1])
		}
		return nil
	})
	if err != nil {
		return sbm.Input{}, fmt.Errorf("failed to parse edges: %w", err)
	}

	if edgeTypes != nil {
		err = scanRecords(edgeTypes, 2, edgeTypeHeaders, func(line int, fields []string) error {
			in.AllowedFrom = append(in.AllowedFrom, fields[0])
			in.AllowedTo = append(in.AllowedTo, fields[1])
			return nil
		})
		if err != nil {
			return sbm.Input{}, fmt.Errorf("failed to parse edge types: %w", err)
		}
	}

	return Normalize(in), nil
}

// Normalize fills in the type declarations of an input that has none: nodes
// are ordered by type name, keeping file order within a type, and TypeNames
// and TypeCounts are derived from the node types. An input that declares its
// TypeNames is returned as is, apart from TypeCounts being derived when
// missing, so NewNetwork still checks its order and types.
func Normalize(in sbm.Input) sbm.Input {
	if len(in.TypeNames) > 0 {
		if in.TypeCounts == nil {
			in.TypeCounts = typeCounts(in.NodeTypes, in.TypeNames)
		}
		return in
	}

	order := make([]int, len(in.NodeIDs))
	for i := range order {
		order[i] = i
	}
	if len(in.NodeTypes) == len(in.NodeIDs) {
		sort.SliceStable(order, func(a, b int) bool {
			return in.NodeTypes[order[a]] < in.NodeTypes[order[b]]
		})
	}

	out := in
	out.NodeIDs = make([]string, 0, len(order))
	out.NodeTypes = make([]string, 0, len(order))
	for _, i := range order {
		out.NodeIDs = append(out.NodeIDs, in.NodeIDs[i])
		if i < len(in.NodeTypes) {
			out.NodeTypes = append(out.NodeTypes, in.NodeTypes[i])
		}
	}

	names := slices.Clone(out.NodeTypes)
	slices.Sort(names)
	out.TypeNames = slices.Compact(names)
	out.TypeCounts = typeCounts(out.NodeTypes, out.TypeNames)
	return out
}

func typeCounts(nodeTypes, names []string) []int {
	counts := make(map[string]int)
	for _, t := range nodeTypes {
		counts[t]++
	}
	out := make([]int, len(names))
	for i, name := range names {
		out[i] = counts[name]
	}
	return out
}

// scanRecords calls fn with the fields of every data line. Lines with fewer
// than minFields fields are rejected. A first data line whose first field is
// one of headers is treated as a header.
func scanRecords(r io.Reader, minFields int, headers []string, fn func(line int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	first := true

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := splitFields(line)
		if first {
			first = false
			if slices.Contains(headers, strings.ToLower(fields[0])) {
				continue
			}
		}
		if len(fields) < minFields {
			return fmt.Errorf("line %d: expected at least %d fields, got %d", lineNum, minFields, len(fields))
		}
		if err := fn(lineNum, fields); err != nil {
			return err
		}
	}

	return scanner.Err()
}

func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

func checkFilesExist(filenames ...string) error {
	for _, filename := range filenames {
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filename)
		}
	}
	return nil
}

// SaveBlocks writes one "id block" line per leaf, ordered by id
func SaveBlocks(blocks map[string]int, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	ids := make([]string, 0, len(blocks))
	for id := range blocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	writer := bufio.NewWriter(file)
	for _, id := range ids {
		if _, err := fmt.Fprintf(writer, "%s %d\n", id, blocks[id]); err != nil {
			return err
		}
	}
	return writer.Flush()
}
