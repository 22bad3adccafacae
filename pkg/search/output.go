package search

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gilchrisn/sbm-clustering-service/pkg/sbm"
)

// blockLabel names a block as l<depth>_<position>, position being its index
// in Level.Nodes() so labels line up with LevelInfo.Blocks.
func blockLabel(depth, pos int) string {
	return fmt.Sprintf("l%d_%d", depth, pos)
}

func positions(l *sbm.Level) map[sbm.NodeID]int {
	pos := make(map[sbm.NodeID]int, l.Size())
	for i, id := range l.Nodes() {
		pos[id] = i
	}
	return pos
}

// WriteHierarchy writes the fitted block hierarchy as three text files in
// outputDir:
//
//	<prefix>.mapping    each top-level block, its leaf count, then its leaf ids
//	<prefix>.hierarchy  each block above the first level, its child count, then its child blocks
//	<prefix>.root       the top-level blocks
func WriteHierarchy(net *sbm.Network, outputDir, prefix string) error {
	if len(net.Levels()) < 2 {
		return fmt.Errorf("no block levels to write")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		ext   string
		write func(*bufio.Writer, *sbm.Network) error
	}{
		{"mapping", writeMapping},
		{"hierarchy", writeChildren},
		{"root", writeRoot},
	}
	for _, f := range files {
		path := filepath.Join(outputDir, fmt.Sprintf("%s.%s", prefix, f.ext))
		if err := writeFile(path, net, f.write); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.ext, err)
		}
	}
	return nil
}

func writeFile(path string, net *sbm.Network, write func(*bufio.Writer, *sbm.Network) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := write(w, net); err != nil {
		return err
	}
	return w.Flush()
}

func writeMapping(w *bufio.Writer, net *sbm.Network) error {
	top := net.Top()
	pos := positions(top)
	leaves := net.Leaves()

	members := make([][]string, top.Size())
	for _, id := range leaves.Nodes() {
		name, err := leaves.ID(id)
		if err != nil {
			return err
		}
		p := pos[top.Ancestor(id)]
		members[p] = append(members[p], name)
	}

	for p, names := range members {
		sort.Strings(names)
		fmt.Fprintf(w, "%s\n%d\n", blockLabel(top.Depth(), p), len(names))
		for _, name := range names {
			fmt.Fprintln(w, name)
		}
	}
	return nil
}

func writeChildren(w *bufio.Writer, net *sbm.Network) error {
	levels := net.Levels()
	for depth := 2; depth < len(levels); depth++ {
		l, child := levels[depth], levels[depth-1]
		childPos := positions(child)

		for p, id := range l.Nodes() {
			kids := make([]int, 0, l.Node(id).NumChildren())
			for _, c := range l.Node(id).Children() {
				kids = append(kids, childPos[c])
			}
			sort.Ints(kids)

			fmt.Fprintf(w, "%s\n%d\n", blockLabel(depth, p), len(kids))
			for _, k := range kids {
				fmt.Fprintln(w, blockLabel(depth-1, k))
			}
		}
	}
	return nil
}

func writeRoot(w *bufio.Writer, net *sbm.Network) error {
	top := net.Top()
	for p := range top.Nodes() {
		fmt.Fprintln(w, blockLabel(top.Depth(), p))
	}
	return nil
}
