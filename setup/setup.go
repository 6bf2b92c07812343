// Package setup checks that a project directory has the layout the
// workflow expects.
package setup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Dirs are the project directories, relative to the project root.
var Dirs = []string{"data", "notebooks", "models", "outputs"}

// SampleFile is the dataset the exploration step reads by default.
const SampleFile = "data/sample_emails.csv"

// Item is the result of checking one path.
type Item struct {
	Path string
	Dir  bool
	OK   bool
	Err  error
}

// Result lists every checked path in check order.
type Result struct {
	Root  string
	Items []Item
}

// OK reports whether every path is present.
func (r Result) OK() bool {
	for _, it := range r.Items {
		if !it.OK {
			return false
		}
	}
	return true
}

// Missing returns the paths that failed the check.
func (r Result) Missing() []string {
	var out []string
	for _, it := range r.Items {
		if !it.OK {
			out = append(out, it.Path)
		}
	}
	return out
}

// Print writes one line per item.
func (r Result) Print(w io.Writer) error {
	for _, it := range r.Items {
		kind := "file"
		if it.Dir {
			kind = "directory"
		}
		mark := "ok"
		if !it.OK {
			mark = "missing"
		}
		if _, err := fmt.Fprintf(w, "%-8s %s %s\n", mark, kind, it.Path); err != nil {
			return err
		}
	}
	return nil
}

// Check inspects root for the project directories and the sample dataset.
func Check(root string) Result {
	r := Result{Root: root}
	for _, d := range Dirs {
		r.Items = append(r.Items, checkPath(root, d, true))
	}
	r.Items = append(r.Items, checkPath(root, SampleFile, false))
	return r
}

func checkPath(root, rel string, dir bool) Item {
	it := Item{Path: rel, Dir: dir}
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		it.Err = err
		return it
	}
	it.OK = info.IsDir() == dir
	if !it.OK {
		it.Err = fmt.Errorf("%s: unexpected file type", rel)
	}
	return it
}

// CreateDirs creates the project directories under root.
func CreateDirs(root string) error {
	for _, d := range Dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}
