// Package complete lists filesystem entries matching a partial path
// fragment and renders the suggestion grid.
package complete

import (
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Suggestion is one filesystem entry offered during completion.
type Suggestion struct {
	Name  string
	IsDir bool
}

// Engine computes suggestion sets. Results are never cached: directory
// contents may change between triggers, so every call lists afresh.
type Engine struct {
	fs afero.Fs
}

func NewEngine(fs afero.Fs) *Engine {
	return &Engine{fs: fs}
}

// SplitFragment divides a path fragment into its directory portion and
// the final segment used as the search prefix. An empty directory
// portion means the current directory.
func SplitFragment(fragment string) (dir, prefix string) {
	i := strings.LastIndex(fragment, "/")
	if i < 0 {
		return "", fragment
	}
	return fragment[:i+1], fragment[i+1:]
}

// Suggest lists the fragment's directory and returns the entries whose
// names start with the fragment's final segment, sorted by name. With
// dirsOnly set, only directories are candidates (used when completing
// for a directory-change command). Listing failures — a missing
// directory, a permission error — are returned to the caller, never
// collapsed into an empty set.
func (e *Engine) Suggest(fragment string, dirsOnly bool) ([]Suggestion, error) {
	dir, prefix := SplitFragment(fragment)
	if dir == "" {
		dir = "."
	}

	infos, err := afero.ReadDir(e.fs, dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	var matches []Suggestion
	for _, info := range infos {
		if dirsOnly && !info.IsDir() {
			continue
		}
		if !strings.HasPrefix(info.Name(), prefix) {
			continue
		}
		matches = append(matches, Suggestion{Name: info.Name(), IsDir: info.IsDir()})
	}
	return matches, nil
}
