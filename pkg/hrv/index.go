// Package hrv links a tabular HRV index against a directory of
// per-measurement histogram files, extracts per-day metrics, and
// aggregates them to monthly summaries. Rows whose histogram cannot be
// found, parsed, or dated are skipped; nothing in this package fails
// the run.
package hrv

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/vitalsum/vitalsum/pkg/logging"
)

// HistogramSuffix is the fixed file-name suffix of histogram files.
const HistogramSuffix = ".binning_data.json"

// Index maps histogram file names to their on-disk locations. A name
// may collide when the export duplicates a measurement; the first
// location found wins when a collision is resolved.
type Index struct {
	names  []string // sorted, for deterministic substring fallback
	byName map[string][]string
}

// BuildIndex enumerates every histogram file under dir, recursively.
// A missing or unreadable directory yields an empty index.
func BuildIndex(dir string) *Index {
	idx := &Index{byName: map[string][]string{}}

	err := godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: false,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
				return nil
			}
			name := filepath.Base(path)
			if _, seen := idx.byName[name]; !seen {
				idx.names = append(idx.names, name)
			}
			idx.byName[name] = append(idx.byName[name], path)
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			logging.Debug().Err(err).Str("path", path).Msg("skipping unreadable histogram path")
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		logging.Debug().Err(err).Str("dir", dir).Msg("histogram directory not indexed")
		return &Index{byName: map[string][]string{}}
	}

	sort.Strings(idx.names)
	return idx
}

// Len returns the number of distinct indexed names.
func (x *Index) Len() int { return len(x.names) }

// Resolve maps a histogram reference to a file path. Exact name match
// is tried first; failing that, substring containment in either
// direction covers naming-convention drift between export versions.
// The fallback scans names in sorted order so resolution is
// deterministic even when a short reference matches several files.
func (x *Index) Resolve(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if paths, ok := x.byName[ref]; ok && len(paths) > 0 {
		return paths[0], true
	}
	for _, name := range x.names {
		if strings.Contains(name, ref) || strings.Contains(ref, name) {
			return x.byName[name][0], true
		}
	}
	return "", false
}
