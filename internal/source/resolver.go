// Package source turns a dataset kind into the list of files to read.
package source

import (
	"path/filepath"
	"sort"

	"uidai-pipeline/internal/model"
)

// Resolver resolves candidate paths for a dataset. It never checks existence;
// missing files are skipped by the reader.
type Resolver struct {
	baseDir string
}

// NewResolver creates a resolver rooted at baseDir. An empty baseDir means
// the fixed filenames are used relative to the working directory.
func NewResolver(baseDir string) *Resolver {
	return &Resolver{baseDir: baseDir}
}

// BaseDir returns the configured data directory
func (r *Resolver) BaseDir() string {
	return r.baseDir
}

// Resolve returns the ordered candidate paths for spec. With a base directory,
// sorted glob matches of spec.Pattern win over the fixed list.
func (r *Resolver) Resolve(spec model.DatasetSpec) []string {
	if r.baseDir != "" && spec.Pattern != "" {
		// ErrBadPattern is the only possible error; treat it as no match.
		matches, _ := filepath.Glob(filepath.Join(r.baseDir, spec.Pattern))
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches
		}
	}
	return r.fixed(spec.Files)
}

func (r *Resolver) fixed(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if f == "" {
			continue
		}
		if r.baseDir != "" && !filepath.IsAbs(f) {
			f = filepath.Join(r.baseDir, f)
		}
		out = append(out, f)
	}
	return out
}
