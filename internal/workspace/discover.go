// Package workspace discovers layout archives and their layout files.
package workspace

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// DefaultExtension is the extension of layout files.
const DefaultExtension = ".SC2Layout"

// DefaultArchiveSuffixes are the directory suffixes that mark an archive.
var DefaultArchiveSuffixes = []string{".SC2Mod", ".SC2Map", ".SC2Campaign", ".SC2Interface"}

// Config selects which directories are archives and which files are
// layouts. Zero values select the defaults.
type Config struct {
	Extension       string
	ArchiveSuffixes []string
}

func (c Config) withDefaults() Config {
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if len(c.ArchiveSuffixes) == 0 {
		c.ArchiveSuffixes = DefaultArchiveSuffixes
	}
	return c
}

// Archive is a directory whose layout files are bound together.
type Archive struct {
	Path string
	// Layouts are slash separated file paths within fsys, sorted.
	Layouts []string
}

// Discover walks root in fsys and groups layout files by their nearest
// enclosing archive. Layouts outside any archive belong to root itself,
// which is also returned when no archive exists at all. Archives are
// sorted by path.
func Discover(fsys fs.FS, root string, cfg Config) ([]Archive, error) {
	if fsys == nil {
		return nil, fmt.Errorf("discover %s: nil fs", root)
	}
	cfg = cfg.withDefaults()
	if root == "" {
		root = "."
	}

	byPath := map[string]*Archive{root: {Path: root}}
	var archives []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != root && hasSuffixFold(d.Name(), cfg.ArchiveSuffixes) {
				byPath[p] = &Archive{Path: p}
				archives = append(archives, p)
			}
			return nil
		}
		if !hasSuffixFold(d.Name(), []string{cfg.Extension}) {
			return nil
		}
		owner := byPath[enclosing(p, root, archives)]
		owner.Layouts = append(owner.Layouts, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}

	out := make([]Archive, 0, len(byPath))
	for p, a := range byPath {
		if p == root && len(a.Layouts) == 0 && len(archives) > 0 {
			continue
		}
		slices.Sort(a.Layouts)
		out = append(out, *a)
	}
	slices.SortFunc(out, func(a, b Archive) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out, nil
}

// enclosing returns the deepest archive containing p, or root.
func enclosing(p, root string, archives []string) string {
	best := root
	for _, a := range archives {
		if strings.HasPrefix(p, a+"/") && len(a) > len(best) {
			best = a
		}
	}
	return best
}

func hasSuffixFold(name string, suffixes []string) bool {
	ext := path.Ext(name)
	if ext == "" {
		return false
	}
	for _, s := range suffixes {
		if strings.EqualFold(ext, s) {
			return true
		}
	}
	return false
}
