package uilayout

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/jacoelho/uilayout/internal/workspace"
)

// LoadFS discovers the layout files under root in fsys and binds them,
// archive by archive in path order. It returns the bound URIs, which are
// the slash separated paths within fsys.
func (w *Workspace) LoadFS(fsys fs.FS, root string) ([]string, error) {
	archives, err := workspace.Discover(fsys, root, w.opts.discover)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	var uris []string
	for _, a := range archives {
		for _, p := range a.Layouts {
			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				return uris, fmt.Errorf("load layout %s: %w", p, err)
			}
			w.bind(p, string(data))
			uris = append(uris, p)
		}
	}
	return uris, nil
}

// LoadDir binds the layout files found under the directory dir.
func (w *Workspace) LoadDir(dir string) ([]string, error) {
	return w.LoadFS(os.DirFS(dir), ".")
}
