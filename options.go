package uilayout

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jacoelho/uilayout/internal/hierarchy"
	"github.com/jacoelho/uilayout/internal/schema"
	"github.com/jacoelho/uilayout/internal/workspace"
)

// ErrInvalidOptions reports an options value that cannot be used.
var ErrInvalidOptions = errors.New("invalid options")

// Options configures a Workspace. The zero value is valid and selects the
// defaults.
type Options struct {
	catalogFS        fs.FS
	rootFile         string
	extension        string
	catalogPath      string
	archiveSuffixes  []string
	reportUnbindable bool
}

type resolvedOptions struct {
	registry         *schema.Registry
	rootFile         string
	discover         workspace.Config
	reportUnbindable bool
}

// NewOptions returns a default, valid options value.
func NewOptions() Options {
	return Options{}
}

// Validate validates option values. Loading a custom catalogue is part of
// validation.
func (o Options) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithRootFile sets the file "$root" paths start from (empty uses GameUI).
func (o Options) WithRootFile(name string) Options {
	o.rootFile = name
	return o
}

// WithExtension sets the layout file extension used by LoadFS (empty uses
// .SC2Layout).
func (o Options) WithExtension(ext string) Options {
	o.extension = ext
	return o
}

// WithArchiveSuffixes sets the directory suffixes LoadFS treats as archives.
func (o Options) WithArchiveSuffixes(suffixes ...string) Options {
	o.archiveSuffixes = append([]string(nil), suffixes...)
	return o
}

// WithReportUnbindable controls whether declarations that cannot be placed
// in the namespace are reported. They are skipped silently by default.
func (o Options) WithReportUnbindable(value bool) Options {
	o.reportUnbindable = value
	return o
}

// WithCatalog loads the schema catalogue from fsys instead of the embedded
// default.
func (o Options) WithCatalog(fsys fs.FS, location string) Options {
	o.catalogFS = fsys
	o.catalogPath = location
	return o
}

func (o Options) withDefaults() (resolvedOptions, error) {
	rootFile := o.rootFile
	if rootFile == "" {
		rootFile = hierarchy.DefaultRootFile
	}
	if strings.ContainsAny(rootFile, `/\`) {
		return resolvedOptions{}, fmt.Errorf("%w: root file %q must be a file name", ErrInvalidOptions, rootFile)
	}
	cfg := workspace.Config{Extension: o.extension, ArchiveSuffixes: o.archiveSuffixes}
	if cfg.Extension != "" && !strings.HasPrefix(cfg.Extension, ".") {
		return resolvedOptions{}, fmt.Errorf("%w: extension %q must start with a dot", ErrInvalidOptions, cfg.Extension)
	}
	for _, s := range cfg.ArchiveSuffixes {
		if !strings.HasPrefix(s, ".") {
			return resolvedOptions{}, fmt.Errorf("%w: archive suffix %q must start with a dot", ErrInvalidOptions, s)
		}
	}

	var (
		reg *schema.Registry
		err error
	)
	if o.catalogFS != nil {
		if o.catalogPath == "" {
			return resolvedOptions{}, fmt.Errorf("%w: catalog location is empty", ErrInvalidOptions)
		}
		reg, err = schema.Load(o.catalogFS, o.catalogPath)
	} else {
		reg, err = schema.Default()
	}
	if err != nil {
		return resolvedOptions{}, fmt.Errorf("schema catalog: %w", err)
	}
	return resolvedOptions{
		registry:         reg,
		rootFile:         rootFile,
		discover:         cfg,
		reportUnbindable: o.reportUnbindable,
	}, nil
}
