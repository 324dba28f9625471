package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/jacoelho/uilayout"
	layouterrors "github.com/jacoelho/uilayout/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("layoutlint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rootFile := fs.String("root", "", "file that $root paths start from (default GameUI)")
	extension := fs.String("ext", "", "layout file extension (default .SC2Layout)")
	archives := fs.String("archives", "", "comma separated archive directory suffixes")
	catalogPath := fs.String("catalog", "", "path to a schema catalog replacing the built-in one")
	unbindable := fs.Bool("unbindable", false, "report declarations that cannot be placed in the namespace")
	cpuProfilePath := fs.String("cpuprofile", "", "write CPU profile to file")
	memProfilePath := fs.String("memprofile", "", "write memory profile to file")
	verbose := fs.Bool("v", false, "log progress to stderr")
	fs.Usage = func() {
		_ = errors.Join(
			writef(stderr, "Usage: %s [options] <dir>...\n\n", os.Args[0]),
			writeln(stderr, "Checks the layout files found under each directory."),
			writeln(stderr),
			writeln(stderr, "Options:"),
		)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	dirs := fs.Args()
	if len(dirs) == 0 {
		_ = writeln(stderr, "error: at least one directory argument is required")
		fs.Usage()
		return 1
	}

	stopProfiles, err := startProfiles(*cpuProfilePath, *memProfilePath)
	if err != nil {
		_ = writef(stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		if err := stopProfiles(); err != nil {
			_ = writef(stderr, "error: %v\n", err)
		}
	}()

	opts := uilayout.NewOptions().
		WithRootFile(*rootFile).
		WithExtension(*extension).
		WithReportUnbindable(*unbindable)
	if *archives != "" {
		opts = opts.WithArchiveSuffixes(strings.Split(*archives, ",")...)
	}
	if *catalogPath != "" {
		opts = opts.WithCatalog(os.DirFS(filepath.Dir(*catalogPath)), filepath.Base(*catalogPath))
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	ws, err := uilayout.New(opts)
	if err != nil {
		_ = writef(stderr, "error: %v\n", err)
		return 1
	}
	for _, dir := range dirs {
		uris, err := ws.LoadDir(dir)
		if err != nil {
			_ = writef(stderr, "error loading %s: %v\n", dir, err)
			return 1
		}
		logger.Info("loaded layouts", "dir", dir, "files", len(uris))
	}

	summary := ws.CheckAll()
	logger.Info("checked workspace", "files", summary.FilesProcessed, "issues", summary.IssuesTotal.Sum())
	if err := layouterrors.Format(stdout, summary); err != nil {
		return 1
	}
	if summary.IssuesTotal.Error > 0 {
		return 1
	}
	return 0
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

// startProfiles starts CPU profiling into cpuPath and arranges for a heap
// profile to be written to memPath when the returned stop runs. Empty paths
// disable the corresponding profile.
func startProfiles(cpuPath, memPath string) (stop func() error, err error) {
	var cpu *os.File
	if cpuPath != "" {
		if cpu, err = os.Create(cpuPath); err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(cpu); err != nil {
			return nil, errors.Join(fmt.Errorf("cpu profile %s: %w", cpuPath, err), cpu.Close())
		}
	}
	return func() error {
		var errs []error
		if cpu != nil {
			pprof.StopCPUProfile()
			errs = append(errs, cpu.Close())
		}
		if memPath != "" {
			errs = append(errs, writeHeapProfile(memPath))
		}
		return errors.Join(errs...)
	}, nil
}

func writeHeapProfile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("memory profile: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("memory profile %s: %w", path, err)
	}
	return nil
}
