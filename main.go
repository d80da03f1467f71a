// usefix rewrites the use declarations of a source tree so that every
// registry-known symbol is imported from the package that owns it.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/evil-mind-evil-sword/usefix/internal/discover"
	"github.com/evil-mind-evil-sword/usefix/internal/guard"
	"github.com/evil-mind-evil-sword/usefix/internal/imports"
	"github.com/evil-mind-evil-sword/usefix/internal/reconcile"
	"github.com/evil-mind-evil-sword/usefix/internal/registry"
	"github.com/evil-mind-evil-sword/usefix/internal/rewrite"
	"github.com/evil-mind-evil-sword/usefix/internal/scan"
)

var version = "dev"

const defaultExt = ".rs"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("usefix", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  string
		ext         string
		check       bool
		dryRun      bool
		showDiff    bool
		jobs        int
		noColor     bool
		showVersion bool
	)

	fs.StringVar(&configPath, "config", "", "registry TOML file (default: built-in hojicha registry)")
	fs.StringVar(&ext, "ext", defaultExt, "file extension to process")
	fs.BoolVar(&check, "check", false, "report files that would change without writing; exit non-zero if any")
	fs.BoolVar(&dryRun, "dry-run", false, "alias for -check")
	fs.BoolVar(&showDiff, "diff", false, "print a line diff for each changed file")
	fs.IntVar(&jobs, "jobs", 0, "parallel workers (default: number of CPUs)")
	fs.BoolVar(&noColor, "no-color", false, "disable colored output")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "usefix %s\n", version)
		return nil
	}

	if noColor {
		color.NoColor = true
	}
	check = check || dryRun

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	// The registry is constructed before any file is touched; an ambiguous
	// configuration aborts the whole run here.
	reg, err := loadRegistry(configPath)
	if err != nil {
		return err
	}

	files, err := discover.Files(root, ext)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found under %s", ext, root)
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := processFiles(root, files, reg, jobs)

	changedColor := color.New(color.FgGreen)

	var changed, failed int
	for _, r := range results {
		if r.err != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: %s: %v\n", r.path, r.err)
			failed++
			continue
		}
		if !r.changed {
			continue
		}
		changed++

		if showDiff {
			_, _ = fmt.Fprintf(stdout, "--- %s\n", r.path)
			_, _ = io.WriteString(stdout, guard.Summary(r.source, r.newText))
		}
		if check {
			_, _ = changedColor.Fprintf(stdout, "would rewrite %s\n", r.path)
			continue
		}
		if err := writeFileAtomic(filepath.Join(root, r.path), r.newText); err != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: %s: %v\n", r.path, err)
			failed++
			continue
		}
		_, _ = changedColor.Fprintf(stdout, "rewrote %s\n", r.path)
	}

	if check {
		_, _ = fmt.Fprintf(stdout, "%d of %d files need rewriting\n", changed, len(files))
	} else {
		_, _ = fmt.Fprintf(stdout, "rewrote %d of %d files\n", changed, len(files))
	}

	if failed > 0 {
		return fmt.Errorf("%d files could not be processed", failed)
	}
	if check && changed > 0 {
		return fmt.Errorf("%d files need rewriting", changed)
	}
	return nil
}

func loadRegistry(configPath string) (*registry.Registry, error) {
	if configPath == "" {
		return registry.Default(), nil
	}
	return registry.Load(configPath)
}

type fileResult struct {
	path    string
	source  []byte
	newText []byte
	changed bool
	err     error
}

// processFiles runs the per-file pipelines concurrently. Each file's pipeline
// is a pure computation over its own text plus the shared read-only registry,
// so workers need no coordination beyond the work channel. Results are
// indexed by file so reporting order stays deterministic.
func processFiles(root string, files []string, reg *registry.Registry, jobs int) []fileResult {
	if jobs > len(files) {
		jobs = len(files)
	}

	work := make(chan int)
	results := make([]fileResult, len(files))

	var g errgroup.Group
	for i := 0; i < jobs; i++ {
		g.Go(func() error {
			// Each worker gets its own scanner (parsers are not thread-safe).
			sc, scErr := scan.New()

			for idx := range work {
				path := files[idx]
				if scErr != nil {
					results[idx] = fileResult{path: path, err: scErr}
					continue
				}
				source, err := os.ReadFile(filepath.Join(root, path))
				if err != nil {
					results[idx] = fileResult{path: path, err: err}
					continue
				}
				newText, err := processFile(source, sc, reg)
				if err != nil {
					results[idx] = fileResult{path: path, err: err}
					continue
				}
				results[idx] = fileResult{
					path:    path,
					source:  source,
					newText: newText,
					changed: guard.Compare(source, newText) == guard.Changed,
				}
			}
			return nil
		})
	}

	for i := range files {
		work <- i
	}
	close(work)
	_ = g.Wait()

	return results
}

// processFile is the full pipeline for one file: scan and parse the same
// text, reconcile against the registry, rewrite.
func processFile(source []byte, sc *scan.Scanner, reg *registry.Registry) ([]byte, error) {
	used, err := sc.Used(source, reg)
	if err != nil {
		return nil, err
	}
	sec := imports.Parse(source)
	plan := reconcile.Reconcile(used, sec.Records, reg)
	return rewrite.Apply(source, sec, plan), nil
}

// writeFileAtomic writes data to a sibling temp file and renames it into
// place, preserving the original file's permissions.
func writeFileAtomic(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".usefix-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-config": true, "--config": true,
	"-ext": true, "--ext": true,
	"-jobs": true, "--jobs": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
