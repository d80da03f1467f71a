package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/evil-mind-evil-sword/usefix/internal/registry"
)

// errConfigExists is returned when init would overwrite an existing config.
var errConfigExists = errors.New("config file already exists (use -force to overwrite)")

// runInit implements the `usefix init` subcommand, which writes a starter
// registry config seeded with the built-in hojicha crate-split mapping, ready
// to be edited for a different package reorganization.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("usefix init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		dryRun bool
		force  bool
	)
	fs.BoolVar(&dryRun, "dry-run", false, "print the config without writing the file")
	fs.BoolVar(&force, "force", false, "overwrite an existing config file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: usefix init [flags] [path-to-config]

Write a starter ownership-registry config. The file documents the expected
format and is seeded with the built-in registry, so editing it down to your
own package split is the only setup needed before running usefix -config.

path-to-config defaults to ./usefix.toml.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	config := registry.DefaultConfig()

	if dryRun {
		_, _ = stdout.Write(config)
		return nil
	}

	path := "usefix.toml"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, errConfigExists)
		}
	}

	if err := os.WriteFile(path, config, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote registry config to %s\n", path)
	return nil
}
