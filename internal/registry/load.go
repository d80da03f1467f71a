package registry

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed default.toml
var defaultConfig []byte

type configFile struct {
	Packages []Entry `toml:"package"`
}

// Load reads a registry configuration from a TOML file. Packages are kept in
// file order; `usefix init` writes a documented starter file.
func Load(path string) (*Registry, error) {
	var cfg configFile
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: parsing registry config: %w", path, err)
	}
	if len(cfg.Packages) == 0 {
		return nil, fmt.Errorf("%s: no [[package]] entries", path)
	}
	return New(cfg.Packages)
}

// Default returns the built-in registry describing the hojicha crate split:
// runtime and widget symbols that moved out of the core crate into
// hojicha_runtime and hojicha_pearls.
func Default() *Registry {
	var cfg configFile
	if err := toml.Unmarshal(defaultConfig, &cfg); err != nil {
		panic(fmt.Sprintf("embedded registry config: %v", err))
	}
	r, err := New(cfg.Packages)
	if err != nil {
		panic(fmt.Sprintf("embedded registry config: %v", err))
	}
	return r
}

// DefaultConfig returns the raw TOML text of the built-in registry, used by
// the init subcommand to seed a project-local config file.
func DefaultConfig() []byte {
	out := make([]byte, len(defaultConfig))
	copy(out, defaultConfig)
	return out
}
