// Package registry maps exported symbol names to the package that owns them
// after a crate split. The mapping is the single authority for every rewrite
// decision: a symbol is either owned by exactly one package or unknown.
package registry

import (
	"fmt"
	"strings"
)

// SymbolsPlaceholder is the token in a declaration template that is replaced
// with the comma-separated symbol list when a declaration is generated.
const SymbolsPlaceholder = "$SYMBOLS"

// Entry describes one owning package: its identifier, the module path used in
// generated declarations, an optional declaration template, and the symbols
// it exports. Symbol order is the order new symbols are appended in.
type Entry struct {
	Package  string   `toml:"id"`
	Path     string   `toml:"path"`
	Template string   `toml:"template"`
	Symbols  []string `toml:"symbols"`
}

// Declaration renders a use declaration for this entry covering symbols.
func (e Entry) Declaration(symbols []string) string {
	tmpl := e.Template
	if tmpl == "" {
		tmpl = "use " + e.Path + "::{" + SymbolsPlaceholder + "};"
	}
	return strings.ReplaceAll(tmpl, SymbolsPlaceholder, strings.Join(symbols, ", "))
}

// ConfigurationError reports a symbol registered under two different
// packages. Ownership must be unambiguous before any file is scanned.
type ConfigurationError struct {
	Symbol string
	First  string
	Second string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("symbol %q registered under both %q and %q", e.Symbol, e.First, e.Second)
}

// Registry is the immutable symbol-ownership table. Construct once per run
// and share read-only across file pipelines.
type Registry struct {
	entries  []Entry
	bySymbol map[string]int // symbol -> index into entries
}

// New builds a Registry from entries, preserving their declared order.
// Multiple entries may share one package id; they are consolidated into a
// single entry at the first occurrence's position, with the first entry's
// path and template and the symbols of all of them in declaration order.
// New fails with a *ConfigurationError if any symbol appears under two
// different packages. The caller's entries are never aliased or mutated.
func New(entries []Entry) (*Registry, error) {
	r := &Registry{bySymbol: make(map[string]int)}
	byPackage := make(map[string]int)

	for i, e := range entries {
		if e.Package == "" {
			return nil, fmt.Errorf("registry entry %d: missing package id", i)
		}
		if len(e.Symbols) == 0 {
			return nil, fmt.Errorf("registry entry %q: no symbols", e.Package)
		}
		if e.Path == "" {
			e.Path = e.Package
		}

		idx, ok := byPackage[e.Package]
		if !ok {
			idx = len(r.entries)
			byPackage[e.Package] = idx
			ne := e
			ne.Symbols = nil
			r.entries = append(r.entries, ne)
		}

		for _, sym := range e.Symbols {
			if prev, ok := r.bySymbol[sym]; ok {
				if prev == idx {
					continue // duplicate within one package is harmless
				}
				return nil, &ConfigurationError{
					Symbol: sym,
					First:  r.entries[prev].Package,
					Second: e.Package,
				}
			}
			r.bySymbol[sym] = idx
			r.entries[idx].Symbols = append(r.entries[idx].Symbols, sym)
		}
	}
	return r, nil
}

// Resolve returns the entry owning symbol, or ok=false for unknown symbols.
// Unknown is not an error: the symbol may be a local or foreign name outside
// this tool's authority.
func (r *Registry) Resolve(symbol string) (Entry, bool) {
	i, ok := r.bySymbol[symbol]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Owns reports whether symbol is owned by the named package.
func (r *Registry) Owns(symbol, pkg string) bool {
	e, ok := r.Resolve(symbol)
	return ok && e.Package == pkg
}

// Known reports whether symbol appears anywhere in the registry.
func (r *Registry) Known(symbol string) bool {
	_, ok := r.bySymbol[symbol]
	return ok
}

// Symbols returns the full symbol universe in entry declaration order.
// The scanner retains only identifiers present in this set.
func (r *Registry) Symbols() []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range r.entries {
		for _, s := range e.Symbols {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// Packages returns package identifiers in configuration order. This order is
// the tie-break for inserting new declarations, so output is deterministic
// across runs.
func (r *Registry) Packages() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Package
	}
	return out
}

// Entry returns the entry for a package identifier.
func (r *Registry) Entry(pkg string) (Entry, bool) {
	for _, e := range r.entries {
		if e.Package == pkg {
			return e, true
		}
	}
	return Entry{}, false
}
