// Package reconcile computes the minimal edit needed to make a file's use
// declarations consistent with its actual symbol usage and the ownership
// registry. Reconcile is a pure function: same inputs, same plan.
package reconcile

import (
	"github.com/evil-mind-evil-sword/usefix/internal/imports"
	"github.com/evil-mind-evil-sword/usefix/internal/registry"
)

// Merge widens an existing record to cover newly required symbols. Symbols is
// the full target list: original declaration order first, required additions
// appended in registry order.
type Merge struct {
	Record  imports.Record
	Entry   registry.Entry
	Symbols []string
}

// Addition is a new declaration for a package the file does not import yet.
type Addition struct {
	Entry   registry.Entry
	Symbols []string
}

// Plan is the per-file edit plan. It is derived fresh for every file and
// never cached; an empty plan means the file is already correct.
type Plan struct {
	Removals  []imports.Record
	Merges    []Merge
	Additions []Addition
}

// Empty reports whether applying the plan would change nothing.
func (p Plan) Empty() bool {
	return len(p.Removals) == 0 && len(p.Merges) == 0 && len(p.Additions) == 0
}

// Reconcile maps each used symbol to its owning package and reconciles the
// result against the file's existing records:
//
//   - a package with a record missing required symbols is merged;
//   - a required package with no record is added, in registry package order;
//   - a record whose every symbol is now owned by a different package is
//     removed whole (nothing in it remains valid);
//   - everything else — extra symbols in otherwise-correct records, unknown
//     symbols, unrecognized lines — is left untouched.
//
// Removing genuinely unused declarations is deliberately out of scope: usage
// detection is heuristic, and a false negative must never delete a needed
// import.
func Reconcile(used map[string]bool, records []imports.Record, reg *registry.Registry) Plan {
	required := make(map[string]map[string]bool)
	for sym := range used {
		e, ok := reg.Resolve(sym)
		if !ok {
			continue // outside this tool's authority
		}
		if required[e.Package] == nil {
			required[e.Package] = make(map[string]bool)
		}
		required[e.Package][sym] = true
	}

	var plan Plan
	merged := make(map[string]bool)

	for _, rec := range records {
		req := required[rec.Package]
		if req != nil {
			if merged[rec.Package] {
				continue // first record per package carries the merge
			}
			merged[rec.Package] = true

			entry, _ := reg.Entry(rec.Package)
			var missing []string
			for _, sym := range entry.Symbols {
				if req[sym] && !rec.Has(sym) {
					missing = append(missing, sym)
				}
			}
			if len(missing) > 0 {
				target := make([]string, 0, len(rec.Symbols)+len(missing))
				target = append(target, rec.Symbols...)
				target = append(target, missing...)
				plan.Merges = append(plan.Merges, Merge{Record: rec, Entry: entry, Symbols: target})
			}
			continue
		}

		if stale(rec, reg) {
			plan.Removals = append(plan.Removals, rec)
		}
	}

	// New declarations in registry package order, so output is deterministic
	// regardless of discovery order.
	for _, pkg := range reg.Packages() {
		req := required[pkg]
		if req == nil || hasRecord(records, pkg) {
			continue
		}
		entry, _ := reg.Entry(pkg)
		var symbols []string
		for _, sym := range entry.Symbols {
			if req[sym] {
				symbols = append(symbols, sym)
			}
		}
		plan.Additions = append(plan.Additions, Addition{Entry: entry, Symbols: symbols})
	}

	return plan
}

// stale reports whether every symbol of rec is registry-owned by a package
// other than rec's own. A single unknown or still-valid symbol keeps the
// record alive.
func stale(rec imports.Record, reg *registry.Registry) bool {
	for _, sym := range rec.Symbols {
		e, ok := reg.Resolve(sym)
		if !ok || e.Package == rec.Package {
			return false
		}
	}
	return len(rec.Symbols) > 0
}

func hasRecord(records []imports.Record, pkg string) bool {
	for _, r := range records {
		if r.Package == pkg {
			return true
		}
	}
	return false
}
