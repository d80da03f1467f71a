package scan

import (
	"testing"

	"github.com/evil-mind-evil-sword/usefix/internal/registry"
)

func setup(t *testing.T) (*Scanner, *registry.Registry) {
	t.Helper()
	reg, err := registry.New([]registry.Entry{
		{Package: "ui", Path: "app::ui", Symbols: []string{"Widget", "Spinner"}},
		{Package: "core", Path: "app::core", Symbols: []string{"Gadget", "subscribe"}},
	})
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	sc, err := New()
	if err != nil {
		t.Fatalf("scan.New: %v", err)
	}
	return sc, reg
}

func used(t *testing.T, sc *Scanner, reg *registry.Registry, source string) map[string]bool {
	t.Helper()
	got, err := sc.Used([]byte(source), reg)
	if err != nil {
		t.Fatalf("Used: %v", err)
	}
	return got
}

func TestDetectsTypeAndCallUsage(t *testing.T) {
	t.Parallel()
	sc, reg := setup(t)

	source := `fn main() {
    let w = Widget::new();
    let g: Gadget = make();
    handle.subscribe();
}
`
	got := used(t, sc, reg, source)
	for _, sym := range []string{"Widget", "Gadget", "subscribe"} {
		if !got[sym] {
			t.Errorf("%s should be detected as used", sym)
		}
	}
	if got["Spinner"] {
		t.Error("Spinner is not used")
	}
}

func TestResultIsSubsetOfRegistry(t *testing.T) {
	t.Parallel()
	sc, reg := setup(t)

	got := used(t, sc, reg, "fn main() { let local = Widget::new(); helper(local); }\n")
	for sym := range got {
		if !reg.Known(sym) {
			t.Errorf("%s is not a registry symbol", sym)
		}
	}
}

// TestIgnoresUseDeclarations verifies an already-imported but unused symbol
// is not treated as usage evidence.
func TestIgnoresUseDeclarations(t *testing.T) {
	t.Parallel()
	sc, reg := setup(t)

	source := `use app::ui::{Widget, Spinner};

fn main() {
    let w = Widget::new();
}
`
	got := used(t, sc, reg, source)
	if !got["Widget"] {
		t.Error("Widget is used in the body")
	}
	if got["Spinner"] {
		t.Error("Spinner only appears in a use declaration")
	}
}

func TestIgnoresComments(t *testing.T) {
	t.Parallel()
	sc, reg := setup(t)

	source := `// uses Widget somewhere
/* Gadget lives here now */
fn main() {}
`
	got := used(t, sc, reg, source)
	if len(got) != 0 {
		t.Errorf("comment occurrences counted as usage: %v", got)
	}
}

func TestIgnoresStringLiterals(t *testing.T) {
	t.Parallel()
	sc, reg := setup(t)

	source := `fn main() {
    println!("constructing a Widget for {}", name);
}
`
	got := used(t, sc, reg, source)
	if got["Widget"] {
		t.Error("string-literal occurrence counted as usage")
	}
}

func TestEmptySource(t *testing.T) {
	t.Parallel()
	sc, reg := setup(t)

	got := used(t, sc, reg, "")
	if len(got) != 0 {
		t.Errorf("empty source reported usage: %v", got)
	}
}
