package guard

import (
	"strings"
	"testing"
)

func TestCompareUnchanged(t *testing.T) {
	t.Parallel()
	text := []byte("use app::ui::{Widget};\n")
	if Compare(text, []byte("use app::ui::{Widget};\n")) != Unchanged {
		t.Error("identical content reported as changed")
	}
}

func TestCompareChanged(t *testing.T) {
	t.Parallel()
	if Compare([]byte("a\n"), []byte("b\n")) != Changed {
		t.Error("differing content reported as unchanged")
	}
}

func TestSummaryMarksLines(t *testing.T) {
	t.Parallel()
	original := "use app::old::{Widget};\nfn main() {}\n"
	rewritten := "use app::ui::{Widget};\nfn main() {}\n"

	sum := Summary([]byte(original), []byte(rewritten))
	if !strings.Contains(sum, "-use app::old::{Widget};") {
		t.Errorf("missing removed line:\n%s", sum)
	}
	if !strings.Contains(sum, "+use app::ui::{Widget};") {
		t.Errorf("missing added line:\n%s", sum)
	}
	if strings.Contains(sum, "fn main") {
		t.Errorf("unchanged line should not appear:\n%s", sum)
	}
}
