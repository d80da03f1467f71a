// Package guard decides whether a rewrite produced a net change. Only
// changed files are handed to the writer, so a correct file is never
// rewritten, restatted, or reported.
package guard

import (
	"bytes"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Result reports whether rewritten content differs from the original.
type Result int

const (
	Unchanged Result = iota
	Changed
)

// Compare is a byte-for-byte comparison. A no-op edit plan must come back
// Unchanged; that equality is the tool's core correctness property.
func Compare(original, rewritten []byte) Result {
	if bytes.Equal(original, rewritten) {
		return Unchanged
	}
	return Changed
}

// Summary renders a line-oriented diff of the change, prefixing removed
// lines with "-" and added lines with "+". Used for -diff output only; the
// write decision never depends on it.
func Summary(original, rewritten []byte) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(original), string(rewritten))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out.WriteString(prefix)
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}
	return out.String()
}
