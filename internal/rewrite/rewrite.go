// Package rewrite applies an edit plan to a file's text. Affected record
// spans are replaced with regenerated declarations and new declarations are
// inserted at the section anchor; every byte outside those spans is copied
// through unchanged.
package rewrite

import (
	"sort"
	"strings"

	"github.com/evil-mind-evil-sword/usefix/internal/imports"
	"github.com/evil-mind-evil-sword/usefix/internal/reconcile"
)

type edit struct {
	start, end int
	text       string
}

// Apply returns the rewritten file content. An empty plan returns source
// byte-for-byte, which is what makes repeated runs idempotent.
func Apply(source []byte, sec imports.Section, plan reconcile.Plan) []byte {
	if plan.Empty() {
		return source
	}

	var edits []edit

	for _, m := range plan.Merges {
		edits = append(edits, edit{
			start: m.Record.Start,
			end:   m.Record.End,
			text:  m.Entry.Declaration(m.Symbols),
		})
	}

	for _, rec := range plan.Removals {
		end := rec.End
		if end < len(source) && source[end] == '\n' {
			end++ // take the line's newline with it
		}
		edits = append(edits, edit{start: rec.Start, end: end})
	}

	if len(plan.Additions) > 0 {
		var b strings.Builder
		if sec.InsertAt > 0 && source[sec.InsertAt-1] != '\n' {
			b.WriteByte('\n')
		}
		for _, a := range plan.Additions {
			b.WriteString(a.Entry.Declaration(a.Symbols))
			b.WriteByte('\n')
		}
		edits = append(edits, edit{start: sec.InsertAt, end: sec.InsertAt, text: b.String()})
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var out strings.Builder
	out.Grow(len(source) + 128)
	pos := 0
	for _, e := range edits {
		out.Write(source[pos:e.start])
		out.WriteString(e.text)
		pos = e.end
	}
	out.Write(source[pos:])

	return []byte(out.String())
}
