// Package imports parses the leading use-declaration block of a source file
// into structured records with exact byte spans. Only declarations of a fixed
// shape are recorded; anything else is left for downstream stages to ignore,
// so a line the parser does not confidently understand is never rewritten.
package imports

import (
	"regexp"
	"strings"
)

// Record is one recognized use declaration as written in the file.
// Symbols preserves declaration order and is non-empty and deduplicated.
// Start and End delimit the declaration line, excluding the trailing newline.
type Record struct {
	Package string
	Symbols []string
	Start   int
	End     int
}

// Has reports whether the record already declares symbol.
func (r Record) Has(symbol string) bool {
	for _, s := range r.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// Section is the parsed import section: the recognized records plus the byte
// offset where newly generated declarations are inserted (immediately after
// the last recognized record, or before the first code line when the file
// has none).
type Section struct {
	Records  []Record
	InsertAt int
}

// Record returns the record for a package identifier, if present.
func (s Section) Record(pkg string) (Record, bool) {
	for _, r := range s.Records {
		if r.Package == pkg {
			return r, true
		}
	}
	return Record{}, false
}

var (
	// use a::b::{X, Y};
	braceRe = regexp.MustCompile(`^use\s+([A-Za-z_][A-Za-z0-9_]*(?:::[A-Za-z_][A-Za-z0-9_]*)*)::\{([^{}]*)\}\s*;\s*$`)
	// use a::b::X;
	singleRe = regexp.MustCompile(`^use\s+((?:[A-Za-z_][A-Za-z0-9_]*::)+)([A-Za-z_][A-Za-z0-9_]*)\s*;\s*$`)

	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Parse scans the leading use-declaration block of source. Blank lines, line
// and block comments, and attribute lines do not end the block; the first
// other non-use line does. Use-shaped lines that do not match the expected
// declaration forms (globs, renames, multi-line lists, pub re-exports) are
// skipped and never touched downstream.
func Parse(source []byte) Section {
	var sec Section

	offset := 0
	inBlockComment := false
	text := string(source)

	for offset < len(text) {
		lineEnd := strings.IndexByte(text[offset:], '\n')
		var line string
		if lineEnd < 0 {
			line = text[offset:]
			lineEnd = len(text)
		} else {
			lineEnd += offset
			line = text[offset:lineEnd]
		}
		trimmed := strings.TrimSpace(line)

		switch {
		case inBlockComment:
			if strings.Contains(trimmed, "*/") {
				inBlockComment = false
			}
		case trimmed == "", strings.HasPrefix(trimmed, "//"):
			// blank or comment, keep scanning
		case strings.HasPrefix(trimmed, "/*"):
			if !strings.Contains(trimmed[2:], "*/") {
				inBlockComment = true
			}
		case strings.HasPrefix(trimmed, "#[") || strings.HasPrefix(trimmed, "#!["):
			// attribute, keep scanning
		case strings.HasPrefix(trimmed, "use ") || strings.HasPrefix(trimmed, "pub use "):
			if rec, ok := parseDeclaration(trimmed); ok {
				rec.Start = offset
				rec.End = lineEnd
				sec.Records = append(sec.Records, rec)
			}
			// unmatched shapes are import-like: skip without ending the block
		default:
			// first code line ends the import section
			if len(sec.Records) == 0 {
				sec.InsertAt = offset
			}
			return finish(sec, text)
		}

		if lineEnd >= len(text) {
			offset = len(text)
			break
		}
		offset = lineEnd + 1
	}

	if len(sec.Records) == 0 {
		sec.InsertAt = len(text)
	}
	return finish(sec, text)
}

// finish computes the insertion anchor from the last recognized record.
func finish(sec Section, text string) Section {
	if n := len(sec.Records); n > 0 {
		at := sec.Records[n-1].End
		if at < len(text) && text[at] == '\n' {
			at++
		}
		sec.InsertAt = at
	}
	return sec
}

// parseDeclaration matches one use line against the two recognized shapes.
// pub re-exports are import-like but deliberately not recorded.
func parseDeclaration(line string) (Record, bool) {
	if strings.HasPrefix(line, "pub ") {
		return Record{}, false
	}
	if m := braceRe.FindStringSubmatch(line); m != nil {
		symbols := splitSymbols(m[2])
		if symbols == nil {
			return Record{}, false
		}
		return Record{Package: m[1], Symbols: symbols}, true
	}
	if m := singleRe.FindStringSubmatch(line); m != nil {
		pkg := strings.TrimSuffix(m[1], "::")
		return Record{Package: pkg, Symbols: []string{m[2]}}, true
	}
	return Record{}, false
}

// splitSymbols parses a brace-delimited symbol list. Any element that is not
// a plain identifier disqualifies the whole declaration.
func splitSymbols(list string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !identRe.MatchString(part) {
			return nil
		}
		if seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
