// Package scan detects which registry-known symbols a source file actually
// uses. It tokenizes the file with tree-sitter rather than pattern matching,
// so identifiers inside comments, string literals, and use declarations are
// never counted as usage evidence.
package scan

import (
	"context"
	"embed"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/evil-mind-evil-sword/usefix/internal/registry"
)

//go:embed queries/*.scm
var queryFS embed.FS

var (
	queryOnce sync.Once
	query     *sitter.Query
	queryErr  error
)

// compiledQuery returns the shared identifier query. Queries are safe to
// share across goroutines; parsers are not.
func compiledQuery() (*sitter.Query, error) {
	queryOnce.Do(func() {
		data, err := queryFS.ReadFile("queries/rust.scm")
		if err != nil {
			queryErr = fmt.Errorf("reading query file: %w", err)
			return
		}
		q, err := sitter.NewQuery(data, rust.GetLanguage())
		if err != nil {
			queryErr = fmt.Errorf("compiling query: %w", err)
			return
		}
		query = q
	})
	return query, queryErr
}

// Scanner tokenizes source files and reports registry-known symbol usage.
// Each goroutine must use its own Scanner (tree-sitter parsers are not
// thread-safe); the compiled query is shared.
type Scanner struct {
	parser *sitter.Parser
	query  *sitter.Query
}

// New creates a Scanner for Rust-syntax source files.
func New() (*Scanner, error) {
	q, err := compiledQuery()
	if err != nil {
		return nil, err
	}
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &Scanner{parser: p, query: q}, nil
}

type span struct {
	start, end uint32
}

// Used returns the set of registry symbols referenced by source outside of
// use declarations. Identifier matching is still a heuristic: a qualified
// path in an expression counts each of its segments, so an unused symbol can
// be over-detected. Symbols absent from the result had no identifier
// occurrence outside the use section.
func (s *Scanner) Used(source []byte, reg *registry.Registry) (map[string]bool, error) {
	used := make(map[string]bool)
	if len(source) == 0 {
		return used, nil
	}

	tree, err := s.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("tokenizing source: %w", err)
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(s.query, tree.RootNode())

	// Capture order follows tree traversal, so a use declaration can surface
	// after identifiers it contains. Collect everything first, filter after.
	var useSpans []span
	var refs []*sitter.Node

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		for _, c := range match.Captures {
			switch s.query.CaptureNameForId(c.Index) {
			case "use":
				useSpans = append(useSpans, span{c.Node.StartByte(), c.Node.EndByte()})
			case "ref":
				refs = append(refs, c.Node)
			}
		}
	}

	for _, node := range refs {
		if inSpans(useSpans, node.StartByte()) {
			continue
		}
		name := string(source[node.StartByte():node.EndByte()])
		if reg.Known(name) {
			used[name] = true
		}
	}

	return used, nil
}

func inSpans(spans []span, offset uint32) bool {
	for _, sp := range spans {
		if offset >= sp.start && offset < sp.end {
			return true
		}
	}
	return false
}
