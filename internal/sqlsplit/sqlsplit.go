// Package sqlsplit splits a schema file's raw SQL text into individual
// statements so the loader can execute and attribute failures one
// statement at a time instead of one file at a time: a statement failure
// during shadow loading must report a file path and line number. Grounded
// on internal/ir/parser.go's splitSQLStatements, carried over from
// pg_query_go v5 to the v6 import path this module's go.mod pins.
package sqlsplit

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Statement is one statement extracted from a larger SQL file, along with
// the 1-based line on which it starts in the original content.
type Statement struct {
	Text      string
	StartLine int
}

// Split parses content with libpq_query's statement splitter and locates
// each resulting statement's starting line by searching forward through
// the original text, so line numbers stay accurate even though the
// splitter itself discards position information.
func Split(content string) ([]Statement, error) {
	raw, err := pg_query.SplitWithParser(content, true)
	if err != nil {
		return nil, fmt.Errorf("split sql statements: %w", err)
	}

	statements := make([]Statement, 0, len(raw))
	searchFrom := 0
	for _, stmt := range raw {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		idx := strings.Index(content[searchFrom:], stmt)
		if idx < 0 {
			// Trimmed statement text no longer matches the original
			// verbatim (e.g. the splitter normalized whitespace); fall
			// back to attributing it to the current search position.
			statements = append(statements, Statement{Text: stmt, StartLine: lineAt(content, searchFrom)})
			continue
		}
		absolute := searchFrom + idx
		statements = append(statements, Statement{Text: stmt, StartLine: lineAt(content, absolute)})
		searchFrom = absolute + len(stmt)
	}

	return statements, nil
}

// lineAt returns the 1-based line number of byte offset pos in content.
func lineAt(content string, pos int) int {
	if pos > len(content) {
		pos = len(content)
	}
	return strings.Count(content[:pos], "\n") + 1
}
