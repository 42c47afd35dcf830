package postgres

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ClassifiedError is the database-facing half of a structured execution
// error: the raw message plus everything the executor's heuristics could
// extract from it. Classify never returns nil for a non-nil
// input error, even when the driver didn't surface a structured PostgreSQL
// error at all.
type ClassifiedError struct {
	Message            string
	LineNumber         *int
	Suggestion         string
	TroubleshootingTips []string
}

var lineNumberPattern = regexp.MustCompile(`(?i)(?:at line|line)\s+(\d+)`)

// Classify inspects err for a structured PostgreSQL error (pgconn.PgError
// from the pgx driver, or pq.Error when a lib/pq-backed connection is in
// play) and builds the suggestion/tip heuristics the executor attaches to
// an SQLError. Grounded on
// original_source/src/db/schema_executor.rs's extract_line_number_from_error/
// generate_suggestion/generate_troubleshooting_tips.
func Classify(err error) *ClassifiedError {
	message := err.Error()

	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		message = pgErr.Message
		if pgErr.Detail != "" {
			message += "\nDETAIL: " + pgErr.Detail
		}
		if pgErr.Hint != "" {
			message += "\nHINT: " + pgErr.Hint
		}
	case errors.As(err, &pqErr):
		message = pqErr.Message
		if pqErr.Detail != "" {
			message += "\nDETAIL: " + string(pqErr.Detail)
		}
		if pqErr.Hint != "" {
			message += "\nHINT: " + string(pqErr.Hint)
		}
	}

	return &ClassifiedError{
		Message:             message,
		LineNumber:          extractLineNumber(err.Error()),
		Suggestion:          suggestionFor(message),
		TroubleshootingTips: troubleshootingTips(message),
	}
}

func extractLineNumber(message string) *int {
	matches := lineNumberPattern.FindStringSubmatch(message)
	if matches == nil {
		return nil
	}
	n, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil
	}
	return &n
}

func suggestionFor(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "type") && strings.Contains(lower, "does not exist"):
		return "Check for typos in data type names. Common types: text, integer, boolean, timestamp."
	case strings.Contains(lower, "syntax error") && strings.Contains(lower, "check"):
		return "Syntax error near CHECK. Verify CHECK constraint syntax and parentheses."
	case strings.Contains(lower, "column") && strings.Contains(lower, "does not exist"):
		return "Verify column names and ensure tables are created before referencing them."
	case strings.Contains(lower, "relation") && strings.Contains(lower, "does not exist"):
		return "Table or view does not exist. Check dependency order and object names."
	case strings.Contains(lower, "syntax error at or near"):
		if word := nearWord(lower); word != "" {
			return "Syntax error near '" + word + "'. Check SQL syntax and keywords."
		}
		return "SQL syntax error. Verify SQL syntax and keywords."
	default:
		return ""
	}
}

func nearWord(lower string) string {
	const marker = `at or near "`
	start := strings.Index(lower, marker)
	if start == -1 {
		return ""
	}
	start += len(marker)
	end := strings.Index(lower[start:], `"`)
	if end == -1 {
		return ""
	}
	return lower[start : start+end]
}

func troubleshootingTips(message string) []string {
	var tips []string

	if strings.Contains(message, "cannot insert multiple commands into a prepared statement") {
		tips = append(tips,
			"Multiple SQL commands detected; ensure each statement is split before execution.",
			"Ensure each SQL statement ends with a semicolon and is separated by newlines.")
	}
	if strings.Contains(message, "already exists") {
		tips = append(tips,
			"This object already exists. Check if this file is being applied multiple times.",
			"Consider whether there are duplicate definitions or manual changes to the database.")
	}
	if strings.Contains(message, "does not exist") {
		tips = append(tips,
			"A referenced object doesn't exist. Check if dependencies are properly specified.",
			"Verify that dependent files are listed in the correct order.",
			"Check if `-- require:` headers are present and correct.")
	}
	if strings.Contains(message, "syntax error") || strings.Contains(message, "parse error") {
		tips = append(tips,
			"There's a SQL syntax error in this content.",
			"Look for missing semicolons, unmatched parentheses, or typos.")
	}
	if strings.Contains(message, "permission denied") {
		tips = append(tips, "Permission denied. Check database user permissions for this operation.")
	}

	return tips
}
