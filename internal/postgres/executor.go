package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gdpotter/pgmt/internal/step"
)

// SourceContextStyle labels what kind of thing failed, for the error
// header ("schema file" / "migration step" / "baseline").
type SourceContextStyle int

const (
	ContextFile SourceContextStyle = iota
	ContextStep
	ContextBaseline
)

func (s SourceContextStyle) label() string {
	switch s {
	case ContextStep:
		return "migration step"
	case ContextBaseline:
		return "baseline"
	default:
		return "schema file"
	}
}

// ProgressStyle controls what the Executor prints as it works through a
// statement list.
type ProgressStyle int

const (
	ProgressNone ProgressStyle = iota
	ProgressFileCount
	ProgressStepCount
	ProgressDetailed
)

// Config is the set of configuration knobs belonging to the executor
// rather than the shared error formatter.
type Config struct {
	ContextStyle      SourceContextStyle
	Progress          ProgressStyle
	SafetyIndicators  bool
	ContentTruncation int // characters; not read by Executor: SQLError.Error always truncates at 500
}

// DefaultConfig mirrors original_source's SqlExecutorConfig::default().
func DefaultConfig() Config {
	return Config{ContextStyle: ContextFile, Progress: ProgressFileCount, ContentTruncation: 300}
}

// SQLError is the structured error an Executor returns on statement
// failure. Error() renders it via Format using Enhanced defaults; callers
// that want WithTips-level detail or a different truncation width call
// Format directly.
type SQLError struct {
	SourceContext       string
	SQLContent          string
	LineNumber          *int
	PostgresError       string
	Suggestion          string
	TroubleshootingTips []string
	DependenciesInfo    string

	contextStyle SourceContextStyle
}

func (e *SQLError) Error() string {
	return e.Format(true, 500)
}

// Format renders the error with a windowed source-context preview (3 lines
// above and below the failing line, with an arrow on the error line) and,
// when withTips is true, the troubleshooting tips list.
func (e *SQLError) Format(withTips bool, truncateAt int) string {
	if truncateAt <= 0 {
		truncateAt = 300
	}

	var b strings.Builder
	fmt.Fprintf(&b, "failed to apply %s %q", e.contextStyle.label(), e.SourceContext)
	if e.DependenciesInfo != "" {
		fmt.Fprintf(&b, " %s", e.DependenciesInfo)
	}
	b.WriteString("\n\ndatabase error:\n")
	b.WriteString(e.PostgresError)
	if e.LineNumber != nil {
		fmt.Fprintf(&b, " (line %d)", *e.LineNumber)
	}

	b.WriteString("\n\ncontent:\n")
	if e.LineNumber != nil {
		b.WriteString(contentWithLineContext(e.SQLContent, *e.LineNumber, truncateAt))
	} else {
		trimmed := strings.TrimSpace(e.SQLContent)
		if len(trimmed) > truncateAt {
			fmt.Fprintf(&b, "%s...\n\n[content truncated - %d total characters]", trimmed[:truncateAt], len(trimmed))
		} else {
			b.WriteString(trimmed)
		}
	}

	if withTips && len(e.TroubleshootingTips) > 0 {
		b.WriteString("\n\ntroubleshooting tips:\n")
		for _, tip := range e.TroubleshootingTips {
			fmt.Fprintf(&b, "- %s\n", tip)
		}
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\nsuggestion: %s", e.Suggestion)
	}

	return b.String()
}

const contextLines = 3

func contentWithLineContext(content string, errorLine, maxChars int) string {
	lines := strings.Split(content, "\n")
	total := len(lines)

	errIdx := errorLine - 1
	if errIdx < 0 {
		errIdx = 0
	}
	startIdx := errIdx - contextLines
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := errIdx + contextLines + 1
	if endIdx > total {
		endIdx = total
	}

	var b strings.Builder
	if startIdx > 0 {
		fmt.Fprintf(&b, "... [showing lines %d-%d of %d]\n\n", startIdx+1, endIdx, total)
	}
	for i := startIdx; i < endIdx; i++ {
		lineNum := i + 1
		marker := "   "
		if lineNum == errorLine {
			marker = "-> "
		}
		fmt.Fprintf(&b, "%s%4d | %s\n", marker, lineNum, lines[i])
	}
	if endIdx < total {
		fmt.Fprintf(&b, "\n... [%d more lines]", total-endIdx)
	}

	result := b.String()
	if len(result) > maxChars {
		return fmt.Sprintf("%s...\n\n[content truncated - %d total characters]", result[:maxChars], len(result))
	}
	return result
}

// Executor applies RenderedSql statements in autocommit: each statement is
// its own implicit transaction, never wrapping the plan as a whole in one.
type Executor struct {
	db     *sql.DB
	config Config
}

func New(db *sql.DB, config Config) *Executor {
	return &Executor{db: db, config: config}
}

// ExecuteContent runs one blob of SQL text (a schema file, a baseline, or a
// single rendered statement) and wraps any failure into a *SQLError.
func (e *Executor) ExecuteContent(ctx context.Context, content, source, dependenciesInfo string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}
	if _, err := e.db.ExecContext(ctx, content); err != nil {
		classified := Classify(err)
		return &SQLError{
			SourceContext:       source,
			SQLContent:          content,
			LineNumber:          classified.LineNumber,
			PostgresError:       classified.Message,
			Suggestion:          classified.Suggestion,
			TroubleshootingTips: classified.TroubleshootingTips,
			DependenciesInfo:    dependenciesInfo,
			contextStyle:        e.config.ContextStyle,
		}
	}
	return nil
}

// ExecuteSteps runs an ordered, already-rendered statement list, stopping
// at the first failure. There is no automatic rollback of prior statements.
func (e *Executor) ExecuteSteps(ctx context.Context, statements []step.RenderedSql) error {
	for i, stmt := range statements {
		if e.config.Progress == ProgressStepCount || e.config.Progress == ProgressDetailed {
			e.reportProgress(i+1, len(statements), stmt)
		}
		source := fmt.Sprintf("step %d", i+1)
		if err := e.ExecuteContent(ctx, stmt.Text, source, ""); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) reportProgress(num, total int, stmt step.RenderedSql) {
	marker := "safe"
	if e.config.SafetyIndicators {
		if stmt.Safety == step.Destructive {
			marker = "destructive"
		}
	}
	fmt.Printf("executing step %d/%d (%s)\n", num, total, marker)
	if e.config.Progress == ProgressDetailed {
		fmt.Println(stmt.Text)
	}
}
