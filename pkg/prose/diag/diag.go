package diag

import (
	"fmt"
	"strings"

	"mercator-hq/prose/pkg/prose/token"
)

// Severity classifies how blocking a diagnostic is.
type Severity string

const (
	// SeverityError marks problems that make the program impossible to
	// execute correctly. Any error fails validation.
	SeverityError Severity = "error"
	// SeverityWarning marks likely mistakes that are still executable.
	// Warnings never fail validation.
	SeverityWarning Severity = "warning"
)

// Stage identifies which pipeline stage produced a diagnostic.
type Stage string

const (
	StageLex      Stage = "lex"      // token-level input problems
	StageParse    Stage = "parse"    // statement/expression-level problems
	StageValidate Stage = "validate" // semantic and structural problems
)

// Diagnostic is a single problem report with a precise source span.
// All three pipeline stages accumulate diagnostics into a List rather than
// aborting on the first failure, so a single pass reports everything it can.
type Diagnostic struct {
	Severity   Severity   `json:"severity"`
	Stage      Stage      `json:"stage"`
	Code       string     `json:"code,omitempty"`
	Message    string     `json:"message"`
	Span       token.Span `json:"span"`
	Suggestion string     `json:"suggestion,omitempty"`
}

// Error implements the error interface with a compact one-line form.
func (d *Diagnostic) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s: %s", d.Stage, d.Severity, d.Message))
	if d.Span.Start.IsValid() {
		sb.WriteString(fmt.Sprintf(" at %s", d.Span.Start))
	}
	return sb.String()
}

// Format renders the diagnostic in the multi-line form used by the CLI,
// including source context and suggestion when available. The source text
// may be empty, in which case the context block is omitted.
func (d *Diagnostic) Format(source string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s\n", d.Stage, d.Message))
	if d.Span.Start.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", d.Span.Start))
	}
	if source != "" && d.Span.Start.IsValid() {
		if ctx := ExtractContext(source, d.Span.Start, 2); ctx != "" {
			sb.WriteString("  |\n")
			sb.WriteString(ctx)
			sb.WriteString("  |\n")
		}
	}
	if d.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", d.Suggestion))
	}
	return sb.String()
}

// List accumulates diagnostics across a pipeline stage.
type List struct {
	Diagnostics []*Diagnostic
}

// NewList creates an empty diagnostic list.
func NewList() *List {
	return &List{Diagnostics: make([]*Diagnostic, 0)}
}

// Add appends a diagnostic.
func (l *List) Add(d *Diagnostic) {
	l.Diagnostics = append(l.Diagnostics, d)
}

// AddError appends an error diagnostic with the given stage, code, message,
// and span.
func (l *List) AddError(stage Stage, code, message string, span token.Span) {
	l.Add(&Diagnostic{
		Severity: SeverityError,
		Stage:    stage,
		Code:     code,
		Message:  message,
		Span:     span,
	})
}

// AddErrorWithSuggestion appends an error diagnostic carrying a fix hint.
func (l *List) AddErrorWithSuggestion(stage Stage, code, message string, span token.Span, suggestion string) {
	l.Add(&Diagnostic{
		Severity:   SeverityError,
		Stage:      stage,
		Code:       code,
		Message:    message,
		Span:       span,
		Suggestion: suggestion,
	})
}

// AddWarning appends a warning diagnostic.
func (l *List) AddWarning(stage Stage, code, message string, span token.Span) {
	l.Add(&Diagnostic{
		Severity: SeverityWarning,
		Stage:    stage,
		Code:     code,
		Message:  message,
		Span:     span,
	})
}

// AddWarningWithSuggestion appends a warning diagnostic carrying a fix hint.
func (l *List) AddWarningWithSuggestion(stage Stage, code, message string, span token.Span, suggestion string) {
	l.Add(&Diagnostic{
		Severity:   SeverityWarning,
		Stage:      stage,
		Code:       code,
		Message:    message,
		Span:       span,
		Suggestion: suggestion,
	})
}

// Errors returns only the error-severity diagnostics.
func (l *List) Errors() []*Diagnostic {
	return l.bySeverity(SeverityError)
}

// Warnings returns only the warning-severity diagnostics.
func (l *List) Warnings() []*Diagnostic {
	return l.bySeverity(SeverityWarning)
}

func (l *List) bySeverity(sev Severity) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range l.Diagnostics {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors returns true if the list contains at least one error.
func (l *List) HasErrors() bool {
	for _, d := range l.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-severity diagnostics.
func (l *List) ErrorCount() int {
	return len(l.Errors())
}

// WarningCount returns the number of warning-severity diagnostics.
func (l *List) WarningCount() int {
	return len(l.Warnings())
}

// Count returns the total number of diagnostics.
func (l *List) Count() int {
	return len(l.Diagnostics)
}

// Merge appends every diagnostic from another list.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.Diagnostics = append(l.Diagnostics, other.Diagnostics...)
}

// HasCode returns true if the list contains a diagnostic with the given code.
func (l *List) HasCode(code string) bool {
	for _, d := range l.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Error implements the error interface, formatting every diagnostic.
func (l *List) Error() string {
	if l.Count() == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d problem(s):\n", l.Count()))
	for _, d := range l.Diagnostics {
		sb.WriteString("  ")
		sb.WriteString(d.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToError returns nil if the list holds no errors, otherwise the list itself.
// Warnings alone do not produce an error.
func (l *List) ToError() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}
