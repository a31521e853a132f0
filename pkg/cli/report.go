package cli

import (
	"fmt"
	"io"

	"mercator-hq/prose/pkg/prose"
	"mercator-hq/prose/pkg/prose/diag"
)

// Report is the serializable form of one file's check outcome, shared by
// the text and JSON renderings.
type Report struct {
	File     string             `json:"file"`
	Valid    bool               `json:"valid"`
	Errors   []*diag.Diagnostic `json:"errors"`
	Warnings []*diag.Diagnostic `json:"warnings"`
}

// NewReport builds a report from a check result.
func NewReport(file string, result *prose.CheckResult) *Report {
	return &Report{
		File:     file,
		Valid:    result.Valid,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	}
}

// WriteText renders the report for terminals: each diagnostic with its
// source context, then a one-line summary. The source text is used for the
// context excerpt and may be empty.
func (r *Report) WriteText(w io.Writer, source string) error {
	for _, d := range r.Errors {
		if _, err := fmt.Fprintf(w, "%s: error: %s", r.File, d.Format(source)); err != nil {
			return err
		}
	}
	for _, d := range r.Warnings {
		if _, err := fmt.Fprintf(w, "%s: warning: %s", r.File, d.Format(source)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%s: %s (%d error(s), %d warning(s))\n",
		r.File, r.verdict(), len(r.Errors), len(r.Warnings))
	return err
}

func (r *Report) verdict() string {
	if r.Valid {
		return "ok"
	}
	return "invalid"
}
