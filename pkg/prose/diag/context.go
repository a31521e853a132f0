package diag

import (
	"fmt"
	"strings"

	"mercator-hq/prose/pkg/prose/token"
)

// ExtractContext renders the lines surrounding a source position for error
// display. The caller supplies the source text directly; the toolchain core
// never touches the filesystem.
//
// Output format, with "->" marking the offending line and a caret under the
// offending column:
//
//	   3 | for item in items:
//	->  4 |   let x = session "process {item}"
//	     |       ^
//	   5 | session "use {x}"
func ExtractContext(source string, pos token.Position, contextLines int) string {
	if !pos.IsValid() || source == "" {
		return ""
	}

	lines := strings.Split(source, "\n")
	errorLine := pos.Line - 1
	if errorLine < 0 || errorLine >= len(lines) {
		return ""
	}

	startLine := errorLine - contextLines
	if startLine < 0 {
		startLine = 0
	}
	endLine := errorLine + contextLines
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	var sb strings.Builder
	width := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, width, i+1, strings.TrimRight(lines[i], "\r")))

		if i == errorLine && pos.Column > 0 {
			padding := strings.Repeat(" ", pos.Column-1)
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", width), padding))
		}
	}

	return sb.String()
}
