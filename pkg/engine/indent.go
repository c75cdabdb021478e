package engine

import "strings"

// ComputeIndent calculates indentation information for a raw (not yet
// stripped) line, per spec.md §4.2.
//
// Lines whose non-whitespace content is empty (blank lines, possibly with
// trailing whitespace) report (len+1, spaces, tabs), where len is the
// line's length in bytes: tabs are not widened by tabWidth for them.
func ComputeIndent(line string, tabWidth int) Indent {
	if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
		return Indent{}
	}

	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return Indent{Effective: len(line) + 1, Spaces: strings.Count(line, " "), Tabs: strings.Count(line, "\t")}
	}

	firstCharIdx := strings.Index(line, trimmed[:1])
	prefix := line[:firstCharIdx]
	spaces := strings.Count(prefix, " ")
	tabs := strings.Count(prefix, "\t")
	return Indent{Effective: spaces + tabs*tabWidth, Spaces: spaces, Tabs: tabs}
}
