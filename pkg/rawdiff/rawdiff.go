// Package rawdiff is the external-differ boundary BDiff sits on top of: a
// small contract (Differ) plus two concrete implementations chosen by the
// diff_algorithm option, each turning a pair of texts into the line-level
// keep/remove/insert trace that pkg/engine consumes.
package rawdiff

import "github.com/bdiffgo/bdiff/pkg/engine"

// Algorithm selects a concrete Differ.
type Algorithm string

const (
	Histogram Algorithm = "histogram"
	Myers     Algorithm = "myers"
)

// Differ turns two whole-file texts into the ops trace pkg/engine expects,
// plus each side split into its 1-indexed (slice index 0 = line 1) lines.
type Differ interface {
	Diff(srcText, destText string) (ops []engine.RawOp, srcLines, destLines []string, err error)
}

// New resolves an Algorithm to its Differ. Unknown values fall back to
// Histogram, the default per spec.md §6's option table.
func New(alg Algorithm) Differ {
	switch alg {
	case Myers:
		return myersDiffer{}
	default:
		return histogramDiffer{}
	}
}

// SplitLines splits text the same way both concrete differs do: on "\n",
// dropping a single trailing empty element produced by a final newline.
// Exported so callers (pkg/resultcache) can build the srcLines/destLines
// arguments of bdiff.Run without re-implementing the same split.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := splitOnNewline(text)
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func splitOnNewline(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
