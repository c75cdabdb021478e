package rawdiff

import (
	"github.com/bdiffgo/bdiff/pkg/engine"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
)

// myersDiffer is the alternate rawdiff.Differ selectable via the
// diff_algorithm option, wired exactly as the teacher's (pre-refactor)
// main.go demonstrates: myers.ComputeEdits followed by
// gotextdiff.ToUnified.
type myersDiffer struct{}

func (myersDiffer) Diff(srcText, destText string) ([]engine.RawOp, []string, []string, error) {
	srcLines := SplitLines(srcText)
	destLines := SplitLines(destText)

	edits := myers.ComputeEdits("src", srcText, destText)
	unified := gotextdiff.ToUnified("src", "dest", srcText, edits)

	ops := make([]engine.RawOp, 0, len(srcLines)+len(destLines))
	srcIdx := 0
	for _, h := range unified.Hunks {
		for srcIdx < h.FromLine-1 {
			ops = append(ops, engine.RawOp{Origin: engine.Kept, Text: srcLines[srcIdx]})
			srcIdx++
		}
		for _, l := range h.Lines {
			content := trimTrailingNewline(l.Content)
			switch l.Kind {
			case gotextdiff.Delete:
				ops = append(ops, engine.RawOp{Origin: engine.Removed, Text: content})
				srcIdx++
			case gotextdiff.Insert:
				ops = append(ops, engine.RawOp{Origin: engine.Inserted, Text: content})
			default: // gotextdiff.Equal
				ops = append(ops, engine.RawOp{Origin: engine.Kept, Text: content})
				srcIdx++
			}
		}
	}
	for srcIdx < len(srcLines) {
		ops = append(ops, engine.RawOp{Origin: engine.Kept, Text: srcLines[srcIdx]})
		srcIdx++
	}

	return ops, srcLines, destLines, nil
}

// trimTrailingNewline strips the line terminator gotextdiff keeps attached
// to Line.Content, since engine.RawOp.Text is newline-free per line.
func trimTrailingNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
