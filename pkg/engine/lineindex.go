package engine

import (
	"sort"
	"strings"
)

// LineIndex is an order-preserving map from 1-indexed line number to Line.
// It replaces the teacher source's bare OrderedDict (spec.md §9 design
// note): split/merge detection deletes entries out of line-number order,
// so a plain slice cannot represent it, but iteration must still walk
// surviving entries in ascending line-number order.
type LineIndex struct {
	lines map[int]Line
}

// NewLineIndex returns an empty LineIndex.
func NewLineIndex() *LineIndex {
	return &LineIndex{lines: make(map[int]Line)}
}

// Set records the Line at lineNo, inserting or overwriting.
func (li *LineIndex) Set(lineNo int, l Line) {
	li.lines[lineNo] = l
}

// Get returns the Line at lineNo, or false if it has no entry (never
// indexed, or already removed by a prior split/merge match).
func (li *LineIndex) Get(lineNo int) (Line, bool) {
	l, ok := li.lines[lineNo]
	return l, ok
}

// Delete removes lineNo's entry, if any.
func (li *LineIndex) Delete(lineNo int) {
	delete(li.lines, lineNo)
}

// Len returns the number of live entries.
func (li *LineIndex) Len() int {
	return len(li.lines)
}

// Keys returns the live line numbers in ascending order.
func (li *LineIndex) Keys() []int {
	keys := make([]int, 0, len(li.lines))
	for k := range li.lines {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// RawOp is one line emitted by a raw differ (pkg/rawdiff.Differ): its
// origin and its original, unstripped text.
type RawOp struct {
	Origin Origin
	Text   string
}

// BuildLineIndex turns a raw differ's keep/remove/insert trace into the
// structures the rest of the engine operates on: a LineIndex per side, the
// linear trace (for RelativeDistance), and the list of hunks, per
// spec.md §4.1 ("construct_line_data"). A "hunk" is a maximal run of
// consecutive non-kept lines; it resets whenever a kept line is seen.
func BuildLineIndex(ops []RawOp, tabWidth int) (src, dest *LineIndex, trace []TraceOp, hunks []Hunk) {
	src, dest = NewLineIndex(), NewLineIndex()
	srcLineNo, destLineNo := 0, 0
	hunk := 0
	countingHunk := false

	for _, op := range ops {
		text := op.Text
		stripped := stripLeadingWhitespaceAndNewline(text)
		indent := ComputeIndent(text, tabWidth)

		switch op.Origin {
		case Kept:
			countingHunk = false
			srcLineNo++
			destLineNo++
			src.Set(srcLineNo, Line{Text: stripped, Indent: indent, Origin: Kept})
			trace = append(trace, TraceOp{Origin: Kept, Line: srcLineNo})
		case Removed:
			if !countingHunk {
				hunk++
				countingHunk = true
				hunks = append(hunks, Hunk{})
			}
			srcLineNo++
			src.Set(srcLineNo, Line{Text: stripped, Indent: indent, Origin: Removed, HunkID: hunk})
			hunks[hunk-1].RemovedSrc = append(hunks[hunk-1].RemovedSrc, srcLineNo)
			trace = append(trace, TraceOp{Origin: Removed, Line: srcLineNo})
		case Inserted:
			if !countingHunk {
				hunk++
				countingHunk = true
				hunks = append(hunks, Hunk{})
			}
			destLineNo++
			dest.Set(destLineNo, Line{Text: stripped, Indent: indent, Origin: Inserted, HunkID: hunk})
			hunks[hunk-1].InsertedDest = append(hunks[hunk-1].InsertedDest, destLineNo)
			trace = append(trace, TraceOp{Origin: Inserted, Line: destLineNo})
		}
	}

	return src, dest, trace, hunks
}

func stripLeadingWhitespaceAndNewline(s string) string {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	return strings.TrimRight(s, "\n")
}
