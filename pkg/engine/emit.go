package engine

import (
	"fmt"
	"sort"
)

// rcKey identifies one removed or inserted trace token by the side it
// belongs to and its line number on that side, mirroring the teacher
// source's "r123"/"i456" string keys (spec.md §4.12 design note) without
// the string formatting and parsing.
type rcKey struct {
	removed bool
	line    int
}

func rKey(line int) rcKey { return rcKey{removed: true, line: line} }
func iKey(line int) rcKey { return rcKey{removed: false, line: line} }

// resolution tags, mirroring the teacher source's "kind-N" string values.
const (
	resInsert = "insert"
	resDelete = "delete"
)

type resValue struct {
	kind string // "insert", "delete", "copy", "move", "update", "split", "merge"
	peer int    // the paired line number on the other side, when kind has one
}

// EmitEditScripts turns the Kuhn-Munkres matches plus the split/merge and
// raw hunk data into the final, typed edit script, per spec.md §4.12
// ("generate_edit_scripts_from_match"). It is the last stage of the
// engine: every earlier stage produces candidates or mappings, this one
// resolves every source and destination line to exactly one edit record
// and fills in the plain inserts and deletes nothing else accounted for.
func EmitEditScripts(kmMatches []Candidate, trace []TraceOp, src, dest *LineIndex, splits []SplitRecord, merges []MergeRecord, hunks []Hunk, srcLen, destLen int) []EditRecord {
	resolved := make(map[rcKey]resValue)
	kPairs := buildKPairs(trace)
	traceIndex := buildTraceIndex(trace)

	var out []EditRecord

	for _, s := range splits {
		out = append(out, emitSplit(s))
		resolved[rKey(s.SrcLine)] = resValue{kind: "split", peer: s.DestLines[0]}
		for _, d := range s.DestLines {
			resolved[iKey(d)] = resValue{kind: "split", peer: s.SrcLine}
		}
	}
	for _, m := range merges {
		out = append(out, emitMerge(m))
		resolved[iKey(m.DestLine)] = resValue{kind: "merge", peer: m.SrcLines[0]}
		for _, s := range m.SrcLines {
			resolved[rKey(s)] = resValue{kind: "merge", peer: m.DestLine}
		}
	}

	sortedMatches := append([]Candidate(nil), kmMatches...)
	sort.SliceStable(sortedMatches, func(i, j int) bool { return sortedMatches[i].SrcStart < sortedMatches[j].SrcStart })

	for _, c := range sortedMatches {
		switch c.Mode {
		case ModeCopy:
			out = append(out, emitCopy(c))
			for d := c.DestStart; d < c.DestStart+c.BlockLength; d++ {
				resolved[iKey(d)] = resValue{kind: "copy", peer: c.SrcStart}
			}
			for _, u := range c.Updates {
				out = append(out, emitBlockUpdate(ModeCopyUpdate, u, src, dest))
			}
		case ModeMove:
			out = append(out, emitMove(c))
			for bl := 0; bl < c.BlockLength; bl++ {
				r, i := c.SrcStart+bl, c.DestStart+bl
				resolved[rKey(r)] = resValue{kind: "move", peer: c.DestStart}
				resolved[iKey(i)] = resValue{kind: "move", peer: c.SrcStart}
			}
			for _, u := range c.Updates {
				out = append(out, emitBlockUpdate(ModeMoveUpdate, u, src, dest))
			}
		case ModeUpdate:
			out = append(out, emitUpdate(c, src, dest))
			resolved[rKey(c.SrcStart)] = resValue{kind: "update", peer: c.DestStart}
			resolved[iKey(c.DestStart)] = resValue{kind: "update", peer: c.SrcStart}
		}
	}

	for _, h := range hunks {
		switch {
		case len(h.RemovedSrc) == 0:
			out = append(out, emitInsertOnlyHunk(h, resolved, trace, traceIndex, srcLen)...)
		case len(h.InsertedDest) == 0:
			out = append(out, emitDeleteOnlyHunk(h, resolved, trace, traceIndex, kPairs, destLen)...)
		default:
			out = append(out, emitMixedHunk(h, resolved, trace, traceIndex, kPairs, srcLen, destLen)...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SrcLine != out[j].SrcLine {
			return out[i].SrcLine < out[j].SrcLine
		}
		return out[i].DestLine < out[j].DestLine
	})

	repositionDeletes(out)

	return out
}

// EmitFromTrace produces the edit script directly from the raw trace, with
// no block-matching at all, per spec.md §4.12 ("generate_edit_scripts_from_
// diff"). It is the fast path the caller takes when the destination has no
// inserted lines whatsoever: with nothing to match against, every removed
// line is simply a delete anchored at the destination position it would
// have occupied had it survived.
func EmitFromTrace(trace []TraceOp) []EditRecord {
	var out []EditRecord
	srcLineNo, destLineNo := 1, 1
	for _, op := range trace {
		switch op.Origin {
		case Removed:
			out = append(out, EditRecord{Mode: ModeDelete, SrcLine: op.Line, DestLine: destLineNo, EditAction: editActionDelete(op.Line)})
			srcLineNo++
		case Inserted:
			out = append(out, EditRecord{Mode: ModeInsert, DestLine: op.Line, SrcLine: srcLineNo, EditAction: editActionInsert(op.Line)})
			destLineNo++
		case Kept:
			srcLineNo++
			destLineNo++
		}
	}
	return out
}

func buildKPairs(trace []TraceOp) map[int]int {
	kPairs := make(map[int]int)
	srcLineNo, destLineNo := 0, 0
	for _, op := range trace {
		switch op.Origin {
		case Kept:
			srcLineNo++
			destLineNo++
			kPairs[srcLineNo] = destLineNo
		case Removed:
			srcLineNo++
		case Inserted:
			destLineNo++
		}
	}
	return kPairs
}

func buildTraceIndex(trace []TraceOp) map[TraceOp]int {
	idx := make(map[TraceOp]int, len(trace))
	for i, op := range trace {
		idx[op] = i
	}
	return idx
}

func emitSplit(s SplitRecord) EditRecord {
	return EditRecord{
		Mode:        ModeSplit,
		SrcLine:     s.SrcLine,
		DestLine:    s.DestLines[0],
		BlockLength: len(s.DestLines),
		EditAction:  editActionSplit(s.SrcLine, s.DestLines),
	}
}

func emitMerge(m MergeRecord) EditRecord {
	return EditRecord{
		Mode:        ModeMerge,
		SrcLine:     m.SrcLines[0],
		DestLine:    m.DestLine,
		BlockLength: len(m.SrcLines),
		EditAction:  editActionMerge(m.SrcLines, m.DestLine),
	}
}

func emitCopy(c Candidate) EditRecord {
	return EditRecord{
		Mode:         ModeCopy,
		SrcLine:      c.SrcStart,
		DestLine:     c.DestStart,
		BlockLength:  c.BlockLength,
		IndentOffset: c.IndentDiff,
		Updates:      c.Updates,
		EditAction:   editActionCopy(c.BlockLength, c.SrcStart, c.DestStart, c.IndentDiff),
	}
}

func emitMove(c Candidate) EditRecord {
	return EditRecord{
		Mode:         ModeMove,
		SrcLine:      c.SrcStart,
		DestLine:     c.DestStart,
		BlockLength:  c.BlockLength,
		IndentOffset: c.IndentDiff,
		MoveType:     c.MoveType,
		Updates:      c.Updates,
		EditAction:   editActionMove(c.BlockLength, c.SrcStart, c.DestStart, c.IndentDiff),
	}
}

func emitUpdate(c Candidate, src, dest *LineIndex) EditRecord {
	srcLine, _ := src.Get(c.SrcStart)
	destLine, _ := dest.Get(c.DestStart)
	indentOffset := destLine.Indent.Effective - srcLine.Indent.Effective
	return EditRecord{
		Mode:         ModeUpdate,
		SrcLine:      c.SrcStart,
		DestLine:     c.DestStart,
		IndentOffset: indentOffset,
		StrDiff:      ComputeStrDiff(srcLine, destLine),
		EditAction:   editActionUpdate(c.SrcStart, c.DestStart, indentOffset),
	}
}

func emitBlockUpdate(mode Mode, u LineUpdate, src, dest *LineIndex) EditRecord {
	srcLine, _ := src.Get(u.SrcLine)
	destLine, _ := dest.Get(u.DestLine)
	return EditRecord{
		Mode:       mode,
		SrcLine:    u.SrcLine,
		DestLine:   u.DestLine,
		StrDiff:    ComputeStrDiff(srcLine, destLine),
		EditAction: editActionBlockUpdate(u.SrcLine, u.DestLine),
	}
}

// emitInsertOnlyHunk anchors every still-unresolved inserted line in a
// hunk with no removed lines at the source position immediately following
// the hunk, per spec.md §4.12's insert-only case.
func emitInsertOnlyHunk(h Hunk, resolved map[rcKey]resValue, trace []TraceOp, traceIndex map[TraceOp]int, srcLen int) []EditRecord {
	lastDest := h.InsertedDest[len(h.InsertedDest)-1]
	idx := traceIndex[TraceOp{Origin: Inserted, Line: lastDest}]

	var srcLineNo int
	if idx == len(trace)-1 {
		srcLineNo = srcLen + 1
	} else {
		srcLineNo = trace[idx+1].Line
	}

	var out []EditRecord
	for _, d := range h.InsertedDest {
		key := iKey(d)
		if _, ok := resolved[key]; ok {
			continue
		}
		resolved[key] = resValue{kind: resInsert}
		out = append(out, EditRecord{Mode: ModeInsert, DestLine: d, SrcLine: srcLineNo, EditAction: editActionInsert(d)})
	}
	return out
}

// emitDeleteOnlyHunk is the mirror of emitInsertOnlyHunk for hunks with no
// inserted lines.
func emitDeleteOnlyHunk(h Hunk, resolved map[rcKey]resValue, trace []TraceOp, traceIndex map[TraceOp]int, kPairs map[int]int, destLen int) []EditRecord {
	lastSrc := h.RemovedSrc[len(h.RemovedSrc)-1]
	idx := traceIndex[TraceOp{Origin: Removed, Line: lastSrc}]

	var destLineNo int
	if idx == len(trace)-1 {
		destLineNo = destLen + 1
	} else {
		destLineNo = kPairs[trace[idx+1].Line]
	}

	var out []EditRecord
	for _, r := range h.RemovedSrc {
		key := rKey(r)
		if _, ok := resolved[key]; ok {
			continue
		}
		resolved[key] = resValue{kind: resDelete}
		out = append(out, EditRecord{Mode: ModeDelete, SrcLine: r, DestLine: destLineNo, EditAction: editActionDelete(r)})
	}
	return out
}

// emitMixedHunk handles a hunk with both removed and inserted lines, per
// spec.md §4.12's general case: it walks each side right to left, anchoring
// unresolved lines at a pointer position that jumps forward whenever it
// passes a line already resolved by a match, split, or merge (or an
// offset-aligned move), and otherwise just trails the walk.
func emitMixedHunk(h Hunk, resolved map[rcKey]resValue, trace []TraceOp, traceIndex map[TraceOp]int, kPairs map[int]int, srcLen, destLen int) []EditRecord {
	lastDest := h.InsertedDest[len(h.InsertedDest)-1]
	idx := traceIndex[TraceOp{Origin: Inserted, Line: lastDest}]

	anchor := func() (left, right int) {
		if idx == len(trace)-1 {
			return srcLen + 1, destLen + 1
		}
		left = trace[idx+1].Line
		right = kPairs[left]
		return left, right
	}

	var out []EditRecord

	curLeft, curRight := anchor()
	for i := len(h.InsertedDest) - 1; i >= 0; i-- {
		rs := h.InsertedDest[i]
		key := iKey(rs)
		val, ok := resolved[key]
		if !ok {
			resolved[key] = resValue{kind: resInsert}
			out = append(out, EditRecord{Mode: ModeInsert, DestLine: rs, SrcLine: curLeft, EditAction: editActionInsert(rs)})
			curRight = rs
			continue
		}

		advance := val.kind == "update" || val.kind == "split" || val.kind == "merge"
		if val.kind == "move" {
			rVal := resolved[rKey(val.peer)]
			advance = (rVal.peer - curRight) == (val.peer - curLeft)
		}
		if advance {
			curLeft = val.peer
			curRight = resolved[rKey(val.peer)].peer
		} else {
			curRight = rs
		}
	}

	curLeft, curRight = anchor()
	for i := len(h.RemovedSrc) - 1; i >= 0; i-- {
		ls := h.RemovedSrc[i]
		key := rKey(ls)
		val, ok := resolved[key]
		if !ok {
			resolved[key] = resValue{kind: resDelete}
			out = append(out, EditRecord{Mode: ModeDelete, SrcLine: ls, DestLine: curRight, EditAction: editActionDelete(ls)})
			curLeft = ls
			continue
		}

		advance := val.kind == "update" || val.kind == "split" || val.kind == "merge"
		if val.kind == "move" {
			iVal := resolved[iKey(val.peer)]
			advance = (iVal.peer - curLeft) == (val.peer - curRight)
		}
		if advance {
			curRight = val.peer
			curLeft = resolved[iKey(val.peer)].peer
		}
	}

	return out
}

// repositionDeletes pulls a delete's reported destination line forward to
// match a later insert's, when that insert's source line sits further
// along than the delete's own — the same asymmetric post-pass as the
// teacher source: only deletes are ever adjusted, and only against
// inserts, never the reverse.
func repositionDeletes(records []EditRecord) {
	for i := range records {
		if records[i].Mode != ModeDelete {
			continue
		}
		for j := range records {
			if records[j].Mode != ModeInsert {
				continue
			}
			if records[i].DestLine > records[j].DestLine && records[i].SrcLine < records[j].SrcLine {
				records[i].DestLine = records[j].DestLine
			}
		}
	}
}

func moveDirection(indentDiff int) string {
	switch {
	case indentDiff < 0:
		return fmt.Sprintf(" with moving left %d whitespaces.", -indentDiff)
	case indentDiff == 0:
		return ""
	default:
		return fmt.Sprintf(" with moving right %d whitespaces.", indentDiff)
	}
}

func editActionMove(blockLength, srcStart, destStart, indentDiff int) string {
	dir := moveDirection(indentDiff)
	if blockLength == 1 {
		return fmt.Sprintf("Move 1 line from line %d to line %d%s", srcStart, destStart, dir)
	}
	return fmt.Sprintf("Move a %d-line block from line %d to line %d%s", blockLength, srcStart, destStart, dir)
}

func editActionCopy(blockLength, srcStart, destStart, indentDiff int) string {
	dir := moveDirection(indentDiff)
	return fmt.Sprintf("Copy a %d-line block from line %d to line %d%s", blockLength, srcStart, destStart, dir)
}

func editActionUpdate(srcLine, destLine, indentDiff int) string {
	dir := moveDirection(indentDiff)
	return fmt.Sprintf("Update line %d to line %d%s", srcLine, destLine, dir)
}

func editActionBlockUpdate(srcLine, destLine int) string {
	return fmt.Sprintf("Update line %d to line %d", srcLine, destLine)
}

func editActionInsert(destLine int) string {
	return fmt.Sprintf("Insert line %d", destLine)
}

func editActionDelete(srcLine int) string {
	return fmt.Sprintf("Delete line %d", srcLine)
}

func editActionSplit(srcLine int, destLines []int) string {
	return fmt.Sprintf("Split line %d to lines %d-%d", srcLine, destLines[0], destLines[len(destLines)-1])
}

func editActionMerge(srcLines []int, destLine int) string {
	return fmt.Sprintf("Merge lines %d-%d to line %d", srcLines[0], srcLines[len(srcLines)-1], destLine)
}
