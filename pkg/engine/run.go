package engine

// Run executes the full block-matching engine over a raw keep/remove/insert
// trace: it builds the per-side line indexes, detects splits and merges,
// enumerates move/copy/update candidates, resolves them against each other
// with Kuhn-Munkres assignment, and emits the final typed edit script.
//
// srcAllLines/destAllLines are the complete, 1-indexed (index 0 = line 1),
// unstripped file contents — several stages need the raw text alongside
// the engine's own stripped LineIndex view.
func Run(ops []RawOp, srcAllLines, destAllLines []string, opt Options) []EditRecord {
	src, dest, trace, hunks := BuildLineIndex(ops, opt.IndentTabsSize)

	if dest.Len() == 0 {
		return EmitFromTrace(trace)
	}

	// Split/merge detection consumes lines from hunks in place; emission
	// walks the hunks as the raw differ produced them.
	rawHunks := make([]Hunk, len(hunks))
	for i, h := range hunks {
		rawHunks[i] = Hunk{RemovedSrc: append([]int(nil), h.RemovedSrc...), InsertedDest: append([]int(nil), h.InsertedDest...)}
	}

	splits, merges := FindSplitsAndMerges(hunks, src, dest, opt.MaxSplitLines, opt.MaxMergeLines, opt.IdentifySplit, opt.IdentifyMerge)

	var moveCandidates, copyCandidates, updateCandidates []Candidate
	if opt.IdentifyMove {
		moveCandidates = FindMoveCandidates(src, dest, srcAllLines, destAllLines, trace, opt.MinMoveBlockLength, opt.PureMvBlockContainPunc, opt.CountMvBlockUpdate)
	}
	if opt.IdentifyCopy {
		copyCandidates = FindCopyCandidates(src, dest, srcAllLines, destAllLines, hunks, trace, opt.MinCopyBlockLength, opt.PureCpBlockContainPunc, opt.CountCpBlockUpdate)
	}
	if opt.IdentifyUpdate {
		updateCandidates = FindUpdateCandidates(srcAllLines, destAllLines, hunks, opt.CtxLength, opt.LineSimWeight, opt.SimThreshold)
	}

	updateCandidates = dropUpdatesCrossingSplitsMerges(updateCandidates, splits, merges)

	all := mergeMoveAndCopy(moveCandidates, copyCandidates)
	all = append(all, updateCandidates...)

	var kmMatches []Candidate
	if len(all) > 0 {
		kmMatches = Assign(all, srcAllLines, destAllLines, AssignOptions{
			MinMoveBlockLength:     opt.MinMoveBlockLength,
			MinCopyBlockLength:     opt.MinCopyBlockLength,
			PureMvBlockContainPunc: opt.PureMvBlockContainPunc,
			PureCpBlockContainPunc: opt.PureCpBlockContainPunc,
		})
	}

	return EmitEditScripts(kmMatches, trace, src, dest, splits, merges, rawHunks, len(srcAllLines), len(destAllLines))
}

// dropUpdatesCrossingSplitsMerges discards an update candidate whenever it
// crosses a split or merge in opposite directions on the two axes — the
// update and the split/merge cannot both hold without implying an
// order-inverting edit, so the split/merge wins, per spec.md §4.10's note
// on interaction with split/merge detection.
func dropUpdatesCrossingSplitsMerges(updates []Candidate, splits []SplitRecord, merges []MergeRecord) []Candidate {
	crosses := func(srcStart, destStart int) bool {
		for _, s := range splits {
			if (s.SrcLine-srcStart)*(s.DestLines[0]-destStart) < 0 {
				return true
			}
		}
		for _, m := range merges {
			if (m.SrcLines[0]-srcStart)*(m.DestLine-destStart) < 0 {
				return true
			}
		}
		return false
	}

	var out []Candidate
	for _, u := range updates {
		if crosses(u.SrcStart, u.DestStart) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// mergeMoveAndCopy combines move and copy candidates into one list,
// dropping any copy candidate that exactly restates a move candidate's
// range (source start, destination start, and block length all equal),
// per spec.md §4.11's note on move/copy overlap.
func mergeMoveAndCopy(moves, copies []Candidate) []Candidate {
	out := append([]Candidate(nil), moves...)
	for _, c := range copies {
		dup := false
		for _, mv := range moves {
			if c.SrcStart == mv.SrcStart && c.DestStart == mv.DestStart && c.BlockLength == mv.BlockLength {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}
