package engine

import "sort"

// containPuncFor selects the contain-punctuation option relevant to a
// candidate's mode: only move and copy blocks can exclude punctuation-only
// lines from their effective length (spec.md §4.7/§4.8); updates never do.
func containPuncFor(mode Mode, pureMvBlockContainPunc, pureCpBlockContainPunc bool) bool {
	switch mode {
	case ModeMove:
		return pureMvBlockContainPunc
	case ModeCopy:
		return pureCpBlockContainPunc
	default:
		return true
	}
}

func meetsMinLength(mode Mode, pureLength, minMoveBlockLength, minCopyBlockLength int) bool {
	switch mode {
	case ModeMove:
		return pureLength >= minMoveBlockLength
	case ModeCopy:
		return pureLength >= minCopyBlockLength
	default:
		return false
	}
}

// AssignOptions bundles the tuning knobs §4.11's slicing arithmetic needs
// (a subset of Options, passed explicitly to keep this file's functions
// independent of the Options type).
type AssignOptions struct {
	MinMoveBlockLength     int
	MinCopyBlockLength     int
	PureMvBlockContainPunc bool
	PureCpBlockContainPunc bool
}

func finalEditActionsBase(mode Mode) int {
	switch mode {
	case ModeUpdate:
		return 1
	case ModeMove:
		return 2
	default:
		return 3
	}
}

func indentEditBonus(c Candidate) int {
	if c.IndentDiff != 0 && c.Mode == ModeCopy {
		return 1
	}
	if c.IndentDiff != 0 && c.Mode == ModeMove && c.MoveType != MoveHorizontal {
		return 1
	}
	return 0
}

// trySrcUpSlice slices the portion of mapping2 strictly before boundary's
// source start, when mapping2's source range extends before (and into)
// boundary's, per spec.md §4.11's row-axis up-slice.
func trySrcUpSlice(mapping2, boundary Candidate, srcAll, destAll []string, opt AssignOptions, editBase int) (Candidate, bool) {
	upOffset := boundary.SrcStart - mapping2.SrcStart
	pure := PureBlockLen(upOffset, mapping2.SrcStart, srcAll, mapping2.DestStart, destAll, containPuncFor(mapping2.Mode, opt.PureMvBlockContainPunc, opt.PureCpBlockContainPunc))

	editActions := editBase + indentEditBonus(mapping2)
	var updates []LineUpdate
	for _, ud := range mapping2.Updates {
		if ud.SrcLine >= mapping2.SrcStart && ud.SrcLine < boundary.SrcStart {
			updates = append(updates, ud)
			editActions++
		}
	}

	if !meetsMinLength(mapping2.Mode, pure, opt.MinMoveBlockLength, opt.MinCopyBlockLength) {
		return Candidate{}, false
	}

	ctxSim := ContextSimilarity(mapping2.SrcStart, mapping2.DestStart, upOffset, srcAll, destAll)
	weight := float64(editActions)/float64(upOffset) + (1-ctxSim)/10 + mapping2.RelativeDistance/100

	return Candidate{
		Mode: mapping2.Mode, SrcStart: mapping2.SrcStart, DestStart: mapping2.DestStart,
		BlockLength: upOffset, IndentDiff: mapping2.IndentDiff, MoveType: mapping2.MoveType,
		Updates: updates, ContextSimilarity: ctxSim, RelativeDistance: mapping2.RelativeDistance,
		EditActions: editActions, Weight: weight, Row: mapping2.Row, Col: mapping2.Col, State: StateNone,
	}, true
}

// trySrcDownSlice slices the portion of mapping2 strictly after boundary's
// source end, per spec.md §4.11's row-axis down-slice.
func trySrcDownSlice(mapping2, boundary Candidate, srcAll, destAll []string, opt AssignOptions, editBase int) (Candidate, bool) {
	downOffset := (mapping2.SrcStart + mapping2.BlockLength) - (boundary.SrcStart + boundary.BlockLength)
	newSrcStart := boundary.SrcStart + boundary.BlockLength
	newDestStart := mapping2.DestStart + (boundary.SrcStart + boundary.BlockLength - mapping2.SrcStart)

	pure := PureBlockLen(downOffset, newSrcStart, srcAll, newDestStart, destAll, containPuncFor(mapping2.Mode, opt.PureMvBlockContainPunc, opt.PureCpBlockContainPunc))

	editActions := editBase + indentEditBonus(mapping2)
	var updates []LineUpdate
	for _, ud := range mapping2.Updates {
		if ud.SrcLine >= newSrcStart && ud.SrcLine < newSrcStart+downOffset {
			updates = append(updates, ud)
			editActions++
		}
	}

	if !meetsMinLength(mapping2.Mode, pure, opt.MinMoveBlockLength, opt.MinCopyBlockLength) {
		return Candidate{}, false
	}

	ctxSim := ContextSimilarity(newSrcStart, newDestStart, downOffset, srcAll, destAll)
	weight := float64(editActions)/float64(downOffset) + (1-ctxSim)/10 + mapping2.RelativeDistance/100

	return Candidate{
		Mode: mapping2.Mode, SrcStart: newSrcStart, DestStart: newDestStart,
		BlockLength: downOffset, IndentDiff: mapping2.IndentDiff, MoveType: mapping2.MoveType,
		Updates: updates, ContextSimilarity: ctxSim, RelativeDistance: mapping2.RelativeDistance,
		EditActions: editActions, Weight: weight, Row: mapping2.Row, Col: mapping2.Col, State: StateNone,
	}, true
}

// tryDestUpSlice is trySrcUpSlice's mirror on the destination axis, used
// in the column-axis conflict-resolution pass (spec.md §4.11).
func tryDestUpSlice(remain, boundary Candidate, srcAll, destAll []string, opt AssignOptions, editBase int) (Candidate, bool) {
	upOffset := boundary.DestStart - remain.DestStart
	pure := PureBlockLen(upOffset, remain.SrcStart, srcAll, remain.DestStart, destAll, containPuncFor(remain.Mode, opt.PureMvBlockContainPunc, opt.PureCpBlockContainPunc))

	editActions := editBase + indentEditBonus(remain)
	var updates []LineUpdate
	for _, ud := range remain.Updates {
		if ud.DestLine >= remain.DestStart && ud.DestLine < boundary.DestStart {
			updates = append(updates, ud)
			editActions++
		}
	}

	if !meetsMinLength(remain.Mode, pure, opt.MinMoveBlockLength, opt.MinCopyBlockLength) {
		return Candidate{}, false
	}

	ctxSim := ContextSimilarity(remain.SrcStart, remain.DestStart, upOffset, srcAll, destAll)
	weight := float64(editActions)/float64(upOffset) + (1-ctxSim)/10 + remain.RelativeDistance/100

	return Candidate{
		Mode: remain.Mode, SrcStart: remain.SrcStart, DestStart: remain.DestStart,
		BlockLength: upOffset, IndentDiff: remain.IndentDiff, MoveType: remain.MoveType,
		Updates: updates, ContextSimilarity: ctxSim, RelativeDistance: remain.RelativeDistance,
		EditActions: editActions, Weight: weight, Row: remain.Row, Col: remain.Col, State: StateNone,
	}, true
}

func tryDestDownSlice(remain, boundary Candidate, srcAll, destAll []string, opt AssignOptions, editBase int) (Candidate, bool) {
	downOffset := (remain.DestStart + remain.BlockLength) - (boundary.DestStart + boundary.BlockLength)
	newSrcStart := remain.SrcStart + boundary.DestStart + boundary.BlockLength - remain.DestStart
	newDestStart := boundary.DestStart + boundary.BlockLength

	pure := PureBlockLen(downOffset, newSrcStart, srcAll, newDestStart, destAll, containPuncFor(remain.Mode, opt.PureMvBlockContainPunc, opt.PureCpBlockContainPunc))

	editActions := editBase + indentEditBonus(remain)
	var updates []LineUpdate
	for _, ud := range remain.Updates {
		if ud.DestLine >= newDestStart && ud.DestLine < newDestStart+downOffset {
			updates = append(updates, ud)
			editActions++
		}
	}

	if !meetsMinLength(remain.Mode, pure, opt.MinMoveBlockLength, opt.MinCopyBlockLength) {
		return Candidate{}, false
	}

	ctxSim := ContextSimilarity(newSrcStart, newDestStart, downOffset, srcAll, destAll)
	weight := float64(editActions)/float64(downOffset) + (1-ctxSim)/10 + remain.RelativeDistance/100

	return Candidate{
		Mode: remain.Mode, SrcStart: newSrcStart, DestStart: newDestStart,
		BlockLength: downOffset, IndentDiff: remain.IndentDiff, MoveType: remain.MoveType,
		Updates: updates, ContextSimilarity: ctxSim, RelativeDistance: remain.RelativeDistance,
		EditActions: editActions, Weight: weight, Row: remain.Row, Col: remain.Col, State: StateNone,
	}, true
}

// groupByRange assigns each candidate's Row or Col field to a group index
// by greedily joining any earlier-created group whose range overlaps its
// own, per spec.md §4.11. Candidates are visited in the order given, which
// callers must have already sorted by the relevant start coordinate.
// skipCopy excludes Copy-mode candidates from ever joining an existing
// group (every copy candidate gets its own singleton group), matching the
// source-axis grouping pass; the destination-axis pass passes skipCopy=false.
func groupByRange(cands []*Candidate, start func(*Candidate) int, skipCopy bool, setGroup func(*Candidate, int)) {
	var groupStarts, groupEnds []int
	var groupHasCopy []bool
	for _, c := range cands {
		cStart := start(c)
		cEnd := cStart + c.BlockLength - 1
		joined := -1
		if !(skipCopy && c.Mode == ModeCopy) {
			for gi := range groupStarts {
				if !(skipCopy && groupHasCopy[gi]) && !(cEnd < groupStarts[gi] || cStart > groupEnds[gi]) {
					joined = gi
					break
				}
			}
		}
		if joined >= 0 {
			if cStart < groupStarts[joined] {
				groupStarts[joined] = cStart
			}
			if cEnd > groupEnds[joined] {
				groupEnds[joined] = cEnd
			}
			setGroup(c, joined)
		} else {
			groupStarts = append(groupStarts, cStart)
			groupEnds = append(groupEnds, cEnd)
			groupHasCopy = append(groupHasCopy, c.Mode == ModeCopy)
			setGroup(c, len(groupStarts)-1)
		}
	}
}

// runAssignment is Assign's per-axis grouping step, used identically for
// the source axis (Row) and the destination axis (Col) (spec.md §4.11);
// the cost-matrix solve happens afterwards, in assignOnce.
func runAssignment(all []*Candidate, srcAxis bool) {
	sorted := append([]*Candidate(nil), all...)
	if srcAxis {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SrcStart < sorted[j].SrcStart })
	} else {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DestStart < sorted[j].DestStart })
	}

	start := func(c *Candidate) int {
		if srcAxis {
			return c.SrcStart
		}
		return c.DestStart
	}
	setGroup := func(c *Candidate, g int) {
		if srcAxis {
			c.Row = g
		} else {
			c.Col = g
		}
	}
	groupByRange(sorted, start, srcAxis, setGroup)
}

// Assign runs the full conflict-resolution pass over a set of candidate
// move, copy and update blocks, per spec.md §4.11 ("km_compute"): a dense
// Kuhn-Munkres assignment over source-range groups (rows) and
// destination-range groups (columns), followed by two rounds of slicing
// survivors of a winning assignment around its boundary, iterating on the
// residual set until it is empty (spec.md §4.11: "call the assignment
// again with the residual set ... stop when residuals are empty"). It
// returns every winning candidate across all iterations.
func Assign(candidates []Candidate, srcAllLines, destAllLines []string, opt AssignOptions) []Candidate {
	var allMatches []Candidate
	current := candidates

	for len(current) > 0 {
		matches, residuals := assignOnce(current, srcAllLines, destAllLines, opt)
		if len(matches) == 0 {
			break
		}
		allMatches = append(allMatches, matches...)
		current = residuals
	}

	return allMatches
}

// assignOnce runs one round of row/column grouping, dense Kuhn-Munkres
// assignment, and loser slicing, per spec.md §4.11.
func assignOnce(candidates []Candidate, srcAllLines, destAllLines []string, opt AssignOptions) (matches, residuals []Candidate) {
	if len(candidates) == 0 {
		return nil, nil
	}

	ptrs := make([]*Candidate, len(candidates))
	for i := range candidates {
		ptrs[i] = &candidates[i]
	}

	runAssignment(ptrs, true)  // assigns Row (source-range group)
	runAssignment(ptrs, false) // assigns Col (destination-range group)

	numRows, numCols := 0, 0
	for _, c := range ptrs {
		if c.Row+1 > numRows {
			numRows = c.Row + 1
		}
		if c.Col+1 > numCols {
			numCols = c.Col + 1
		}
	}
	if numRows == 0 || numCols == 0 {
		return nil, nil
	}

	const sentinel = 1000.0
	cost := make([][]float64, numRows)
	for i := range cost {
		cost[i] = make([]float64, numCols)
		for j := range cost[i] {
			cost[i][j] = sentinel
		}
	}
	for _, c := range ptrs {
		if c.Weight < cost[c.Row][c.Col] {
			cost[c.Row][c.Col] = c.Weight
		}
	}

	colOfRow := hungarianAssign(cost)

	var kmMatches []*Candidate
	maxWeight := float64(len(srcAllLines)) * 2

	for row, col := range colOfRow {
		if col < 0 {
			continue
		}
		best := -1
		bestWeight := maxWeight
		for idx, c := range ptrs {
			if c.State == StateNone && c.Row == row && c.Col == col && c.Weight < bestWeight {
				bestWeight = c.Weight
				best = idx
			}
		}
		if best < 0 {
			continue
		}
		ptrs[best].State = StateAssigned
		kmMatches = append(kmMatches, ptrs[best])
	}

	if len(kmMatches) == 0 {
		return nil, nil
	}

	// Row-axis pass: every other candidate sharing a winner's source-range
	// group is deleted, sliced, or survives unchanged against that winner.
	var rowResidual []Candidate
	for _, winner := range kmMatches {
		for _, loser := range ptrs {
			if loser.State != StateNone || loser.Row != winner.Row {
				continue
			}
			sliceAgainst(loser, winner, loser.SrcStart, loser.BlockLength, winner.SrcStart, winner.BlockLength,
				srcAllLines, destAllLines, opt, trySrcUpSlice, trySrcDownSlice, &rowResidual)
		}
	}

	// Column-axis pass: every other still-unresolved candidate sharing a
	// winner's destination-range group is resolved symmetrically against
	// the winner's destination range.
	var colResidual []Candidate
	for _, winner := range kmMatches {
		for _, loser := range ptrs {
			if loser.State != StateNone || loser.Col != winner.Col {
				continue
			}
			sliceAgainst(loser, winner, loser.DestStart, loser.BlockLength, winner.DestStart, winner.BlockLength,
				srcAllLines, destAllLines, opt, tryDestUpSlice, tryDestDownSlice, &colResidual)
		}
	}

	result := make([]Candidate, len(kmMatches))
	for i, m := range kmMatches {
		result[i] = *m
	}

	residual := append(rowResidual, colResidual...)

	// Any candidate whose row/column group never produced a winner this
	// round (e.g. the Hungarian solver paired its group with an empty
	// sentinel cell) carries over untouched, so it gets another chance at
	// a later iteration once the winning set shrinks.
	for _, c := range ptrs {
		if c.State == StateNone {
			residual = append(residual, *c)
		}
	}

	return result, residual
}

type sliceFn func(loser, boundary Candidate, srcAll, destAll []string, opt AssignOptions, editBase int) (Candidate, bool)

// sliceAgainst classifies loser's overlap against winner along a shared
// axis (source range for the row pass, destination range for the column
// pass) and appends whatever survives to *out: deleted on equal/inner,
// unchanged on disjoint, one or two residual slices on cover/up/down. All
// residuals use edit_actions baseline u=1, r=2, k=3 (spec.md §4.11).
func sliceAgainst(loser, winner *Candidate, loserStart, loserLen, winnerStart, winnerLen int,
	srcAll, destAll []string, opt AssignOptions, up, down sliceFn, out *[]Candidate) {

	overlap := JudgeOverlapType(winnerStart, winnerLen, loserStart, loserLen)
	base := finalEditActionsBase(loser.Mode)

	switch overlap {
	case OverlapEqual, OverlapInner:
		loser.State = StateDeleted
	case OverlapNone:
		loser.State = StateSliced
		*out = append(*out, *loser)
	case OverlapCover:
		loser.State = StateSliced
		if u, ok := up(*loser, *winner, srcAll, destAll, opt, base); ok {
			*out = append(*out, u)
		}
		if d, ok := down(*loser, *winner, srcAll, destAll, opt, base); ok {
			*out = append(*out, d)
		}
	case OverlapUp:
		loser.State = StateSliced
		if u, ok := up(*loser, *winner, srcAll, destAll, opt, base); ok {
			*out = append(*out, u)
		}
	case OverlapDown:
		loser.State = StateSliced
		if d, ok := down(*loser, *winner, srcAll, destAll, opt, base); ok {
			*out = append(*out, d)
		}
	}
}
