package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opsOf(originsAndText ...any) []RawOp {
	if len(originsAndText)%2 != 0 {
		panic("opsOf expects pairs")
	}
	ops := make([]RawOp, 0, len(originsAndText)/2)
	for i := 0; i < len(originsAndText); i += 2 {
		ops = append(ops, RawOp{Origin: originsAndText[i].(Origin), Text: originsAndText[i+1].(string)})
	}
	return ops
}

// TestBoundaryIdentical is boundary scenario 1: identical files yield no
// edit records at all.
func TestBoundaryIdentical(t *testing.T) {
	ops := opsOf(Kept, "a", Kept, "b")
	records := Run(ops, []string{"a", "b"}, []string{"a", "b"}, DefaultOptions())
	assert.Empty(t, records)
}

// TestBoundaryDelete is boundary scenario 2: a single deleted line in the
// middle of the file.
func TestBoundaryDelete(t *testing.T) {
	ops := opsOf(Kept, "a", Removed, "b", Kept, "c")
	records := Run(ops, []string{"a", "b", "c"}, []string{"a", "c"}, DefaultOptions())

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, ModeDelete, r.Mode)
	assert.Equal(t, 2, r.SrcLine)
	assert.Equal(t, 2, r.DestLine)
	assert.Equal(t, "Delete line 2", r.EditAction)
}

// TestBoundaryInsert is boundary scenario 3: a single inserted line at the
// end of the file.
func TestBoundaryInsert(t *testing.T) {
	ops := opsOf(Kept, "x", Inserted, "y")
	records := Run(ops, []string{"x"}, []string{"x", "y"}, DefaultOptions())

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, ModeInsert, r.Mode)
	assert.Equal(t, 2, r.DestLine)
	assert.Equal(t, 2, r.SrcLine)
	assert.Equal(t, "Insert line 2", r.EditAction)
}

// TestBoundaryMove is boundary scenario 4: a rotated pair of lines
// ("foo","bar") moving down past an untouched anchor ("baz").
func TestBoundaryMove(t *testing.T) {
	ops := opsOf(
		Removed, "foo",
		Removed, "bar",
		Kept, "baz",
		Inserted, "foo",
		Inserted, "bar",
	)
	opt := DefaultOptions()
	opt.MinMoveBlockLength = 2
	records := Run(ops, []string{"foo", "bar", "baz"}, []string{"baz", "foo", "bar"}, opt)

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, ModeMove, r.Mode)
	assert.Equal(t, 2, r.BlockLength)
	assert.Equal(t, 1, r.SrcLine)
	assert.Equal(t, 2, r.DestLine)
	assert.Equal(t, MoveDown, r.MoveType)
	assert.Equal(t, 0, r.IndentOffset)
	assert.Equal(t, "Move a 2-line block from line 1 to line 2", r.EditAction)
}

// TestBoundarySplit is boundary scenario 5: a single source line splitting
// into two destination lines.
func TestBoundarySplit(t *testing.T) {
	ops := opsOf(Removed, "hello world", Inserted, "hello", Inserted, "world")
	opt := DefaultOptions()
	opt.MaxSplitLines = 2
	records := Run(ops, []string{"hello world"}, []string{"hello", "world"}, opt)

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, ModeSplit, r.Mode)
	assert.Equal(t, 1, r.SrcLine)
	assert.Equal(t, 1, r.DestLine)
	assert.Equal(t, 2, r.BlockLength)
	assert.Equal(t, "Split line 1 to lines 1-2", r.EditAction)
}

// TestBoundaryUpdate is boundary scenario 6: a single-character change on
// one line, with default options.
func TestBoundaryUpdate(t *testing.T) {
	ops := opsOf(Kept, "int x=1;", Removed, "int x=2;", Inserted, "int x=3;")
	records := Run(ops, []string{"int x=1;", "int x=2;"}, []string{"int x=1;", "int x=3;"}, DefaultOptions())

	require.Len(t, records, 1)
	r := records[0]
	assert.Contains(t, []Mode{ModeUpdate, ModeCopyUpdate, ModeMoveUpdate}, r.Mode)
	assert.Equal(t, 2, r.SrcLine)
	assert.Equal(t, 2, r.DestLine)
}

// TestIdentityLaw is bdiff(X, X) = [] for a less trivial X than the
// boundary scenarios exercise.
func TestIdentityLaw(t *testing.T) {
	lines := []string{"package main", "", "func main() {}", ""}
	var ops []RawOp
	for _, l := range lines {
		ops = append(ops, RawOp{Origin: Kept, Text: l})
	}
	records := Run(ops, lines, lines, DefaultOptions())
	assert.Empty(t, records)
}

// TestIngestionIdempotence is the idempotence law: running the engine twice
// over the same ops/options yields a bit-identical script.
func TestIngestionIdempotence(t *testing.T) {
	ops := opsOf(Kept, "a", Removed, "b", Inserted, "x", Inserted, "y", Kept, "c")
	src := []string{"a", "b", "c"}
	dest := []string{"a", "x", "y", "c"}
	opt := DefaultOptions()

	r1 := Run(ops, src, dest, opt)
	r2 := Run(ops, src, dest, opt)
	assert.Equal(t, r1, r2)
}

// TestNoDuplicateLineOwnership is invariant 1/2/3: every non-kept source
// line and every inserted destination line is claimed by at most one
// primary record.
func TestNoDuplicateLineOwnership(t *testing.T) {
	ops := opsOf(
		Removed, "alpha",
		Removed, "beta",
		Kept, "gamma",
		Inserted, "alpha",
		Inserted, "beta",
		Removed, "delta",
		Inserted, "epsilon",
	)
	src := []string{"alpha", "beta", "gamma", "delta"}
	dest := []string{"gamma", "alpha", "beta", "epsilon"}
	opt := DefaultOptions()
	opt.MinMoveBlockLength = 2

	records := Run(ops, src, dest, opt)

	srcOwners := map[int]int{}
	destOwners := map[int]int{}
	for _, r := range records {
		switch r.Mode {
		case ModeMove, ModeCopy:
			for i := 0; i < r.BlockLength; i++ {
				srcOwners[r.SrcLine+i]++
				destOwners[r.DestLine+i]++
			}
		case ModeUpdate, ModeDelete:
			srcOwners[r.SrcLine]++
			if r.Mode == ModeUpdate {
				destOwners[r.DestLine]++
			}
		case ModeInsert:
			destOwners[r.DestLine]++
		}
	}
	for line, n := range srcOwners {
		assert.LessOrEqualf(t, n, 1, "src line %d claimed %d times", line, n)
	}
	for line, n := range destOwners {
		assert.LessOrEqualf(t, n, 1, "dest line %d claimed %d times", line, n)
	}
}

// TestInvariant4MoveIndentOffsetAndUpdateBounds is invariant 4: for a
// move record, indent_offset = dest_indent(dest_line) - src_indent(src_line),
// and every updates[i] line lies within [src_start, src_start+block_length).
func TestInvariant4MoveIndentOffsetAndUpdateBounds(t *testing.T) {
	ops := opsOf(
		Removed, "foo",
		Removed, "bar",
		Kept, "baz",
		Inserted, "  foo",
		Inserted, "  barz",
	)
	src := []string{"foo", "bar", "baz"}
	dest := []string{"baz", "  foo", "  barz"}
	opt := DefaultOptions()
	opt.MinMoveBlockLength = 2

	records := Run(ops, src, dest, opt)

	var move *EditRecord
	for i := range records {
		if records[i].Mode == ModeMove {
			move = &records[i]
		}
	}
	require.NotNil(t, move)

	// dest_indent("  foo") - src_indent("foo") = 2 - 0 = 2.
	assert.Equal(t, 2, move.IndentOffset)
	require.Len(t, move.Updates, 1)
	for _, u := range move.Updates {
		assert.GreaterOrEqual(t, u.SrcLine, move.SrcLine)
		assert.Less(t, u.SrcLine, move.SrcLine+move.BlockLength)
	}

	var moveUpdate *EditRecord
	for i := range records {
		if records[i].Mode == ModeMoveUpdate {
			moveUpdate = &records[i]
		}
	}
	require.NotNil(t, moveUpdate)
	assert.Equal(t, move.Updates[0].SrcLine, moveUpdate.SrcLine)
	assert.Equal(t, move.Updates[0].DestLine, moveUpdate.DestLine)
}

// TestInvariant5UpdateOnlyWhenStrippedContentsDiffer is invariant 5: update,
// c_update and m_update records are only ever emitted for line pairs whose
// stripped contents actually differ.
func TestInvariant5UpdateOnlyWhenStrippedContentsDiffer(t *testing.T) {
	strip := func(s string) string { return strings.TrimLeft(s, " \t") }

	t.Run("plain_update", func(t *testing.T) {
		src := []string{"int x=1;", "int x=2;"}
		dest := []string{"int x=1;", "int x=3;"}
		ops := opsOf(Kept, "int x=1;", Removed, "int x=2;", Inserted, "int x=3;")
		records := Run(ops, src, dest, DefaultOptions())

		for _, r := range records {
			if r.Mode == ModeUpdate || r.Mode == ModeCopyUpdate || r.Mode == ModeMoveUpdate {
				assert.NotEqual(t, strip(src[r.SrcLine-1]), strip(dest[r.DestLine-1]))
			}
		}
	})

	t.Run("move_with_one_unchanged_one_changed_line", func(t *testing.T) {
		src := []string{"foo", "bar", "baz"}
		dest := []string{"baz", "  foo", "  barz"}
		ops := opsOf(
			Removed, "foo",
			Removed, "bar",
			Kept, "baz",
			Inserted, "  foo",
			Inserted, "  barz",
		)
		opt := DefaultOptions()
		opt.MinMoveBlockLength = 2
		records := Run(ops, src, dest, opt)

		var sawMoveUpdate bool
		for _, r := range records {
			if r.Mode == ModeMoveUpdate {
				sawMoveUpdate = true
				assert.NotEqual(t, strip(src[r.SrcLine-1]), strip(dest[r.DestLine-1]))
			}
		}
		assert.True(t, sawMoveUpdate, "expected the changed line within the moved block to produce an m_update record")

		// the unchanged line within the moved block ("foo") must not appear
		// as the src_line of any update-kind record.
		for _, r := range records {
			if r.Mode == ModeUpdate || r.Mode == ModeCopyUpdate || r.Mode == ModeMoveUpdate {
				assert.NotEqual(t, 1, r.SrcLine, "unchanged line must not be reported as an update")
			}
		}
	})
}

// TestInvariant6NoHorizontalMoveWithZeroIndentOffset is invariant 6: no move
// candidate has move_type = h (horizontal, same hunk) and indent_offset = 0
// — but a horizontal move with a non-zero indent offset is a legitimate
// candidate, so the guard is indent-specific, not a blanket rejection of
// same-hunk moves.
func TestInvariant6NoHorizontalMoveWithZeroIndentOffset(t *testing.T) {
	opt := DefaultOptions()

	t.Run("same_indent_dropped", func(t *testing.T) {
		ops := opsOf(
			Kept, "a",
			Removed, "p",
			Removed, "x",
			Removed, "y",
			Inserted, "q",
			Inserted, "x",
			Inserted, "y",
			Kept, "b",
		)
		src, dest, trace, _ := BuildLineIndex(ops, opt.IndentTabsSize)
		srcAll := []string{"a", "p", "x", "y", "b"}
		destAll := []string{"a", "q", "x", "y", "b"}

		cands := FindMoveCandidates(src, dest, srcAll, destAll, trace, opt.MinMoveBlockLength, opt.PureMvBlockContainPunc, opt.CountMvBlockUpdate)
		// the only matching block here ("x","y" repeated verbatim in the
		// same hunk) clears the minimum block length but is horizontal with
		// zero indent offset, so it must be filtered out entirely.
		assert.Empty(t, cands)
	})

	t.Run("different_indent_survives", func(t *testing.T) {
		ops := opsOf(
			Kept, "a",
			Removed, "p",
			Removed, "x",
			Removed, "y",
			Inserted, "q",
			Inserted, "  x",
			Inserted, "  y",
			Kept, "b",
		)
		src, dest, trace, _ := BuildLineIndex(ops, opt.IndentTabsSize)
		srcAll := []string{"a", "p", "x", "y", "b"}
		destAll := []string{"a", "q", "  x", "  y", "b"}

		cands := FindMoveCandidates(src, dest, srcAll, destAll, trace, opt.MinMoveBlockLength, opt.PureMvBlockContainPunc, opt.CountMvBlockUpdate)
		require.NotEmpty(t, cands, "a horizontal move with a non-zero indent offset must still be a valid candidate")
		found := false
		for _, c := range cands {
			if c.MoveType == MoveHorizontal && c.IndentDiff == 2 {
				found = true
			}
		}
		assert.True(t, found)
	})
}

// TestInvariant7CopyCrossesHunkBoundary is invariant 7: every copy has at
// least one side that crosses a hunk boundary — copyBlockInHunk rejects any
// candidate whose source and destination ranges are both fully contained
// within a single hunk's own removed/inserted line sets.
func TestInvariant7CopyCrossesHunkBoundary(t *testing.T) {
	hunks := []Hunk{
		{RemovedSrc: []int{1, 2}, InsertedDest: []int{5, 6}},
		{RemovedSrc: []int{10, 11}, InsertedDest: []int{20, 21}},
	}

	tt := []struct {
		name                   string
		srcStart, destStart, n int
		wantInHunk             bool
	}{
		{"fully_inside_first_hunk", 1, 5, 2, true},
		{"fully_inside_second_hunk", 10, 20, 2, true},
		{"crosses_dest_outside_any_hunk", 1, 50, 2, false},
		{"crosses_src_outside_any_hunk", 50, 5, 2, false},
		{"spans_both_hunks", 1, 20, 2, false},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := copyBlockInHunk(tc.srcStart, tc.destStart, tc.n, hunks)
			assert.Equal(t, tc.wantInHunk, got)
		})
	}

	// end-to-end: a genuine repeated block whose copy range sits entirely
	// within a single hunk's own change is never emitted as a ModeCopy
	// record — it is just that hunk restating itself, not a copy.
	t.Run("end_to_end_rejects_in_hunk_restatement", func(t *testing.T) {
		ops := opsOf(
			Removed, "same",
			Removed, "same",
			Inserted, "same",
			Inserted, "same",
		)
		records := Run(ops, []string{"same", "same"}, []string{"same", "same"}, DefaultOptions())
		for _, r := range records {
			assert.NotEqual(t, ModeCopy, r.Mode)
		}
	})
}

// TestSplitMergeSymmetryLaw is the split/merge symmetry law: bdiff(A, B)
// containing split(s, [d1...dn]) implies bdiff(B, A) on the mirrored pair
// contains merge([d1...dn], s), modulo numbering.
func TestSplitMergeSymmetryLaw(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxSplitLines = 2
	opt.MaxMergeLines = 2

	// A -> B: "hello world" splits into "hello"/"world".
	forwardOps := opsOf(Removed, "hello world", Inserted, "hello", Inserted, "world")
	forward := Run(forwardOps, []string{"hello world"}, []string{"hello", "world"}, opt)

	var split *EditRecord
	for i := range forward {
		if forward[i].Mode == ModeSplit {
			split = &forward[i]
		}
	}
	require.NotNil(t, split)
	assert.Equal(t, 1, split.SrcLine)
	assert.Equal(t, 1, split.DestLine)
	assert.Equal(t, 2, split.BlockLength)

	// B -> A: "hello"/"world" merge back into "hello world".
	backwardOps := opsOf(Removed, "hello", Removed, "world", Inserted, "hello world")
	backward := Run(backwardOps, []string{"hello", "world"}, []string{"hello world"}, opt)

	var merge *EditRecord
	for i := range backward {
		if backward[i].Mode == ModeMerge {
			merge = &backward[i]
		}
	}
	require.NotNil(t, merge)
	// same numbering as the forward split's dest_lines/src_line, mirrored.
	assert.Equal(t, split.DestLine, merge.SrcLine)
	assert.Equal(t, split.SrcLine, merge.DestLine)
	assert.Equal(t, split.BlockLength, merge.BlockLength)
}
