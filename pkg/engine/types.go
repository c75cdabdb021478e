// Package engine implements BDiff's block-matching engine: the part of
// BDiff that turns a raw line-diff (hunks plus a keep/remove/insert trace)
// into a semantically rich edit script recognizing moves, copies, single
// line updates, splits and merges.
//
// The package is pure and synchronous. It performs no I/O and holds no
// state across calls: every exported entry point takes its inputs and
// returns its outputs, so distinct calls share no mutable data and may
// run concurrently on disjoint inputs without coordination.
package engine

import "fmt"

// Origin is where a non-kept line record comes from.
type Origin int

const (
	Kept Origin = iota
	Removed
	Inserted
)

func (o Origin) String() string {
	switch o {
	case Kept:
		return "kept"
	case Removed:
		return "removed"
	case Inserted:
		return "inserted"
	default:
		return "invalid"
	}
}

// Indent is the triple (effective_indent, space_count, tab_count) computed
// by ComputeIndent.
type Indent struct {
	Effective int
	Spaces    int
	Tabs      int
}

// Line is a single line record, keyed externally by its 1-indexed position
// within its side (source or destination).
type Line struct {
	Text   string // leading whitespace stripped, trailing newline removed
	Indent Indent
	Origin Origin
	HunkID int // >=1 for Removed/Inserted; 0 for Kept
}

// Hunk is a contiguous change region from the raw differ: a set of removed
// source line numbers and a set of inserted destination line numbers, each
// in ascending order. At least one side is non-empty.
type Hunk struct {
	RemovedSrc   []int
	InsertedDest []int
}

func (h Hunk) Empty() bool { return len(h.RemovedSrc) == 0 && len(h.InsertedDest) == 0 }

// Mode identifies the kind of a candidate block or edit record.
type Mode int

const (
	ModeMove Mode = iota
	ModeCopy
	ModeUpdate
	ModeInsert
	ModeDelete
	ModeSplit
	ModeMerge
	ModeCopyUpdate // c_update: intra-copy-block line update
	ModeMoveUpdate // m_update: intra-move-block line update
)

func (m Mode) String() string {
	switch m {
	case ModeMove:
		return "move"
	case ModeCopy:
		return "copy"
	case ModeUpdate:
		return "update"
	case ModeInsert:
		return "insert"
	case ModeDelete:
		return "delete"
	case ModeSplit:
		return "split"
	case ModeMerge:
		return "merge"
	case ModeCopyUpdate:
		return "c_update"
	case ModeMoveUpdate:
		return "m_update"
	default:
		return "invalid"
	}
}

// MoveType classifies a move candidate by the relative position of its
// source and destination hunks.
type MoveType int

const (
	MoveNone       MoveType = iota
	MoveHorizontal          // h: same hunk id
	MoveDown                // d: source hunk < dest hunk
	MoveUp                  // u: source hunk > dest hunk
)

func (t MoveType) String() string {
	switch t {
	case MoveHorizontal:
		return "h"
	case MoveDown:
		return "d"
	case MoveUp:
		return "u"
	default:
		return ""
	}
}

// CandidateState is the lifecycle tag of a Candidate during assignment.
// It replaces the teacher source's in-place string mutation (spec.md §9
// design note) with an explicit enum.
type CandidateState int

const (
	StateNone CandidateState = iota
	StateAssigned
	StateDeleted
	StateSliced
)

// LineUpdate is an (src_line, dest_line) pair with mismatched content
// inside a move or copy block.
type LineUpdate struct {
	SrcLine  int
	DestLine int
}

// Candidate is a candidate move/copy/update block, as described in
// spec.md §3.
type Candidate struct {
	Mode     Mode // ModeMove, ModeCopy, or ModeUpdate
	SrcStart int
	DestStart int
	BlockLength int

	IndentDiff int
	MoveType   MoveType

	Updates []LineUpdate

	ContextSimilarity float64
	RelativeDistance  float64
	EditActions       int
	Weight            float64

	State CandidateState

	// Row/column grouping keys assigned during assignment (spec.md §4.11).
	Row int
	Col int
}

// SrcEnd returns the exclusive end of the candidate's source range.
func (c Candidate) SrcEnd() int { return c.SrcStart + c.BlockLength }

// DestEnd returns the exclusive end of the candidate's destination range.
func (c Candidate) DestEnd() int { return c.DestStart + c.BlockLength }

// SplitRecord is a one-source-line-to-many-destination-lines match.
type SplitRecord struct {
	SrcLine   int
	DestLines []int
}

// MergeRecord is a many-source-lines-to-one-destination-line match.
type MergeRecord struct {
	SrcLines []int
	DestLine int
}

// StrDiffRange is an inclusive [Start, End] character range; when the
// corresponding side has no differing region, Empty is true and Start/End
// are zero.
type StrDiffRange struct {
	Start, End int
	Empty      bool
}

// StrDiff is the result of ComputeStrDiff: the differing regions of two
// lines of text, in absolute column coordinates.
type StrDiff struct {
	Src  StrDiffRange
	Dest StrDiffRange
}

// EditRecord is one emitted, typed edit operation (spec.md §6).
type EditRecord struct {
	Mode Mode

	SrcLine  int
	DestLine int

	BlockLength int // copy, move, split, merge

	IndentOffset int // copy, move, update
	MoveType     MoveType

	Updates []LineUpdate // copy, move

	StrDiff StrDiff // update, c_update, m_update

	EditAction string
}

func (e EditRecord) String() string {
	return fmt.Sprintf("%s(src=%d dest=%d len=%d): %s", e.Mode, e.SrcLine, e.DestLine, e.BlockLength, e.EditAction)
}
