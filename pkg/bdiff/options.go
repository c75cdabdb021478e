package bdiff

import (
	"fmt"

	"github.com/bdiffgo/bdiff/pkg/engine"
	"github.com/bdiffgo/bdiff/pkg/rawdiff"
	"go.uber.org/multierr"
)

// Options is the full option table of spec.md §6. DiffAlgorithm selects
// the raw differ; every other field tunes pkg/engine and is passed
// through to engine.Options unchanged.
type Options struct {
	DiffAlgorithm rawdiff.Algorithm

	IndentTabsSize int

	MinMoveBlockLength int
	MinCopyBlockLength int

	CtxLength     int
	LineSimWeight float64
	SimThreshold  float64

	MaxMergeLines int
	MaxSplitLines int

	PureMvBlockContainPunc bool
	PureCpBlockContainPunc bool

	CountMvBlockUpdate bool
	CountCpBlockUpdate bool

	IdentifyMove   bool
	IdentifyCopy   bool
	IdentifyUpdate bool
	IdentifySplit  bool
	IdentifyMerge  bool
}

// DefaultOptions returns the defaults from spec.md §6's option table.
func DefaultOptions() Options {
	eng := engine.DefaultOptions()
	return Options{
		DiffAlgorithm:          rawdiff.Histogram,
		IndentTabsSize:         eng.IndentTabsSize,
		MinMoveBlockLength:     eng.MinMoveBlockLength,
		MinCopyBlockLength:     eng.MinCopyBlockLength,
		CtxLength:              eng.CtxLength,
		LineSimWeight:          eng.LineSimWeight,
		SimThreshold:           eng.SimThreshold,
		MaxMergeLines:          eng.MaxMergeLines,
		MaxSplitLines:          eng.MaxSplitLines,
		PureMvBlockContainPunc: eng.PureMvBlockContainPunc,
		PureCpBlockContainPunc: eng.PureCpBlockContainPunc,
		CountMvBlockUpdate:     eng.CountMvBlockUpdate,
		CountCpBlockUpdate:     eng.CountCpBlockUpdate,
		IdentifyMove:           eng.IdentifyMove,
		IdentifyCopy:           eng.IdentifyCopy,
		IdentifyUpdate:         eng.IdentifyUpdate,
		IdentifySplit:          eng.IdentifySplit,
		IdentifyMerge:          eng.IdentifyMerge,
	}
}

// engineOptions projects Options down to the subset pkg/engine consumes.
func (o Options) engineOptions() engine.Options {
	return engine.Options{
		IndentTabsSize:         o.IndentTabsSize,
		MinMoveBlockLength:     o.MinMoveBlockLength,
		MinCopyBlockLength:     o.MinCopyBlockLength,
		CtxLength:              o.CtxLength,
		LineSimWeight:          o.LineSimWeight,
		SimThreshold:           o.SimThreshold,
		MaxMergeLines:          o.MaxMergeLines,
		MaxSplitLines:          o.MaxSplitLines,
		PureMvBlockContainPunc: o.PureMvBlockContainPunc,
		PureCpBlockContainPunc: o.PureCpBlockContainPunc,
		CountMvBlockUpdate:     o.CountMvBlockUpdate,
		CountCpBlockUpdate:     o.CountCpBlockUpdate,
		IdentifyMove:           o.IdentifyMove,
		IdentifyCopy:           o.IdentifyCopy,
		IdentifyUpdate:         o.IdentifyUpdate,
		IdentifySplit:          o.IdentifySplit,
		IdentifyMerge:          o.IdentifyMerge,
	}
}

// validate aggregates every independent option-validation failure with
// multierr, the same way the teacher's storage.go combines independent
// cleanup errors, rather than stopping at the first bad field.
func (o Options) validate() error {
	var err error
	if o.DiffAlgorithm != rawdiff.Histogram && o.DiffAlgorithm != rawdiff.Myers {
		err = multierr.Append(err, fmt.Errorf("diff_algorithm: unknown algorithm %q", o.DiffAlgorithm))
	}
	if o.IndentTabsSize < 0 {
		err = multierr.Append(err, fmt.Errorf("indent_tabs_size: must be >= 0, got %d", o.IndentTabsSize))
	}
	if o.MinMoveBlockLength < 1 {
		err = multierr.Append(err, fmt.Errorf("min_move_block_length: must be >= 1, got %d", o.MinMoveBlockLength))
	}
	if o.MinCopyBlockLength < 1 {
		err = multierr.Append(err, fmt.Errorf("min_copy_block_length: must be >= 1, got %d", o.MinCopyBlockLength))
	}
	if o.CtxLength < 0 {
		err = multierr.Append(err, fmt.Errorf("ctx_length: must be >= 0, got %d", o.CtxLength))
	}
	if o.LineSimWeight < 0 || o.LineSimWeight > 1 {
		err = multierr.Append(err, fmt.Errorf("line_sim_weight: must be in [0,1], got %v", o.LineSimWeight))
	}
	if o.SimThreshold < 0 || o.SimThreshold > 1 {
		err = multierr.Append(err, fmt.Errorf("sim_threshold: must be in [0,1], got %v", o.SimThreshold))
	}
	if o.MaxMergeLines < 1 {
		err = multierr.Append(err, fmt.Errorf("max_merge_lines: must be >= 1, got %d", o.MaxMergeLines))
	}
	if o.MaxSplitLines < 1 {
		err = multierr.Append(err, fmt.Errorf("max_split_lines: must be >= 1, got %d", o.MaxSplitLines))
	}
	return err
}
