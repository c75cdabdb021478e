package engine

// Options holds every tuning knob of the block-matching engine itself —
// everything in spec.md §6's option table except diff_algorithm, which
// selects the raw differ and therefore lives one layer up, in
// pkg/bdiff.Options.
type Options struct {
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
	return Options{
		IndentTabsSize:         4,
		MinMoveBlockLength:     2,
		MinCopyBlockLength:     2,
		CtxLength:              4,
		LineSimWeight:          0.6,
		SimThreshold:           0.5,
		MaxMergeLines:          8,
		MaxSplitLines:          8,
		PureMvBlockContainPunc: false,
		PureCpBlockContainPunc: false,
		CountMvBlockUpdate:     true,
		CountCpBlockUpdate:     true,
		IdentifyMove:           true,
		IdentifyCopy:           true,
		IdentifyUpdate:         true,
		IdentifySplit:          true,
		IdentifyMerge:          true,
	}
}
