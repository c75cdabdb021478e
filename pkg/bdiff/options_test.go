package bdiff

import (
	"testing"

	"github.com/bdiffgo/bdiff/pkg/rawdiff"
	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func TestDefaultOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().validate())
}

func TestValidateAggregatesAllFailures(t *testing.T) {
	opts := DefaultOptions()
	opts.DiffAlgorithm = "bogus"
	opts.MinMoveBlockLength = 0
	opts.MinCopyBlockLength = 0
	opts.SimThreshold = 2
	opts.MaxMergeLines = 0
	opts.MaxSplitLines = 0

	err := opts.validate()
	assert.Error(t, err)
	// every independent failure must survive, not just the first.
	assert.Equal(t, 6, len(multierr.Errors(err)))
}

func TestValidateSingleField(t *testing.T) {
	tt := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"unknown_algorithm", func(o *Options) { o.DiffAlgorithm = rawdiff.Algorithm("nope") }, true},
		{"negative_indent_tabs", func(o *Options) { o.IndentTabsSize = -1 }, true},
		{"negative_ctx_length", func(o *Options) { o.CtxLength = -1 }, true},
		{"line_sim_weight_too_high", func(o *Options) { o.LineSimWeight = 1.5 }, true},
		{"line_sim_weight_negative", func(o *Options) { o.LineSimWeight = -0.1 }, true},
		{"valid_myers", func(o *Options) { o.DiffAlgorithm = rawdiff.Myers }, false},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			err := opts.validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
