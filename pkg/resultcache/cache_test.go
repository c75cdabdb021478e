package resultcache

import (
	"path/filepath"
	"testing"

	"github.com/bdiffgo/bdiff/pkg/bdiff"
	"github.com/bdiffgo/bdiff/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	bdb, err := bbolt.Open(filepath.Join(t.TempDir(), "cache.bolt"), 0o600, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, bdb.Close())
	})
	return &Cache{DB: bdb}
}

func TestFingerprintStable(t *testing.T) {
	opts := bdiff.DefaultOptions()

	fp1, err := Fingerprint("a\nb\n", "a\nc\n", opts)
	require.NoError(t, err)
	fp2, err := Fingerprint("a\nb\n", "a\nc\n", opts)
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)

	fp3, err := Fingerprint("a\nb\n", "a\nd\n", opts)
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)

	opts2 := opts
	opts2.DiffAlgorithm = "myers"
	fp4, err := Fingerprint("a\nb\n", "a\nc\n", opts2)
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp4)
}

func TestGetPutRoundTrip(t *testing.T) {
	c := newCache(t)

	_, hit, err := c.Get("missing")
	require.NoError(t, err)
	assert.False(t, hit)

	records := []engine.EditRecord{{Mode: engine.ModeUpdate, SrcLine: 1, DestLine: 1, EditAction: "update"}}
	require.NoError(t, c.Put("abc", records))

	entry, hit, err := c.Get("abc")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, records, entry.Records)
}

func TestRunMemoizes(t *testing.T) {
	c := newCache(t)
	opts := bdiff.DefaultOptions()

	srcFile := filepath.Join(t.TempDir(), "src.txt")
	destFile := filepath.Join(t.TempDir(), "dest.txt")

	records1, err := Run(c, srcFile, destFile, "a\nb\nc\n", "a\nx\nc\n", opts)
	require.NoError(t, err)

	fp, err := Fingerprint("a\nb\nc\n", "a\nx\nc\n", opts)
	require.NoError(t, err)
	entry, hit, err := c.Get(fp)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, records1, entry.Records)

	records2, err := Run(c, srcFile, destFile, "a\nb\nc\n", "a\nx\nc\n", opts)
	require.NoError(t, err)
	assert.Equal(t, records1, records2)
}

func TestArchiveRoundTrip(t *testing.T) {
	c := newCache(t)

	buf, err := c.GetArchive("missing")
	require.NoError(t, err)
	assert.Empty(t, buf)

	require.NoError(t, c.PutArchive("abc", []byte("some archive bytes")))
	buf, err = c.GetArchive("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("some archive bytes"), buf)
}

func TestAddAmountsAndCompare(t *testing.T) {
	type call struct {
		name   string
		d      UsageStat
		lim    UploadLimits
		result error
	}
	tt := []struct {
		name  string
		calls []call
	}{
		{
			"excess_calls",
			[]call{
				{"1.2.3.4", UsageStat{Period: "2026/30", NumBytes: 100, NumCalls: 1}, UploadLimits{MaxBytes: 1 << 30, MaxCalls: 1}, nil},
				{"1.2.3.4", UsageStat{Period: "2026/30", NumBytes: 100, NumCalls: 1}, UploadLimits{MaxBytes: 1 << 30, MaxCalls: 1}, ErrLimitsExceeded},
			},
		},
		{
			"excess_bytes",
			[]call{
				{"1.2.3.4", UsageStat{Period: "2026/30", NumBytes: 100, NumCalls: 1}, UploadLimits{MaxBytes: 190, MaxCalls: 10}, nil},
				{"1.2.3.4", UsageStat{Period: "2026/30", NumBytes: 100, NumCalls: 1}, UploadLimits{MaxBytes: 190, MaxCalls: 10}, ErrLimitsExceeded},
			},
		},
		{
			"period_rollover_resets",
			[]call{
				{"1.2.3.4", UsageStat{Period: "2026/30", NumBytes: 100, NumCalls: 1}, UploadLimits{MaxBytes: 1 << 30, MaxCalls: 1}, nil},
				{"1.2.3.4", UsageStat{Period: "2026/31", NumBytes: 100, NumCalls: 1}, UploadLimits{MaxBytes: 1 << 30, MaxCalls: 1}, nil},
				{"1.2.3.4", UsageStat{Period: "2026/31", NumBytes: 100, NumCalls: 1}, UploadLimits{MaxBytes: 1 << 30, MaxCalls: 1}, ErrLimitsExceeded},
			},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			c := newCache(t)
			for _, cal := range tc.calls {
				err := c.AddAmountsAndCompare(cal.name, cal.d, cal.lim)
				if cal.result == nil {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, cal.result)
				}
			}
		})
	}
}
