// Package resultcache is an optional bbolt-backed memoization layer in
// front of bdiff.Run, keyed by a content fingerprint of the two texts and
// the options used to diff them. It is pure ambient plumbing: nothing in
// pkg/engine or pkg/bdiff depends on it, matching spec.md §5's rule that
// the engine itself stays synchronous and I/O-free.
//
// Ported from the teacher's pkg/db bucket-management idiom (single
// *bbolt.DB, lazy sync.Once init, one bucket per concern), repurposed
// from storing uploaded files to storing edit scripts.
package resultcache

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bdiffgo/bdiff/pkg/bdiff"
	"github.com/bdiffgo/bdiff/pkg/engine"
	"github.com/bdiffgo/bdiff/pkg/rawdiff"
	"github.com/thehowl/cford32"
	"go.etcd.io/bbolt"
)

// Cache is a thin wrapper around a Bolt database, centralizing every
// function that touches it.
type Cache struct {
	DB *bbolt.DB

	err  error
	once sync.Once
}

var (
	bResults  = []byte("results")
	bStats    = []byte("stats")
	bArchives = []byte("archives")

	buckets = [...][]byte{
		bResults,
		bStats,
		bArchives,
	}
)

func (c *Cache) init() error {
	c.once.Do(c._init)
	return c.err
}

func (c *Cache) _init() {
	err := c.DB.Update(func(tx *bbolt.Tx) error {
		for _, buck := range buckets {
			if _, err := tx.CreateBucketIfNotExists(buck); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.err = fmt.Errorf("resultcache: initialization error: %w", err)
	}
}

// Entry is what's actually stored in the results bucket: the edit script
// plus when it was computed, so callers can evict or report staleness.
type Entry struct {
	CreatedAt time.Time           `json:"created_at"`
	Records   []engine.EditRecord `json:"records"`
}

// Fingerprint returns the cford32-encoded SHA-256 of the two texts and
// the options used to diff them — the same ID scheme the teacher uses
// for content-addressable upload IDs in pkg/http/upload.go, applied here
// to a (src, dest, Options) triple instead of a single uploaded archive.
func Fingerprint(srcText, destText string, opts bdiff.Options) (string, error) {
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("resultcache: encoding options: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(srcText))
	h.Write([]byte{0}) // separator: texts could otherwise collide across a shifted boundary
	h.Write([]byte(destText))
	h.Write([]byte{0})
	h.Write(optsJSON)

	return cford32.EncodeToStringLower(h.Sum(nil)), nil
}

// Get looks up a previously cached entry. The zero Entry and false are
// returned on a cache miss; errors are reserved for actual Bolt/decode
// failures.
func (c *Cache) Get(fingerprint string) (Entry, bool, error) {
	if err := c.init(); err != nil {
		return Entry{}, false, err
	}

	var buf []byte
	err := c.DB.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bResults).Get([]byte(fingerprint))
		buf = append(buf, data...)
		return nil
	})
	if err != nil || len(buf) == 0 {
		return Entry{}, false, err
	}

	var e Entry
	if err := json.Unmarshal(buf, &e); err != nil {
		return Entry{}, false, fmt.Errorf("resultcache: decoding cached entry: %w", err)
	}
	return e, true, nil
}

// Put stores an edit script under fingerprint, overwriting any prior
// entry.
func (c *Cache) Put(fingerprint string, records []engine.EditRecord) error {
	if err := c.init(); err != nil {
		return err
	}

	encoded, err := json.Marshal(Entry{CreatedAt: time.Now(), Records: records})
	if err != nil {
		return fmt.Errorf("resultcache: encoding entry: %w", err)
	}

	return c.DB.Batch(func(tx *bbolt.Tx) error {
		return tx.Bucket(bResults).Put([]byte(fingerprint), encoded)
	})
}

// Run memoizes bdiff.Run: on a cache hit for (srcText, destText, opts) it
// returns the stored edit script without invoking the raw differ or the
// engine again; on a miss it runs bdiff.Run and stores the result before
// returning it.
func Run(c *Cache, srcPath, destPath, srcText, destText string, opts bdiff.Options) ([]engine.EditRecord, error) {
	fp, err := Fingerprint(srcText, destText, opts)
	if err != nil {
		return nil, err
	}

	if entry, hit, err := c.Get(fp); err != nil {
		return nil, err
	} else if hit {
		return entry.Records, nil
	}

	records, err := bdiff.Run(srcPath, destPath, rawdiff.SplitLines(srcText), rawdiff.SplitLines(destText), opts)
	if err != nil {
		return nil, err
	}

	if err := c.Put(fp, records); err != nil {
		return nil, err
	}
	return records, nil
}

// PutArchive stores the raw bytes pkg/httpapi's upload handler built
// (a tar.gz of the two original files) under fingerprint, so a later
// request for the same id can serve the originals back unchanged.
func (c *Cache) PutArchive(fingerprint string, archive []byte) error {
	if err := c.init(); err != nil {
		return err
	}
	return c.DB.Batch(func(tx *bbolt.Tx) error {
		return tx.Bucket(bArchives).Put([]byte(fingerprint), archive)
	})
}

// GetArchive returns the archive stored by PutArchive, or nil if none
// exists for fingerprint.
func (c *Cache) GetArchive(fingerprint string) ([]byte, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	var buf []byte
	err := c.DB.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bArchives).Get([]byte(fingerprint))
		buf = append(buf, data...)
		return nil
	})
	return buf, err
}

// UsageStat and UploadLimits track and bound how much a single caller
// (keyed by remote address in pkg/httpapi) diffs through the server
// within one period — ported from the teacher's own pkg/db per-week
// upload quota, which solves the identical problem of an unauthenticated
// public endpoint needing some notion of fair use.
type UsageStat struct {
	Period   string `json:"p"`
	NumBytes uint64 `json:"nb"`
	NumCalls uint64 `json:"nc"`
}

type UploadLimits struct {
	MaxBytes uint64
	MaxCalls uint64
}

var ErrLimitsExceeded = errors.New("resultcache: limits exceeded")

// AddAmountsAndCompare increases the stats for name, and ensures that the
// updated stats are within the given limits. If the limits are exceeded,
// ErrLimitsExceeded is returned and the stats are left unchanged.
func (c *Cache) AddAmountsAndCompare(name string, deltaStat UsageStat, limits UploadLimits) error {
	if err := c.init(); err != nil {
		return err
	}
	return c.DB.Batch(func(tx *bbolt.Tx) error {
		bk := tx.Bucket(bStats)
		val := bk.Get([]byte(name))
		var stat UsageStat
		if len(val) != 0 {
			if err := json.Unmarshal(val, &stat); err != nil {
				return err
			}
		}

		if stat.Period == deltaStat.Period {
			stat.NumCalls += deltaStat.NumCalls
			stat.NumBytes += deltaStat.NumBytes
		} else {
			// period switched: start the new period from deltaStat directly.
			stat = deltaStat
		}

		if stat.NumBytes > limits.MaxBytes || stat.NumCalls > limits.MaxCalls {
			return ErrLimitsExceeded
		}

		res, err := json.Marshal(stat)
		if err != nil {
			return err
		}
		return bk.Put([]byte(name), res)
	})
}
