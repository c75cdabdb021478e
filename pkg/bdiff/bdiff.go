// Package bdiff is BDiff's public library entry point: it glues the raw
// differ (pkg/rawdiff) and the block-matching engine (pkg/engine)
// together behind the single call spec.md §6 describes as
// `bdiff(src_path, dest_path, src_lines, dest_lines, **options)`.
package bdiff

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/bdiffgo/bdiff/pkg/engine"
	"github.com/bdiffgo/bdiff/pkg/rawdiff"
)

// Error kinds from spec.md §7. Returned wrapped (fmt.Errorf("...: %w",
// ErrX)) so callers can errors.Is against them, the same sentinel-plus-
// wrap idiom the teacher uses for its own storage errors.
var (
	ErrInputMissing  = errors.New("bdiff: input file not readable")
	ErrDifferFailure = errors.New("bdiff: raw differ failed")
	ErrEncoding      = errors.New("bdiff: input is not valid UTF-8")
)

// Run computes BDiff's edit script between src and dest.
//
// srcLines/destLines may be passed pre-split (non-nil) to avoid a second
// read/split of files the caller already has in memory; when nil, Run
// reads srcPath/destPath itself. Either way the two whole texts are what
// actually drive the raw differ — srcLines/destLines only need to agree
// with it line-for-line, which is why Run always re-derives the
// authoritative split from the text it reads rather than trusting a
// caller-supplied slice verbatim.
func Run(srcPath, destPath string, srcLines, destLines []string, opts Options) ([]engine.EditRecord, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	srcText, err := loadText(srcPath, srcLines)
	if err != nil {
		return nil, err
	}
	destText, err := loadText(destPath, destLines)
	if err != nil {
		return nil, err
	}

	if !utf8.ValidString(srcText) || !utf8.ValidString(destText) {
		return nil, fmt.Errorf("%s, %s: %w", srcPath, destPath, ErrEncoding)
	}

	differ := rawdiff.New(opts.DiffAlgorithm)
	ops, srcAllLines, destAllLines, err := differ.Diff(srcText, destText)
	if err != nil {
		return nil, fmt.Errorf("%s, %s: %w", srcPath, destPath, errors.Join(ErrDifferFailure, err))
	}

	return engine.Run(ops, srcAllLines, destAllLines, opts.engineOptions()), nil
}

// loadText returns the whole-file text to diff: the rejoined lines when
// the caller already supplied them, or the file read from path.
func loadText(path string, lines []string) (string, error) {
	if lines != nil {
		return strings.Join(lines, "\n") + "\n", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, errors.Join(ErrInputMissing, err))
	}
	return string(data), nil
}
