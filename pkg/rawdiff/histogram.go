// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawdiff

import (
	"sort"

	"github.com/bdiffgo/bdiff/pkg/engine"
)

// histogramDiffer is the default rawdiff.Differ: an anchored diff over
// unique lines (Szymanski's longest-common-subsequence-of-uniques
// algorithm), run with zero lines of context so every hunk is a minimal
// remove/insert region — exactly the shape pkg/engine wants to build its
// keep/remove/insert trace from. Ported from the teacher's own pkg/diff
// (itself a fork of golang.org/x/tools's internal anchored diff).
type histogramDiffer struct{}

// hunk is a single contiguous change region: old[lineOld-1:lineOld-1+countOld]
// was replaced by new[lineNew-1:lineNew-1+countNew]. With zero context,
// a hunk never covers an equal/kept line.
type hunk struct {
	lineOld, countOld int
	lineNew, countNew int
}

func (histogramDiffer) Diff(srcText, destText string) ([]engine.RawOp, []string, []string, error) {
	srcLines := SplitLines(srcText)
	destLines := SplitLines(destText)

	hunks := anchoredDiff(srcLines, destLines)

	ops := make([]engine.RawOp, 0, len(srcLines)+len(destLines))
	srcIdx := 0 // 0-indexed cursor: srcLines[:srcIdx] already emitted
	for _, h := range hunks {
		boundary := h.lineOld
		if h.countOld > 0 {
			boundary = h.lineOld - 1
		}
		for srcIdx < boundary {
			ops = append(ops, engine.RawOp{Origin: engine.Kept, Text: srcLines[srcIdx]})
			srcIdx++
		}
		for i := 0; i < h.countOld; i++ {
			ops = append(ops, engine.RawOp{Origin: engine.Removed, Text: srcLines[srcIdx]})
			srcIdx++
		}
		for i := 0; i < h.countNew; i++ {
			ops = append(ops, engine.RawOp{Origin: engine.Inserted, Text: destLines[h.lineNew-1+i]})
		}
	}
	for srcIdx < len(srcLines) {
		ops = append(ops, engine.RawOp{Origin: engine.Kept, Text: srcLines[srcIdx]})
		srcIdx++
	}

	return ops, srcLines, destLines, nil
}

// A pair is a pair of values tracked for both the x (source) and y
// (destination) side of a diff — typically a pair of line indexes.
type pair struct{ x, y int }

// anchoredDiff returns the anchored diff of x and y as a list of minimal
// remove/insert hunks, with zero lines of shared context.
//
// Unix diff implementations typically look for a diff with the smallest
// number of lines inserted and removed, which can in the worst case take
// time quadratic in the number of lines in the texts. This implementation
// instead looks for a diff with the smallest number of "unique" lines
// inserted and removed, where unique means a line that appears just once
// in both old and new. The unique lines anchor the chosen matching
// regions, which is usually clearer than a standard diff because the
// algorithm does not try to reuse unrelated blank lines or closing
// braces. It also guarantees O(n log n) time instead of O(n^2).
func anchoredDiff(x, y []string) []hunk {
	var hunks []hunk

	var (
		done  pair // matched up to x[:done.x] and y[:done.y]
		chunk pair // start indexes of the current chunk
		count pair // lines from each side seen in the current chunk
	)

	for _, m := range tgs(x, y) {
		if m.x < done.x {
			continue // already handled scanning forward from an earlier match
		}

		start := m
		for start.x > done.x && start.y > done.y && x[start.x-1] == y[start.y-1] {
			start.x--
			start.y--
		}
		end := m
		for end.x < len(x) && end.y < len(y) && x[end.x] == y[end.y] {
			end.x++
			end.y++
		}

		if start.x > done.x || start.y > done.y {
			chunk = done
			count = pair{}
			if start.x > chunk.x {
				count.x = start.x - chunk.x
			}
			if start.y > chunk.y {
				count.y = start.y - chunk.y
			}
			lineOld, lineNew := chunk.x, chunk.y
			if count.x > 0 {
				lineOld++
			}
			if count.y > 0 {
				lineNew++
			}
			hunks = append(hunks, hunk{lineOld: lineOld, countOld: count.x, lineNew: lineNew, countNew: count.y})
		}

		done = end
		if end.x >= len(x) && end.y >= len(y) {
			break
		}
	}

	return hunks
}

// tgs returns the pairs of indexes of the longest common subsequence of
// unique lines in x and y, where a unique line is one that appears once in
// x and once in y.
//
// The algorithm is as described in Thomas G. Szymanski, "A Special Case of
// the Maximal Common Subsequence Problem," Princeton TR #170 (January
// 1975), available at https://research.swtch.com/tgs170.pdf.
func tgs(x, y []string) []pair {
	m := make(map[string]int)
	for _, s := range x {
		if c := m[s]; c > -2 {
			m[s] = c - 1
		}
	}
	for _, s := range y {
		if c := m[s]; c > -8 {
			m[s] = c - 4
		}
	}

	var xi, yi, inv []int
	for i, s := range y {
		if m[s] == -1+-4 {
			m[s] = len(yi)
			yi = append(yi, i)
		}
	}
	for i, s := range x {
		if j, ok := m[s]; ok && j >= 0 {
			xi = append(xi, i)
			inv = append(inv, j)
		}
	}

	J := inv
	n := len(xi)
	T := make([]int, n)
	L := make([]int, n)
	for i := range T {
		T[i] = n + 1
	}
	for i := 0; i < n; i++ {
		k := sort.Search(n, func(k int) bool {
			return T[k] >= J[i]
		})
		T[k] = J[i]
		L[i] = k + 1
	}
	k := 0
	for _, v := range L {
		if k < v {
			k = v
		}
	}
	seq := make([]pair, 2+k)
	seq[1+k] = pair{len(x), len(y)}
	lastj := n
	for i := n - 1; i >= 0; i-- {
		if L[i] == k && J[i] < lastj {
			seq[k] = pair{xi[i], yi[J[i]]}
			k--
		}
	}
	seq[0] = pair{0, 0}
	return seq
}
