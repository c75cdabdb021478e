package engine

// findSameLeft returns the length of the longest common prefix of a and b,
// bounded by maxLen, found via binary search (spec.md §4.13,
// "_find_same_left"): since a prefix match is monotonic (if a[:k] == b[:k]
// then a[:j] == b[:j] for all j <= k), a single binary search over k
// replaces a linear scan.
func findSameLeft(a, b []rune, maxLen int) int {
	low, high := 0, maxLen
	for low < high {
		mid := (low + high + 1) / 2
		if runesEqual(a[:mid], b[:mid]) {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// findDiffAreaBounds returns (leftCommon, rightCommon): the lengths of the
// longest common prefix and longest common suffix of a and b, with the
// suffix length capped so the two common regions never overlap.
func findDiffAreaBounds(a, b []rune) (left, right int) {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	left = findSameLeft(a, b, minLen)

	ra, rb := reversedRunes(a), reversedRunes(b)
	right = findSameLeft(ra, rb, minLen)
	if right > minLen-left {
		right = minLen - left
	}
	return left, right
}

func reversedRunes(r []rune) []rune {
	out := make([]rune, len(r))
	for i, c := range r {
		out[len(r)-1-i] = c
	}
	return out
}

// findDiffArea locates the inclusive [start, end] non-matching region of each of the
// two strings, per spec.md §4.13 ("find_diff_area"). A side with no
// differing region (a itself being the trivial empty range) reports
// Empty: true.
func findDiffArea(a, b string) (areaA, areaB StrDiffRange) {
	ra, rb := []rune(a), []rune(b)
	left, right := findDiffAreaBounds(ra, rb)

	areaA = StrDiffRange{Start: left, End: len(ra) - right - 1}
	areaB = StrDiffRange{Start: left, End: len(rb) - right - 1}

	if areaA.Start > areaA.End {
		areaA = StrDiffRange{Empty: true}
	}
	if areaB.Start > areaB.End {
		areaB = StrDiffRange{Empty: true}
	}
	return areaA, areaB
}

// ComputeStrDiff locates the differing character ranges between a pair of
// matched lines, in absolute column coordinates (i.e. including each
// line's original leading-whitespace prefix), per spec.md §4.13
// ("construct_str_diff_data"). When the stripped line contents are
// identical, the reported "diff" is the leading-whitespace prefix itself
// (the lines differ only in indentation, which is the only difference
// worth flagging).
func ComputeStrDiff(src, dest Line) StrDiff {
	areaSrc, areaDest := findDiffArea(src.Text, dest.Text)
	srcPrefixLen := src.Indent.Spaces + src.Indent.Tabs
	destPrefixLen := dest.Indent.Spaces + dest.Indent.Tabs

	if areaSrc.Empty && areaDest.Empty {
		return StrDiff{
			Src:  clampRange(StrDiffRange{Start: 0, End: srcPrefixLen - 1}),
			Dest: clampRange(StrDiffRange{Start: 0, End: destPrefixLen - 1}),
		}
	}

	if !areaSrc.Empty {
		areaSrc.Start += srcPrefixLen
		areaSrc.End += srcPrefixLen
	}
	if !areaDest.Empty {
		areaDest.Start += destPrefixLen
		areaDest.End += destPrefixLen
	}
	return StrDiff{Src: areaSrc, Dest: areaDest}
}

func clampRange(r StrDiffRange) StrDiffRange {
	if r.Start > r.End {
		return StrDiffRange{Empty: true}
	}
	return r
}
