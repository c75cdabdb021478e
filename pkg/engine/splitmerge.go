package engine

import "strings"

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func removeInt(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}

func lastInt(s []int) int { return s[len(s)-1] }

// identifySplitsPerHunk detects single-source-line-to-many-destination-line
// matches within one hunk, per spec.md §4.9 ("identify_splits_per_hunk"):
// a destination run greedily consumes successive prefixes of the
// (re-)stripped source line's remaining text, skipping blank destination
// lines, until the remainder of the source line reappears verbatim as a
// destination line (closing the split) or the run runs out of budget.
// leftLines/rightLines and src/dest are mutated: matched lines are removed
// from both the hunk's line lists and the line index.
func identifySplitsPerHunk(leftLines, rightLines *[]int, src, dest *LineIndex, maxSplitLines int) []SplitRecord {
	var results []SplitRecord
	if len(*rightLines) == 0 {
		return results
	}
	traverseStart := (*rightLines)[0]

	leftSnapshot := append([]int(nil), *leftLines...)

outer:
	for _, leftLineNo := range leftSnapshot {
		blankFirstLine := true
		srcLine, _ := src.Get(leftLineNo)
		leftLine := strings.TrimSpace(srcLine.Text)
		rightLineNoStart := traverseStart
		curRightLineNo := rightLineNoStart

		if _, ok := dest.Get(curRightLineNo); !ok {
			break outer
		}
		curRightVal, _ := dest.Get(curRightLineNo)
		curRightLine := strings.TrimSpace(curRightVal.Text)
		lines := 1
		if len(*rightLines) == 0 {
			break outer
		}

		for curRightLineNo <= lastInt(*rightLines) {
			if curRightLine == "" {
				if blankFirstLine {
					rightLineNoStart++
				}
				curRightLineNo++
				if !containsInt(*rightLines, curRightLineNo) || curRightLineNo > lastInt(*rightLines) {
					break
				}
				v, _ := dest.Get(curRightLineNo)
				curRightLine = strings.TrimSpace(v.Text)
				continue
			}

			if curRightLine == leftLine && lines > 1 {
				destLines := make([]int, 0, curRightLineNo-rightLineNoStart+1)
				for i := rightLineNoStart; i <= curRightLineNo; i++ {
					destLines = append(destLines, i)
				}
				results = append(results, SplitRecord{SrcLine: leftLineNo, DestLines: destLines})
				for _, splitLine := range destLines {
					*rightLines = removeInt(*rightLines, splitLine)
					dest.Delete(splitLine)
				}
				src.Delete(leftLineNo)
				traverseStart = curRightLineNo + 1
				break
			} else if strings.HasPrefix(leftLine, curRightLine) && lines <= maxSplitLines {
				blankFirstLine = false
				leftLine = strings.TrimLeft(leftLine[len(curRightLine):], " \t\n\r\v\f")
				curRightLineNo++
				if curRightLineNo > lastInt(*rightLines) {
					break
				}
				if _, ok := dest.Get(curRightLineNo); !ok {
					for {
						if _, ok := dest.Get(curRightLineNo); ok || curRightLineNo > lastInt(*rightLines) {
							break
						}
						curRightLineNo++
					}
					if curRightLineNo == lastInt(*rightLines) {
						break
					}
					rightLineNoStart = curRightLineNo
					v, _ := dest.Get(rightLineNoStart)
					curRightLine = strings.TrimSpace(v.Text)
					s2, _ := src.Get(leftLineNo)
					leftLine = strings.TrimSpace(s2.Text)
					lines = 1
				} else {
					v, _ := dest.Get(curRightLineNo)
					curRightLine = strings.TrimSpace(v.Text)
					lines++
				}
			} else {
				if curRightLineNo == lastInt(*rightLines) {
					break
				}
				if rightLineNoStart == curRightLineNo {
					rightLineNoStart++
					if _, ok := dest.Get(rightLineNoStart); !ok {
						for {
							if _, ok := dest.Get(rightLineNoStart); ok || rightLineNoStart > lastInt(*rightLines) {
								break
							}
							rightLineNoStart++
						}
						if rightLineNoStart == lastInt(*rightLines) {
							break
						}
					}
					curRightLineNo = rightLineNoStart
				} else {
					rightLineNoStart = curRightLineNo
				}
				v, _ := dest.Get(rightLineNoStart)
				curRightLine = strings.TrimSpace(v.Text)
				s2, _ := src.Get(leftLineNo)
				leftLine = strings.TrimSpace(s2.Text)
				lines = 1
			}
		}
	}

	for _, r := range results {
		*leftLines = removeInt(*leftLines, r.SrcLine)
	}
	return results
}

// identifyMergesPerHunk detects many-source-lines-to-one-destination-line
// matches within one hunk, per spec.md §4.9 ("identify_merges_per_hunk").
// It is the mirror image of identifySplitsPerHunk: a source run greedily
// supplies successive prefixes of the destination line's remaining text.
func identifyMergesPerHunk(leftLines, rightLines *[]int, src, dest *LineIndex, maxMergeLines int) []MergeRecord {
	var results []MergeRecord
	if len(*leftLines) == 0 {
		return results
	}
	traverseStart := (*leftLines)[0]

	rightSnapshot := append([]int(nil), *rightLines...)

outer:
	for _, rightLineNo := range rightSnapshot {
		destVal, _ := dest.Get(rightLineNo)
		rightLine := strings.TrimSpace(destVal.Text)
		leftLineNoStart := traverseStart
		curLeftLineNo := leftLineNoStart

		if _, ok := src.Get(curLeftLineNo); !ok {
			break outer
		}
		v, _ := src.Get(curLeftLineNo)
		curLeftLine := strings.TrimSpace(v.Text)
		lines := 1
		if len(*leftLines) == 0 {
			break outer
		}

		for curLeftLineNo <= lastInt(*leftLines) {
			if curLeftLine == "" {
				curLeftLineNo++
				if !containsInt(*leftLines, curLeftLineNo) || curLeftLineNo > lastInt(*leftLines) {
					break
				}
				v, _ := src.Get(curLeftLineNo)
				curLeftLine = strings.TrimSpace(v.Text)
				continue
			}

			if curLeftLine == rightLine {
				if lines > 1 {
					srcLines := make([]int, 0, curLeftLineNo-leftLineNoStart+1)
					for i := leftLineNoStart; i <= curLeftLineNo; i++ {
						srcLines = append(srcLines, i)
					}
					results = append(results, MergeRecord{SrcLines: srcLines, DestLine: rightLineNo})
					for _, splitLine := range srcLines {
						*leftLines = removeInt(*leftLines, splitLine)
						src.Delete(splitLine)
					}
					dest.Delete(rightLineNo)
					traverseStart = curLeftLineNo + 1
					break
				}
				if leftLineNoStart == curLeftLineNo {
					leftLineNoStart++
					curLeftLineNo = leftLineNoStart
				} else {
					leftLineNoStart = curLeftLineNo
				}
				if _, ok := src.Get(curLeftLineNo); !ok {
					break
				}
				v, _ := src.Get(curLeftLineNo)
				curLeftLine = strings.TrimSpace(v.Text)
				d2, _ := dest.Get(rightLineNo)
				rightLine = strings.TrimSpace(d2.Text)
				lines = 1
			} else if strings.HasPrefix(rightLine, curLeftLine) && lines <= maxMergeLines {
				rightLine = strings.TrimLeft(rightLine[len(curLeftLine):], " \t\n\r\v\f")
				curLeftLineNo++
				if curLeftLineNo > lastInt(*leftLines) {
					break
				}
				if _, ok := src.Get(curLeftLineNo); !ok {
					for {
						if _, ok := src.Get(curLeftLineNo); ok || curLeftLineNo > lastInt(*leftLines) {
							break
						}
						curLeftLineNo++
					}
					if curLeftLineNo == lastInt(*leftLines) {
						break
					}
					leftLineNoStart = curLeftLineNo
					v, _ := src.Get(leftLineNoStart)
					curLeftLine = strings.TrimSpace(v.Text)
					d2, _ := dest.Get(rightLineNo)
					rightLine = strings.TrimSpace(d2.Text)
					lines = 1
				} else {
					v, _ := src.Get(curLeftLineNo)
					curLeftLine = strings.TrimSpace(v.Text)
					lines++
				}
			} else {
				if curLeftLineNo == lastInt(*leftLines) {
					break
				}
				if leftLineNoStart == curLeftLineNo {
					leftLineNoStart++
					if _, ok := src.Get(leftLineNoStart); !ok {
						for {
							if _, ok := src.Get(leftLineNoStart); ok || leftLineNoStart > lastInt(*leftLines) {
								break
							}
							leftLineNoStart++
						}
						if leftLineNoStart == lastInt(*leftLines) {
							break
						}
					}
					curLeftLineNo = leftLineNoStart
				} else {
					leftLineNoStart = curLeftLineNo
				}
				v, _ := src.Get(curLeftLineNo)
				curLeftLine = strings.TrimSpace(v.Text)
				d2, _ := dest.Get(rightLineNo)
				rightLine = strings.TrimSpace(d2.Text)
				lines = 1
			}
		}
	}

	for _, r := range results {
		*rightLines = removeInt(*rightLines, r.DestLine)
	}
	return results
}

// FindSplitsAndMerges runs split then merge detection across every hunk
// that has both removed and inserted lines and more than one line on the
// relevant side, per spec.md §4.9 ("mapping_splits"/"mapping_merges").
// It mutates hunks and src/dest in place, removing every line consumed by
// a split or merge so later candidate-generation passes never see them.
func FindSplitsAndMerges(hunks []Hunk, src, dest *LineIndex, maxSplitLines, maxMergeLines int, identifySplit, identifyMerge bool) ([]SplitRecord, []MergeRecord) {
	var splits []SplitRecord
	var merges []MergeRecord

	if identifySplit {
		for i := range hunks {
			h := &hunks[i]
			if len(h.RemovedSrc) == 0 || len(h.InsertedDest) == 0 || len(h.InsertedDest) <= 1 {
				continue
			}
			splits = append(splits, identifySplitsPerHunk(&h.RemovedSrc, &h.InsertedDest, src, dest, maxSplitLines)...)
		}
	}
	if identifyMerge {
		for i := range hunks {
			h := &hunks[i]
			if len(h.RemovedSrc) == 0 || len(h.InsertedDest) == 0 || len(h.RemovedSrc) <= 1 {
				continue
			}
			merges = append(merges, identifyMergesPerHunk(&h.RemovedSrc, &h.InsertedDest, src, dest, maxMergeLines)...)
		}
	}

	return splits, merges
}
