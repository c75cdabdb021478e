package engine

// copyBlockInHunk reports whether a candidate copy block's entire source
// range and entire destination range each fall within a single hunk's
// removed/inserted line sets, per spec.md §4.8 ("copy_block_in_hunk"): a
// copy candidate that merely restates a single hunk's own change isn't a
// copy, it's the hunk itself.
func copyBlockInHunk(srcStart, destStart, blockLength int, hunks []Hunk) bool {
	for _, h := range hunks {
		if len(h.RemovedSrc) == 0 || len(h.InsertedDest) == 0 {
			continue
		}
		srcLo, srcHi := h.RemovedSrc[0], h.RemovedSrc[len(h.RemovedSrc)-1]
		destLo, destHi := h.InsertedDest[0], h.InsertedDest[len(h.InsertedDest)-1]
		if srcStart >= srcLo && srcStart+blockLength-1 <= srcHi &&
			destStart >= destLo && destStart+blockLength-1 <= destHi {
			return true
		}
	}
	return false
}

// FindCopyCandidates enumerates candidate copied blocks between src and
// dest, per spec.md §4.8 ("mapping_block_copy"). Unlike moves, a copy's
// source side may be Kept (the original is untouched) as well as Removed,
// and among same-length candidates sharing a destination line, only the
// lowest-weight one survives.
func FindCopyCandidates(src, dest *LineIndex, srcAllLines, destAllLines []string, hunks []Hunk, trace []TraceOp, minCopyBlockLength int, pureCpBlockContainPunc, countCpBlockUpdate bool) []Candidate {
	var out []Candidate
	checked := make(map[[2]int]bool)

	for _, destLineNo := range dest.Keys() {
		destLine, _ := dest.Get(destLineNo)
		if destLine.Text == "" {
			continue
		}

		bestByLength := make(map[int]Candidate)

		for _, srcLineNo := range src.Keys() {
			srcLine, _ := src.Get(srcLineNo)
			if srcLine.Text == "" || checked[[2]int{srcLineNo, destLineNo}] {
				continue
			}
			checked[[2]int{srcLineNo, destLineNo}] = true

			indentDiff := destLine.Indent.Effective - srcLine.Indent.Effective
			curSrc, curDest := srcLineNo, destLineNo
			blockLength := 0
			pureLength := 0
			editActions := 4
			var updates []LineUpdate

			for {
				s, sok := src.Get(curSrc)
				d, dok := dest.Get(curDest)
				if !sok || !dok {
					break
				}
				textsEqual := s.Text == d.Text
				if !textsEqual && !(countCpBlockUpdate && LevenshteinRatio(s.Text, d.Text) >= 0.6) {
					break
				}
				if d.Text != "" {
					if d.Indent.Effective-s.Indent.Effective != indentDiff {
						break
					}
				}

				checked[[2]int{curSrc, curDest}] = true

				if countCpBlockUpdate && s.Text != d.Text {
					editActions++
					updates = append(updates, LineUpdate{SrcLine: curSrc, DestLine: curDest})
				}
				if s.Text != "" && d.Text != "" {
					if pureCpBlockContainPunc || !(IsPurePunctuation(s.Text) && IsPurePunctuation(d.Text)) {
						pureLength++
					}
				}

				curSrc++
				curDest++
				blockLength++
			}

			if pureLength < minCopyBlockLength {
				continue
			}
			if copyBlockInHunk(srcLineNo, destLineNo, blockLength, hunks) {
				continue
			}
			if IsPurePunctuation(joinIndexed(src, srcLineNo, blockLength)) {
				continue
			}

			finalSrc, finalDest, finalLen := extendBlankPrefixCopy(src, dest, srcLineNo, destLineNo, blockLength)

			if indentDiff != 0 {
				editActions++
			}

			ctxSim := ContextSimilarity(finalSrc, finalDest, finalLen, srcAllLines, destAllLines)
			rd := RelativeDistance(trace, finalSrc, finalDest, finalLen)
			weight := float64(editActions)/float64(finalLen) + (1-ctxSim)/10 + rd/100

			cand := Candidate{
				Mode:              ModeCopy,
				SrcStart:          finalSrc,
				DestStart:         finalDest,
				BlockLength:       finalLen,
				IndentDiff:        indentDiff,
				Updates:           updates,
				ContextSimilarity: ctxSim,
				RelativeDistance:  rd,
				EditActions:       editActions,
				Weight:            weight,
			}

			if existing, ok := bestByLength[finalLen]; ok {
				if existing.Weight > weight {
					bestByLength[finalLen] = cand
				}
			} else {
				bestByLength[finalLen] = cand
			}
		}

		for _, length := range sortedIntKeys(bestByLength) {
			out = append(out, bestByLength[length])
		}
	}

	return out
}

// extendBlankPrefixCopy is FindCopyCandidates's backward blank-line
// extension: unlike moves, the source side may be Kept or Removed.
func extendBlankPrefixCopy(src, dest *LineIndex, srcStart, destStart, blockLength int) (newSrcStart, newDestStart, newLength int) {
	curSrc, curDest := srcStart-1, destStart-1
	for curSrc >= 1 && curDest >= 1 {
		s, sok := src.Get(curSrc)
		d, dok := dest.Get(curDest)
		if !sok || !dok || s.Text != "" || d.Text != "" {
			break
		}
		srcStart, destStart = curSrc, curDest
		blockLength++
		curSrc--
		curDest--
	}
	return srcStart, destStart, blockLength
}

func sortedIntKeys(m map[int]Candidate) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
