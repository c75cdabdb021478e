package engine

import "strings"

// FindMoveCandidates enumerates candidate moved blocks between src and
// dest, per spec.md §4.7 ("mapping_block_move"). For every (removed,
// inserted) line pair not yet covered by a longer candidate, it greedily
// extends a run of matching lines forward (requiring equal text, or — when
// countUpdate is set — Levenshtein ratio >= 0.6 and a constant indent
// offset), then extends the run backward through any purely-blank lines,
// and keeps the result if its punctuation-adjusted length clears
// minBlockLength.
func FindMoveCandidates(src, dest *LineIndex, srcAllLines, destAllLines []string, trace []TraceOp, minBlockLength int, pureMvBlockContainPunc, countMvBlockUpdate bool) []Candidate {
	var out []Candidate
	checked := make(map[[2]int]bool)

	destKeys := dest.Keys()
	srcKeys := src.Keys()

	for _, destLineNo := range destKeys {
		destLine, _ := dest.Get(destLineNo)
		if destLine.Text == "" {
			continue
		}

		for _, srcLineNo := range srcKeys {
			srcLine, _ := src.Get(srcLineNo)
			if srcLine.Text == "" || checked[[2]int{srcLineNo, destLineNo}] || srcLine.Origin != Removed {
				continue
			}
			checked[[2]int{srcLineNo, destLineNo}] = true

			indentDiff := destLine.Indent.Effective - srcLine.Indent.Effective
			curSrc, curDest := srcLineNo, destLineNo
			blockLength := 0
			pureLength := 0
			editActions := 2
			var updates []LineUpdate

			for {
				s, sok := src.Get(curSrc)
				d, dok := dest.Get(curDest)
				if !sok || !dok || s.Origin != Removed {
					break
				}
				textsEqual := s.Text == d.Text
				if !textsEqual && !(countMvBlockUpdate && LevenshteinRatio(s.Text, d.Text) >= 0.6) {
					break
				}
				if d.Text != "" {
					if d.Indent.Effective-s.Indent.Effective != indentDiff {
						break
					}
				}

				if countMvBlockUpdate && s.Text != d.Text {
					editActions++
					updates = append(updates, LineUpdate{SrcLine: curSrc, DestLine: curDest})
				}
				if s.Text != "" && d.Text != "" {
					if pureMvBlockContainPunc || !(IsPurePunctuation(s.Text) && IsPurePunctuation(d.Text)) {
						pureLength++
					}
				}

				checked[[2]int{curSrc, curDest}] = true
				curSrc++
				curDest++
				blockLength++
			}

			if pureLength < minBlockLength {
				continue
			}
			if IsPurePunctuation(joinIndexed(src, srcLineNo, blockLength)) {
				continue
			}

			finalSrc, finalDest, finalLen := extendBlankPrefix(src, dest, srcLineNo, destLineNo, blockLength)

			ctxSim := ContextSimilarity(finalSrc, finalDest, finalLen, srcAllLines, destAllLines)

			srcLineRec, _ := src.Get(finalSrc)
			destLineRec, _ := dest.Get(finalDest)
			var moveType MoveType
			switch {
			case srcLineRec.HunkID == destLineRec.HunkID:
				moveType = MoveHorizontal
			case srcLineRec.HunkID < destLineRec.HunkID:
				moveType = MoveDown
			default:
				moveType = MoveUp
			}

			if moveType == MoveHorizontal && indentDiff == 0 {
				continue
			}
			if indentDiff != 0 && moveType != MoveHorizontal {
				editActions++
			}

			rd := RelativeDistance(trace, finalSrc, finalDest, finalLen)

			out = append(out, Candidate{
				Mode:              ModeMove,
				SrcStart:          finalSrc,
				DestStart:         finalDest,
				BlockLength:       finalLen,
				IndentDiff:        indentDiff,
				MoveType:          moveType,
				Updates:           updates,
				ContextSimilarity: ctxSim,
				RelativeDistance:  rd,
				EditActions:       editActions,
				Weight:            float64(editActions)/float64(finalLen) + (1-ctxSim)/10 + rd/100,
			})
		}
	}

	return out
}

// extendBlankPrefix walks a matched block backward through any immediately
// preceding lines that are blank on both sides, extending it, per
// spec.md §4.7's second loop.
func extendBlankPrefix(src, dest *LineIndex, srcStart, destStart, blockLength int) (newSrcStart, newDestStart, newLength int) {
	curSrc, curDest := srcStart-1, destStart-1
	for curSrc >= 1 && curDest >= 1 {
		s, sok := src.Get(curSrc)
		d, dok := dest.Get(curDest)
		if !sok || !dok || s.Origin != Removed || s.Text != "" || d.Text != "" {
			break
		}
		srcStart, destStart = curSrc, curDest
		blockLength++
		curSrc--
		curDest--
	}
	return srcStart, destStart, blockLength
}

func joinIndexed(li *LineIndex, start, length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		l, _ := li.Get(start + i)
		b.WriteString(l.Text)
	}
	return b.String()
}
