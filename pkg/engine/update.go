package engine

import "sort"

type updateChange struct {
	srcLine, destLine int
	cost              float64 // 1 - synthetic_sim
	conflicts         map[int]bool
	alive             bool
}

// FindUpdateCandidates identifies single-line update mappings within each
// hunk, per spec.md §4.10 ("mapping_line_update"). Within a hunk, two
// candidate pairs (r1,i1) and (r2,i2) conflict when they cross — one source
// line maps forward while the other maps backward relative to destination
// order — since both cannot hold as updates simultaneously without
// implying an order-inverting edit. Conflicts are resolved by repeatedly
// discarding whichever surviving pair has the most remaining conflicts
// (ties broken toward the higher edit cost) until no conflicts remain.
func FindUpdateCandidates(srcLines, destLines []string, hunks []Hunk, ctxLength int, lineSimWeight, simThreshold float64) []Candidate {
	var out []Candidate

	for _, h := range hunks {
		if len(h.RemovedSrc) == 0 || len(h.InsertedDest) == 0 {
			continue
		}

		var changes []*updateChange
		for _, r := range h.RemovedSrc {
			for _, i := range h.InsertedDest {
				accept, synSim := WBesti(r, i, srcLines, destLines, ctxLength, lineSimWeight, simThreshold)
				if accept {
					changes = append(changes, &updateChange{srcLine: r, destLine: i, cost: 1 - synSim, conflicts: map[int]bool{}, alive: true})
				}
			}
		}

		for a := 0; a < len(changes); a++ {
			for b := a + 1; b < len(changes); b++ {
				ca, cb := changes[a], changes[b]
				if (cb.destLine-ca.destLine)*(cb.srcLine-ca.srcLine) < 0 {
					ca.conflicts[b] = true
					cb.conflicts[a] = true
				}
			}
		}

		order := resolveUpdateConflicts(changes)

		var survivors []*updateChange
		for _, idx := range order {
			survivors = append(survivors, changes[idx])
		}
		sort.Slice(survivors, func(i, j int) bool { return survivors[i].srcLine < survivors[j].srcLine })

		for _, c := range survivors {
			out = append(out, Candidate{
				Mode:        ModeUpdate,
				SrcStart:    c.srcLine,
				DestStart:   c.destLine,
				BlockLength: 1,
				Weight:      1 + c.cost/10,
			})
		}
	}

	return out
}

// resolveUpdateConflicts iteratively discards the alive change with the
// most remaining conflicts (stable-sorted by (conflict count, cost) each
// round) until no alive change has any conflicts left, then returns the
// indices (into changes) of the survivors.
func resolveUpdateConflicts(changes []*updateChange) []int {
	alive := make([]int, len(changes))
	for i := range changes {
		alive[i] = i
	}

	sortAlive := func() {
		sort.SliceStable(alive, func(i, j int) bool {
			ci, cj := changes[alive[i]], changes[alive[j]]
			li, lj := aliveConflictCount(ci, changes), aliveConflictCount(cj, changes)
			if li != lj {
				return li < lj
			}
			return ci.cost < cj.cost
		})
	}
	sortAlive()

	for len(alive) > 0 {
		last := changes[alive[len(alive)-1]]
		if aliveConflictCount(last, changes) > 0 {
			removed := alive[len(alive)-1]
			alive = alive[:len(alive)-1]
			changes[removed].alive = false
			for _, idx := range alive {
				delete(changes[idx].conflicts, removed)
			}
		}
		if !anyAliveConflicts(alive, changes) {
			break
		}
		sortAlive()
	}

	return alive
}

func aliveConflictCount(c *updateChange, changes []*updateChange) int {
	n := 0
	for idx := range c.conflicts {
		if changes[idx].alive {
			n++
		}
	}
	return n
}

func anyAliveConflicts(alive []int, changes []*updateChange) bool {
	for _, idx := range alive {
		if aliveConflictCount(changes[idx], changes) > 0 {
			return true
		}
	}
	return false
}
