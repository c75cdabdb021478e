package engine

// hungarianAssign solves the minimum-cost bipartite assignment problem on
// an n x m cost matrix, per spec.md §4.11 ("km_compute" / Kuhn-Munkres).
// No library in the corpus implements this; it is the domain algorithm
// itself, not an ambient concern, so it is hand-rolled here.
//
// It returns, for each row, the column it is matched to (or -1 if the row
// has no match because there are fewer columns than rows). Every column
// is used by at most one row, and when rows <= cols every row is matched.
// Rectangular inputs are solved by padding to square with zero-cost dummy
// rows or columns, a standard reduction that leaves the real rows'
// optimal matching unchanged.
func hungarianAssign(cost [][]float64) []int {
	rows := len(cost)
	if rows == 0 {
		return nil
	}
	cols := len(cost[0])

	n := rows
	if cols > n {
		n = cols
	}

	padded := make([][]float64, n)
	for i := 0; i < n; i++ {
		padded[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i < rows && j < cols {
				padded[i][j] = cost[i][j]
			}
		}
	}

	colOfRow := hungarianSquare(padded)

	result := make([]int, rows)
	for i := 0; i < rows; i++ {
		if colOfRow[i] < cols {
			result[i] = colOfRow[i]
		} else {
			result[i] = -1
		}
	}
	return result
}

// hungarianSquare is the classic O(n^3) potentials-based Hungarian
// algorithm for a square cost matrix.
func hungarianSquare(a [][]float64) []int {
	n := len(a)
	const inf = 1e18

	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1) // p[j]: 1-indexed row currently matched to column j
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = inf
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := a[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	result := make([]int, n)
	for j := 1; j <= n; j++ {
		if p[j] != 0 {
			result[p[j]-1] = j - 1
		}
	}
	return result
}
