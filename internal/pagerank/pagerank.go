// Package pagerank builds the teleport-smoothed stochastic transition
// matrix for a link graph and iterates the rank vector to a fixed
// point, per spec.md 4.G.
package pagerank

import "math"

// DefaultAlpha and DefaultEpsilon are spec.md 6's named constants.
const (
	DefaultAlpha   = 0.1
	DefaultEpsilon = 1e-4
)

// Rank computes the PageRank vector for a graph of n pages, where
// outlinks[i] lists the indices of pages that page i links to (only
// indices into [0,n), i.e. links to pages outside the indexed set are
// already excluded by the caller). A page with no outlinks is a
// dangling page and is treated as linking uniformly to every page.
//
// alpha and epsilon fall back to DefaultAlpha/DefaultEpsilon when zero.
func Rank(n int, outlinks [][]int, alpha, epsilon float64) []float64 {
	if n == 0 {
		return nil
	}
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	if epsilon == 0 {
		epsilon = DefaultEpsilon
	}

	m := buildTransitionMatrix(n, outlinks, alpha)

	r := make([]float64, n)
	for i := range r {
		r[i] = 1.0 / float64(n)
	}

	for {
		next := multiplyRowVector(r, m)
		if l2Distance(r, next) <= epsilon {
			return next
		}
		r = next
	}
}

// buildTransitionMatrix constructs M per spec.md 4.G: the teleport term
// alpha/N is added into every cell before the adjacency term, so
// dangling and non-dangling rows share the same additive scheme.
func buildTransitionMatrix(n int, outlinks [][]int, alpha float64) [][]float64 {
	m := make([][]float64, n)
	teleport := alpha / float64(n)

	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := range row {
			row[j] = teleport
		}

		targets := outlinks[i]
		rowSum := len(targets)
		if rowSum == 0 {
			// Dangling row: teleport alone already sums to alpha, so add
			// the remaining (1-alpha)/n uniformly to make the row sum to 1.
			share := (1 - alpha) / float64(n)
			for j := range row {
				row[j] += share
			}
		} else {
			share := (1 - alpha) / float64(rowSum)
			for _, j := range targets {
				row[j] += share
			}
		}

		m[i] = row
	}
	return m
}

func multiplyRowVector(r []float64, m [][]float64) []float64 {
	n := len(r)
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += r[i] * m[i][j]
		}
		out[j] = sum
	}
	return out
}

func l2Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
