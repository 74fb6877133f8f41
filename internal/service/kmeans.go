package service

import (
	"math"
	"math/rand"
)

// standardize centers each dimension to zero mean and unit variance. Raw
// embedding magnitudes are not comparable across dimensions for Euclidean
// distance.
func standardize(data [][]float64) [][]float64 {
	if len(data) == 0 {
		return nil
	}
	dims := len(data[0])

	means := make([]float64, dims)
	for _, row := range data {
		for d, v := range row {
			means[d] += v
		}
	}
	for d := range means {
		means[d] /= float64(len(data))
	}

	stds := make([]float64, dims)
	for _, row := range data {
		for d, v := range row {
			diff := v - means[d]
			stds[d] += diff * diff
		}
	}
	for d := range stds {
		stds[d] = math.Sqrt(stds[d] / float64(len(data)))
	}

	out := make([][]float64, len(data))
	for i, row := range data {
		out[i] = make([]float64, dims)
		for d, v := range row {
			if stds[d] > 0 {
				out[i][d] = (v - means[d]) / stds[d]
			} else {
				out[i][d] = 0
			}
		}
	}
	return out
}

type kmeansRun struct {
	assignments []int
	inertia     float64
}

// kMeans partitions data into k clusters with Lloyd's algorithm, run nInit
// times from a single seeded source, keeping the run with the lowest
// within-cluster inertia. Degenerate small inputs converge without error.
func kMeans(data [][]float64, k int, seed int64, nInit, maxIter int) []int {
	if k > len(data) {
		k = len(data)
	}
	if k < 1 {
		k = 1
	}

	rng := rand.New(rand.NewSource(seed))
	best := kmeansRun{inertia: math.Inf(1)}
	for i := 0; i < nInit; i++ {
		run := lloyd(data, k, rng, maxIter)
		if run.inertia < best.inertia {
			best = run
		}
	}
	return best.assignments
}

func lloyd(data [][]float64, k int, rng *rand.Rand, maxIter int) kmeansRun {
	n := len(data)
	dims := len(data[0])

	// Seed centroids from k distinct points.
	centroids := make([][]float64, k)
	for i, idx := range rng.Perm(n)[:k] {
		centroids[i] = append([]float64(nil), data[idx]...)
	}

	assignments := make([]int, n)
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, point := range data {
			nearest := nearestCentroid(point, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, point := range data {
			c := assignments[i]
			counts[c]++
			for d, v := range point {
				sums[c][d] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				// Reseed an empty cluster at a random point.
				centroids[c] = append([]float64(nil), data[rng.Intn(n)]...)
				continue
			}
			for d := range centroids[c] {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	inertia := 0.0
	for i, point := range data {
		inertia += squaredDistance(point, centroids[assignments[i]])
	}
	return kmeansRun{assignments: assignments, inertia: inertia}
}

func nearestCentroid(point []float64, centroids [][]float64) int {
	nearest := 0
	minDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(point, centroid); d < minDist {
			minDist = d
			nearest = c
		}
	}
	return nearest
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
