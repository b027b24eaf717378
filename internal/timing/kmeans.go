// internal/timing/kmeans.go
package timing

import (
	"errors"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/ColonelBlimp/morsedecoder/internal/recovery"
)

var (
	// ErrTooFewValues indicates there are fewer distinct values than clusters
	ErrTooFewValues = errors.New("kmeans: fewer distinct values than clusters")
	// ErrInvalidClusterCount indicates k must be positive
	ErrInvalidClusterCount = errors.New("kmeans: cluster count must be positive")
)

// Partition is the result of clustering a set of values.
type Partition struct {
	// Means holds the cluster means in ascending order
	Means []float64
	// Labels maps each input value to its cluster, indexed into Means
	Labels []int
	// Inertia is the within-cluster sum of squared deviations
	Inertia float64
	// Trial is the index of the initialization that produced this partition
	Trial int
}

// Members returns the values assigned to cluster i.
func (p Partition) Members(values []float64, i int) []float64 {
	var out []float64
	for j, l := range p.Labels {
		if l == i {
			out = append(out, values[j])
		}
	}
	return out
}

// KMeans1D partitions values into k clusters with Lloyd's algorithm seeded by
// k-means++. It runs opts.Trials independent initializations concurrently and
// keeps the one with the lowest inertia (lowest trial index on ties). Each
// trial draws from its own PCG stream derived from opts.Seed, so the result
// is deterministic.
func KMeans1D(values []float64, k int, opts Options) (Partition, error) {
	if k <= 0 {
		return Partition{}, ErrInvalidClusterCount
	}
	if err := opts.Validate(); err != nil {
		return Partition{}, err
	}
	distinct := slices.Clone(values)
	slices.Sort(distinct)
	if len(slices.Compact(distinct)) < k {
		return Partition{}, ErrTooFewValues
	}

	results := make([]Partition, opts.Trials)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range opts.Trials {
		g.Go(func() (err error) {
			defer recovery.CaptureError(&err)
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(i)))
			results[i] = lloyd(values, k, opts.MaxIterations, rng)
			results[i].Trial = i
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Partition{}, err
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Inertia < best.Inertia {
			best = r
		}
	}
	return best, nil
}

// lloyd runs one k-means++ initialization to convergence.
func lloyd(values []float64, k, maxIterations int, rng *rand.Rand) Partition {
	centers := seedPlusPlus(values, k, rng)
	labels := make([]int, len(values))

	for iter := 0; iter < maxIterations; iter++ {
		changed := assign(values, centers, labels)
		if !changed && iter > 0 {
			break
		}
		for c := range centers {
			if members := membersOf(values, labels, c); len(members) > 0 {
				centers[c] = floats.Sum(members) / float64(len(members))
			}
			// empty clusters keep their previous center
		}
	}
	assign(values, centers, labels)

	return sortedPartition(values, centers, labels)
}

// seedPlusPlus picks k initial centers, each with probability proportional to
// its squared distance from the nearest center already chosen.
func seedPlusPlus(values []float64, k int, rng *rand.Rand) []float64 {
	centers := make([]float64, 0, k)
	centers = append(centers, values[rng.IntN(len(values))])

	dist := make([]float64, len(values))
	for len(centers) < k {
		for i, v := range values {
			dist[i] = squaredDistance(v, nearest(v, centers))
		}
		total := floats.Sum(dist)
		if total == 0 {
			centers = append(centers, values[rng.IntN(len(values))])
			continue
		}
		target := rng.Float64() * total
		pick := len(values) - 1
		for i, d := range dist {
			target -= d
			if target < 0 {
				pick = i
				break
			}
		}
		centers = append(centers, values[pick])
	}
	return centers
}

// assign labels every value with its nearest center and reports whether any
// label changed. Ties go to the lower center index.
func assign(values, centers []float64, labels []int) bool {
	changed := false
	for i, v := range values {
		best := 0
		bestDist := math.Inf(1)
		for c, center := range centers {
			if d := squaredDistance(v, center); d < bestDist {
				best, bestDist = c, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}
	return changed
}

// sortedPartition renumbers clusters by ascending mean and computes inertia.
func sortedPartition(values, centers []float64, labels []int) Partition {
	k := len(centers)
	means := make([]float64, k)
	for c := range centers {
		if members := membersOf(values, labels, c); len(members) > 0 {
			means[c] = floats.Sum(members) / float64(len(members))
		} else {
			means[c] = centers[c]
		}
	}

	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case means[a] < means[b]:
			return -1
		case means[a] > means[b]:
			return 1
		}
		return 0
	})
	rank := make([]int, k)
	sortedMeans := make([]float64, k)
	for r, c := range order {
		rank[c] = r
		sortedMeans[r] = means[c]
	}

	out := Partition{Means: sortedMeans, Labels: make([]int, len(labels))}
	for i, l := range labels {
		out.Labels[i] = rank[l]
		out.Inertia += squaredDistance(values[i], sortedMeans[rank[l]])
	}
	return out
}

func membersOf(values []float64, labels []int, c int) []float64 {
	var out []float64
	for i, l := range labels {
		if l == c {
			out = append(out, values[i])
		}
	}
	return out
}

func nearest(v float64, centers []float64) float64 {
	best := centers[0]
	for _, c := range centers[1:] {
		if math.Abs(v-c) < math.Abs(v-best) {
			best = c
		}
	}
	return best
}

func squaredDistance(a, b float64) float64 {
	d := a - b
	return d * d
}
