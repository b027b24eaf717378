// internal/timing/classifier.go
package timing

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/womat/debug"
	"gonum.org/v1/gonum/floats"

	"github.com/ColonelBlimp/morsedecoder/internal/signal"
)

// Classifier defaults
const (
	// DefaultTrials is the number of k-means++ initializations per signal
	DefaultTrials = 21
	// DefaultMaxIterations bounds Lloyd iterations per trial
	DefaultMaxIterations = 300
	// DefaultSeed seeds the per-trial random streams
	DefaultSeed = 1
	// MaxBaselineDistinct is the largest number of distinct run lengths
	// handled by the baseline strategy. Clustering needs one value per tier.
	MaxBaselineDistinct = 2
)

var (
	// ErrInvalidTrials indicates the number of k-means trials must be positive
	ErrInvalidTrials = errors.New("kmeans trials must be positive")
	// ErrInvalidIterations indicates the iteration limit must be positive
	ErrInvalidIterations = errors.New("kmeans iterations must be positive")
)

// Strategy records how a signal was classified.
type Strategy uint8

const (
	// StrategyNone means there was nothing to classify
	StrategyNone Strategy = iota
	// StrategyBaseline assumes one consistent unit equal to the shortest run
	StrategyBaseline
	// StrategyAdaptive clusters run lengths into tiers and estimates the unit
	StrategyAdaptive
)

func (s Strategy) String() string {
	switch s {
	case StrategyBaseline:
		return "baseline"
	case StrategyAdaptive:
		return "adaptive"
	}
	return "none"
}

// Options configures the adaptive classifier.
type Options struct {
	// Trials is the number of k-means++ initializations (from config: kmeans_trials)
	Trials int
	// MaxIterations bounds Lloyd iterations per trial (from config: kmeans_iterations)
	MaxIterations int
	// Seed seeds the trial random streams (from config: kmeans_seed)
	Seed uint64
	// BoundaryCorrection reassigns lengths to the tier nearest a multiple of
	// the estimated unit (from config: boundary_correction)
	BoundaryCorrection bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Trials:             DefaultTrials,
		MaxIterations:      DefaultMaxIterations,
		Seed:               DefaultSeed,
		BoundaryCorrection: true,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Trials <= 0 {
		return ErrInvalidTrials
	}
	if o.MaxIterations <= 0 {
		return ErrInvalidIterations
	}
	return nil
}

// Classification is the classifier output for one run sequence.
type Classification struct {
	Strategy Strategy
	// Unit is the estimated duration of one dit in samples
	Unit float64
	// Classes holds one class per run, in run order
	Classes []Class
	// Clusters holds the distinct lengths per tier as clustered (adaptive only)
	Clusters [TierCount][]int
	// Tiers holds the distinct lengths per tier after boundary correction (adaptive only)
	Tiers [TierCount][]int
}

// Classifier assigns symbol classes to runs.
type Classifier struct {
	opts Options
}

// NewClassifier creates a classifier with the given options.
func NewClassifier(opts Options) (*Classifier, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{opts: opts}, nil
}

// Options returns the classifier options.
func (c *Classifier) Options() Options {
	return c.opts
}

// Classify picks the baseline strategy for signals with at most two distinct
// run lengths and the adaptive strategy otherwise.
func (c *Classifier) Classify(runs signal.Runs) (Classification, error) {
	if len(runs) == 0 {
		return Classification{}, nil
	}
	if len(runs.Distinct()) <= MaxBaselineDistinct {
		return Baseline(runs), nil
	}
	return c.adaptive(runs)
}

// Baseline classifies every run by the nearest legal multiple of the shortest
// run length.
func Baseline(runs signal.Runs) Classification {
	if len(runs) == 0 {
		return Classification{}
	}

	unit := float64(runs.Min())
	classes := make([]Class, len(runs))
	for i, r := range runs {
		classes[i] = nearestClass(r, unit)
	}
	debug.TraceLog.Printf("baseline unit %v, classes %v", unit, classes)

	return Classification{
		Strategy: StrategyBaseline,
		Unit:     unit,
		Classes:  classes,
	}
}

// nearestClass returns the legal class whose length is closest to the run.
func nearestClass(r signal.Run, unit float64) Class {
	candidates := ClassesFor(r.Kind)
	best := candidates[0]
	bestDiff := math.Inf(1)
	for _, cl := range candidates {
		diff := math.Abs(float64(r.Length) - float64(cl.Units())*unit)
		if diff < bestDiff {
			best, bestDiff = cl, diff
		}
	}
	return best
}

func (c *Classifier) adaptive(runs signal.Runs) (Classification, error) {
	distinct := runs.Distinct()
	values := make([]float64, len(distinct))
	for i, l := range distinct {
		values[i] = float64(l)
	}

	part, err := KMeans1D(values, int(TierCount), c.opts)
	if err != nil {
		return Classification{}, fmt.Errorf("cluster run lengths: %w", err)
	}

	var clusters [TierCount][]int
	clustered := make(map[int]Tier, len(distinct))
	for i, l := range distinct {
		t := Tier(part.Labels[i])
		clusters[t] = append(clusters[t], l)
		clustered[l] = t
	}
	debug.DebugLog.Printf("clusters (short, medium, long): %v, %v, %v", clusters[Short], clusters[Medium], clusters[Long])

	unit := EstimateUnit(clusters[Short], clusters[Medium])
	if unit <= 0 {
		unit = values[0]
	}
	debug.DebugLog.Printf("timing unit: %v", unit)

	tiers := clusters
	assigned := clustered
	if c.opts.BoundaryCorrection {
		tiers, assigned = correctBoundaries(distinct, unit, clustered)
		debug.DebugLog.Printf("adjusted clusters (short, medium, long): %v, %v, %v", tiers[Short], tiers[Medium], tiers[Long])
	}

	classes := make([]Class, len(runs))
	for i, r := range runs {
		classes[i] = ClassFor(r.Kind, assigned[r.Length])
	}

	return Classification{
		Strategy: StrategyAdaptive,
		Unit:     unit,
		Classes:  classes,
		Clusters: clusters,
		Tiers:    tiers,
	}, nil
}

// EstimateUnit averages every short length with every medium length scaled
// down by the dah ratio. Returns 0 when both tiers are empty.
func EstimateUnit(short, medium []int) float64 {
	samples := make([]float64, 0, len(short)+len(medium))
	for _, l := range short {
		samples = append(samples, float64(l))
	}
	for _, l := range medium {
		samples = append(samples, float64(l)/Medium.Multiple())
	}
	if len(samples) == 0 {
		return 0
	}
	return floats.Sum(samples) / float64(len(samples))
}

// correctBoundaries moves every length to the tier whose multiple of unit it
// is closest to. Lengths equidistant from two multiples keep their
// clustered tier.
func correctBoundaries(distinct []int, unit float64, clustered map[int]Tier) ([TierCount][]int, map[int]Tier) {
	var tiers [TierCount][]int
	assigned := make(map[int]Tier, len(distinct))

	for _, l := range distinct {
		var diffs [TierCount]float64
		for t := Short; t < TierCount; t++ {
			diffs[t] = math.Abs(float64(l) - t.Multiple()*unit)
		}
		minDiff := slices.Min(diffs[:])

		var nearestTiers []Tier
		for t := Short; t < TierCount; t++ {
			if diffs[t] == minDiff {
				nearestTiers = append(nearestTiers, t)
			}
		}

		t := clustered[l]
		if len(nearestTiers) == 1 {
			t = nearestTiers[0]
		} else {
			debug.TraceLog.Printf("length %d equidistant from tiers %v, keeping %v", l, nearestTiers, t)
		}
		if t != clustered[l] {
			debug.TraceLog.Printf("length %d moved from %v to %v tier", l, clustered[l], t)
		}
		tiers[t] = append(tiers[t], l)
		assigned[l] = t
	}
	return tiers, assigned
}
