// Package optimizer quantifies the tradeoff between two convergence
// strategies over synthetic trajectories: exhaustive per-step recomputation
// ("data-driven") versus amortized incremental estimation ("fast
// compounding"). Every run is seeded and the output is byte-reproducible.
package optimizer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"trajan/internal/stats"
	"trajan/internal/vecmath"
)

// DefaultSeed keeps study output reproducible across invocations and tests.
const DefaultSeed = 42

// DefaultAlpha is the fast-compounding EWMA weight.
const DefaultAlpha = 0.15

// Config describes one comparison study.
type Config struct {
	// Lengths are the synthetic trajectory lengths to compare at.
	Lengths []int

	// Seed feeds the synthetic generator. Each length derives its own
	// sub-seed so worker scheduling cannot perturb results.
	Seed int64

	// Alpha is the fast-compounding update weight:
	// est = normalize((1-alpha)*est + alpha*obs).
	Alpha float64

	// Workers bounds the number of lengths simulated concurrently.
	Workers int
}

// DefaultConfig returns the documented study defaults.
func DefaultConfig() Config {
	return Config{
		Lengths: []int{10, 100, 1000},
		Seed:    DefaultSeed,
		Alpha:   DefaultAlpha,
		Workers: 1,
	}
}

// LengthResult compares the two strategies at one trajectory length.
type LengthResult struct {
	Length int `json:"trajectory_length"`

	// CostRatio is data-driven cost over fast-compounding cost under the
	// step-count cost model: recomputing at step n costs n units, an
	// incremental update costs 1.
	CostRatio float64 `json:"cost_ratio"`

	// ErrorMagnitude is the mean angular distance (degrees) between the
	// fast-compounding efficiency vector and the exact one across steps.
	ErrorMagnitude float64 `json:"error_magnitude"`

	// EfficiencyDelta is the final-step efficiency score of fast
	// compounding minus the data-driven score.
	EfficiencyDelta float64 `json:"efficiency_delta"`
}

// Aggregate summarizes a study across all tested lengths.
type Aggregate struct {
	MeanCostRatio       float64 `json:"mean_cost_ratio"`
	MeanErrorMagnitude  float64 `json:"mean_error_magnitude"`
	MaxErrorMagnitude   float64 `json:"max_error_magnitude"`
	MeanEfficiencyDelta float64 `json:"mean_efficiency_delta"`
}

// Report is the full study output, ordered by trajectory length.
type Report struct {
	Seed      int64          `json:"seed"`
	Alpha     float64        `json:"alpha"`
	Results   []LengthResult `json:"results"`
	Aggregate Aggregate      `json:"aggregate"`
}

// MarshalWire renders the report in the published wire shape: one key per
// trajectory length plus an "aggregate" key. Key order is deterministic.
func (r Report) MarshalWire() ([]byte, error) {
	wire := make(map[string]any, len(r.Results)+1)
	for _, res := range r.Results {
		wire[strconv.Itoa(res.Length)] = map[string]float64{
			"cost_ratio":       res.CostRatio,
			"error_magnitude":  res.ErrorMagnitude,
			"efficiency_delta": res.EfficiencyDelta,
		}
	}
	wire["aggregate"] = r.Aggregate
	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Run executes the study. Lengths are simulated independently, possibly in
// parallel, and results are re-ordered by length before aggregation, so the
// report is identical regardless of worker completion order.
func Run(ctx context.Context, cfg Config) (Report, error) {
	if len(cfg.Lengths) == 0 {
		cfg.Lengths = DefaultConfig().Lengths
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		cfg.Alpha = DefaultAlpha
	}
	for _, length := range cfg.Lengths {
		if length < 2 {
			return Report{}, fmt.Errorf("trajectory length must be at least 2, got %d", length)
		}
	}

	type job struct {
		idx    int
		length int
	}
	type result struct {
		idx int
		res LengthResult
		err error
	}

	jobs := make(chan job)
	results := make(chan result, len(cfg.Lengths))

	workerCount := cfg.Workers
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(cfg.Lengths) {
		workerCount = len(cfg.Lengths)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				res, err := compareAtLength(j.length, subSeed(cfg.Seed, j.length), cfg.Alpha)
				results <- result{idx: j.idx, res: res, err: err}
			}
		}()
	}

	for i, length := range cfg.Lengths {
		jobs <- job{idx: i, length: length}
	}
	close(jobs)
	wg.Wait()
	close(results)

	ordered := make([]LengthResult, len(cfg.Lengths))
	for r := range results {
		if r.err != nil {
			return Report{}, r.err
		}
		ordered[r.idx] = r.res
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Length < ordered[j].Length })

	return Report{
		Seed:      cfg.Seed,
		Alpha:     cfg.Alpha,
		Results:   ordered,
		Aggregate: aggregate(ordered),
	}, nil
}

// subSeed derives a per-length seed so that adding or removing lengths from
// a study never shifts another length's stream.
func subSeed(seed int64, length int) int64 {
	return seed*1_000_003 + int64(length)
}

func aggregate(results []LengthResult) Aggregate {
	if len(results) == 0 {
		return Aggregate{}
	}
	ratios := make([]float64, 0, len(results))
	errorMags := make([]float64, 0, len(results))
	deltas := make([]float64, 0, len(results))
	for _, r := range results {
		ratios = append(ratios, r.CostRatio)
		errorMags = append(errorMags, r.ErrorMagnitude)
		deltas = append(deltas, r.EfficiencyDelta)
	}
	var agg Aggregate
	agg.MeanCostRatio, _ = stats.Avg(ratios)
	agg.MeanErrorMagnitude, _ = stats.Avg(errorMags)
	agg.MaxErrorMagnitude = stats.Max(errorMags)
	agg.MeanEfficiencyDelta, _ = stats.Avg(deltas)
	return agg
}

// compareAtLength walks one synthetic trajectory, feeding the same
// observations to both strategies step by step.
func compareAtLength(length int, seed int64, alpha float64) (LengthResult, error) {
	gen := newGenerator(seed)
	exact := newDataDriven()
	fast := newFastCompounding(alpha)

	var costExact, costFast float64
	var angularErrSum float64
	var lastExactScore, lastFastScore float64

	for step := 1; step <= length; step++ {
		obs := gen.next()

		exactBases, stepCost, err := exact.observe(obs)
		if err != nil {
			return LengthResult{}, fmt.Errorf("data-driven step %d: %w", step, err)
		}
		costExact += stepCost

		fastBases, stepCost, err := fast.observe(obs)
		if err != nil {
			return LengthResult{}, fmt.Errorf("fast-compounding step %d: %w", step, err)
		}
		costFast += stepCost

		exactEff, exactScore, err := efficiencyOf(exactBases)
		if err != nil {
			return LengthResult{}, fmt.Errorf("data-driven efficiency at step %d: %w", step, err)
		}
		fastEff, fastScore, err := efficiencyOf(fastBases)
		if err != nil {
			return LengthResult{}, fmt.Errorf("fast-compounding efficiency at step %d: %w", step, err)
		}

		angularErrSum += vecmath.AngleBetween(fastEff, exactEff)
		lastExactScore = exactScore
		lastFastScore = fastScore
	}

	return LengthResult{
		Length:          length,
		CostRatio:       costExact / costFast,
		ErrorMagnitude:  angularErrSum / float64(length),
		EfficiencyDelta: lastFastScore - lastExactScore,
	}, nil
}

// efficiencyOf returns the efficiency vector and score implied by a base
// triple, per the engine's definition.
func efficiencyOf(bases [3]vecmath.Vec3) (vecmath.Vec3, float64, error) {
	eff, err := vecmath.Normalize(bases[0].Add(bases[1]).Add(bases[2]))
	if err != nil {
		return vecmath.Vec3{}, 0, err
	}
	score := (vecmath.CosineSimilarity(eff, bases[0]) +
		vecmath.CosineSimilarity(eff, bases[1]) +
		vecmath.CosineSimilarity(eff, bases[2])) / 3
	return eff, score, nil
}
