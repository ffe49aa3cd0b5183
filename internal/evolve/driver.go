package evolve

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/dnaevolve/dnaevolve/internal/mutation"
	"github.com/dnaevolve/dnaevolve/internal/prng"
	"github.com/dnaevolve/dnaevolve/internal/rates"
	"github.com/dnaevolve/dnaevolve/internal/refgenome"
	"github.com/dnaevolve/dnaevolve/internal/varchrom"
)

// ChromJob is one chromosome's worth of work for the parallel driver:
// its reference sequence, its gamma regions, and its own PRNG (seeds
// derived deterministically by chromosome index, so a run is
// reproducible regardless of worker scheduling order). SeedMutations is
// optional VCF-ingested initial state (nil starts from an unmutated
// reference).
type ChromJob struct {
	Seq           int
	Ref           *refgenome.RefChrom
	GammaRegions  []rates.Region
	SeedMutations []mutation.Mutation
	Src           prng.Source
}

// ChromResult is one chromosome's evolved output: one VarChrom per tip,
// in ordered-tip-label slot order.
type ChromResult struct {
	Seq    int
	Tips   []*varchrom.VarChrom
	Err    error
}

// Driver runs a PhyloEvolver across many chromosomes in parallel on a
// fixed pool of worker goroutines; each chromosome is evolved by one
// worker with its own VarChrom tree state and PRNG (no data shared
// mutably across workers), and results are reassembled with
// OrderedCollect.
type Driver struct {
	evolver *PhyloEvolver
	logger  *zap.Logger
}

// NewDriver builds a Driver for the given evolver, logging to a no-op
// logger until SetLogger is called.
func NewDriver(evolver *PhyloEvolver) *Driver {
	return &Driver{evolver: evolver, logger: zap.NewNop()}
}

// SetLogger sets the logger used to report per-chromosome interruption
// warnings.
func (d *Driver) SetLogger(l *zap.Logger) {
	d.logger = l
}

// RunAll evolves every job in jobs using a pool of workers (runtime.NumCPU
// if workers <= 0), checking shouldAbort before each phylogeny branch
// step within each chromosome. Results are delivered to the returned
// channel in arrival order; use OrderedCollect to consume them by Seq.
// A chromosome whose evolver returns ErrInterrupted is not treated as
// fatal to the run: its partial tip states are reported alongside the
// error, and other chromosomes proceed unaffected.
func (d *Driver) RunAll(jobs <-chan ChromJob, workers int, shouldAbort func() bool) <-chan ChromResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make(chan ChromResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for job := range jobs {
				tips, err := d.evolver.RunSeeded(job.Ref, job.SeedMutations, job.GammaRegions, job.Src, shouldAbort)
				if err == ErrInterrupted {
					d.logger.Warn("chromosome evolution interrupted; partial mutations are in place",
						zap.Int("seq", job.Seq), zap.String("chrom", job.Ref.Name))
				}
				results <- ChromResult{Seq: job.Seq, Tips: tips, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order,
// buffering out-of-order arrivals. Blocks until results is closed.
func OrderedCollect(results <-chan ChromResult, fn func(ChromResult) error) error {
	pending := make(map[int]ChromResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r
		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				for range results {
				}
				return err
			}
		}
	}
	return nil
}
