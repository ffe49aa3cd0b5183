package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dnaevolve/dnaevolve/internal/config"
	"github.com/dnaevolve/dnaevolve/internal/evolve"
	"github.com/dnaevolve/dnaevolve/internal/fastaio"
	"github.com/dnaevolve/dnaevolve/internal/mutation"
	"github.com/dnaevolve/dnaevolve/internal/newick"
	"github.com/dnaevolve/dnaevolve/internal/prng"
	"github.com/dnaevolve/dnaevolve/internal/rates"
	"github.com/dnaevolve/dnaevolve/internal/refgenome"
	"github.com/dnaevolve/dnaevolve/internal/runstore"
	"github.com/dnaevolve/dnaevolve/internal/varchrom"
	"github.com/dnaevolve/dnaevolve/internal/vcfio"
)

type evolveFlags struct {
	reference string
	refIndex  bool
	chroms    string
	tree      string
	model     string
	gamma     string
	vcf       string
	tips      string
	outDir    string
	gzip      bool
	seed      uint64
	workers   int
	chunkSize int
	lineWidth int
	runStore  string
}

func newEvolveCmd() *cobra.Command {
	f := &evolveFlags{}
	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "Evolve a reference genome along a phylogeny",
		Long: `evolve reads a reference FASTA, a Newick phylogeny, and a mutation
model, and writes one evolved FASTA per tip by sampling substitutions,
insertions, and deletions along every branch of the tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvolve(f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.reference, "reference", "", "reference genome FASTA path (required)")
	flags.BoolVar(&f.refIndex, "reference-index", false, "read --reference via its .fai random-access index instead of loading it whole")
	flags.StringVar(&f.chroms, "chroms", "", "with --reference-index, comma-separated chromosome names to load (default: every indexed chromosome)")
	flags.StringVar(&f.tree, "tree", "", "Newick phylogeny file path (required)")
	flags.StringVar(&f.model, "model", "", "mutation model parameter YAML path (required)")
	flags.StringVar(&f.gamma, "gamma", "", "optional per-chromosome gamma region YAML path")
	flags.StringVar(&f.vcf, "vcf", "", "optional VCF file seeding each chromosome's initial variants")
	flags.StringVar(&f.tips, "tips", "", "comma-separated tip output order (default: sorted leaf labels)")
	flags.StringVar(&f.outDir, "out", ".", "output directory; one FASTA per tip is written here")
	flags.BoolVar(&f.gzip, "gzip", false, "gzip-compress output FASTA files")
	flags.Uint64Var(&f.seed, "seed", 1, "parent PRNG seed (per-chromosome seeds derive from this deterministically)")
	flags.IntVar(&f.workers, "workers", 0, "chromosome-parallel worker count (0 = use config default)")
	flags.IntVar(&f.chunkSize, "chunk-size", 0, "reservoir chunk size override (0 = use model's value)")
	flags.IntVar(&f.lineWidth, "line-width", 60, "FASTA output line width")
	flags.StringVar(&f.runStore, "run-store", "", "optional DuckDB path logging this run (empty = use config run_store_path; no run is logged if both are empty)")

	cmd.MarkFlagRequired("reference")
	cmd.MarkFlagRequired("tree")
	cmd.MarkFlagRequired("model")

	return cmd
}

func runEvolve(f *evolveFlags) error {
	defaults, err := config.Load()
	if err != nil {
		return err
	}
	workers := f.workers
	if workers <= 0 {
		workers = defaults.Workers
	}
	runStorePath := f.runStore
	if runStorePath == "" {
		runStorePath = defaults.RunStorePath
	}

	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	var genome *refgenome.RefGenome
	if f.refIndex {
		var names []string
		if f.chroms != "" {
			names = strings.Split(f.chroms, ",")
			for i := range names {
				names[i] = strings.TrimSpace(names[i])
			}
		}
		genome, err = fastaio.LoadIndexedChroms(f.reference, names)
	} else {
		genome, err = fastaio.Load(f.reference)
	}
	if err != nil {
		return err
	}

	treeText, err := os.ReadFile(f.tree)
	if err != nil {
		return fmt.Errorf("evolve: read tree file %s: %w", f.tree, err)
	}
	tree, err := newick.Parse(string(treeText))
	if err != nil {
		return err
	}

	modelFile, err := config.LoadModelFile(f.model)
	if err != nil {
		return err
	}
	params := modelFile.ToParams()
	if f.chunkSize > 0 {
		params.ChunkSize = f.chunkSize
	} else if params.ChunkSize <= 0 {
		params.ChunkSize = defaults.ChunkSize
	}

	sampler, err := evolve.NewMutationSampler(params)
	if err != nil {
		return err
	}

	tipOrder := tipOrderFromFlagsOrTree(f.tips, tree)
	evolver, err := evolve.NewPhyloEvolver(tree, sampler, tipOrder)
	if err != nil {
		return err
	}

	gammaByChrom := map[string][]rates.Region{}
	if f.gamma != "" {
		gammaByChrom, err = config.LoadGammaFile(f.gamma)
		if err != nil {
			return err
		}
	}

	seedByChrom := map[string][]mutation.Mutation{}
	if f.vcf != "" {
		seedByChrom, err = loadSeedMutations(f.vcf, genome)
		if err != nil {
			return err
		}
	}

	driver := evolve.NewDriver(evolver)
	driver.SetLogger(logger)

	jobs := make(chan evolve.ChromJob, genome.Len())
	for i := 0; i < genome.Len(); i++ {
		chrom := genome.Chrom(i)
		gamma, ok := gammaByChrom[chrom.Name]
		if !ok {
			gamma = config.FlatGammaRegion(chrom.Size())
		}
		jobs <- evolve.ChromJob{
			Seq:           i,
			Ref:           chrom,
			GammaRegions:  gamma,
			SeedMutations: seedByChrom[chrom.Name],
			Src:           prng.NewFromChromIndex(f.seed, i),
		}
	}
	close(jobs)

	results := driver.RunAll(jobs, workers, nil)

	perTip := make([][]*varchrom.VarChrom, len(tipOrder))
	chromNames := make([]string, 0, genome.Len())
	chromRuns := make([]runstore.ChromRun, 0, genome.Len())
	runID := fmt.Sprintf("run-%d", f.seed)

	collectErr := evolve.OrderedCollect(results, func(r evolve.ChromResult) error {
		if r.Err != nil && r.Err != evolve.ErrInterrupted {
			return r.Err
		}
		name := genome.Chrom(r.Seq).Name
		chromNames = append(chromNames, name)

		var subs, ins, dels int64
		var finalSize int64
		for tip, vc := range r.Tips {
			if vc == nil {
				continue
			}
			perTip[tip] = append(perTip[tip], vc)
			for _, m := range vc.Mutations() {
				switch {
				case m.IsSubstitution():
					subs++
				case m.IsInsertion():
					ins++
				case m.IsDeletion():
					dels++
				}
			}
			finalSize = int64(vc.Size())
		}
		chromRuns = append(chromRuns, runstore.ChromRun{
			RunID: runID, ChromName: name,
			NumSubstitutions: subs, NumInsertions: ins, NumDeletions: dels,
			FinalSize: finalSize,
		})
		return nil
	})
	if collectErr != nil {
		return collectErr
	}

	if err := os.MkdirAll(f.outDir, 0755); err != nil {
		return fmt.Errorf("evolve: create output directory %s: %w", f.outDir, err)
	}
	for i, tipLabel := range tipOrder {
		ext := ".fa"
		if f.gzip {
			ext += ".gz"
		}
		outPath := filepath.Join(f.outDir, tipLabel+ext)
		out, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("evolve: create output file %s: %w", outPath, err)
		}
		writeErr := fastaio.Write(out, chromNames, perTip[i], f.lineWidth, f.gzip)
		closeErr := out.Close()
		if writeErr != nil {
			return writeErr
		}
		if closeErr != nil {
			return closeErr
		}
	}

	if runStorePath != "" {
		if err := logRun(runStorePath, runID, f, genome.Len(), chromRuns); err != nil {
			logger.Warn("failed to log run to run store", zap.Error(err))
		}
	}

	return nil
}

func tipOrderFromFlagsOrTree(tipsFlag string, tree *evolve.Phylogeny) []string {
	if tipsFlag != "" {
		parts := strings.Split(tipsFlag, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	labels := make([]string, 0, len(tree.LeafLabels))
	for _, label := range tree.LeafLabels {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// loadSeedMutations parses a VCF file into per-chromosome, VarPos-sorted
// mutation lists ready for varchrom.NewFromMutations.
func loadSeedMutations(path string, genome *refgenome.RefGenome) (map[string][]mutation.Mutation, error) {
	parser, err := vcfio.NewParser(path, genome)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	byChrom := map[string][]mutation.Mutation{}
	for {
		records, err := parser.Next()
		if err != nil {
			return nil, err
		}
		if records == nil {
			break
		}
		for _, rec := range records {
			name := genome.Chrom(rec.ChromIndex).Name
			byChrom[name] = append(byChrom[name], rec.ToMutation())
		}
	}
	for name := range byChrom {
		muts := byChrom[name]
		sort.Slice(muts, func(i, j int) bool { return muts[i].VarPos < muts[j].VarPos })
		byChrom[name] = muts
	}
	return byChrom, nil
}

func logRun(path, runID string, f *evolveFlags, numChroms int, chromRuns []runstore.ChromRun) error {
	store, err := runstore.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	if err := store.InsertRun(runstore.Run{
		RunID: runID, StartedAt: now, FinishedAt: now,
		NewickPath: f.tree, ReferencePath: f.reference,
		Seed: int64(f.seed), NumChromosomes: numChroms, Status: "completed",
	}); err != nil {
		return err
	}
	return store.InsertChromRuns(chromRuns)
}
