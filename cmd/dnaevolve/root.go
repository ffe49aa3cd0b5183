package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dnaevolve",
		Short: "Simulate DNA sequence evolution along a phylogeny",
		Long: `dnaevolve evolves variant genomes along a phylogenetic tree using a
continuous-time nucleotide substitution/indel model, writing the
resulting tip sequences as FASTA.`,
		SilenceUsage: true,
	}

	var showVersion bool
	cmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("dnaevolve version %s (%s) built %s\n", version, commit, date)
			return nil
		}
		return cmd.Help()
	}

	cmd.AddCommand(newEvolveCmd())
	cmd.AddCommand(newConfigCmd())
	return cmd
}
