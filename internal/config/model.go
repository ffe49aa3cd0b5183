package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dnaevolve/dnaevolve/internal/evolve"
	"github.com/dnaevolve/dnaevolve/internal/rates"
)

// ModelFile is the on-disk (YAML) shape of a mutation model's parameter
// surface, matching evolve.Params field-for-field. Kept distinct from
// Defaults: Defaults is ambient CLI configuration (~/.dnaevolve.yaml),
// ModelFile is a per-run, per-organism input the user supplies with
// `dnaevolve evolve --model`.
type ModelFile struct {
	PiTCAG            [4]float64 `yaml:"pi_tcag"`
	Alpha1            float64    `yaml:"alpha1"`
	Alpha2            float64    `yaml:"alpha2"`
	Beta              float64    `yaml:"beta"`
	Xi                float64    `yaml:"xi"`
	Psi               float64    `yaml:"psi"`
	InsertionLengths  []int      `yaml:"insertion_lengths"`
	DeletionLengths   []int      `yaml:"deletion_lengths"`
	RelInsertionRates []float64  `yaml:"rel_insertion_rates"`
	RelDeletionRates  []float64  `yaml:"rel_deletion_rates"`
	ChunkSize         int        `yaml:"chunk_size"`
}

// LoadModelFile reads and parses a model parameter YAML file.
func LoadModelFile(path string) (ModelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelFile{}, fmt.Errorf("config: read model file %s: %w", path, err)
	}
	var m ModelFile
	if err := yaml.Unmarshal(data, &m); err != nil {
		return ModelFile{}, fmt.Errorf("config: parse model file %s: %w", path, err)
	}
	return m, nil
}

// ToParams converts a parsed ModelFile into evolve.Params.
func (m ModelFile) ToParams() evolve.Params {
	return evolve.Params{
		PiTCAG:            m.PiTCAG,
		Alpha1:            m.Alpha1,
		Alpha2:            m.Alpha2,
		Beta:              m.Beta,
		Xi:                m.Xi,
		Psi:               m.Psi,
		InsertionLengths:  m.InsertionLengths,
		DeletionLengths:   m.DeletionLengths,
		RelInsertionRates: m.RelInsertionRates,
		RelDeletionRates:  m.RelDeletionRates,
		ChunkSize:         m.ChunkSize,
	}
}

// gammaRegionYAML is one chromosome's gamma region entry in a gamma_mat
// file: a run of variant positions ending at End (inclusive), sharing a
// rate multiplier Gamma.
type gammaRegionYAML struct {
	End   int     `yaml:"end"`
	Gamma float64 `yaml:"gamma"`
}

// LoadGammaFile reads a YAML file mapping chromosome name to its ordered
// gamma region list, e.g.:
//
//	chr1:
//	  - end: 999
//	    gamma: 1.0
//	  - end: 1999
//	    gamma: 2.5
func LoadGammaFile(path string) (map[string][]rates.Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read gamma file %s: %w", path, err)
	}
	var raw map[string][]gammaRegionYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse gamma file %s: %w", path, err)
	}

	out := make(map[string][]rates.Region, len(raw))
	for chrom, entries := range raw {
		regions := make([]rates.Region, len(entries))
		for i, e := range entries {
			regions[i] = rates.Region{End: e.End, Gamma: e.Gamma}
		}
		out[chrom] = regions
	}
	return out, nil
}

// FlatGammaRegion returns a single gamma region of multiplier 1.0
// spanning the whole chromosome, used when no gamma file covers it.
func FlatGammaRegion(chromSize int) []rates.Region {
	return []rates.Region{{End: chromSize - 1, Gamma: 1.0}}
}
