package mapper

import (
	"github.com/montanaflynn/stats"

	"github.com/bdsul/grace/genome"
)

// Summary describes a decoded population. Size figures are computed over valid genomes only.
type Summary struct {
	Count           int     `json:"count"`
	Valid           int     `json:"valid"`
	WrapEvents      int     `json:"wrapEvents"`
	MeanEffective   float64 `json:"meanEffective"`
	MedianEffective float64 `json:"medianEffective"`
	MaxEffective    float64 `json:"maxEffective"`
	StdDevEffective float64 `json:"stdDevEffective"`
}

// Summarize collects statistics of the last decode of each genome.
func Summarize(genomes []*genome.Genome) Summary {
	s := Summary{Count: len(genomes)}
	sizes := make(stats.Float64Data, 0, len(genomes))
	for _, g := range genomes {
		s.WrapEvents += g.WrapEvents
		if g.PhenotypeValid {
			s.Valid++
			sizes = append(sizes, float64(g.EffectiveSize))
		}
	}
	if len(sizes) == 0 {
		return s
	}

	s.MeanEffective, _ = sizes.Mean()
	s.MedianEffective, _ = sizes.Median()
	s.MaxEffective, _ = sizes.Max()
	s.StdDevEffective, _ = sizes.StandardDeviation()
	return s
}

// ValidRatio returns the share of valid genomes or 0 for empty population.
func (s Summary) ValidRatio() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Valid) / float64(s.Count)
}
