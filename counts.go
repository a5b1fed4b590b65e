package gtfcount

// MultiGeneSuffix marks feature-type keys whose evidence implicated
// more than one gene.
const MultiGeneSuffix = "_mg"

// PairCounts summarises how paired templates distribute over genes.
type PairCounts struct {
	// SingleGene counts pairs whose two ends hit the same gene.
	SingleGene uint64
	// MultiGene counts pairs whose ends hit different genes.
	MultiGene uint64
	// NoGene counts pairs where at least one end hit no gene.
	NoGene uint64
	// SingleEnd counts reads that were counted individually.
	SingleEnd uint64
}

// Counts holds the aggregate tables produced by a counting run. Tables
// are keyed by interned catalogue strings; values are read counts.
type Counts struct {
	// Genes counts uniquely attributed reads per gene.
	Genes map[string]uint64
	// Types counts reads per feature-type label; multi-gene evidence is
	// keyed with the MultiGeneSuffix.
	Types map[string]uint64
	// GeneTypes counts exonic single-gene reads per gene biotype.
	GeneTypes map[string]uint64
	// PairPatterns counts single-gene pairs per ordered end-label pair.
	PairPatterns map[string]uint64
	Pairs        PairCounts
	// Reads is the number of uniquely mapped reads processed; the
	// denominator for the report percentages.
	Reads uint64
}

// NewCounts creates an empty count table set.
func NewCounts() *Counts {
	return &Counts{
		Genes:        map[string]uint64{},
		Types:        map[string]uint64{},
		GeneTypes:    map[string]uint64{},
		PairPatterns: map[string]uint64{},
	}
}

// Merge adds o's tables into c key-wise.
func (c *Counts) Merge(o *Counts) {
	mergeTable(c.Genes, o.Genes)
	mergeTable(c.Types, o.Types)
	mergeTable(c.GeneTypes, o.GeneTypes)
	mergeTable(c.PairPatterns, o.PairPatterns)
	c.Pairs.SingleGene += o.Pairs.SingleGene
	c.Pairs.MultiGene += o.Pairs.MultiGene
	c.Pairs.NoGene += o.Pairs.NoGene
	c.Pairs.SingleEnd += o.Pairs.SingleEnd
	c.Reads += o.Reads
}

func mergeTable(dst, src map[string]uint64) {
	for k, v := range src {
		dst[k] += v
	}
}
