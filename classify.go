package gtfcount

import (
	"github.com/grailbio/gtfcount/annotation"
	"github.com/grailbio/gtfcount/mapfile"
)

const (
	exonFeature     = "exon"
	geneFeature     = "gene"
	intergenicLabel = "intergenic"
	noBiotypeLabel  = "na"
)

// Annotator classifies candidate maps against one annotation store and
// feeds count tables. It owns scratch buffers, so each worker needs its
// own; the underlying DB is shared read-only.
type Annotator struct {
	db   *annotation.DB
	exon annotation.TypeID
	gene annotation.TypeID
	hits []*annotation.Entry
}

// NewAnnotator creates an Annotator over db. The catalogue must already
// be indexed.
func NewAnnotator(db *annotation.DB) *Annotator {
	return &Annotator{
		db:   db,
		exon: db.TypeID(exonFeature),
		gene: db.TypeID(geneFeature),
	}
}

// verdict is the outcome of aggregating one candidate map's blocks: the
// chosen gene (the first gene the evidence named; it stays set when the
// multi-gene bit is raised), its biotype, the mean best per-block
// overlap, and the exon/multi-gene evidence bits.
type verdict struct {
	gene    annotation.GeneID
	biotype annotation.BiotypeID
	score   float64
	exonic  bool
	multi   bool
}

// classifyMap derives a verdict for one candidate placement. Each block
// is searched for overlapping exons carrying a gene_id; blocks of an
// entirely intron-contained placement fall back to gene entries. A
// block whose evidence names a gene other than the one already chosen
// raises the multi-gene bit and never overwrites the choice.
func (a *Annotator) classifyMap(m *mapfile.Map) verdict {
	var v verdict
	sum := 0.0
	for _, b := range m.Blocks {
		a.hits = a.db.AppendOverlapping(a.hits[:0], b.Ref, b.Begin, b.End)
		local := 0.0
		for _, e := range a.hits {
			if e.Type != a.exon || e.Gene == annotation.InvalidGene {
				continue
			}
			v.exonic = true
			if v.gene == annotation.InvalidGene || v.gene == e.Gene {
				if over := blockOverlap(e, b); over > local {
					local = over
				}
				v.gene, v.biotype = e.Gene, e.Biotype
			} else {
				v.multi = true
			}
		}
		if !v.exonic {
			for _, e := range a.hits {
				if e.Type != a.gene || e.Gene == annotation.InvalidGene {
					continue
				}
				if v.gene == annotation.InvalidGene || v.gene == e.Gene {
					if over := blockOverlap(e, b); over > local {
						local = over
					}
					v.gene, v.biotype = e.Gene, e.Biotype
				} else {
					v.multi = true
				}
			}
		}
		sum += local
	}
	if len(m.Blocks) > 0 {
		v.score = sum / float64(len(m.Blocks))
	}
	return v
}

// blockOverlap is the fraction of the block's length covered by the
// feature after clipping the feature to the block. The subtraction is
// carried out in signed arithmetic so that degenerate intervals cannot
// wrap; the end-minus-start lengths are kept as-is for compatibility
// with existing outputs.
func blockOverlap(e *annotation.Entry, b mapfile.Block) float64 {
	readLen := float64(b.End - b.Begin)
	featLen := int64(e.End - e.Start)
	var s, t int64
	if e.Start < b.Begin {
		s = int64(b.Begin - e.Start)
	}
	if e.End > b.End {
		t = int64(e.End - b.End)
	}
	return float64(featLen-s-t) / readLen
}

// Count classifies one template and updates c. Single-end templates and
// paired templates without an accepted pairing count each end
// independently; paired templates with exactly one accepted pairing go
// through the pair classifier.
func (a *Annotator) Count(t *mapfile.Template, c *Counts) {
	if !t.Paired() {
		a.countEnd(t.Ends[0], c)
		return
	}
	if len(t.MMaps) != 1 {
		a.countEnd(t.Ends[0], c)
		a.countEnd(t.Ends[1], c)
		return
	}
	a.countPair(t.MMaps[0], c)
}

// countEnd counts one end on its own. Only uniquely mapped ends carry
// usable evidence; everything else is dropped.
func (a *Annotator) countEnd(al *mapfile.Alignment, c *Counts) {
	if !al.Mapped() || len(al.Maps) != 1 {
		return
	}
	c.Reads++
	c.Pairs.SingleEnd++
	a.apply(a.classifyMap(al.Maps[0]), c)
}

// countPair classifies the unique accepted pairing of a paired
// template. Both end verdicts feed the per-read tables; the pair as a
// whole lands in exactly one of the single/multi/no-gene buckets.
func (a *Annotator) countPair(mm mapfile.MMap, c *Counts) {
	v1 := a.classifyMap(mm.End1)
	v2 := a.classifyMap(mm.End2)
	a.apply(v1, c)
	a.apply(v2, c)
	c.Reads += 2
	g1, g2 := pairGene(v1), pairGene(v2)
	switch {
	case g1 != annotation.InvalidGene && g1 == g2:
		c.Pairs.SingleGene++
		c.PairPatterns[a.label(v1)+"-"+a.label(v2)]++
	case g1 != annotation.InvalidGene && g2 != annotation.InvalidGene:
		c.Pairs.MultiGene++
	default:
		c.Pairs.NoGene++
	}
}

// pairGene is the gene an end contributes to pair classification; a
// multi-gene end contributes none.
func pairGene(v verdict) annotation.GeneID {
	if v.multi {
		return annotation.InvalidGene
	}
	return v.gene
}

// apply folds one verdict into the count tables.
func (a *Annotator) apply(v verdict, c *Counts) {
	label := a.label(v)
	switch {
	case v.multi:
		c.Types[label+MultiGeneSuffix]++
	case v.gene != annotation.InvalidGene:
		c.Types[label]++
		c.Genes[a.db.GeneName(v.gene)]++
		if v.exonic {
			key := noBiotypeLabel
			if v.biotype != annotation.InvalidBiotype {
				key = a.db.BiotypeName(v.biotype)
			}
			c.GeneTypes[key]++
		}
	default:
		c.Types[intergenicLabel]++
	}
}

// label names the feature type that produced a verdict's evidence.
func (a *Annotator) label(v verdict) string {
	switch {
	case v.exonic:
		return exonFeature
	case v.gene != annotation.InvalidGene || v.multi:
		return geneFeature
	default:
		return intergenicLabel
	}
}
