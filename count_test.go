package gtfcount

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/grailbio/gtfcount/annotation"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func buildTestCatalogue(t *testing.T) *annotation.DB {
	b := strings.Builder{}
	for g := 0; g < 20; g++ {
		ref := fmt.Sprintf("chr%d", g%4+1)
		start := 1 + g*10000
		fmt.Fprintf(&b, "%s\t.\tgene\t%d\t%d\t.\t+\t.\tgene_id \"G%d\"; gene_type \"protein_coding\";\n",
			ref, start, start+8000, g)
		for x := 0; x < 4; x++ {
			es := start + x*2000
			fmt.Fprintf(&b, "%s\t.\texon\t%d\t%d\t.\t+\t.\tgene_id \"G%d\"; gene_type \"protein_coding\";\n",
				ref, es, es+500, g)
		}
	}
	d := annotation.NewDB()
	assert.NoError(t, d.LoadGTF(strings.NewReader(b.String())))
	return d
}

func makePairedInput(n int, seed int64) string {
	r := rand.New(rand.NewSource(seed))
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		g := r.Intn(20)
		ref := fmt.Sprintf("chr%d", g%4+1)
		start := 1 + g*10000 + r.Intn(8000)
		switch r.Intn(5) {
		case 0: // unmapped template
			fmt.Fprintf(&b, "r%d\tACGT AAAA\tIIII IIII\t0\t-\n", i)
		case 1: // one-sided pair
			fmt.Fprintf(&b, "r%d\tACGT AAAA\tIIII IIII\t0:1\t%s:+:%d:50::-\n", i, ref, start)
		case 2: // multiple accepted pairings
			fmt.Fprintf(&b, "r%d\tACGT AAAA\tIIII IIII\t0:2\t%s:+:%d:50::%s:-:%d:50,%s:+:%d:50::%s:-:%d:50\n",
				i, ref, start, ref, start+200, ref, start+20, ref, start+220)
		default: // unique pairing
			fmt.Fprintf(&b, "r%d\tACGT AAAA\tIIII IIII\t0:1\t%s:+:%d:50::%s:-:%d:50\n",
				i, ref, start, ref, start+200)
		}
	}
	return b.String()
}

func runCount(t *testing.T, db *annotation.DB, input string, workers int) *Counts {
	opts := DefaultOpts
	opts.Paired = true
	opts.Parallelism = workers
	opts.ChunkSize = 16
	c, err := Count(context.Background(), strings.NewReader(input), db, opts)
	assert.NoError(t, err)
	return c
}

func TestCountDeterministicAcrossWorkers(t *testing.T) {
	db := buildTestCatalogue(t)
	input := makePairedInput(2000, 42)
	c1 := runCount(t, db, input, 1)
	c8 := runCount(t, db, input, 8)
	expect.EQ(t, c1.Genes, c8.Genes)
	expect.EQ(t, c1.Types, c8.Types)
	expect.EQ(t, c1.GeneTypes, c8.GeneTypes)
	expect.EQ(t, c1.PairPatterns, c8.PairPatterns)
	expect.EQ(t, c1.Pairs, c8.Pairs)
	expect.EQ(t, c1.Reads, c8.Reads)
}

func TestCountConservation(t *testing.T) {
	db := buildTestCatalogue(t)
	c := runCount(t, db, makePairedInput(1000, 7), 4)

	var patterns uint64
	for _, v := range c.PairPatterns {
		patterns += v
	}
	p := c.Pairs
	expect.EQ(t, patterns, p.SingleGene)
	expect.EQ(t, c.Reads, 2*(p.SingleGene+p.MultiGene+p.NoGene)+p.SingleEnd)

	// Every counted read lands in exactly one type bucket.
	var types uint64
	for _, v := range c.Types {
		types += v
	}
	expect.EQ(t, types, c.Reads)
}

func TestCountSingleEndStream(t *testing.T) {
	db := buildTestCatalogue(t)
	input := "r1\tACGT\tIIII\t0:1\tchr1:+:100:50\n" +
		"r2\tACGT\tIIII\t0\t-\n" +
		"r3\tACGT\tIIII\t0:2\tchr1:+:100:50,chr1:+:300:50\n"
	opts := DefaultOpts
	c, err := Count(context.Background(), strings.NewReader(input), db, opts)
	assert.NoError(t, err)
	expect.EQ(t, c.Reads, uint64(1))
	expect.EQ(t, c.Pairs.SingleEnd, uint64(1))
	expect.EQ(t, c.Genes, map[string]uint64{"G0": 1})
}

func TestCountSAMStream(t *testing.T) {
	db := buildTestCatalogue(t)
	sam := "@HD\tVN:1.6\n@SQ\tSN:chr1\tLN:1000000\n" +
		"r1\t0\tchr1\t100\t60\t50M\t*\t0\t0\t*\t*\n" +
		"r2\t4\t*\t0\t0\t*\t*\t0\t0\t*\t*\n"
	c, err := CountSAM(context.Background(), strings.NewReader(sam), db, DefaultOpts)
	assert.NoError(t, err)
	expect.EQ(t, c.Genes, map[string]uint64{"G0": 1})
	expect.EQ(t, c.Pairs.SingleEnd, uint64(1))
}

func TestMerge(t *testing.T) {
	a := NewCounts()
	a.Genes["G1"] = 2
	a.Types["exon"] = 2
	a.Pairs.SingleGene = 1
	a.Reads = 2
	b := NewCounts()
	b.Genes["G1"] = 1
	b.Genes["G2"] = 5
	b.Types["exon_mg"] = 1
	b.Pairs.SingleEnd = 3
	b.Reads = 4
	a.Merge(b)
	expect.EQ(t, a.Genes, map[string]uint64{"G1": 3, "G2": 5})
	expect.EQ(t, a.Types, map[string]uint64{"exon": 2, "exon_mg": 1})
	expect.EQ(t, a.Pairs, PairCounts{SingleGene: 1, SingleEnd: 3})
	expect.EQ(t, a.Reads, uint64(6))
}
