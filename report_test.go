package gtfcount

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func reportCounts() *Counts {
	c := NewCounts()
	c.Genes["G1"] = 3
	c.Genes["G2"] = 1
	c.Types["exon"] = 3
	c.Types["gene"] = 1
	c.Types["exon_mg"] = 2
	c.Types["intergenic"] = 2
	c.GeneTypes["protein_coding"] = 3
	c.PairPatterns["exon-exon"] = 1
	c.Pairs = PairCounts{SingleGene: 1, MultiGene: 1, NoGene: 1, SingleEnd: 2}
	c.Reads = 8
	return c
}

func TestWriteReport(t *testing.T) {
	buf := bytes.Buffer{}
	assert.NoError(t, WriteReport(&buf, reportCounts()))
	out := buf.String()

	expect.True(t, strings.Contains(out,
		"Annotation type counts for single gene hits (Single: 6 (75.00%))"), "got:\n%s", out)
	expect.True(t, strings.Contains(out,
		"Annotation type counts for multi gene hits (Multi: 2 (25.00%))"), "got:\n%s", out)
	expect.True(t, strings.Contains(out, "Gene type counts for single gene Exons (3)"), "got:\n%s", out)
	expect.True(t, strings.Contains(out, "Paired-read patterns (1)"), "got:\n%s", out)
	expect.True(t, strings.Contains(out,
		"Paired-reads Gene-Matches (pairs: 3 singles: 2 total: 5)"), "got:\n%s", out)

	// Row formatting: right-aligned 40-char key, count, five-decimal
	// percentage of the section total.
	expect.True(t, strings.Contains(out, "  "+fmt.Sprintf("%40s", "exon")+": 3 (50.00000%)"), "got:\n%s", out)
	expect.True(t, strings.Contains(out, "exon_mg: 2 (100.00000%)"), "got:\n%s", out)
	expect.True(t, strings.Contains(out, "Single end reads: 2 (40.00000%)"), "got:\n%s", out)

	// The single-gene table lists no multi-gene keys.
	single := out[:strings.Index(out, "multi gene hits")]
	expect.False(t, strings.Contains(single, "_mg"))
}

func TestWriteReportEmpty(t *testing.T) {
	buf := bytes.Buffer{}
	assert.NoError(t, WriteReport(&buf, NewCounts()))
	// Zero denominators render as zero percent, not NaN.
	expect.False(t, strings.Contains(buf.String(), "NaN"))
	expect.True(t, strings.Contains(buf.String(), "(Single: 0 (0.00%))"))
}

func TestWriteGeneCounts(t *testing.T) {
	buf := bytes.Buffer{}
	assert.NoError(t, WriteGeneCounts(&buf, reportCounts()))
	expect.EQ(t, buf.String(), "G1\t3\nG2\t1\n")
}
