package gtfcount

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

var rule = strings.Repeat("-", 71)

// reportWriter buffers report output and remembers the first write
// error so the formatting code can stay linear.
type reportWriter struct {
	w   *bufio.Writer
	err error
}

func (r *reportWriter) printf(format string, args ...interface{}) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *reportWriter) line(s string) { r.printf("%s\n", s) }

func (r *reportWriter) row(key string, n, total uint64) {
	r.printf("  %40s: %d (%.5f%%)\n", key, n, percent(n, total))
}

func percent(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func sortedKeys(table map[string]uint64) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sumValues(table map[string]uint64) uint64 {
	var n uint64
	for _, v := range table {
		n += v
	}
	return n
}

// WriteReport renders the aggregate tables as the five-section plain
// text report.
func WriteReport(w io.Writer, c *Counts) error {
	var singleTotal, multiTotal uint64
	for k, v := range c.Types {
		if strings.Contains(k, MultiGeneSuffix) {
			multiTotal += v
		} else {
			singleTotal += v
		}
	}
	typeKeys := sortedKeys(c.Types)

	r := &reportWriter{w: bufio.NewWriter(w)}
	r.printf("Annotation type counts for single gene hits (Single: %d (%.2f%%))\n",
		singleTotal, percent(singleTotal, c.Reads))
	r.line(rule)
	for _, k := range typeKeys {
		if !strings.Contains(k, MultiGeneSuffix) {
			r.row(k, c.Types[k], singleTotal)
		}
	}
	r.line(rule)
	r.printf("Annotation type counts for multi gene hits (Multi: %d (%.2f%%))\n",
		multiTotal, percent(multiTotal, c.Reads))
	r.line(rule)
	for _, k := range typeKeys {
		if strings.Contains(k, MultiGeneSuffix) {
			r.row(k, c.Types[k], multiTotal)
		}
	}
	r.line(rule)

	geneTypesTotal := sumValues(c.GeneTypes)
	r.printf("Gene type counts for single gene Exons (%d)\n", geneTypesTotal)
	r.line(rule)
	for _, k := range sortedKeys(c.GeneTypes) {
		r.row(k, c.GeneTypes[k], geneTypesTotal)
	}
	r.line(rule)

	patternTotal := sumValues(c.PairPatterns)
	r.printf("Paired-read patterns (%d)\n", patternTotal)
	r.line(rule)
	for _, k := range sortedKeys(c.PairPatterns) {
		r.row(k, c.PairPatterns[k], patternTotal)
	}
	r.line(rule)

	p := c.Pairs
	pairedTotal := p.SingleGene + p.MultiGene + p.NoGene + p.SingleEnd
	r.printf("Paired-reads Gene-Matches (pairs: %d singles: %d total: %d)\n",
		pairedTotal-p.SingleEnd, p.SingleEnd, pairedTotal)
	r.line(rule)
	r.row("Single end reads", p.SingleEnd, pairedTotal)
	r.row("Pair not mapped to gene", p.NoGene, pairedTotal)
	r.row("Pair mapped to single gene", p.SingleGene, pairedTotal)
	r.row("Pair mapped to multiple genes", p.MultiGene, pairedTotal)
	r.line(rule)

	if r.err != nil {
		return r.err
	}
	return r.w.Flush()
}

// WriteGeneCounts writes one gene per line as "<gene_id>\t<count>".
func WriteGeneCounts(w io.Writer, c *Counts) error {
	tw := tsv.NewWriter(w)
	e := errors.Once{}
	for _, gene := range sortedKeys(c.Genes) {
		tw.WriteString(gene)
		tw.WriteString(strconv.FormatUint(c.Genes[gene], 10))
		e.Set(tw.EndLine())
	}
	e.Set(tw.Flush())
	return e.Err()
}
