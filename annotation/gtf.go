package annotation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

const (
	gtfColumns = 9

	colSeqname = 0
	colFeature = 2
	colStart   = 3
	colEnd     = 4
	colStrand  = 6
	colAttrs   = 8
)

// ReadGTF loads a GTF catalogue from path into d and builds the
// interval index. Files ending in .gz are decompressed on the fly.
func (d *DB) ReadGTF(ctx context.Context, path string) error {
	in, err := file.Open(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	var r io.Reader = in.Reader(ctx)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			_ = in.Close(ctx)
			return errors.Wrapf(err, "gzip %s", path)
		}
		r = gz
	}
	err = d.LoadGTF(r)
	if cerr := in.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// LoadGTF parses GTF records from r into d and builds the interval
// index. Comment lines and malformed data lines are skipped; only a
// read failure is an error.
func (d *DB) LoadGTF(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for sc.Scan() {
		d.addGTFLine(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "read gtf")
	}
	d.BuildIndex()
	return nil
}

// addGTFLine parses one GTF data line and inserts the resulting entry.
// Lines that do not carry nine tab-separated columns with integer
// coordinates are dropped silently.
func (d *DB) addGTFLine(line string) {
	if line == "" || line[0] == '#' {
		return
	}
	fields := strings.Split(line, "\t")
	if len(fields) < gtfColumns {
		return
	}
	start, err := strconv.Atoi(fields[colStart])
	if err != nil {
		return
	}
	end, err := strconv.Atoi(fields[colEnd])
	if err != nil {
		return
	}
	var strand Strand
	if len(fields[colStrand]) > 0 {
		strand = ParseStrand(fields[colStrand][0])
	}
	geneID, geneType := parseAttributes(fields[colAttrs])
	e := &Entry{
		Start:  start,
		End:    end,
		Strand: strand,
		Type:   d.InternType(fields[colFeature]),
	}
	if geneID != "" {
		e.Gene = d.InternGene(geneID)
	}
	if geneType != "" {
		e.Biotype = d.InternBiotype(geneType)
	}
	d.Add(fields[colSeqname], e)
}

// parseAttributes extracts the values following the literal gene_id and
// gene_type tokens from a GTF attribute field. Both results are empty
// until their token is seen.
func parseAttributes(attrs string) (geneID, geneType string) {
	wantID, wantType := false, false
	for _, tok := range strings.Fields(attrs) {
		switch {
		case tok == "gene_id":
			wantID = true
		case tok == "gene_type":
			wantType = true
		case wantID:
			wantID = false
			geneID = trimAttr(tok)
		case wantType:
			wantType = false
			geneType = trimAttr(tok)
		}
		if geneID != "" && geneType != "" {
			break
		}
	}
	return geneID, geneType
}

// trimAttr strips one trailing ';' and, if both are present, a
// surrounding pair of '"' characters.
func trimAttr(v string) string {
	v = strings.TrimSuffix(v, ";")
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	return v
}

// EntryString renders an entry for interactive output.
func (d *DB) EntryString(ref string, e *Entry) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "%s:%d-%d (%s) %s", ref, e.Start, e.End, e.Strand, d.TypeName(e.Type))
	if e.Gene != InvalidGene {
		b.WriteString(" gene_id=")
		b.WriteString(d.GeneName(e.Gene))
	}
	if e.Biotype != InvalidBiotype {
		b.WriteString(" gene_type=")
		b.WriteString(d.BiotypeName(e.Biotype))
	}
	return b.String()
}
