package gtfcount

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestShell(t *testing.T) {
	db := loadDB(t, singleGeneGTF)
	in := strings.NewReader("chr1:150\nchr1:150-180\nchr9:1-2\nnocolon\nchr1:500-400\nchr1:abc\n")
	out := bytes.Buffer{}
	assert.NoError(t, Shell(db, in, &out))
	got := out.String()

	expect.True(t, strings.Contains(got, "chr1:100-200 (+) exon gene_id=G1 gene_type=protein_coding"), "got:\n%s", got)
	expect.True(t, strings.Contains(got, "chr1:100-200 (+) gene gene_id=G1 gene_type=protein_coding"), "got:\n%s", got)
	expect.True(t, strings.Contains(got, "Nothing found :("), "got:\n%s", got)
	expect.True(t, strings.Contains(got, "Unable to parse reference name."), "got:\n%s", got)
	expect.True(t, strings.Contains(got, "start > end not allowed!"), "got:\n%s", got)
	expect.True(t, strings.Contains(got, "Unable to parse start position."), "got:\n%s", got)
	// One prompt per query plus the initial one, each on its own line.
	expect.EQ(t, strings.Count(got, "\n>"), 7)
}

func TestParseQuery(t *testing.T) {
	ref, start, end, err := parseQuery("chr1:100-200")
	assert.NoError(t, err)
	expect.EQ(t, ref, "chr1")
	expect.EQ(t, start, 100)
	expect.EQ(t, end, 200)

	ref, start, end, err = parseQuery(" chrX:42 ")
	assert.NoError(t, err)
	expect.EQ(t, ref, "chrX")
	expect.EQ(t, start, 42)
	expect.EQ(t, end, 42)

	_, _, _, err = parseQuery(":100")
	assert.NotNil(t, err)
}
