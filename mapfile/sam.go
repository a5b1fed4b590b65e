package mapfile

import (
	"io"

	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
)

// SAMReader adapts a SAM stream to the template model. Each record
// becomes a single-end template; mates are not collated, so paired-end
// pattern counting requires MAP input.
type SAMReader struct {
	r *sam.Reader
}

// NewSAMReader returns a SAMReader over r.
func NewSAMReader(r io.Reader) (*SAMReader, error) {
	sr, err := sam.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "sam header")
	}
	return &SAMReader{r: sr}, nil
}

// Read returns the next template, or io.EOF at end of stream.
func (s *SAMReader) Read() (*Template, error) {
	rec, err := s.r.Read()
	if err != nil {
		return nil, err
	}
	t := &Template{Tag: rec.Name, Ends: []*Alignment{{}}}
	if rec.Flags&sam.Unmapped != 0 || rec.Ref == nil {
		return t, nil
	}
	m := &Map{Blocks: cigarBlocks(rec.Ref.Name(), rec.Pos+1, rec.Cigar)}
	if len(m.Blocks) > 0 {
		t.Ends[0].Maps = append(t.Ends[0].Maps, m)
	}
	return t, nil
}

// cigarBlocks converts a CIGAR into 1-based inclusive reference blocks,
// splitting at N (skipped region) operations.
func cigarBlocks(ref string, pos int, cigar sam.Cigar) []Block {
	var blocks []Block
	begin := pos
	span := 0
	for _, op := range cigar {
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch, sam.CigarDeletion:
			span += op.Len()
		case sam.CigarSkipped:
			if span > 0 {
				blocks = append(blocks, Block{Ref: ref, Begin: begin, End: begin + span - 1})
			}
			begin += span + op.Len()
			span = 0
		}
	}
	if span > 0 {
		blocks = append(blocks, Block{Ref: ref, Begin: begin, End: begin + span - 1})
	}
	return blocks
}
