package mapfile

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// The MAP dialect accepted here is the GEM text layout: one record per
// line with tab-separated columns
//
//	tag  read  [qualities]  counters  maps
//
// The maps column is "-" for an unmapped record, otherwise a
// comma-separated list of candidates. A single-end candidate is
//
//	ref:strand:position:gigar
//
// where the gigar string spells out the placement: digit runs are
// matched stretches, single base letters are mismatches, ">N*" skips N
// reference bases and opens a new block (a splice junction), and "(n)"
// is a trim that consumes no reference. A paired candidate joins the
// two end placements with "::"; either side may be "-" when only one
// end of the pair was placed.

// Reader reads MAP templates sequentially from a stream.
type Reader struct {
	sc     *bufio.Scanner
	paired bool
	line   int
	err    error
}

// NewReader returns a Reader over r. When paired is set, records are
// parsed as two-end templates.
func NewReader(r io.Reader, paired bool) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	return &Reader{sc: sc, paired: paired}
}

// Read returns the next template, or io.EOF at end of stream.
func (r *Reader) Read() (*Template, error) {
	if r.err != nil {
		return nil, r.err
	}
	for r.sc.Scan() {
		r.line++
		line := r.sc.Text()
		if line == "" {
			continue
		}
		t, err := ParseTemplate(line, r.paired)
		if err != nil {
			r.err = errors.Wrapf(err, "line %d", r.line)
			return nil, r.err
		}
		return t, nil
	}
	if err := r.sc.Err(); err != nil {
		r.err = err
		return nil, err
	}
	r.err = io.EOF
	return nil, io.EOF
}

// ParseTemplate parses one MAP record line.
func ParseTemplate(line string, paired bool) (*Template, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 4 && len(fields) != 5 {
		return nil, errors.Errorf("map record has %d columns, want 4 or 5", len(fields))
	}
	t := &Template{Tag: fields[0], Ends: []*Alignment{{}}}
	if paired {
		t.Ends = append(t.Ends, &Alignment{})
	}
	maps := fields[len(fields)-1]
	if maps == "-" {
		return t, nil
	}
	for _, cand := range strings.Split(maps, ",") {
		if err := t.addCandidate(cand, paired); err != nil {
			return nil, errors.Wrapf(err, "candidate %q", cand)
		}
	}
	return t, nil
}

func (t *Template) addCandidate(cand string, paired bool) error {
	if !paired {
		m, err := parseMap(cand)
		if err != nil {
			return err
		}
		t.Ends[0].Maps = append(t.Ends[0].Maps, m)
		return nil
	}
	halves := strings.SplitN(cand, "::", 2)
	if len(halves) != 2 {
		return errors.New("paired candidate lacks '::'")
	}
	var m1, m2 *Map
	var err error
	if halves[0] != "-" {
		if m1, err = parseMap(halves[0]); err != nil {
			return err
		}
		t.Ends[0].Maps = append(t.Ends[0].Maps, m1)
	}
	if halves[1] != "-" {
		if m2, err = parseMap(halves[1]); err != nil {
			return err
		}
		t.Ends[1].Maps = append(t.Ends[1].Maps, m2)
	}
	if m1 != nil && m2 != nil {
		t.MMaps = append(t.MMaps, MMap{End1: m1, End2: m2})
	}
	return nil
}

func parseMap(s string) (*Map, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) != 4 {
		return nil, errors.New("want ref:strand:position:gigar")
	}
	ref := parts[0]
	if ref == "" {
		return nil, errors.New("empty reference name")
	}
	switch parts[1] {
	case "+", "-":
	default:
		return nil, errors.Errorf("bad strand %q", parts[1])
	}
	pos, err := strconv.Atoi(parts[2])
	if err != nil || pos < 1 {
		return nil, errors.Errorf("bad position %q", parts[2])
	}
	blocks, err := parseBlocks(ref, pos, parts[3])
	if err != nil {
		return nil, err
	}
	return &Map{Blocks: blocks}, nil
}

// parseBlocks walks a gigar string and materialises the reference
// blocks it covers.
func parseBlocks(ref string, pos int, gigar string) ([]Block, error) {
	var blocks []Block
	begin := pos
	span := 0
	i := 0
	for i < len(gigar) {
		c := gigar[i]
		switch {
		case c >= '0' && c <= '9':
			n, w := readInt(gigar[i:])
			span += n
			i += w
		case c == 'A' || c == 'C' || c == 'G' || c == 'T' || c == 'N':
			span++
			i++
		case c == '>':
			n, w := readInt(gigar[i+1:])
			if w == 0 || i+1+w >= len(gigar) || gigar[i+1+w] != '*' {
				return nil, errors.Errorf("bad skip at %q", gigar[i:])
			}
			if span == 0 {
				return nil, errors.New("skip before any aligned bases")
			}
			blocks = append(blocks, Block{Ref: ref, Begin: begin, End: begin + span - 1})
			begin += span + n
			span = 0
			i += w + 2
		case c == '(':
			_, w := readInt(gigar[i+1:])
			if w == 0 || i+1+w >= len(gigar) || gigar[i+1+w] != ')' {
				return nil, errors.Errorf("bad trim at %q", gigar[i:])
			}
			i += w + 2
		default:
			return nil, errors.Errorf("bad gigar byte %q", c)
		}
	}
	if span == 0 {
		return nil, errors.New("gigar covers no reference bases")
	}
	blocks = append(blocks, Block{Ref: ref, Begin: begin, End: begin + span - 1})
	return blocks, nil
}

// readInt parses a leading run of digits, returning the value and the
// number of bytes consumed.
func readInt(s string) (n, w int) {
	for w < len(s) && s[w] >= '0' && s[w] <= '9' {
		n = n*10 + int(s[w]-'0')
		w++
	}
	return n, w
}
