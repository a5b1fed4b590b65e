// Package mapfile reads alignment records in the MAP text format and
// exposes the template object model consumed by the counting engine.
// A SAM adapter built on biogo/hts is provided for aligner output that
// was never converted to MAP.
package mapfile

// Block is one contiguous genomic interval of a (possibly spliced)
// candidate placement. Begin and End are 1-based inclusive.
type Block struct {
	Ref        string
	Begin, End int
}

// Map is one candidate placement of one read end, split across one or
// more blocks.
type Map struct {
	Blocks []Block
}

// Alignment is the set of candidate placements for one end of a
// template.
type Alignment struct {
	Maps []*Map
}

// Mapped reports whether the end has at least one candidate placement.
func (a *Alignment) Mapped() bool { return len(a.Maps) > 0 }

// MMap pairs one candidate placement of end 1 with one of end 2.
type MMap struct {
	End1, End2 *Map
}

// Template is one logical read unit: a single-end read, or two ends
// bound together with their paired candidates.
type Template struct {
	Tag   string
	Ends  []*Alignment
	MMaps []MMap
}

// Paired reports whether the template carries two ends.
func (t *Template) Paired() bool { return len(t.Ends) == 2 }

// Mapped reports whether a paired template has at least one accepted
// paired placement.
func (t *Template) Mapped() bool { return len(t.MMaps) > 0 }
