package annotation

import "sort"

// node is one level of a centred interval tree. Entries whose interval
// straddles midpoint live here, kept twice: ordered by start and by
// end. The query path scans byStart only; byEnd preserves the build
// layout of the original structure.
type node struct {
	midpoint int
	byStart  []*Entry
	byEnd    []*Entry
	left     *node
	right    *node
}

// buildNode builds the subtree over entries and returns its root, or
// nil for an empty list. The pivot is the positional median of the
// incoming list; its arithmetic centre becomes the node midpoint.
// Entries strictly left and strictly right of the midpoint recurse into
// the child subtrees.
func (d *DB) buildNode(entries []*Entry) *node {
	if len(entries) == 0 {
		return nil
	}
	mid := entries[len(entries)/2]
	n := &node{midpoint: mid.Start + (mid.End-mid.Start)/2}
	var toLeft, toRight []*Entry
	for _, e := range entries {
		switch {
		case e.End < n.midpoint:
			toLeft = append(toLeft, e)
		case e.Start > n.midpoint:
			toRight = append(toRight, e)
		default:
			n.byStart = append(n.byStart, e)
		}
	}
	n.byEnd = make([]*Entry, len(n.byStart))
	copy(n.byEnd, n.byStart)
	// Ties break on the feature type string so that iteration order is
	// reproducible across runs.
	sort.SliceStable(n.byStart, func(i, j int) bool {
		a, b := n.byStart[i], n.byStart[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return d.TypeName(a.Type) < d.TypeName(b.Type)
	})
	sort.SliceStable(n.byEnd, func(i, j int) bool {
		a, b := n.byEnd[i], n.byEnd[j]
		if a.End != b.End {
			return a.End < b.End
		}
		return d.TypeName(a.Type) < d.TypeName(b.Type)
	})
	n.left = d.buildNode(toLeft)
	n.right = d.buildNode(toRight)
	return n
}

// searchNode appends entries overlapping [start, end] to dst. The scan
// over byStart stops at the first entry starting past the query end; no
// later entry can overlap.
func searchNode(n *node, start, end int, dst []*Entry) []*Entry {
	if n == nil {
		return dst
	}
	for _, e := range n.byStart {
		if e.Start > end {
			break
		}
		if e.End >= start {
			dst = append(dst, e)
		}
	}
	if start < n.midpoint {
		dst = searchNode(n.left, start, end, dst)
	}
	if end > n.midpoint {
		dst = searchNode(n.right, start, end, dst)
	}
	return dst
}
