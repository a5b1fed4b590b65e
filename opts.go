// Package gtfcount classifies alignment templates against a gene
// annotation catalogue and accumulates per-gene, per-feature-type,
// per-biotype and paired-end pattern counts.
package gtfcount

// Opts configures a counting run.
type Opts struct {
	// Paired marks the MAP input as paired-end.
	Paired bool
	// Parallelism is the number of counting workers.
	Parallelism int
	// ChunkSize is the number of records handed to a worker at a time.
	ChunkSize int
}

// DefaultOpts sets the default values for Opts.
var DefaultOpts = Opts{
	Paired:      false,
	Parallelism: 1,
	ChunkSize:   512,
}
