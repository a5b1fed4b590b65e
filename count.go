package gtfcount

import (
	"bufio"
	"context"
	"io"
	"runtime"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/gtfcount/annotation"
	"github.com/grailbio/gtfcount/mapfile"
)

// Count reads MAP records from in, classifies them against db in
// parallel and returns the merged count tables. Records are delivered
// to workers in whole-template chunks; each worker owns private tables
// that are reduced after the last worker drains. A malformed record
// aborts the process.
func Count(ctx context.Context, in io.Reader, db *annotation.DB, opts Opts) (*Counts, error) {
	parallelism := opts.parallelism()
	chunks := make(chan []string, 2*parallelism)
	var readErr error
	go func() {
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
		chunk := make([]string, 0, opts.chunkSize())
		for sc.Scan() {
			line := sc.Text()
			if line == "" {
				continue
			}
			chunk = append(chunk, line)
			if len(chunk) == cap(chunk) {
				chunks <- chunk
				chunk = make([]string, 0, opts.chunkSize())
			}
		}
		if len(chunk) > 0 {
			chunks <- chunk
		}
		readErr = sc.Err()
		close(chunks)
	}()

	results := make([]*Counts, parallelism)
	err := traverse.Each(parallelism, func(worker int) error {
		ann := NewAnnotator(db)
		c := NewCounts()
		for chunk := range chunks {
			for _, line := range chunk {
				t, err := mapfile.ParseTemplate(line, opts.Paired)
				if err != nil {
					log.Panicf("parsing map record: %v", err)
				}
				ann.Count(t, c)
			}
		}
		results[worker] = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	if readErr != nil {
		return nil, readErr
	}
	total := NewCounts()
	for _, c := range results {
		total.Merge(c)
	}
	return total, nil
}

// CountSAM is Count for SAM input: records are parsed sequentially by
// the adapter and classified by the worker pool. A malformed record
// aborts the process.
func CountSAM(ctx context.Context, in io.Reader, db *annotation.DB, opts Opts) (*Counts, error) {
	r, err := mapfile.NewSAMReader(in)
	if err != nil {
		return nil, err
	}
	parallelism := opts.parallelism()
	chunks := make(chan []*mapfile.Template, 2*parallelism)
	go func() {
		chunk := make([]*mapfile.Template, 0, opts.chunkSize())
		for {
			t, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				log.Panicf("parsing sam record: %v", err)
			}
			chunk = append(chunk, t)
			if len(chunk) == cap(chunk) {
				chunks <- chunk
				chunk = make([]*mapfile.Template, 0, opts.chunkSize())
			}
		}
		if len(chunk) > 0 {
			chunks <- chunk
		}
		close(chunks)
	}()

	results := make([]*Counts, parallelism)
	if err := traverse.Each(parallelism, func(worker int) error {
		ann := NewAnnotator(db)
		c := NewCounts()
		for chunk := range chunks {
			for _, t := range chunk {
				ann.Count(t, c)
			}
		}
		results[worker] = c
		return nil
	}); err != nil {
		return nil, err
	}
	total := NewCounts()
	for _, c := range results {
		total.Merge(c)
	}
	return total, nil
}

func (o Opts) parallelism() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	return runtime.NumCPU()
}

func (o Opts) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return DefaultOpts.ChunkSize
}
