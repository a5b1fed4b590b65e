package main

/*
gtf-count annotates an alignment stream against a GTF gene catalogue
and reports how reads distribute over gene features: per-gene counts,
per-feature-type counts split into single-gene and multi-gene buckets,
per-biotype counts for exonic hits, and paired-end mapping patterns.
It can also serve point queries against the catalogue interactively.
*/

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/gtfcount"
	"github.com/grailbio/gtfcount/annotation"
)

type countFlags struct {
	Input      string `json:"input"`
	Output     string `json:"output"`
	GeneCounts string `json:"gene-counts"`
	Annotation string `json:"annotation"`
	Paired     bool   `json:"paired"`
	SAM        bool   `json:"sam"`
	Threads    int    `json:"threads"`
	Verbose    bool   `json:"verbose"`
	Shell      bool   `json:"shell"`
	JSON       bool   `json:"-"`
}

func registerFlags(f *countFlags) {
	stringFlag := func(p *string, short, long, usage string) {
		flag.StringVar(p, short, "", usage)
		flag.StringVar(p, long, "", usage)
	}
	boolFlag := func(p *bool, short, long, usage string) {
		flag.BoolVar(p, short, false, usage)
		flag.BoolVar(p, long, false, usage)
	}
	stringFlag(&f.Input, "i", "input", "Input MAP file (default stdin)")
	stringFlag(&f.Output, "o", "output", "Output report file (default stdout)")
	stringFlag(&f.GeneCounts, "g", "gene-counts", "Write per-gene counts as TSV to this file")
	stringFlag(&f.Annotation, "a", "annotation", "Reference annotation in GTF format (required)")
	boolFlag(&f.Paired, "p", "paired", "Treat input records as paired-end")
	flag.BoolVar(&f.SAM, "sam", false, "Treat input as SAM instead of MAP")
	flag.IntVar(&f.Threads, "t", 1, "Number of counting threads")
	flag.IntVar(&f.Threads, "threads", 1, "Number of counting threads")
	boolFlag(&f.Verbose, "v", "verbose", "Print progress to stderr")
	flag.BoolVar(&f.Shell, "shell", false, "Interactive annotation queries instead of counting")
	flag.BoolVar(&f.JSON, "J", false, "Print the resolved options as JSON and exit")
}

func usage() {
	fmt.Fprintf(os.Stderr, "USE: %s [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(1)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "gtf-count: %v\n", err)
	os.Exit(1)
}

func main() {
	flags := countFlags{}
	registerFlags(&flags)
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()
	ctx := vcontext.Background()

	if flags.JSON {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		if err := enc.Encode(flags); err != nil {
			fail(err)
		}
		os.Exit(1)
	}
	if flags.Annotation == "" {
		fail(fmt.Errorf("please specify a reference annotation (-a)"))
	}

	verbose := func(format string, args ...interface{}) {
		if flags.Verbose {
			log.Printf(format, args...)
		}
	}

	verbose("Reading GTF...")
	db := annotation.NewDB()
	if err := db.ReadGTF(ctx, flags.Annotation); err != nil {
		fail(err)
	}
	verbose("Done: %d entries", db.NumEntries())

	if flags.Shell {
		if err := gtfcount.Shell(db, os.Stdin, os.Stdout); err != nil {
			fail(err)
		}
		return
	}

	var in io.Reader = os.Stdin
	if flags.Input != "" {
		f, err := file.Open(ctx, flags.Input)
		if err != nil {
			fail(err)
		}
		defer f.Close(ctx) // nolint: errcheck
		in = f.Reader(ctx)
		if u := compress.NewReaderPath(in, flags.Input); u != nil {
			in = u
		}
	}

	opts := gtfcount.DefaultOpts
	opts.Paired = flags.Paired
	opts.Parallelism = flags.Threads

	verbose("Counting...")
	var (
		counts *gtfcount.Counts
		err    error
	)
	if flags.SAM {
		counts, err = gtfcount.CountSAM(ctx, in, db, opts)
	} else {
		counts, err = gtfcount.Count(ctx, in, db, opts)
	}
	if err != nil {
		fail(err)
	}
	verbose("Done: %d reads", counts.Reads)

	out := os.Stdout
	if flags.Output != "" {
		f, err := os.Create(flags.Output)
		if err != nil {
			fail(err)
		}
		defer f.Close() // nolint: errcheck
		out = f
	}
	if err := gtfcount.WriteReport(out, counts); err != nil {
		fail(err)
	}

	if flags.GeneCounts != "" {
		f, err := os.Create(flags.GeneCounts)
		if err != nil {
			fail(err)
		}
		if err := gtfcount.WriteGeneCounts(f, counts); err != nil {
			_ = f.Close()
			fail(err)
		}
		if err := f.Close(); err != nil {
			fail(err)
		}
	}
}
