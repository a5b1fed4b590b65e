package gtfcount

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/gtfcount/annotation"
)

// Shell runs the interactive point-query loop: one query per line of
// the form ref:start[-end], answered with every overlapping catalogue
// entry. Returns when in reaches EOF.
func Shell(db *annotation.DB, in io.Reader, out io.Writer) error {
	w := bufio.NewWriter(out)
	prompt := func() {
		fmt.Fprint(w, ">")
		w.Flush()
	}
	fmt.Fprintln(w, "Search the annotation with queries like : <ref>:<start>[-<end>]")
	prompt()
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		ref, start, end, err := parseQuery(sc.Text())
		if err != nil {
			fmt.Fprintln(w, err)
			prompt()
			continue
		}
		hits := db.Search(ref, start, end)
		if len(hits) == 0 {
			fmt.Fprintln(w, "Nothing found :(")
		} else {
			for _, e := range hits {
				fmt.Fprintln(w, db.EntryString(ref, e))
			}
		}
		prompt()
	}
	fmt.Fprintln(w)
	if err := sc.Err(); err != nil {
		return err
	}
	return w.Flush()
}

// parseQuery splits "ref:start[-end]" into its parts. A bare start is
// treated as a point query.
func parseQuery(line string) (ref string, start, end int, err error) {
	line = strings.TrimSpace(line)
	i := strings.IndexByte(line, ':')
	if i <= 0 {
		return "", 0, 0, fmt.Errorf("Unable to parse reference name.")
	}
	ref = line[:i]
	rest := line[i+1:]
	startStr, endStr := rest, ""
	if j := strings.IndexByte(rest, '-'); j >= 0 {
		startStr, endStr = rest[:j], rest[j+1:]
	}
	start, err = strconv.Atoi(startStr)
	if err != nil {
		return "", 0, 0, fmt.Errorf("Unable to parse start position.")
	}
	end = start
	if endStr != "" {
		end, err = strconv.Atoi(endStr)
		if err != nil {
			return "", 0, 0, fmt.Errorf("Unable to parse end position.")
		}
	}
	if end < start {
		return "", 0, 0, fmt.Errorf("start > end not allowed!")
	}
	return ref, start, end, nil
}
