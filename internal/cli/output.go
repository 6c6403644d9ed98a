package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// printer writes command results as indented JSON or as a text table.
type printer struct {
	format string
	w      io.Writer
}

func (p *printer) print(data any, text func(w io.Writer)) error {
	if p.format == "json" {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func (p *printer) line(format string, args ...any) func(w io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintf(w, format+"\n", args...)
	}
}
