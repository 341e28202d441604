package main

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/dhamidi/jfxbuilder/builder"
	"github.com/dhamidi/jfxbuilder/workspace"
)

// reporter prints results and problems for people at a terminal.
type reporter struct {
	w       io.Writer
	warn    *color.Color
	fail    *color.Color
	ok      *color.Color
	dim     *color.Color
	heading *color.Color
}

func newReporter(w io.Writer) *reporter {
	return &reporter{
		w:       w,
		warn:    color.New(color.FgYellow, color.Bold),
		fail:    color.New(color.FgRed, color.Bold),
		ok:      color.New(color.FgGreen, color.Bold),
		dim:     color.New(color.Faint),
		heading: color.New(color.Bold),
	}
}

// Error prints err. Expected outcomes such as a line without a
// construction are shown as warnings without detail.
func (r *reporter) Error(err error) {
	if builder.IsUserFacing(err) {
		r.warn.Fprint(r.w, "! ")
		fmt.Fprintf(r.w, "%s\n", err)
		return
	}
	r.fail.Fprint(r.w, "error: ")
	fmt.Fprintf(r.w, "%s\n", err)
	for _, hint := range errors.GetAllHints(err) {
		r.dim.Fprintf(r.w, "  hint: %s\n", hint)
	}
}

func (r *reporter) Generated(res *builder.Result) {
	if res.Skipped {
		r.warn.Fprint(r.w, "! ")
		fmt.Fprintf(r.w, "%s: no enclosing class, nothing generated\n", res.Target)
		return
	}
	r.ok.Fprint(r.w, "✓ ")
	fmt.Fprintf(r.w, "%sBuilder%s ", res.Target, res.TypeParameters)
	r.dim.Fprintf(r.w, "(%d methods, %d constructors) %s\n", res.Methods, res.Constructors, res.BuilderPath)
}

func (r *reporter) Hints(path string, hints []workspace.Hint) {
	if len(hints) == 0 {
		return
	}
	r.heading.Fprintln(r.w, path)
	for _, h := range hints {
		r.dim.Fprintf(r.w, "  %d:%d ", h.Range.Start.Line+1, h.Range.Start.Character+1)
		fmt.Fprintf(r.w, "%s: %s\n", h.Class, h.Message)
	}
}
