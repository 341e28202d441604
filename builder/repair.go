package builder

import (
	"context"
	"strings"
	"time"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/jfxbuilder/langsvc"
)

var repairLog = commonlog.GetLogger("jfxbuilder.repair")

const (
	DefaultRepairInterval = 500 * time.Millisecond
	DefaultRepairCount    = 20
)

// Compiler problem codes whose line can be deleted without changing what
// the rest of the builder means.
var removableProblems = map[string]string{
	"67108964":  "member not found",
	"67108965":  "member not visible",
	"134217859": "constructor not visible",
	"134217858": "constructor not defined",
	"268435844": "unused declaration",
	"603979893": "illegal static call",
	"268435846": "unresolved import",
}

// IsRemovable reports whether a diagnostic code is in the removable table.
func IsRemovable(code string) bool {
	_, ok := removableProblems[code]
	return ok
}

// Repairer deletes lines of a generated file that the compiler rejects for
// known, harmless reasons. It polls Count times, Interval apart, and never
// stops early.
type Repairer struct {
	Diagnostics langsvc.DiagnosticService
	Files       FileStore
	Interval    time.Duration
	Count       int
}

// Repair runs the polling loop over the file at path whose current content
// is text, and returns the final text. Failures are logged and stop the
// loop; they are not returned.
func (r *Repairer) Repair(ctx context.Context, path, text string) string {
	uri := langsvc.PathToURI(path)
	for i := 0; i < r.Count; i++ {
		if err := sleep(ctx, r.Interval); err != nil {
			repairLog.Info("repair cancelled", "path", path, "iteration", i)
			break
		}
		diags, err := r.Diagnostics.Diagnostics(ctx, uri)
		if err != nil {
			repairLog.Error("polling diagnostics failed", "path", path, "error", err)
			return text
		}
		if len(diags) == 0 {
			continue
		}
		repaired := BlankRejectedLines(text, diags)
		if err := r.Files.WriteFile(ctx, path, []byte(repaired)); err != nil {
			repairLog.Error("writing repaired builder failed", "path", path, "error", err)
			return repaired
		}
		if repaired != text {
			repairLog.Debug("removed rejected lines", "path", path, "iteration", i)
		}
		text = repaired
	}

	text = CollapseBlankLines(text)
	if err := r.Files.WriteFile(context.WithoutCancel(ctx), path, []byte(text)); err != nil {
		repairLog.Error("writing final builder failed", "path", path, "error", err)
	}
	return text
}

// BlankRejectedLines empties the start line of every diagnostic with a
// removable code, then drops lines that are only comments. Line numbers
// of the remaining lines are otherwise unchanged.
func BlankRejectedLines(text string, diags []langsvc.Diagnostic) string {
	lines := strings.Split(text, "\n")
	for _, d := range diags {
		line := d.Range.Start.Line
		if !IsRemovable(d.Code) || line < 0 || line >= len(lines) {
			continue
		}
		lines[line] = ""
	}
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// CollapseBlankLines replaces every run of blank lines with a single empty
// line.
func CollapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
