package workspace

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/dhamidi/jfxbuilder/langsvc"
)

// FileEditApplier applies workspace edits directly to the files they name.
type FileEditApplier struct {
	Files *Store
}

func (a *FileEditApplier) ApplyEdit(ctx context.Context, edit *langsvc.WorkspaceEdit) error {
	uris := make([]string, 0, len(edit.Changes))
	for uri := range edit.Changes {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		path := langsvc.URIToPath(uri)
		data, err := a.Files.ReadFile(path)
		if err != nil {
			return err
		}
		text := ApplyTextEdits(string(data), edit.Changes[uri])
		if err := a.Files.WriteFile(ctx, path, []byte(text)); err != nil {
			return errors.Wrapf(err, "applying edit to %s", path)
		}
	}
	return nil
}

// ApplyTextEdits applies non-overlapping edits to text. Edits are applied
// from the end of the text backwards so earlier positions stay valid.
// Characters count UTF-16 code units. Positions past the end of a line or
// of the text are clamped.
func ApplyTextEdits(text string, edits []langsvc.TextEdit) string {
	sorted := append([]langsvc.TextEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Range.Start, sorted[j].Range.Start
		if a.Line != b.Line {
			return a.Line > b.Line
		}
		return a.Character > b.Character
	})

	for _, edit := range sorted {
		starts := lineStarts(text)
		start := offset(text, starts, edit.Range.Start)
		end := offset(text, starts, edit.Range.End)
		if end < start {
			end = start
		}
		text = text[:start] + edit.NewText + text[end:]
	}
	return text
}

func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func offset(text string, starts []int, pos langsvc.Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(starts) {
		return len(text)
	}
	lineStart := starts[pos.Line]
	lineEnd := len(text)
	if pos.Line+1 < len(starts) {
		lineEnd = starts[pos.Line+1] - 1
	}
	line := strings.TrimSuffix(text[lineStart:lineEnd], "\r")
	return lineStart + langsvc.ByteColumn(line, pos.Character)
}
