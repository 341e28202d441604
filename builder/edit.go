package builder

import (
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/jfxbuilder/java"
	"github.com/dhamidi/jfxbuilder/langsvc"
)

// RewriteEdit replaces the construction c in the document uri with a call
// to the builder of its class and imports that builder when text does not
// already. It also returns how many lines the import adds above c.
//
//	Label l = new Label("a");
//
// becomes
//
//	Label l = LabelBuilder.create("a")
//	          .build();
func RewriteEdit(uri, text string, c *java.Construction, builderPackage string) (*langsvc.WorkspaceEdit, int) {
	builder := c.SimpleName + "Builder"
	call := builder + "."
	if len(c.TypeArguments) > 0 {
		call += "<" + strings.Join(c.TypeArguments, ", ") + ">"
	}
	call += "create(" + c.Args + ")"

	continuation := c.Indent + strings.Repeat(" ", utf8.RuneCountInString(c.Prefix)+4)
	edits := []langsvc.TextEdit{{
		Range: langsvc.Range{
			Start: langsvc.Position{Line: c.Line, Character: 0},
			End:   langsvc.Position{Line: c.Line, Character: langsvc.UTF16Column(c.Text, c.End)},
		},
		NewText: c.Indent + c.Prefix + call + "\n" + continuation + ".build()",
	}}

	added := 0
	qualified := builder
	if builderPackage != "" {
		qualified = builderPackage + "." + builder
	}
	importLine := "import " + qualified + ";"
	if !strings.Contains(text, importLine) {
		at, insert := importPosition(text)
		edits = append(edits, langsvc.TextEdit{
			Range:   langsvc.Range{Start: at, End: at},
			NewText: insert(importLine),
		})
		added = strings.Count(insert(importLine), "\n")
	}

	return &langsvc.WorkspaceEdit{Changes: map[string][]langsvc.TextEdit{uri: edits}}, added
}

// importPosition finds where a new import goes: on a new line after the
// package declaration, or at the very top when there is none.
func importPosition(text string) (langsvc.Position, func(string) string) {
	l := java.NewLexer([]byte(text))
	for {
		tok := l.NextToken()
		if tok.Kind == java.TokenEOF {
			break
		}
		if tok.Kind == java.TokenComment {
			continue
		}
		if tok.Kind == java.TokenIdent && tok.Text == "package" {
			line := tok.Line
			for tok.Kind != java.TokenEOF && !(tok.Kind == java.TokenPunct && tok.Text == ";") {
				tok = l.NextToken()
			}
			if tok.Kind != java.TokenEOF {
				line = tok.Line
			}
			return langsvc.Position{Line: line, Character: 0}, func(s string) string { return "\n" + s + "\n" }
		}
		break
	}
	return langsvc.Position{}, func(s string) string { return s + "\n" }
}
