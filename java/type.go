package java

import (
	"strings"
)

// SimpleName strips the package qualifier from a type name:
// "javafx.scene.layout.VBox" -> "VBox".
func SimpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// SplitTopLevel splits text on commas that are not nested inside angle
// brackets. Empty parts are dropped and the rest are trimmed.
func SplitTopLevel(text string) []string {
	var result []string
	depth := 0
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			result = append(result, s)
		}
		current.Reset()
	}
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '<':
			depth++
			current.WriteByte(ch)
		case ch == '>':
			depth--
			current.WriteByte(ch)
		case ch == ',' && depth <= 0:
			flush()
		default:
			current.WriteByte(ch)
		}
	}
	flush()
	return result
}

// TypeArgumentLists returns every angle-bracket argument list in typ, at any
// nesting depth, outermost first. "Callback<ListView<T>,ListCell<T>>" yields
// [[ListView<T> ListCell<T>] [T] [T]].
func TypeArgumentLists(typ string) [][]string {
	var lists [][]string
	for i := 0; i < len(typ); i++ {
		if typ[i] != '<' {
			continue
		}
		end := matchingBracket(typ, i)
		if end < 0 {
			break
		}
		lists = append(lists, SplitTopLevel(typ[i+1:end]))
	}
	return lists
}

func matchingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// RawTypeArgument extracts the single argument of a one-parameter generic
// type with the given raw name: ("ObservableList<Node>", "ObservableList")
// -> "Node".
func RawTypeArgument(typ, raw string) (string, bool) {
	i := strings.Index(typ, raw+"<")
	if i < 0 {
		return "", false
	}
	open := i + len(raw)
	end := matchingBracket(typ, open)
	if end < 0 {
		return "", false
	}
	args := SplitTopLevel(typ[open+1 : end])
	if len(args) != 1 {
		return "", false
	}
	return args[0], true
}

// TypeParameterNames drops bounds from a declaration clause:
// "<T extends Event, S>" -> "<T, S>".
func TypeParameterNames(clause string) string {
	clause = strings.TrimSpace(clause)
	if !strings.HasPrefix(clause, "<") || !strings.HasSuffix(clause, ">") {
		return clause
	}
	params := SplitTopLevel(clause[1 : len(clause)-1])
	for i, p := range params {
		if f := strings.Fields(p); len(f) > 0 {
			params[i] = f[0]
		}
	}
	return "<" + strings.Join(params, ", ") + ">"
}
