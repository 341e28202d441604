package java

import "strings"

type Parameter struct {
	Type string
	Name string
}

func (p Parameter) String() string {
	if p.Name != "" {
		return p.Type + " " + p.Name
	}
	return p.Type
}

// ParseParameters turns raw parameter text such as
// "Map<String, Integer> m, int n" or "Callback<A,B>, double" into
// parameters. Names are kept when present.
func ParseParameters(text string) []Parameter {
	parts := SplitTopLevel(text)
	params := make([]Parameter, 0, len(parts))
	for _, part := range parts {
		params = append(params, parseParameter(part))
	}
	return params
}

func parseParameter(text string) Parameter {
	text = strings.TrimSpace(text)
	depth := 0
	split := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ' ', '\t':
			if depth == 0 {
				split = i
			}
		}
	}
	if split < 0 {
		return Parameter{Type: text}
	}
	typ := strings.TrimSpace(text[:split])
	name := strings.TrimSpace(text[split+1:])
	if !isIdentifier(name) || typ == "" || typ == "?" || strings.HasSuffix(typ, "extends") || strings.HasSuffix(typ, "super") {
		return Parameter{Type: text}
	}
	return Parameter{Type: typ, Name: name}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isJavaLetter(ch) || (i > 0 && isDigit(ch)) {
			continue
		}
		return false
	}
	return true
}
