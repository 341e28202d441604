package java

import (
	"regexp"
	"strings"
)

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenNumber
	TokenString
	TokenChar
	TokenPunct
	TokenComment
)

type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int
}

// Lexer is a token scanner that understands just enough Java to skip
// comments and literals and report identifiers and punctuation with
// positions. It does not build a syntax tree.
type Lexer struct {
	input  []byte
	pos    int
	line   int
	column int
}

func NewLexer(input []byte) *Lexer {
	return &Lexer{input: input, line: 1, column: 1}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.peek() {
		case ' ', '\t', '\r', '\n', '\f':
			l.advance()
		default:
			return
		}
	}
}

// NextToken returns the next significant token. Whitespace is skipped;
// comments are returned so callers can ignore them explicitly.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	start := l.pos
	tok := Token{Line: l.line, Column: l.column}

	if l.pos >= len(l.input) {
		tok.Kind = TokenEOF
		return tok
	}

	ch := l.peek()
	switch {
	case ch == '/' && l.peekN(1) == '/':
		for l.peek() != '\n' && l.peek() != 0 {
			l.advance()
		}
		tok.Kind = TokenComment
	case ch == '/' && l.peekN(1) == '*':
		l.advance()
		l.advance()
		for l.pos < len(l.input) && !(l.peek() == '*' && l.peekN(1) == '/') {
			l.advance()
		}
		l.advance()
		l.advance()
		tok.Kind = TokenComment
	case isJavaLetter(ch):
		for isJavaLetter(l.peek()) || isDigit(l.peek()) {
			l.advance()
		}
		tok.Kind = TokenIdent
	case isDigit(ch):
		for isDigit(l.peek()) || isJavaLetter(l.peek()) || l.peek() == '.' {
			l.advance()
		}
		tok.Kind = TokenNumber
	case ch == '"' && l.peekN(1) == '"' && l.peekN(2) == '"':
		l.advance()
		l.advance()
		l.advance()
		for l.pos < len(l.input) && !(l.peek() == '"' && l.peekN(1) == '"' && l.peekN(2) == '"') {
			if l.peek() == '\\' {
				l.advance()
			}
			l.advance()
		}
		l.advance()
		l.advance()
		l.advance()
		tok.Kind = TokenString
	case ch == '"' || ch == '\'':
		quote := l.advance()
		for l.pos < len(l.input) && l.peek() != quote && l.peek() != '\n' {
			if l.peek() == '\\' {
				l.advance()
			}
			l.advance()
		}
		l.advance()
		if quote == '"' {
			tok.Kind = TokenString
		} else {
			tok.Kind = TokenChar
		}
	default:
		l.advance()
		tok.Kind = TokenPunct
	}

	end := l.pos
	if end > len(l.input) {
		end = len(l.input)
	}
	tok.Text = string(l.input[start:end])
	return tok
}

func isJavaLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$' || ch >= 0x80
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// SourceInfo is the outline of a compilation unit.
type SourceInfo struct {
	Package       string
	Imports       []string
	TopLevelTypes []string
	Module        string
	Requires      []string
	// EntryPoint is set when a top-level type extends Application or
	// declares a main method.
	EntryPoint bool
}

// ScanSource extracts the package declaration, imports, top-level type
// names, whether the unit is an application entry point and, for
// module-info.java, the module name and required modules.
func ScanSource(src []byte) *SourceInfo {
	info := &SourceInfo{}
	l := NewLexer(src)
	depth := 0
	var prev Token

	next := func() Token {
		for {
			tok := l.NextToken()
			if tok.Kind != TokenComment {
				return tok
			}
		}
	}
	qualifiedName := func() (string, Token) {
		var sb strings.Builder
		for {
			tok := next()
			if tok.Kind == TokenIdent || (tok.Kind == TokenPunct && (tok.Text == "." || tok.Text == "*")) {
				if tok.Kind == TokenIdent && (tok.Text == "static" || tok.Text == "transitive") && sb.Len() == 0 {
					continue
				}
				sb.WriteString(tok.Text)
				continue
			}
			return sb.String(), tok
		}
	}

	for {
		tok := next()
		if tok.Kind == TokenEOF {
			return info
		}
		if tok.Kind == TokenPunct {
			switch tok.Text {
			case "{":
				depth++
			case "}":
				depth--
			}
			prev = tok
			continue
		}
		if tok.Kind != TokenIdent {
			prev = tok
			continue
		}

		switch {
		case depth == 0 && tok.Text == "package":
			info.Package, _ = qualifiedName()
		case depth == 0 && tok.Text == "import":
			name, _ := qualifiedName()
			if name != "" {
				info.Imports = append(info.Imports, name)
			}
		case depth == 0 && tok.Text == "module":
			name, last := qualifiedName()
			info.Module = name
			if last.Text == "{" {
				depth++
			}
		case depth == 1 && info.Module != "" && tok.Text == "requires":
			name, _ := qualifiedName()
			if name != "" {
				info.Requires = append(info.Requires, name)
			}
		case depth == 0 && tok.Text == "extends":
			name, last := qualifiedName()
			if SimpleName(name) == "Application" {
				info.EntryPoint = true
			}
			if last.Text == "{" {
				depth++
			}
			prev = last
			continue
		case depth == 1 && tok.Text == "main" && prev.Kind == TokenIdent && prev.Text == "void":
			info.EntryPoint = true
		case depth == 0 && isTypeKeyword(tok.Text) && !(prev.Kind == TokenPunct && prev.Text == "@"):
			name := next()
			if name.Kind == TokenIdent {
				info.TopLevelTypes = append(info.TopLevelTypes, name.Text)
			}
			prev = name
			continue
		}
		prev = tok
	}
}

func isTypeKeyword(s string) bool {
	switch s {
	case "class", "interface", "enum", "record":
		return true
	}
	return false
}

// Construction is a "new X(...)" expression found on a single source line.
type Construction struct {
	Line          int // zero-based
	Start         int
	End           int
	Indent        string
	Prefix        string
	QualifiedName string
	SimpleName    string
	TypeArguments []string
	Args          string
	// Text is the whole source line. Columns are byte offsets into it.
	Text string
	// NameColumn is the zero-based byte column just inside the simple class
	// name, the position a type hierarchy or definition query needs.
	NameColumn int
}

// The greedy prefix makes the last construction on a line win, so for
// "new VBox(new Label(...))" the innermost expression is rewritten.
var constructionPattern = regexp.MustCompile(`^(\s*)(.*)new\s+([\w.]+)\s*(?:<([\w\s,?.]*)>)?\s*\((.*?)\)`)

// FindConstruction matches the rewritable construction expression on a line.
func FindConstruction(lineNo int, line string) (*Construction, bool) {
	m := constructionPattern.FindStringSubmatchIndex(line)
	if m == nil {
		return nil, false
	}
	qualified := line[m[6]:m[7]]
	simple := SimpleName(qualified)
	c := &Construction{
		Line:          lineNo,
		Start:         m[0],
		End:           m[1],
		Indent:        line[m[2]:m[3]],
		Prefix:        line[m[4]:m[5]],
		QualifiedName: qualified,
		SimpleName:    simple,
		Args:          line[m[10]:m[11]],
		Text:          line,
		NameColumn:    m[7] - len(simple) + 1,
	}
	if m[8] >= 0 {
		for _, arg := range strings.Split(line[m[8]:m[9]], ",") {
			if arg = strings.TrimSpace(arg); arg != "" {
				c.TypeArguments = append(c.TypeArguments, arg)
			}
		}
	}
	return c, true
}

// FindConstructions reports the rewritable construction on every line of
// src, skipping lines that are line comments.
func FindConstructions(src []byte) []Construction {
	var result []Construction
	for i, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "/*") {
			continue
		}
		if c, ok := FindConstruction(i, line); ok {
			result = append(result, *c)
		}
	}
	return result
}
