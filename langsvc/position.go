package langsvc

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Positions on the wire count UTF-16 code units; Go strings are indexed by
// byte. These helpers convert a column within a single line.

// UTF16Column converts the byte offset col in line to a UTF-16 column.
// Offsets past the end of line map to the end of line.
func UTF16Column(line string, col int) int {
	if col > len(line) {
		col = len(line)
	}
	n := 0
	for i := 0; i < col; {
		r, size := utf8.DecodeRuneInString(line[i:])
		if i+size > col {
			break
		}
		n += utf16Len(r)
		i += size
	}
	return n
}

// ByteColumn converts the UTF-16 column col in line to a byte offset.
// A column inside a surrogate pair maps to the start of that character,
// and columns past the end of line map to len(line).
func ByteColumn(line string, col int) int {
	n := 0
	for i, r := range line {
		w := utf16Len(r)
		if n+w > col {
			return i
		}
		n += w
	}
	return len(line)
}

func utf16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
