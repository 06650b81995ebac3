package syntax

import (
	"unicode"
	"unicode/utf8"
)

// EOF is the rune reported at the end of input.
const EOF rune = -1

// Pos is a line and column position in the input, both 1-based.
type Pos struct {
	Line   int
	Column int
}

type position struct {
	offset int
	Pos
}

// lexerHelper tracks the current rune and the start of the token
// being scanned.
type lexerHelper struct {
	input   string
	start   position
	current position
	rune    rune
	width   int
}

func newLexerHelper(input string) *lexerHelper {
	h := &lexerHelper{input: input}
	h.moveTo(0)
	h.start = h.current
	return h
}

// Next advances one rune and returns the new current rune.
func (h *lexerHelper) Next() rune {
	if h.rune == EOF {
		return EOF
	}
	h.moveTo(h.current.offset + h.width)
	return h.rune
}

// SkipWhitespace advances past any white space.
func (h *lexerHelper) SkipWhitespace() {
	for h.rune != EOF && unicode.IsSpace(h.rune) {
		h.Next()
	}
}

// StartToken marks the current position as the start of a token.
func (h *lexerHelper) StartToken() {
	h.start = h.current
}

// IsLetter reports whether the current rune can be part of a key.
func (h *lexerHelper) IsLetter() bool {
	return h.rune == '_' || (h.rune != EOF && unicode.IsLetter(h.rune))
}

// Advanced reports whether any rune has been consumed since StartToken.
func (h *lexerHelper) Advanced() bool {
	return h.current.offset > h.start.offset
}

// TrimTrailingWhitespace moves the current position back over white
// space consumed since StartToken.
func (h *lexerHelper) TrimTrailingWhitespace() {
	offset := h.current.offset
	for offset > h.start.offset {
		r, w := utf8.DecodeLastRuneInString(h.input[:offset])
		if !unicode.IsSpace(r) {
			break
		}
		offset -= w
	}
	if offset != h.current.offset {
		h.moveTo(offset)
	}
}

func (h *lexerHelper) moveTo(offset int) {
	h.current = position{offset: offset, Pos: posAt(h.input, offset)}
	if offset >= len(h.input) {
		h.rune, h.width = EOF, 0
		return
	}
	h.rune, h.width = utf8.DecodeRuneInString(h.input[offset:])
}

func posAt(input string, offset int) Pos {
	p := Pos{Line: 1, Column: 1}
	for _, r := range input[:offset] {
		if r == '\n' {
			p.Line++
			p.Column = 1
			continue
		}
		p.Column++
	}
	return p
}
