package syntax

// stateFn scans from the current position and returns the next state,
// or nil when scanning is over.
type stateFn func(*scanner) stateFn

// scanner splits a tag into tokens:
//
//	key [ ":" value ] { ";" key [ ":" value ] }
type scanner struct {
	*lexerHelper

	pending []token
	state   stateFn
	tok     token
}

func newScanner(input string) *scanner {
	return &scanner{
		lexerHelper: newLexerHelper(input),
		state:       lexEntry,
	}
}

func (s *scanner) emit(kind tokenKind) {
	s.pending = append(s.pending, token{
		kind:   kind,
		text:   s.input[s.start.offset:s.current.offset],
		offset: s.start.offset,
		pos:    s.start.Pos,
	})
}

// next moves to the next token. It returns false after the last one.
func (s *scanner) next() bool {
	for len(s.pending) == 0 && s.state != nil {
		s.state = s.state(s)
	}
	if len(s.pending) == 0 {
		return false
	}
	s.tok, s.pending = s.pending[0], s.pending[1:]
	return true
}

// lexEntry expects a key, skipping stray semicolons.
func lexEntry(s *scanner) stateFn {
	s.SkipWhitespace()
	s.StartToken()
	switch {
	case s.IsLetter():
		for s.IsLetter() {
			s.Next()
		}
		s.emit(tokKey)
		return lexAfterKey
	case s.rune == ';':
		s.Next()
		s.emit(tokSemicolon)
		return lexEntry
	case s.rune == EOF:
		s.emit(tokEOF)
		return nil
	}
	s.Next()
	s.emit(tokIllegal)
	return nil
}

func lexAfterKey(s *scanner) stateFn {
	s.SkipWhitespace()
	s.StartToken()
	if s.rune == ':' {
		s.Next()
		s.emit(tokColon)
		return lexValue
	}
	return lexSeparator
}

// lexValue takes everything up to the next semicolon, trimmed.
func lexValue(s *scanner) stateFn {
	s.SkipWhitespace()
	s.StartToken()
	for s.rune != ';' && s.rune != EOF {
		s.Next()
	}
	s.TrimTrailingWhitespace()
	if s.Advanced() {
		s.emit(tokValue)
	}
	return lexSeparator
}

// lexSeparator expects the end of an entry.
func lexSeparator(s *scanner) stateFn {
	s.SkipWhitespace()
	s.StartToken()
	switch s.rune {
	case ';':
		s.Next()
		s.emit(tokSemicolon)
		return lexEntry
	case EOF:
		s.emit(tokEOF)
		return nil
	}
	s.Next()
	s.emit(tokIllegal)
	return nil
}
