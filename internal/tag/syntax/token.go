package syntax

import "strconv"

type tokenKind int

const (
	tokIllegal tokenKind = iota
	tokKey
	tokColon
	tokValue
	tokSemicolon
	tokEOF
)

var tokenNames = [...]string{
	tokIllegal:   "illegal character",
	tokKey:       "key",
	tokColon:     "':'",
	tokValue:     "value",
	tokSemicolon: "';'",
	tokEOF:       "end of tag",
}

func (k tokenKind) String() string {
	if k >= 0 && int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "token(" + strconv.Itoa(int(k)) + ")"
}

// token is a lexical token of a tag. offset is the byte offset of its
// first character.
type token struct {
	kind   tokenKind
	text   string
	offset int
	pos    Pos
}
