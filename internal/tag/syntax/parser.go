package syntax

import (
	"github.com/pkg/errors"
)

// Info is the parsed content of a field tag.
type Info struct {
	Column   string // from "col:<name>"
	PK       bool   // "pk"
	Index    bool   // "index"
	Relation bool   // "rel"
}

// Parse parses a field tag such as "col:id;pk" or "rel".
func Parse(input string) (*Info, error) {
	p := &parser{s: newScanner(input)}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return &p.info, nil
}

type parser struct {
	s    *scanner
	info Info
}

func (p *parser) errorf(format string, args ...any) error {
	pos := p.s.tok.pos
	return errors.Errorf("%d:%d: syntax error: "+format, append([]any{pos.Line, pos.Column}, args...)...)
}

func (p *parser) parse() error {
	for p.s.next() {
		switch p.s.tok.kind {
		case tokEOF:
			return p.check()
		case tokSemicolon:
		case tokKey:
			if err := p.entry(); err != nil {
				return err
			}
		default:
			return p.errorf("unexpected %s %q", p.s.tok.kind, p.s.tok.text)
		}
	}
	return p.check()
}

// entry parses "key" or "key:value", with the key as current token.
func (p *parser) entry() error {
	key := p.s.tok.text
	p.s.next()
	switch p.s.tok.kind {
	case tokSemicolon, tokEOF:
		return p.flag(key)
	case tokColon:
	default:
		return p.errorf("expected %s or %s after %q, got %s", tokColon, tokSemicolon, key, p.s.tok.kind)
	}
	p.s.next()
	if p.s.tok.kind != tokValue {
		// "col:" declares nothing
		if key == "col" {
			return nil
		}
		return p.errorf("unknown key %q", key)
	}
	if err := p.value(key, p.s.tok.text); err != nil {
		return err
	}
	p.s.next()
	if k := p.s.tok.kind; k != tokSemicolon && k != tokEOF {
		return p.errorf("expected %s, got %s", tokSemicolon, k)
	}
	return nil
}

func (p *parser) flag(key string) error {
	switch key {
	case "pk":
		p.info.PK = true
	case "index":
		p.info.Index = true
	case "rel":
		p.info.Relation = true
	case "col":
		return p.errorf("missing column name")
	default:
		return p.errorf("unknown key %q", key)
	}
	return nil
}

func (p *parser) value(key, value string) error {
	switch key {
	case "col":
		if p.info.Column != "" {
			return p.errorf("redundant column %q, already %q", value, p.info.Column)
		}
		if !IsAllowedName(value) {
			return p.errorf("invalid column name %q", value)
		}
		p.info.Column = value
	case "pk", "index", "rel":
		return p.errorf("key %q takes no value", key)
	default:
		return p.errorf("unknown key %q", key)
	}
	return nil
}

func (p *parser) check() error {
	if p.info.Relation && (p.info.Column != "" || p.info.PK || p.info.Index) {
		return errors.New("syntax error: rel cannot be combined with column keys")
	}
	return nil
}
