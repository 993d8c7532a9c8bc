package formula

import (
	"fmt"
	"strings"
	"text/scanner"
)

// ParseError reports a syntax error at a position of the input.
type ParseError struct {
	Pos scanner.Position
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Msg, e.Pos.Line, e.Pos.Column)
}

type parser struct {
	s     scanner.Scanner
	eof   bool
	token string
	pos   scanner.Position
}

// Parse reads a formula. Operators, from lowest to highest priority:
//
//	<->  or  =   equivalence
//	->           implication (right associative)
//	|            disjunction
//	&            conjunction
//	! or ~       negation
//
// The constants are true and false; any other identifier is an atom.
func Parse(src string) (Formula, error) {
	p := &parser{}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts
	p.s.Error = func(*scanner.Scanner, string) {}
	p.s.Filename = ""
	p.scan()
	f, err := p.parseEquiv()
	if err != nil {
		return Formula{}, err
	}
	if !p.eof {
		return Formula{}, p.errorf("unexpected token %q", p.token)
	}
	return f, nil
}

// MustParse is Parse for literals known to be well formed.
func MustParse(src string) Formula {
	f, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return f
}

func (p *parser) scan() {
	if p.eof {
		return
	}
	tok := p.s.Scan()
	p.pos = p.s.Position
	p.eof = tok == scanner.EOF
	p.token = p.s.TokenText()
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

// accept consumes a possibly multi-character operator.
func (p *parser) accept(op string) bool {
	if p.eof || !strings.HasPrefix(op, p.token) || p.token == "" {
		return false
	}
	if p.token == op {
		p.scan()
		return true
	}
	// text/scanner emits "<->" and "->" one rune at a time
	rest := op
	for rest != "" {
		if p.eof || !strings.HasPrefix(rest, p.token) {
			return false
		}
		rest = rest[len(p.token):]
		p.scan()
	}
	return true
}

func (p *parser) parseEquiv() (Formula, error) {
	f, err := p.parseImplies()
	if err != nil {
		return Formula{}, err
	}
	for !p.eof && (p.token == "=" || p.token == "<") {
		if p.token == "=" {
			p.scan()
		} else if !p.accept("<->") {
			return Formula{}, p.errorf("expected <->")
		}
		g, err := p.parseImplies()
		if err != nil {
			return Formula{}, err
		}
		f = Iff(f, g)
	}
	return f, nil
}

func (p *parser) parseImplies() (Formula, error) {
	f, err := p.parseOr()
	if err != nil {
		return Formula{}, err
	}
	if !p.eof && p.token == "-" {
		if !p.accept("->") {
			return Formula{}, p.errorf("expected ->")
		}
		g, err := p.parseImplies()
		if err != nil {
			return Formula{}, err
		}
		return Implies(f, g), nil
	}
	return f, nil
}

func (p *parser) parseOr() (Formula, error) {
	f, err := p.parseAnd()
	if err != nil {
		return Formula{}, err
	}
	fs := []Formula{f}
	for !p.eof && p.token == "|" {
		p.scan()
		g, err := p.parseAnd()
		if err != nil {
			return Formula{}, err
		}
		fs = append(fs, g)
	}
	return Or(fs...), nil
}

func (p *parser) parseAnd() (Formula, error) {
	f, err := p.parseNot()
	if err != nil {
		return Formula{}, err
	}
	fs := []Formula{f}
	for !p.eof && p.token == "&" {
		p.scan()
		g, err := p.parseNot()
		if err != nil {
			return Formula{}, err
		}
		fs = append(fs, g)
	}
	return And(fs...), nil
}

func (p *parser) parseNot() (Formula, error) {
	if !p.eof && (p.token == "!" || p.token == "~") {
		p.scan()
		f, err := p.parseNot()
		if err != nil {
			return Formula{}, err
		}
		return Not(f), nil
	}
	return p.parseBasic()
}

func (p *parser) parseBasic() (Formula, error) {
	if p.eof {
		return Formula{}, p.errorf("expected expression, found EOF")
	}
	if p.token == "(" {
		p.scan()
		f, err := p.parseEquiv()
		if err != nil {
			return Formula{}, err
		}
		if p.eof {
			return Formula{}, p.errorf("expected closing parenthesis, found EOF")
		}
		if p.token != ")" {
			return Formula{}, p.errorf("expected closing parenthesis, found %q", p.token)
		}
		p.scan()
		return f, nil
	}
	if !isIdent(p.token) {
		return Formula{}, p.errorf("unexpected token %q", p.token)
	}
	tok := p.token
	p.scan()
	switch tok {
	case "true":
		return True(), nil
	case "false":
		return False(), nil
	}
	return Atom(tok), nil
}

func isIdent(tok string) bool {
	if tok == "" {
		return false
	}
	for i, r := range tok {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
