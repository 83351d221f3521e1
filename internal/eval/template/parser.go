package template

import (
	"strconv"
)

// node is a piece of a parsed template: literal text or an expression
type node interface{}

type textNode string

type exprNode struct {
	expr expr
}

type expr interface {
	position() int
}

type literalExpr struct {
	value any
	pos   int
}

type listExpr struct {
	items []expr
	pos   int
}

// pathStep is either a field name or an index expression
type pathStep struct {
	name  string
	index expr
}

type pathExpr struct {
	root  string
	steps []pathStep
	pos   int
}

type callExpr struct {
	name string
	args []expr
	pos  int
}

type filterExpr struct {
	target expr
	name   string
	args   []expr
	pos    int
}

func (e *literalExpr) position() int { return e.pos }
func (e *listExpr) position() int    { return e.pos }
func (e *pathExpr) position() int    { return e.pos }
func (e *callExpr) position() int    { return e.pos }
func (e *filterExpr) position() int  { return e.pos }

// Template is a parsed template ready for evaluation
type Template struct {
	source string
	nodes  []node
}

// Source returns the text the template was parsed from
func (t *Template) Source() string {
	return t.source
}

// Parse parses template source without resolving filter or macro names
func Parse(src string) (*Template, error) {
	segs, err := scan(src)
	if err != nil {
		return nil, err
	}

	tmpl := &Template{source: src}
	for _, seg := range segs {
		if !seg.isExpr {
			tmpl.nodes = append(tmpl.nodes, textNode(seg.text))
			continue
		}
		p := &parser{tokens: seg.tokens}
		if p.peek().kind == tokEOF {
			return nil, errorf(seg.pos, "empty expression")
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if tok := p.peek(); tok.kind != tokEOF {
			return nil, errorf(tok.pos, "unexpected %s", describe(tok))
		}
		tmpl.nodes = append(tmpl.nodes, exprNode{expr: e})
	}
	return tmpl, nil
}

// maxNesting bounds bracket and parenthesis depth inside one expression
const maxNesting = 128

type parser struct {
	tokens []token
	i      int
	depth  int
}

func (p *parser) peek() token {
	return p.tokens[p.i]
}

func (p *parser) next() token {
	tok := p.tokens[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, errorf(tok.pos, "expected %s, got %s", kind, describe(tok))
	}
	return tok, nil
}

// parseExpr parses `primary ( '|' ident [ '(' args ')' ] )*`
func (p *parser) parseExpr() (expr, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxNesting {
		return nil, errorf(p.peek().pos, "expression nested too deeply")
	}

	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokPipe {
		p.next()
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		f := &filterExpr{target: left, name: name.text, pos: name.pos}
		if p.peek().kind == tokLParen {
			p.next()
			if f.args, err = p.parseList(tokRParen); err != nil {
				return nil, err
			}
		}
		left = f
	}
	return left, nil
}

func (p *parser) parsePrimary() (expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokString:
		return &literalExpr{value: tok.text, pos: tok.pos}, nil

	case tokNumber:
		v, err := parseNumber(tok.text)
		if err != nil {
			return nil, errorf(tok.pos, "invalid number %q", tok.text)
		}
		return &literalExpr{value: v, pos: tok.pos}, nil

	case tokLBrack:
		items, err := p.parseList(tokRBrack)
		if err != nil {
			return nil, err
		}
		return &listExpr{items: items, pos: tok.pos}, nil

	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil

	case tokIdent:
		switch tok.text {
		case "true", "True":
			return &literalExpr{value: true, pos: tok.pos}, nil
		case "false", "False":
			return &literalExpr{value: false, pos: tok.pos}, nil
		case "null", "none", "None":
			return &literalExpr{value: nil, pos: tok.pos}, nil
		}
		if p.peek().kind == tokLParen {
			p.next()
			args, err := p.parseList(tokRParen)
			if err != nil {
				return nil, err
			}
			return &callExpr{name: tok.text, args: args, pos: tok.pos}, nil
		}
		return p.parsePath(tok)
	}
	return nil, errorf(tok.pos, "unexpected %s", describe(tok))
}

func (p *parser) parsePath(root token) (expr, error) {
	path := &pathExpr{root: root.text, pos: root.pos}
	for {
		switch p.peek().kind {
		case tokDot:
			p.next()
			tok := p.next()
			switch tok.kind {
			case tokIdent:
				path.steps = append(path.steps, pathStep{name: tok.text})
			case tokNumber:
				v, err := parseNumber(tok.text)
				if err != nil {
					return nil, errorf(tok.pos, "invalid index %q", tok.text)
				}
				path.steps = append(path.steps, pathStep{index: &literalExpr{value: v, pos: tok.pos}})
			default:
				return nil, errorf(tok.pos, "expected field name after '.', got %s", describe(tok))
			}
		case tokLBrack:
			p.next()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRBrack); err != nil {
				return nil, err
			}
			path.steps = append(path.steps, pathStep{index: idx})
		default:
			return path, nil
		}
	}
}

// parseList parses comma separated expressions up to the closing token
func (p *parser) parseList(closing tokenKind) ([]expr, error) {
	var items []expr
	if p.peek().kind == closing {
		p.next()
		return items, nil
	}
	for {
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		tok := p.next()
		switch tok.kind {
		case tokComma:
			continue
		case closing:
			return items, nil
		default:
			return nil, errorf(tok.pos, "expected ',' or %s, got %s", closing, describe(tok))
		}
	}
}

func parseNumber(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	return strconv.ParseFloat(s, 64)
}

func describe(tok token) string {
	switch tok.kind {
	case tokIdent, tokNumber:
		return strconv.Quote(tok.text)
	case tokString:
		return "string " + strconv.Quote(tok.text)
	default:
		return tok.kind.String()
	}
}
