package template

import (
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokPipe
	tokLParen
	tokRParen
	tokLBrack
	tokRBrack
	tokComma
	tokDot
)

var tokenNames = map[tokenKind]string{
	tokEOF:    "end of expression",
	tokIdent:  "identifier",
	tokString: "string",
	tokNumber: "number",
	tokPipe:   "'|'",
	tokLParen: "'('",
	tokRParen: "')'",
	tokLBrack: "'['",
	tokRBrack: "']'",
	tokComma:  "','",
	tokDot:    "'.'",
}

func (k tokenKind) String() string {
	return tokenNames[k]
}

type token struct {
	kind tokenKind
	text string // identifier name, unquoted string or number literal
	pos  int
}

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// segment is either literal text or the tokens of one {{ }} expression
type segment struct {
	text   string
	tokens []token
	pos    int
	isExpr bool
}

// scan splits src into text and expression segments
func scan(src string) ([]segment, error) {
	var segs []segment
	i := 0
	for i < len(src) {
		start := strings.Index(src[i:], openDelim)
		if start < 0 {
			segs = append(segs, segment{text: src[i:], pos: i})
			break
		}
		if start > 0 {
			segs = append(segs, segment{text: src[i : i+start], pos: i})
		}
		exprStart := i + start + len(openDelim)
		toks, end, err := lexExpr(src, exprStart)
		if err != nil {
			return nil, err
		}
		segs = append(segs, segment{tokens: toks, pos: i + start, isExpr: true})
		i = end
	}
	return segs, nil
}

// lexExpr tokenizes from pos up to the matching close delimiter and returns
// the offset just past it.
func lexExpr(src string, pos int) ([]token, int, error) {
	var toks []token
	i, depth := pos, 0
	for {
		if i >= len(src) {
			return nil, 0, errorf(pos-len(openDelim), "unclosed %q", openDelim)
		}
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case strings.HasPrefix(src[i:], closeDelim):
			toks = append(toks, token{kind: tokEOF, pos: i})
			return toks, i + len(closeDelim), nil
		case c == '"' || c == '\'':
			s, next, err := lexString(src, i)
			if err != nil {
				return nil, 0, err
			}
			toks = append(toks, token{kind: tokString, text: s, pos: i})
			i = next
		case isDigit(c) || (c == '-' && i+1 < len(src) && isDigit(src[i+1])):
			// after a dot only a plain index is valid: items.0.1 is two steps
			afterDot := len(toks) > 0 && toks[len(toks)-1].kind == tokDot
			if afterDot && c == '-' {
				return nil, 0, errorf(i, "unexpected character %q", c)
			}
			j := i + 1
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			if !afterDot && j+1 < len(src) && src[j] == '.' && isDigit(src[j+1]) {
				j++
				for j < len(src) && isDigit(src[j]) {
					j++
				}
			}
			toks = append(toks, token{kind: tokNumber, text: src[i:j], pos: i})
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: src[i:j], pos: i})
			i = j
		default:
			kind, ok := punctuation[c]
			if !ok {
				return nil, 0, errorf(i, "unexpected character %q", c)
			}
			switch kind {
			case tokLParen, tokLBrack:
				if depth++; depth > maxNesting {
					return nil, 0, errorf(i, "expression nested too deeply")
				}
			case tokRParen, tokRBrack:
				depth = max(depth-1, 0)
			}
			toks = append(toks, token{kind: kind, pos: i})
			i++
		}
	}
}

var punctuation = map[byte]tokenKind{
	'|': tokPipe,
	'(': tokLParen,
	')': tokRParen,
	'[': tokLBrack,
	']': tokRBrack,
	',': tokComma,
	'.': tokDot,
}

func lexString(src string, pos int) (string, int, error) {
	quote := src[pos]
	var b strings.Builder
	i := pos + 1
	for i < len(src) {
		c := src[i]
		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\\' && i+1 < len(src):
			i++
			switch src[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(src[i])
			}
		default:
			b.WriteByte(c)
		}
		i++
	}
	return "", 0, errorf(pos, "unterminated string literal")
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
