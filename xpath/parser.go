package xpath

import "fmt"

// Token is a node of the parsed expression tree. Symbol is the operator,
// function, or literal marker; literal nodes carry their text in Value.
// A namespace-qualified call such as fn:not(...) parses to a ":" node whose
// first child is the prefix and whose second child is the function node
// carrying the arguments, so callers must resolve the effective symbol
// through FuncName rather than reading Symbol directly.
type Token struct {
	Symbol   string
	Value    string
	Children []*Token
}

// Literal markers used as Symbol on leaf nodes.
const (
	SymInteger = "(integer)"
	SymDecimal = "(decimal)"
	SymDouble  = "(double)"
	SymString  = "(string)"
)

// FuncName returns the effective operator or function symbol of a node,
// unwrapping the namespace-qualifier node if present. The symbol may appear
// either as the node itself or as the second child of a ":" wrapper; both
// resolve identically.
func FuncName(t *Token) string {
	if t.Symbol == ":" && len(t.Children) >= 2 {
		return t.Children[1].Symbol
	}
	return t.Symbol
}

// FuncArgs returns a node's argument list, looking through the
// namespace-qualifier wrapper when present.
func FuncArgs(t *Token) []*Token {
	if t.Symbol == ":" && len(t.Children) >= 2 {
		return t.Children[1].Children
	}
	return t.Children
}

// Parse parses an expression into its token tree.
func Parse(expr string) (*Token, error) {
	p := &parser{lex: newLexer(expr)}
	p.advance()
	root, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.cur.typ != tokEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", p.cur.val, p.cur.pos)
	}
	return root, nil
}

type parser struct {
	lex *lexer
	cur token
}

func (p *parser) advance() {
	p.cur = p.lex.next()
}

func (p *parser) expect(typ tokenType, what string) error {
	if p.cur.typ != typ {
		return fmt.Errorf("expected %s, found %q at position %d", what, p.cur.val, p.cur.pos)
	}
	p.advance()
	return nil
}

// Binding powers, loosest to tightest. Cast binds tighter than unary so
// that -5 cast as xs:float negates the cast result, per the XPath grammar.
const (
	bpOr         = 10
	bpAnd        = 15
	bpComparison = 20
	bpAdditive   = 30
	bpMultiplic  = 40
	bpUnary      = 45
	bpCast       = 50
)

// infixPower returns the left binding power of the current token when it is
// an infix operator, along with its canonical symbol. Keyword operators
// (eq, div, cast, ...) arrive as plain names and are only operators in
// operator position, which is exactly where infixPower is consulted.
func (p *parser) infixPower() (int, string) {
	switch p.cur.typ {
	case tokPlus:
		return bpAdditive, "+"
	case tokMinus:
		return bpAdditive, "-"
	case tokStar:
		return bpMultiplic, "*"
	case tokEqual:
		return bpComparison, "="
	case tokNotEq:
		return bpComparison, "!="
	case tokLess:
		return bpComparison, "<"
	case tokLessEq:
		return bpComparison, "<="
	case tokGreater:
		return bpComparison, ">"
	case tokGreatEq:
		return bpComparison, ">="
	case tokName:
		switch p.cur.val {
		case "eq", "ne", "lt", "le", "gt", "ge":
			return bpComparison, p.cur.val
		case "div", "idiv", "mod":
			return bpMultiplic, p.cur.val
		case "and":
			return bpAnd, "and"
		case "or":
			return bpOr, "or"
		case "cast":
			return bpCast, "cast"
		}
	}
	return 0, ""
}

func (p *parser) parseExpr(minPower int) (*Token, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		power, symbol := p.infixPower()
		if power == 0 || power <= minPower {
			return left, nil
		}
		p.advance()

		if symbol == "cast" {
			left, err = p.parseCastTail(left)
			if err != nil {
				return nil, err
			}
			continue
		}

		right, err := p.parseExpr(power)
		if err != nil {
			return nil, err
		}
		left = &Token{Symbol: symbol, Children: []*Token{left, right}}
	}
}

func (p *parser) parsePrefix() (*Token, error) {
	switch p.cur.typ {
	case tokError:
		return nil, fmt.Errorf("%s at position %d", p.cur.val, p.cur.pos)

	case tokNumber:
		t := &Token{Symbol: numberSymbol(p.cur.val), Value: p.cur.val}
		p.advance()
		return t, nil

	case tokString:
		t := &Token{Symbol: SymString, Value: p.cur.val}
		p.advance()
		return t, nil

	case tokMinus, tokPlus:
		symbol := "-"
		if p.cur.typ == tokPlus {
			symbol = "+"
		}
		p.advance()
		operand, err := p.parseExpr(bpUnary)
		if err != nil {
			return nil, err
		}
		return &Token{Symbol: symbol, Children: []*Token{operand}}, nil

	case tokParenOpen:
		p.advance()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokParenClose, ")"); err != nil {
			return nil, err
		}
		return inner, nil

	case tokName:
		return p.parseNameExpr()
	}

	return nil, fmt.Errorf("unexpected %q at position %d", p.cur.String(), p.cur.pos)
}

// parseNameExpr parses a name, qualified name, or function call.
func (p *parser) parseNameExpr() (*Token, error) {
	name := p.cur.val
	p.advance()

	var prefix string
	if p.cur.typ == tokColon {
		p.advance()
		if p.cur.typ != tokName {
			return nil, fmt.Errorf("expected name after %q:", name)
		}
		prefix, name = name, p.cur.val
		p.advance()
	}

	node := &Token{Symbol: name, Value: name}
	if p.cur.typ == tokParenOpen {
		p.advance()
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		node.Children = args
	}

	if prefix != "" {
		return &Token{
			Symbol:   ":",
			Children: []*Token{{Symbol: prefix, Value: prefix}, node},
		}, nil
	}
	return node, nil
}

func (p *parser) parseArgs() ([]*Token, error) {
	args := []*Token{}
	if p.cur.typ == tokParenClose {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.typ == tokComma {
			p.advance()
			continue
		}
		return args, p.expect(tokParenClose, ")")
	}
}

// parseCastTail parses the "as xs:type?" tail of a cast expression. The
// resulting node has the value as its first child and the type name node
// (with its qualifier wrapper) as its second.
func (p *parser) parseCastTail(value *Token) (*Token, error) {
	if p.cur.typ != tokName || p.cur.val != "as" {
		return nil, fmt.Errorf("expected \"as\" after \"cast\", found %q", p.cur.val)
	}
	p.advance()

	typeTok, err := p.parseNameExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.typ == tokQuestion { // optional-occurrence marker on the type
		p.advance()
	}
	return &Token{Symbol: "cast", Children: []*Token{value, typeTok}}, nil
}

// numberSymbol classifies a numeric literal: exponent notation is an
// xs:double, a decimal point makes an xs:decimal, anything else an
// xs:integer, following the XPath literal rules.
func numberSymbol(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] == 'e' || text[i] == 'E' {
			return SymDouble
		}
	}
	for i := 0; i < len(text); i++ {
		if text[i] == '.' {
			return SymDecimal
		}
	}
	return SymInteger
}
