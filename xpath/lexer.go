package xpath

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// tokenType classifies lexical tokens of the XPath literal-expression subset.
type tokenType uint8

const (
	tokEOF tokenType = iota
	tokError

	tokNumber // 123, 3.14, 1e-10
	tokString // "hello" or 'hello'
	tokName   // identifiers, including hyphenated names like year-from-dateTime

	tokParenOpen  // (
	tokParenClose // )
	tokComma      // ,
	tokColon      // :
	tokQuestion   // ?

	tokPlus  // +
	tokMinus // -
	tokStar  // *

	tokEqual   // =
	tokNotEq   // !=
	tokLess    // <
	tokLessEq  // <=
	tokGreater // >
	tokGreatEq // >=
)

// token is a single lexical token.
type token struct {
	typ tokenType
	val string
	pos int
}

func (t token) String() string {
	switch t.typ {
	case tokEOF:
		return "(eof)"
	case tokError:
		return "(error: " + t.val + ")"
	default:
		return t.val
	}
}

const eof = -1

// lexer scans an expression string into tokens. The implementation follows
// the scanning technique used across the pack's expression engines: a
// cursor with single-rune backup over the raw input.
type lexer struct {
	input   string
	length  int
	start   int
	current int
	width   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input, length: len(input)}
}

// next returns the next token from the input, or tokEOF at the end.
func (l *lexer) next() token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.emit(tokEOF)
	}

	switch ch {
	case '(':
		return l.emit(tokParenOpen)
	case ')':
		return l.emit(tokParenClose)
	case ',':
		return l.emit(tokComma)
	case ':':
		return l.emit(tokColon)
	case '?':
		return l.emit(tokQuestion)
	case '+':
		return l.emit(tokPlus)
	case '-':
		return l.emit(tokMinus)
	case '*':
		return l.emit(tokStar)
	case '=':
		return l.emit(tokEqual)
	case '!':
		if l.accept('=') {
			return l.emit(tokNotEq)
		}
		return l.errorf("unexpected character %q", ch)
	case '<':
		if l.accept('=') {
			return l.emit(tokLessEq)
		}
		return l.emit(tokLess)
	case '>':
		if l.accept('=') {
			return l.emit(tokGreatEq)
		}
		return l.emit(tokGreater)
	case '"', '\'':
		return l.scanString(ch)
	}

	if ch >= '0' && ch <= '9' || ch == '.' && l.peekDigit() {
		l.backup()
		return l.scanNumber()
	}

	if isNameStart(ch) {
		l.backup()
		return l.scanName()
	}

	return l.errorf("unexpected character %q", ch)
}

// scanString reads a quoted literal. The opening quote has been consumed.
// A doubled quote is the XPath escape for the quote character itself.
func (l *lexer) scanString(quote rune) token {
	l.ignore()
	var out []rune
	for {
		ch := l.nextRune()
		if ch == eof {
			return l.errorf("unterminated string literal")
		}
		if ch == quote {
			if l.accept(quote) {
				out = append(out, quote)
				continue
			}
			break
		}
		out = append(out, ch)
	}
	t := token{typ: tokString, val: string(out), pos: l.start}
	l.ignore()
	return t
}

// scanNumber reads an integer, decimal, or exponent literal.
func (l *lexer) scanNumber() token {
	l.acceptRun(isDigit)
	if l.accept('.') {
		l.acceptRun(isDigit)
	}
	if l.accept('e') || l.accept('E') {
		if !l.accept('+') {
			l.accept('-')
		}
		if !l.acceptRun(isDigit) {
			return l.errorf("malformed exponent")
		}
	}
	return l.emit(tokNumber)
}

// scanName reads an identifier. XPath names may contain hyphens
// (year-from-dateTime) and dots; a hyphen is part of the name only when
// followed by a name character, so "a -b" and "a-b" lex differently.
func (l *lexer) scanName() token {
	for {
		ch := l.nextRune()
		if isNameChar(ch) {
			continue
		}
		if ch == '-' {
			nxt := l.nextRune()
			if isNameChar(nxt) {
				continue
			}
			if nxt != eof {
				l.backup()
			}
			// The hyphen starts a new token.
			l.current -= 1
			break
		}
		if ch != eof {
			l.backup()
		}
		break
	}
	return l.emit(tokName)
}

func (l *lexer) emit(typ tokenType) token {
	t := token{typ: typ, val: l.input[l.start:l.current], pos: l.start}
	l.start = l.current
	return t
}

func (l *lexer) errorf(format string, args ...interface{}) token {
	return token{typ: tokError, val: fmt.Sprintf(format, args...), pos: l.start}
}

func (l *lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *lexer) backup() {
	l.current -= l.width
}

func (l *lexer) accept(r rune) bool {
	if l.nextRune() == r {
		return true
	}
	l.backup()
	return false
}

func (l *lexer) acceptRun(pred func(rune) bool) bool {
	accepted := false
	for {
		r := l.nextRune()
		if r == eof {
			return accepted
		}
		if !pred(r) {
			l.backup()
			return accepted
		}
		accepted = true
	}
}

func (l *lexer) peekDigit() bool {
	if l.current >= l.length {
		return false
	}
	c := l.input[l.current]
	return c >= '0' && c <= '9'
}

func (l *lexer) skipWhitespace() {
	for {
		r := l.nextRune()
		if r == eof {
			break
		}
		if !unicode.IsSpace(r) {
			l.backup()
			break
		}
	}
	l.start = l.current
}

func (l *lexer) ignore() {
	l.start = l.current
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
