package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Scanner: on-demand tokenizer for Fern source
// ---------------------------------------------------------------------------

// ScanError is a lexical fault, carrying the line and the byte offset where
// the offending lexeme started.
type ScanError struct {
	Line    int
	Offset  int
	Lexeme  string
	Message string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s (line %d, offset %d)", e.Message, e.Line, e.Offset)
}

// Scanner produces one token at a time from the source text. Once the input
// is exhausted it returns an EOF token forever and never errors again.
type Scanner struct {
	source  string
	start   int // offset of the lexeme being scanned
	current int // offset of the next unconsumed byte
	line    int // 1-based, incremented on every newline consumed
}

// NewScanner returns a scanner positioned at the start of source.
func NewScanner(source string) *Scanner {
	return &Scanner{source: source, line: 1}
}

// Line returns the current source line.
func (s *Scanner) Line() int { return s.line }

// ScanToken skips whitespace and comments, then scans and returns the next
// token, or a *ScanError for an unterminated string or an unrecognized
// character.
func (s *Scanner) ScanToken() (Token, error) {
	s.skipWhitespace()
	s.start = s.current

	if s.isAtEnd() {
		return Token{Type: TokenEOF, Line: s.line}, nil
	}

	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier(), nil
	case isDigit(c):
		return s.number(), nil
	}

	switch c {
	case '(':
		return s.makeToken(TokenLeftParen), nil
	case ')':
		return s.makeToken(TokenRightParen), nil
	case '{':
		return s.makeToken(TokenLeftBrace), nil
	case '}':
		return s.makeToken(TokenRightBrace), nil
	case ',':
		return s.makeToken(TokenComma), nil
	case '.':
		return s.makeToken(TokenDot), nil
	case '-':
		return s.makeToken(TokenMinus), nil
	case '+':
		return s.makeToken(TokenPlus), nil
	case ';':
		return s.makeToken(TokenSemicolon), nil
	case '*':
		return s.makeToken(TokenStar), nil
	case '/':
		return s.makeToken(TokenSlash), nil
	case '!':
		if s.match('=') {
			return s.makeToken(TokenBangEqual), nil
		}
		return s.makeToken(TokenBang), nil
	case '=':
		if s.match('=') {
			return s.makeToken(TokenEqualEqual), nil
		}
		return s.makeToken(TokenEqual), nil
	case '<':
		if s.match('=') {
			return s.makeToken(TokenLessEqual), nil
		}
		return s.makeToken(TokenLess), nil
	case '>':
		if s.match('=') {
			return s.makeToken(TokenGreaterEqual), nil
		}
		return s.makeToken(TokenGreater), nil
	case '"':
		return s.str()
	}

	return Token{}, &ScanError{
		Line:    s.line,
		Offset:  s.start,
		Lexeme:  s.source[s.start:s.current],
		Message: fmt.Sprintf("unexpected character %q", c),
	}
}

// skipWhitespace consumes spaces, tabs, carriage returns, newlines, and
// //-to-end-of-line comments.
func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.current++
		case '\n':
			s.line++
			s.current++
		case '/':
			if s.peekNext() != '/' {
				return
			}
			for !s.isAtEnd() && s.peek() != '\n' {
				s.current++
			}
		default:
			return
		}
	}
}

// str scans a string literal. Strings may span lines; an embedded newline
// increments the line counter.
func (s *Scanner) str() (Token, error) {
	for !s.isAtEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.current++
	}
	if s.isAtEnd() {
		return Token{}, &ScanError{
			Line:    s.line,
			Offset:  s.start,
			Lexeme:  `"`,
			Message: "unterminated string",
		}
	}
	s.current++ // closing quote
	return s.makeToken(TokenString), nil
}

// number scans a maximal run of digits, taking a '.' and fraction only when
// at least one digit follows the dot. A trailing bare '.' is left for the
// next token.
func (s *Scanner) number() Token {
	for isDigit(s.peek()) {
		s.current++
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.current++
		for isDigit(s.peek()) {
			s.current++
		}
	}
	return s.makeToken(TokenNumber)
}

// identifier scans a maximal alphanumeric/underscore run, then classifies
// the exact lexeme through the keyword table.
func (s *Scanner) identifier() Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.current++
	}
	return s.makeToken(LookupIdentifier(s.source[s.start:s.current]))
}

func (s *Scanner) makeToken(t TokenType) Token {
	return Token{Type: t, Lexeme: s.source[s.start:s.current], Line: s.line}
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) advance() byte {
	s.current++
	return s.source[s.current-1]
}

// peek returns the next unconsumed byte, or 0 at end of input.
func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

// match consumes the next byte only if it equals expected.
func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
