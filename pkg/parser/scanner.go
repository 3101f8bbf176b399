package parser

import "strconv"

// Scanner walks source text and produces the token stream consumed by the
// parser. Scanning reports errors for malformed lexemes and keeps going, so
// a single pass surfaces every lexical problem in the file.
type Scanner struct {
	src     string
	start   int
	current int
	line    int
	tokens  []Token
	errs    ErrorList
}

// ScanTokens tokenizes src. The returned stream always ends with an EOF
// token, even when diagnostics were collected along the way.
func ScanTokens(src string) ([]Token, ErrorList) {
	s := &Scanner{src: src, line: 1}
	for !s.atEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, Token{Type: EOF, Line: s.line})
	return s.tokens, s.errs
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.add(LeftParen)
	case ')':
		s.add(RightParen)
	case '{':
		s.add(LeftBrace)
	case '}':
		s.add(RightBrace)
	case ',':
		s.add(Comma)
	case '.':
		s.add(Dot)
	case '-':
		s.add(Minus)
	case '+':
		s.add(Plus)
	case ';':
		s.add(Semicolon)
	case '*':
		s.add(Star)
	case '!':
		if s.match('=') {
			s.add(BangEq)
		} else {
			s.add(Bang)
		}
	case '=':
		if s.match('=') {
			s.add(EqualEq)
		} else {
			s.add(Equal)
		}
	case '<':
		if s.match('=') {
			s.add(LessThanEq)
		} else {
			s.add(LessThan)
		}
	case '>':
		if s.match('=') {
			s.add(GreaterThanEq)
		} else {
			s.add(GreaterThan)
		}
	case '/':
		if s.match('/') {
			for !s.atEnd() && s.peek() != '\n' {
				s.current++
			}
		} else {
			s.add(Slash)
		}
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '"':
		s.scanString()
	default:
		switch {
		case isDigit(c):
			s.scanNumber()
		case isAlpha(c):
			s.scanIdentifier()
		default:
			s.errs = append(s.errs, syntaxErrorf(s.line, "Unexpected character %q.", c))
		}
	}
}

func (s *Scanner) scanString() {
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.current++
	}
	if s.atEnd() {
		s.errs = append(s.errs, syntaxErrorf(s.line, "Unterminated string."))
		return
	}
	s.current++ // closing quote
	tok := s.token(String)
	tok.Text = s.src[s.start+1 : s.current-1]
	s.tokens = append(s.tokens, tok)
}

func (s *Scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.current++
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.current++
		for isDigit(s.peek()) {
			s.current++
		}
	}
	tok := s.token(Number)
	n, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		s.errs = append(s.errs, syntaxErrorf(s.line, "Invalid number literal '%s'.", tok.Lexeme))
		return
	}
	tok.Number = n
	s.tokens = append(s.tokens, tok)
}

func (s *Scanner) scanIdentifier() {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.current++
	}
	tok := s.token(Identifier)
	if kw, ok := keywords[tok.Lexeme]; ok {
		tok.Type = kw
	}
	s.tokens = append(s.tokens, tok)
}

func (s *Scanner) token(ty TokenType) Token {
	return Token{Type: ty, Lexeme: s.src[s.start:s.current], Line: s.line}
}

func (s *Scanner) add(ty TokenType) {
	s.tokens = append(s.tokens, s.token(ty))
}

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) atEnd() bool {
	return s.current >= len(s.src)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
