package parser

import "strconv"

// TokenType identifies a lexeme category.
type TokenType int

const (
	LeftParen TokenType = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	Bang
	BangEq
	Equal
	EqualEq
	GreaterThan
	GreaterThanEq
	LessThan
	LessThanEq

	Identifier
	String
	Number

	KeywordAnd
	KeywordClass
	KeywordElse
	KeywordFalse
	KeywordFun
	KeywordFor
	KeywordIf
	KeywordNil
	KeywordOr
	KeywordPrint
	KeywordReturn
	KeywordSuper
	KeywordThis
	KeywordTrue
	KeywordVar
	KeywordWhile

	EOF
)

func (t TokenType) String() string {
	switch t {
	case LeftParen:
		return "'('"
	case RightParen:
		return "')'"
	case LeftBrace:
		return "'{'"
	case RightBrace:
		return "'}'"
	case Comma:
		return "','"
	case Dot:
		return "'.'"
	case Minus:
		return "'-'"
	case Plus:
		return "'+'"
	case Semicolon:
		return "';'"
	case Slash:
		return "'/'"
	case Star:
		return "'*'"
	case Bang:
		return "'!'"
	case BangEq:
		return "'!='"
	case Equal:
		return "'='"
	case EqualEq:
		return "'=='"
	case GreaterThan:
		return "'>'"
	case GreaterThanEq:
		return "'>='"
	case LessThan:
		return "'<'"
	case LessThanEq:
		return "'<='"
	case Identifier:
		return "identifier"
	case String:
		return "string"
	case Number:
		return "number"
	case EOF:
		return "end of input"
	}
	if kw, ok := keywordLexemes[t]; ok {
		return "'" + kw + "'"
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

// Token is a single lexeme with its source position. Number carries the
// parsed literal for Number tokens and Text the unquoted contents for String
// tokens.
type Token struct {
	Type   TokenType
	Lexeme string
	Number float64
	Text   string
	Line   int
}

var keywords = map[string]TokenType{
	"and":    KeywordAnd,
	"class":  KeywordClass,
	"else":   KeywordElse,
	"false":  KeywordFalse,
	"fun":    KeywordFun,
	"for":    KeywordFor,
	"if":     KeywordIf,
	"nil":    KeywordNil,
	"or":     KeywordOr,
	"print":  KeywordPrint,
	"return": KeywordReturn,
	"super":  KeywordSuper,
	"this":   KeywordThis,
	"true":   KeywordTrue,
	"var":    KeywordVar,
	"while":  KeywordWhile,
}

var keywordLexemes = func() map[TokenType]string {
	m := make(map[TokenType]string, len(keywords))
	for lexeme, ty := range keywords {
		m[ty] = lexeme
	}
	return m
}()
