// Package lexer implements the lexical analyzer for the rangeopt source
// language, a small Kotlin-flavoured surface used to drive the range loop pass.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orizon-lang/rangeopt/internal/position"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError
	TokenNewline

	// Literals
	TokenIdentifier
	TokenInteger
	TokenChar
	TokenBool

	// Keywords
	TokenFun
	TokenVal
	TokenVar
	TokenConst
	TokenFor
	TokenIn
	TokenIf
	TokenElse
	TokenWhile
	TokenBreak
	TokenContinue
	TokenReturn

	// Operators
	TokenPlus
	TokenMinus
	TokenMul
	TokenDiv
	TokenMod
	TokenAssign
	TokenPlusAssign
	TokenMinusAssign
	TokenMulAssign
	TokenEq
	TokenNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe
	TokenAnd
	TokenOr
	TokenNot
	TokenRange

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenComma
	TokenColon
	TokenDot
	TokenSemicolon
)

// Token represents a lexical token with position information
type Token struct {
	Type    TokenType
	Literal string
	Span    position.Span
}

// Pos returns the start position of the token.
func (t Token) Pos() position.Position { return t.Span.Start }

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Pos: %s}", t.Type, t.Literal, t.Span.Start)
}

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenNewline:    "NEWLINE",
	TokenIdentifier: "IDENTIFIER",
	TokenInteger:    "INTEGER",
	TokenChar:       "CHAR",
	TokenBool:       "BOOL",

	TokenFun:      "FUN",
	TokenVal:      "VAL",
	TokenVar:      "VAR",
	TokenConst:    "CONST",
	TokenFor:      "FOR",
	TokenIn:       "IN",
	TokenIf:       "IF",
	TokenElse:     "ELSE",
	TokenWhile:    "WHILE",
	TokenBreak:    "BREAK",
	TokenContinue: "CONTINUE",
	TokenReturn:   "RETURN",

	TokenPlus:        "PLUS",
	TokenMinus:       "MINUS",
	TokenMul:         "MUL",
	TokenDiv:         "DIV",
	TokenMod:         "MOD",
	TokenAssign:      "ASSIGN",
	TokenPlusAssign:  "PLUS_ASSIGN",
	TokenMinusAssign: "MINUS_ASSIGN",
	TokenMulAssign:   "MUL_ASSIGN",
	TokenEq:          "EQ",
	TokenNe:          "NE",
	TokenLt:          "LT",
	TokenLe:          "LE",
	TokenGt:          "GT",
	TokenGe:          "GE",
	TokenAnd:         "AND",
	TokenOr:          "OR",
	TokenNot:         "NOT",
	TokenRange:       "RANGE",

	TokenLParen:    "LPAREN",
	TokenRParen:    "RPAREN",
	TokenLBrace:    "LBRACE",
	TokenRBrace:    "RBRACE",
	TokenComma:     "COMMA",
	TokenColon:     "COLON",
	TokenDot:       "DOT",
	TokenSemicolon: "SEMICOLON",
}

// keywords maps string keywords to their token types
var keywords = map[string]TokenType{
	"fun":      TokenFun,
	"val":      TokenVal,
	"var":      TokenVar,
	"const":    TokenConst,
	"for":      TokenFor,
	"in":       TokenIn,
	"if":       TokenIf,
	"else":     TokenElse,
	"while":    TokenWhile,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"return":   TokenReturn,
	"true":     TokenBool,
	"false":    TokenBool,
}

// Lexer represents the lexical analyzer
type Lexer struct {
	input        string
	filename     string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // line of ch
	column       int  // column of ch
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer instance with filename for error reporting
func NewWithFilename(input, filename string) *Lexer {
	l := &Lexer{
		input:    input,
		filename: filename,
		line:     1,
	}

	l.readChar()
	return l
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) currentPosition() position.Position {
	return position.Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.column,
		Offset:   min(l.position, len(l.input)),
	}
}

// skipTrivia skips spaces, tabs, carriage returns and comments.
func (l *Lexer) skipTrivia() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') && l.ch != 0 {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
		default:
			return
		}
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads decimal, hex (0x) and binary (0b) literals with optional
// '_' separators and an optional L suffix. A '.' is never consumed so that
// "0..10" lexes as INTEGER RANGE INTEGER.
func (l *Lexer) readNumber() string {
	start := l.position
	digit := isDigit

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		digit = isHexDigit
	} else if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		digit = func(ch byte) bool { return ch == '0' || ch == '1' }
	}

	for digit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	if l.ch == 'L' {
		l.readChar()
	}

	return l.input[start:l.position]
}

// readCharLiteral reads the raw text between single quotes.
func (l *Lexer) readCharLiteral() (string, bool) {
	start := l.position + 1
	for {
		l.readChar()
		if l.ch == '\'' {
			return l.input[start:l.position], true
		}
		if l.ch == 0 || l.ch == '\n' {
			return l.input[start:l.position], false
		}
		if l.ch == '\\' {
			l.readChar()
		}
	}
}

// NextToken scans the input and returns the next token with full position information
func (l *Lexer) NextToken() Token {
	l.skipTrivia()

	start := l.currentPosition()

	two := func(next byte, double, single TokenType) Token {
		if l.peekChar() == next {
			l.readChar()
			l.readChar()
			return l.tokenFrom(double, start)
		}
		l.readChar()
		return l.tokenFrom(single, start)
	}

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Span: position.Span{Start: start, End: start}}
	case '\n':
		l.readChar()
		return l.tokenFrom(TokenNewline, start)
	case '+':
		return two('=', TokenPlusAssign, TokenPlus)
	case '-':
		return two('=', TokenMinusAssign, TokenMinus)
	case '*':
		return two('=', TokenMulAssign, TokenMul)
	case '/':
		l.readChar()
		return l.tokenFrom(TokenDiv, start)
	case '%':
		l.readChar()
		return l.tokenFrom(TokenMod, start)
	case '=':
		return two('=', TokenEq, TokenAssign)
	case '!':
		return two('=', TokenNe, TokenNot)
	case '<':
		return two('=', TokenLe, TokenLt)
	case '>':
		return two('=', TokenGe, TokenGt)
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return l.tokenFrom(TokenAnd, start)
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return l.tokenFrom(TokenOr, start)
		}
	case '.':
		return two('.', TokenRange, TokenDot)
	case '(':
		l.readChar()
		return l.tokenFrom(TokenLParen, start)
	case ')':
		l.readChar()
		return l.tokenFrom(TokenRParen, start)
	case '{':
		l.readChar()
		return l.tokenFrom(TokenLBrace, start)
	case '}':
		l.readChar()
		return l.tokenFrom(TokenRBrace, start)
	case ',':
		l.readChar()
		return l.tokenFrom(TokenComma, start)
	case ':':
		l.readChar()
		return l.tokenFrom(TokenColon, start)
	case ';':
		l.readChar()
		return l.tokenFrom(TokenSemicolon, start)
	case '\'':
		raw, ok := l.readCharLiteral()
		if !ok {
			return l.errorToken("unterminated character literal", start)
		}
		l.readChar()
		tok := l.tokenFrom(TokenChar, start)
		tok.Literal = raw
		return tok
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			tok := l.tokenFrom(lookupIdent(ident), start)
			return tok
		}
		if isDigit(l.ch) {
			l.readNumber()
			if isLetter(l.ch) {
				for isLetter(l.ch) || isDigit(l.ch) {
					l.readChar()
				}
				return l.errorToken("malformed number "+l.input[start.Offset:l.position], start)
			}
			return l.tokenFrom(TokenInteger, start)
		}
	}

	ch := l.ch
	l.readChar()
	return l.errorToken(fmt.Sprintf("unexpected character %q", ch), start)
}

// tokenFrom builds a token covering input from start up to the current char.
func (l *Lexer) tokenFrom(tokenType TokenType, start position.Position) Token {
	end := l.currentPosition()
	return Token{
		Type:    tokenType,
		Literal: l.input[start.Offset:end.Offset],
		Span:    position.Span{Start: start, End: end},
	}
}

func (l *Lexer) errorToken(message string, start position.Position) Token {
	return Token{
		Type:    TokenError,
		Literal: message,
		Span:    position.Span{Start: start, End: l.currentPosition()},
	}
}

// lookupIdent checks if identifier is keyword
func lookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdentifier
}

// Tokenize scans the whole input, stopping after EOF.
func Tokenize(input, filename string) []Token {
	l := NewWithFilename(input, filename)
	var out []Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Type == TokenEOF {
			return out
		}
	}
}

// ParseInteger decodes an integer literal. The second result reports an L
// suffix. Values above the int64 range are rejected.
func ParseInteger(lit string) (int64, bool, error) {
	long := strings.HasSuffix(lit, "L")
	digits := strings.ReplaceAll(strings.TrimSuffix(lit, "L"), "_", "")

	base := 10
	switch {
	case strings.HasPrefix(digits, "0x"), strings.HasPrefix(digits, "0X"):
		base, digits = 16, digits[2:]
	case strings.HasPrefix(digits, "0b"), strings.HasPrefix(digits, "0B"):
		base, digits = 2, digits[2:]
	}

	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return 0, long, fmt.Errorf("invalid integer literal %q", lit)
	}
	return v, long, nil
}

// DecodeChar decodes the raw text of a character literal into its UTF-16
// code unit.
func DecodeChar(raw string) (uint16, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty character literal")
	}

	if raw[0] != '\\' {
		r := []rune(raw)
		if len(r) != 1 || r[0] > 0xFFFF {
			return 0, fmt.Errorf("too many characters in a character literal %q", raw)
		}
		return uint16(r[0]), nil
	}

	switch raw {
	case `\n`:
		return '\n', nil
	case `\t`:
		return '\t', nil
	case `\r`:
		return '\r', nil
	case `\0`:
		return 0, nil
	case `\\`:
		return '\\', nil
	case `\'`:
		return '\'', nil
	case `\"`:
		return '"', nil
	case `\$`:
		return '$', nil
	}

	if strings.HasPrefix(raw, `\u`) && len(raw) == 6 {
		v, err := strconv.ParseUint(raw[2:], 16, 16)
		if err != nil {
			return 0, fmt.Errorf("illegal escape %q", raw)
		}
		return uint16(v), nil
	}

	return 0, fmt.Errorf("illegal escape %q", raw)
}
