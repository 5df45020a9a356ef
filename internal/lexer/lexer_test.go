package lexer

import "testing"

func TestBasicTokens(t *testing.T) {
	input := `fun main() {
	for (i in 0..10) emit(i)
}`

	tests := []struct {
		expectedType  TokenType
		expectedValue string
	}{
		{TokenFun, "fun"},
		{TokenIdentifier, "main"},
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenLBrace, "{"},
		{TokenNewline, "\n"},
		{TokenFor, "for"},
		{TokenLParen, "("},
		{TokenIdentifier, "i"},
		{TokenIn, "in"},
		{TokenInteger, "0"},
		{TokenRange, ".."},
		{TokenInteger, "10"},
		{TokenRParen, ")"},
		{TokenIdentifier, "emit"},
		{TokenLParen, "("},
		{TokenIdentifier, "i"},
		{TokenRParen, ")"},
		{TokenNewline, "\n"},
		{TokenRBrace, "}"},
		{TokenEOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedValue {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedValue, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `fun val var const for in if else while break continue return true false downTo`

	tests := []struct {
		expectedType  TokenType
		expectedValue string
	}{
		{TokenFun, "fun"},
		{TokenVal, "val"},
		{TokenVar, "var"},
		{TokenConst, "const"},
		{TokenFor, "for"},
		{TokenIn, "in"},
		{TokenIf, "if"},
		{TokenElse, "else"},
		{TokenWhile, "while"},
		{TokenBreak, "break"},
		{TokenContinue, "continue"},
		{TokenReturn, "return"},
		{TokenBool, "true"},
		{TokenBool, "false"},
		{TokenIdentifier, "downTo"},
		{TokenEOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedValue {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedValue, tok.Literal)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `+ - * / % = += -= *= == != < <= > >= && || ! .. . , : ;`

	expected := []TokenType{
		TokenPlus, TokenMinus, TokenMul, TokenDiv, TokenMod,
		TokenAssign, TokenPlusAssign, TokenMinusAssign, TokenMulAssign,
		TokenEq, TokenNe, TokenLt, TokenLe, TokenGt, TokenGe,
		TokenAnd, TokenOr, TokenNot, TokenRange, TokenDot,
		TokenComma, TokenColon, TokenSemicolon, TokenEOF,
	}

	l := New(input)

	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)",
				i, want, tok.Type, tok.Literal)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input    string
		value    int64
		long     bool
		hasError bool
	}{
		{"0", 0, false, false},
		{"1_000_000", 1000000, false, false},
		{"0x7FFF_FFFF", 2147483647, false, false},
		{"0b1010", 10, false, false},
		{"9223372036854775807L", 9223372036854775807, true, false},
		{"10L", 10, true, false},
		{"9223372036854775808", 0, false, true},
	}

	for i, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != TokenInteger {
			t.Fatalf("tests[%d] - expected INTEGER, got %s", i, tok.Type)
		}

		v, long, err := ParseInteger(tok.Literal)
		if tt.hasError {
			if err == nil {
				t.Errorf("tests[%d] - expected error for %q", i, tt.input)
			}
			continue
		}

		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}

		if v != tt.value || long != tt.long {
			t.Errorf("tests[%d] - expected (%d, %v), got (%d, %v)", i, tt.value, tt.long, v, long)
		}
	}
}

func TestRangeAfterNumber(t *testing.T) {
	toks := Tokenize("1..2L", "")

	want := []TokenType{TokenInteger, TokenRange, TokenInteger, TokenEOF}
	if len(toks) != len(want) {
		t.Fatalf("Expected %d tokens, got %d", len(want), len(toks))
	}

	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: expected %s, got %s", i, tt, toks[i].Type)
		}
	}

	if toks[2].Literal != "2L" {
		t.Errorf("Expected literal 2L, got %q", toks[2].Literal)
	}
}

func TestCharLiterals(t *testing.T) {
	tests := []struct {
		input string
		raw   string
		value uint16
	}{
		{`'a'`, "a", 'a'},
		{`'\n'`, `\n`, '\n'},
		{`'\''`, `\'`, '\''},
		{`'\\'`, `\\`, '\\'},
		{"'\uFFFF'", "\uFFFF", 0xFFFF},
		{`'\u0000'`, `\u0000`, 0},
	}

	for i, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != TokenChar {
			t.Fatalf("tests[%d] - expected CHAR, got %s (%q)", i, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.raw {
			t.Errorf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.raw, tok.Literal)
		}

		v, err := DecodeChar(tok.Literal)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}

		if v != tt.value {
			t.Errorf("tests[%d] - expected %d, got %d", i, tt.value, v)
		}
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []string{
		`'abc`,
		`#`,
		`12abc`,
		`a & b`,
	}

	for _, input := range tests {
		found := false
		for _, tok := range Tokenize(input, "") {
			if tok.Type == TokenError {
				found = true
				break
			}
		}

		if !found {
			t.Errorf("Expected an error token for %q", input)
		}
	}
}

func TestCommentsAndPositions(t *testing.T) {
	input := "// leading\nval x = 1 /* inline */ + 2\n"

	toks := Tokenize(input, "pos.kt")

	if toks[0].Type != TokenNewline {
		t.Fatalf("Expected NEWLINE after line comment, got %s", toks[0].Type)
	}

	val := toks[1]
	if val.Type != TokenVal {
		t.Fatalf("Expected VAL, got %s", val.Type)
	}

	if val.Span.Start.Line != 2 || val.Span.Start.Column != 1 {
		t.Errorf("Expected val at 2:1, got %s", val.Span.Start)
	}

	plus := toks[5]
	if plus.Type != TokenPlus {
		t.Fatalf("Expected PLUS, got %s", plus.Type)
	}

	if plus.Span.Start.Column != 24 {
		t.Errorf("Expected plus at column 24, got %d", plus.Span.Start.Column)
	}

	if plus.Span.Start.Filename != "pos.kt" {
		t.Errorf("Expected filename pos.kt, got %q", plus.Span.Start.Filename)
	}
}
