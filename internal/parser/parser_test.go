package parser

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/orizon-lang/rangeopt/internal/errors"
	"github.com/orizon-lang/rangeopt/internal/lexer"
)

// parseFunctionBody parses src as the body of a single function and returns its statements.
func parseFunctionBody(t *testing.T, src string) []Statement {
	t.Helper()

	program, errs := ParseSource("fun f() {\n"+src+"\n}\n", "test.kt")
	if len(errs) > 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}

	fns := program.Functions()
	if len(fns) != 1 {
		t.Fatalf("Expected 1 function, got %d", len(fns))
	}

	return fns[0].Body.Statements
}

// TestOperatorPrecedence tests the complete operator precedence hierarchy
func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Basic arithmetic precedence",
			input:    "1 + 2 * 3",
			expected: "(1 + (2 * 3))",
		},
		{
			name:     "Range binds looser than arithmetic",
			input:    "0..n - 1",
			expected: "(0..(n - 1))",
		},
		{
			name:     "Step applies to the whole range",
			input:    "0..10 step 2",
			expected: "((0..10) step 2)",
		},
		{
			name:     "downTo with step is left associative",
			input:    "10 downTo 0 step 3",
			expected: "((10 downTo 0) step 3)",
		},
		{
			name:     "Prefix minus binds tighter than range",
			input:    "-5..5",
			expected: "((-5)..5)",
		},
		{
			name:     "Member access and calls",
			input:    "(0..Int.MAX_VALUE).reversed()",
			expected: "(0..Int.MAX_VALUE).reversed()",
		},
		{
			name:     "Conversion call in range",
			input:    "x.toLong()..y",
			expected: "(x.toLong()..y)",
		},
		{
			name:     "Comparison and logical operators",
			input:    "a < b && c != d || e",
			expected: "(((a < b) && (c != d)) || e)",
		},
		{
			name:     "Left associative subtraction",
			input:    "a - b - c",
			expected: "((a - b) - c)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := parseFunctionBody(t, tt.input)
			if len(stmts) != 1 {
				t.Fatalf("Expected 1 statement, got %d", len(stmts))
			}

			stmt, ok := stmts[0].(*ExpressionStatement)
			if !ok {
				t.Fatalf("Expected ExpressionStatement, got %T", stmts[0])
			}

			if got := stmt.Expression.String(); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestForInStatement(t *testing.T) {
	stmts := parseFunctionBody(t, `for (i in 5 downTo 0) {
    emit(i)
}`)

	if len(stmts) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(stmts))
	}

	loop, ok := stmts[0].(*ForInStatement)
	if !ok {
		t.Fatalf("Expected ForInStatement, got %T", stmts[0])
	}

	if loop.Variable.Value != "i" {
		t.Errorf("Expected loop variable i, got %s", loop.Variable.Value)
	}

	infix, ok := loop.Iterable.(*InfixCallExpression)
	if !ok || infix.Name != "downTo" {
		t.Fatalf("Expected downTo call, got %s", loop.Iterable)
	}

	body, ok := loop.Body.(*BlockStatement)
	if !ok || len(body.Statements) != 1 {
		t.Fatalf("Expected block body with 1 statement, got %s", loop.Body)
	}
}

func TestSingleStatementBodies(t *testing.T) {
	stmts := parseFunctionBody(t, `for (c in 'a'..last) emit(c)
if (x > 0) emit(x) else emit(0)
while (n > 0) n -= 1`)

	if len(stmts) != 3 {
		t.Fatalf("Expected 3 statements, got %d", len(stmts))
	}

	if _, ok := stmts[0].(*ForInStatement).Body.(*ExpressionStatement); !ok {
		t.Errorf("Expected expression body, got %T", stmts[0].(*ForInStatement).Body)
	}

	ifStmt := stmts[1].(*IfStatement)
	if ifStmt.Else == nil {
		t.Error("Expected else branch")
	}

	assign, ok := stmts[2].(*WhileStatement).Body.(*AssignStatement)
	if !ok {
		t.Fatalf("Expected assignment body, got %T", stmts[2].(*WhileStatement).Body)
	}

	if assign.Operator != "-=" {
		t.Errorf("Expected -=, got %s", assign.Operator)
	}
}

func TestDeclarations(t *testing.T) {
	input := `
const val LIMIT: Long = 10L

fun sum(from: Int, to: Int): Int {
    var total = 0
    val last = to
    for (i in from..last) {
        if (i == 3) continue
        if (i == 7) break
        total += i
    }
    return total
}
`

	program, errs := ParseSource(input, "decl.kt")
	if len(errs) > 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}

	if len(program.Declarations) != 2 {
		t.Fatalf("Expected 2 declarations, got %d", len(program.Declarations))
	}

	c, ok := program.Declarations[0].(*ConstDeclaration)
	if !ok {
		t.Fatalf("Expected ConstDeclaration, got %T", program.Declarations[0])
	}

	if lit, ok := c.Value.(*IntegerLiteral); !ok || !lit.Long || lit.Value != 10 {
		t.Errorf("Expected 10L literal, got %s", c.Value)
	}

	fn := program.Functions()[0]
	if fn.Name.Value != "sum" || len(fn.Parameters) != 2 {
		t.Fatalf("Unexpected signature %s", fn)
	}

	if fn.ReturnType == nil || fn.ReturnType.Name != "Int" {
		t.Errorf("Expected Int return type")
	}

	stmts := fn.Body.Statements
	if len(stmts) != 4 {
		t.Fatalf("Expected 4 statements, got %d", len(stmts))
	}

	if v := stmts[0].(*VariableDeclaration); !v.Mutable {
		t.Error("Expected var to be mutable")
	}

	if v := stmts[1].(*VariableDeclaration); v.Mutable {
		t.Error("Expected val to be immutable")
	}

	if _, ok := stmts[3].(*ReturnStatement); !ok {
		t.Errorf("Expected return, got %T", stmts[3])
	}
}

func TestMultilineArguments(t *testing.T) {
	stmts := parseFunctionBody(t, `emit(
    a +
    b
)`)

	if got := stmts[0].String(); got != "emit((a + b))" {
		t.Errorf("Expected emit((a + b)), got %s", got)
	}
}

func TestCharLiteral(t *testing.T) {
	stmts := parseFunctionBody(t, `val c = 'A'`)

	decl := stmts[0].(*VariableDeclaration)
	lit, ok := decl.Value.(*CharLiteral)
	if !ok {
		t.Fatalf("Expected CharLiteral, got %T", decl.Value)
	}

	if lit.Value != 'A' {
		t.Errorf("Expected 65, got %d", lit.Value)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing paren", "fun f() { for i in 0..1 {} }", "expected next token to be LPAREN"},
		{"bad top level", "val x = 1", "expected a top-level declaration"},
		{"unterminated block", "fun f() { emit(1)", "expected }"},
		{"trailing tokens", "fun f() { emit(1) emit(2) }", "after statement"},
		{"assign to call", "fun f() { g() = 1 }", "cannot assign"},
		{"integer overflow", "fun f() { emit(9223372036854775808) }", "invalid integer literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(lexer.New(tt.input), "err.kt")
			_, errs := p.Parse()

			if len(errs) == 0 {
				t.Fatalf("Expected errors for %q", tt.input)
			}

			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.want) {
					found = true
				}
				if !stderrors.Is(err, errors.ErrSyntax) {
					t.Errorf("Expected syntax error category, got %v", err)
				}
			}

			if !found {
				t.Errorf("Expected an error containing %q, got %v", tt.want, errs)
			}
		})
	}
}
