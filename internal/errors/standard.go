// Package errors provides standardized error messaging for rangeopt
package errors

import (
	"fmt"
	"runtime"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategorySyntax   ErrorCategory = "SYNTAX"
	CategoryResolve  ErrorCategory = "RESOLVE"
	CategoryLowering ErrorCategory = "LOWERING"
	CategoryRuntime  ErrorCategory = "RUNTIME"
	CategoryConfig   ErrorCategory = "CONFIG"
)

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
	// Pos is the source location of front-end errors, nil otherwise.
	Pos fmt.Stringer
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Is reports whether target is a StandardError with the same category and code.
// Message and context are ignored so sentinel values can be compared with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}

	return e.Category == t.Category && e.Code == t.Code
}

// NewStandardError creates a new standardized error
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(1)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// Sentinels for errors.Is matching.
var (
	ErrSyntax             = &StandardError{Category: CategorySyntax, Code: "SYNTAX_ERROR"}
	ErrUnresolvedName     = &StandardError{Category: CategoryResolve, Code: "UNRESOLVED_NAME"}
	ErrTypeMismatch       = &StandardError{Category: CategoryResolve, Code: "TYPE_MISMATCH"}
	ErrInvalidConstruct   = &StandardError{Category: CategoryResolve, Code: "INVALID_CONSTRUCT"}
	ErrDivisionByZero     = &StandardError{Category: CategoryRuntime, Code: "DIVISION_BY_ZERO"}
	ErrStepBudgetExceeded = &StandardError{Category: CategoryRuntime, Code: "STEP_BUDGET_EXCEEDED"}
	ErrNonPositiveStep    = &StandardError{Category: CategoryRuntime, Code: "NON_POSITIVE_STEP"}
	ErrUnknownCallee      = &StandardError{Category: CategoryRuntime, Code: "UNKNOWN_CALLEE"}
	ErrTrap               = &StandardError{Category: CategoryRuntime, Code: "TRAP"}
	ErrInvalidConfig      = &StandardError{Category: CategoryConfig, Code: "INVALID_CONFIG"}
)

// Common error constructors
func SyntaxError(pos fmt.Stringer, message string) *StandardError {
	e := NewStandardError(CategorySyntax, "SYNTAX_ERROR",
		fmt.Sprintf("%s: %s", pos, message),
		map[string]interface{}{"position": pos.String()})
	e.Pos = pos
	return e
}

func UnresolvedName(pos fmt.Stringer, name string) *StandardError {
	e := NewStandardError(CategoryResolve, "UNRESOLVED_NAME",
		fmt.Sprintf("%s: unresolved reference: %s", pos, name),
		map[string]interface{}{"position": pos.String(), "name": name})
	e.Pos = pos
	return e
}

func TypeMismatch(pos fmt.Stringer, details string) *StandardError {
	e := NewStandardError(CategoryResolve, "TYPE_MISMATCH",
		fmt.Sprintf("%s: %s", pos, details),
		map[string]interface{}{"position": pos.String(), "details": details})
	e.Pos = pos
	return e
}

func InvalidConstruct(pos fmt.Stringer, details string) *StandardError {
	e := NewStandardError(CategoryResolve, "INVALID_CONSTRUCT",
		fmt.Sprintf("%s: %s", pos, details),
		map[string]interface{}{"position": pos.String(), "details": details})
	e.Pos = pos
	return e
}

func Lowering(function, details string) *StandardError {
	return NewStandardError(CategoryLowering, "LOWERING_FAILED",
		fmt.Sprintf("function %s: %s", function, details),
		map[string]interface{}{"function": function, "details": details})
}

func StepBudgetExceeded(function string, budget int64) *StandardError {
	return NewStandardError(CategoryRuntime, "STEP_BUDGET_EXCEEDED",
		fmt.Sprintf("Step budget of %d exhausted in %s", budget, function),
		map[string]interface{}{"function": function, "budget": budget})
}

func NonPositiveStep(step int64) *StandardError {
	return NewStandardError(CategoryRuntime, "NON_POSITIVE_STEP",
		fmt.Sprintf("Step must be positive, was: %d", step),
		map[string]interface{}{"step": step})
}

func DivisionByZero(function string) *StandardError {
	return NewStandardError(CategoryRuntime, "DIVISION_BY_ZERO",
		fmt.Sprintf("Division by zero in %s", function),
		map[string]interface{}{"function": function})
}

func UnknownCallee(name string) *StandardError {
	return NewStandardError(CategoryRuntime, "UNKNOWN_CALLEE",
		fmt.Sprintf("Unknown callee %q", name),
		map[string]interface{}{"callee": name})
}

// Trap reports a malformed program detected while interpreting it.
func Trap(function, details string) *StandardError {
	return NewStandardError(CategoryRuntime, "TRAP",
		fmt.Sprintf("%s: %s", function, details),
		map[string]interface{}{"function": function, "details": details})
}

func InvalidConfig(key, details string) *StandardError {
	return NewStandardError(CategoryConfig, "INVALID_CONFIG",
		fmt.Sprintf("Invalid %s: %s", key, details),
		map[string]interface{}{"key": key, "details": details})
}
