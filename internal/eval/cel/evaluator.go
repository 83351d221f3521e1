package cel

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// Variables visible to a selector expression
const (
	VarEntry   = "entry"
	VarIndex   = "index"
	VarHistory = "history"
)

// Evaluator evaluates history selector expressions
type Evaluator struct {
	env   *cel.Env
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new CEL evaluator
func NewEvaluator() *Evaluator {
	// Create CEL environment with the selector declarations
	env, err := cel.NewEnv(
		cel.Variable(VarEntry, cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable(VarIndex, cel.IntType),
		cel.Variable(VarHistory, cel.ListType(cel.MapType(cel.StringType, cel.StringType))),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create CEL environment: %v", err))
	}

	return &Evaluator{
		env:   env,
		cache: make(map[string]cel.Program),
	}
}

// Select evaluates a selector for one history entry
func (e *Evaluator) Select(expression string, vars map[string]any) (bool, error) {
	// Get or compile program
	program, err := e.getProgram(expression)
	if err != nil {
		return false, fmt.Errorf("failed to compile expression: %w", err)
	}

	// Evaluate the program
	out, _, err := program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("evaluation failed: %w", err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("selector returned %s, want bool", out.Type().TypeName())
	}

	return matched, nil
}

// getProgram gets a compiled program from cache or compiles it
func (e *Evaluator) getProgram(expression string) (cel.Program, error) {
	// Check cache first (read lock)
	e.mu.RLock()
	if program, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	// Compile the expression (write lock)
	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if program, ok := e.cache[expression]; ok {
		return program, nil
	}

	// Parse and type-check the expression
	ast, err := e.compile(expression)
	if err != nil {
		return nil, err
	}

	// Generate the program
	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program generation error: %w", err)
	}

	// Cache the program
	e.cache[expression] = program

	return program, nil
}

func (e *Evaluator) compile(expression string) (*cel.Ast, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("parse error: %w", issues.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("selector must return bool, got %s", out)
	}

	return ast, nil
}

// ValidateExpression validates a selector without evaluating it
func (e *Evaluator) ValidateExpression(expression string) error {
	_, err := e.compile(expression)
	return err
}

// ClearCache clears the compiled program cache
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]cel.Program)
}
