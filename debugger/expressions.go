package debugger

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/vm"
)

// ExpressionEvaluator evaluates print/watch/break-condition expressions
// over a running program's frame, keeping a $1, $2, ... history of
// evaluated values the way the ARM emulator's evaluator does.
type ExpressionEvaluator struct {
	valueHistory []float32
	valueNumber  int
}

// NewExpressionEvaluator creates a new expression evaluator.
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{}
}

// EvaluateExpression evaluates expr and records the result in history.
func (e *ExpressionEvaluator) EvaluateExpression(expr string, machine *vm.Machine, symbols map[string]codegen.VarSymbol) (float32, error) {
	result, err := e.evaluate(expr, machine, symbols)
	if err != nil {
		return 0, err
	}

	e.valueHistory = append(e.valueHistory, result)
	e.valueNumber = len(e.valueHistory)

	return result, nil
}

// EvaluateCondition evaluates expr as a breakpoint condition: nonzero is
// true. It does not touch the value history, since conditions are checked
// silently on every potential stop.
func (e *ExpressionEvaluator) EvaluateCondition(expr string, machine *vm.Machine, symbols map[string]codegen.VarSymbol) (bool, error) {
	result, err := e.evaluate(expr, machine, symbols)
	if err != nil {
		return false, err
	}
	return result != 0, nil
}

// GetValueNumber returns the current value number.
func (e *ExpressionEvaluator) GetValueNumber() int { return e.valueNumber }

// GetValue returns a value from history by its $N number.
func (e *ExpressionEvaluator) GetValue(number int) (float32, error) {
	if number < 1 || number > len(e.valueHistory) {
		return 0, fmt.Errorf("value $%d not in history", number)
	}
	return e.valueHistory[number-1], nil
}

func (e *ExpressionEvaluator) evaluate(expr string, machine *vm.Machine, symbols map[string]codegen.VarSymbol) (float32, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	tokens := NewExprLexer(expr).TokenizeAll()
	parser := NewExprParser(tokens, machine, symbols, e)
	return parser.Parse()
}

// Reset clears the value history.
func (e *ExpressionEvaluator) Reset() {
	e.valueHistory = e.valueHistory[:0]
	e.valueNumber = 0
}
