package debugger

import (
	"testing"

	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/parser"
	"github.com/lookbusy1344/arm-emulator/vm"
)

func TestExpressionEvaluator_Numbers(t *testing.T) {
	eval := NewExpressionEvaluator()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{}

	tests := []struct {
		name string
		expr string
		want float32
	}{
		{"Integer", "42", 42},
		{"Decimal", "3.5", 3.5},
		{"Negative", "-1", -1},
		{"Zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, machine, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluator_Variables(t *testing.T) {
	eval := NewExpressionEvaluator()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{
		"IT":    {Offset: 0, Type: parser.TokenNumber},
		"COUNT": {Offset: 1, Type: parser.TokenNumber},
	}

	machine.BasePtr = 0
	machine.Stack[0] = 100
	machine.Stack[1] = 200

	tests := []struct {
		name string
		expr string
		want float32
	}{
		{"IT", "IT", 100},
		{"COUNT", "COUNT", 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, machine, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluator_Arithmetic(t *testing.T) {
	eval := NewExpressionEvaluator()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{}

	tests := []struct {
		name string
		expr string
		want float32
	}{
		{"Addition", "10 + 20", 30},
		{"Subtraction", "50 - 20", 30},
		{"Multiplication", "5 * 6", 30},
		{"Division", "60 / 2", 30},
		{"Precedence", "2 + 3 * 4", 14},
		{"Parens", "(2 + 3) * 4", 20},
		{"Unary minus", "-(2 + 3)", -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, machine, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluator_VariablesAndArithmetic(t *testing.T) {
	eval := NewExpressionEvaluator()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{
		"A": {Offset: 0, Type: parser.TokenNumber},
		"B": {Offset: 1, Type: parser.TokenNumber},
	}
	machine.Stack[0] = 10
	machine.Stack[1] = 20

	tests := []struct {
		name string
		expr string
		want float32
	}{
		{"Variable addition", "A + B", 30},
		{"Variable with constant", "A + 5", 15},
		{"Variable subtraction", "B - A", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, machine, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluator_ValueHistory(t *testing.T) {
	eval := NewExpressionEvaluator()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{}

	val1, _ := eval.EvaluateExpression("42", machine, symbols)
	val2, _ := eval.EvaluateExpression("100", machine, symbols)

	if eval.GetValueNumber() != 2 {
		t.Errorf("ValueNumber = %d, want 2", eval.GetValueNumber())
	}

	got1, err := eval.GetValue(1)
	if err != nil {
		t.Fatalf("GetValue(1) error = %v", err)
	}
	if got1 != val1 {
		t.Errorf("GetValue(1) = %v, want %v", got1, val1)
	}

	got2, err := eval.GetValue(2)
	if err != nil {
		t.Fatalf("GetValue(2) error = %v", err)
	}
	if got2 != val2 {
		t.Errorf("GetValue(2) = %v, want %v", got2, val2)
	}

	_, err = eval.GetValue(999)
	if err == nil {
		t.Error("Expected error for invalid value number")
	}
}

func TestExpressionEvaluator_ValueRef(t *testing.T) {
	eval := NewExpressionEvaluator()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{}

	if _, err := eval.EvaluateExpression("21", machine, symbols); err != nil {
		t.Fatalf("EvaluateExpression() error = %v", err)
	}

	got, err := eval.EvaluateExpression("$1 * 2", machine, symbols)
	if err != nil {
		t.Fatalf("EvaluateExpression() error = %v", err)
	}
	if got != 42 {
		t.Errorf("EvaluateExpression($1 * 2) = %v, want 42", got)
	}
}

func TestExpressionEvaluator_Condition(t *testing.T) {
	eval := NewExpressionEvaluator()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{
		"IT": {Offset: 0, Type: parser.TokenNumber},
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"Zero is false", "0", false},
		{"Non-zero is true", "42", true},
		{"Variable zero", "IT", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateCondition(tt.expr, machine, symbols)
			if err != nil {
				t.Fatalf("EvaluateCondition() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateCondition() = %v, want %v", got, tt.want)
			}
		})
	}

	if eval.GetValueNumber() != 0 {
		t.Error("EvaluateCondition must not record to value history")
	}
}

func TestExpressionEvaluator_Errors(t *testing.T) {
	eval := NewExpressionEvaluator()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{}

	tests := []struct {
		name string
		expr string
	}{
		{"Empty expression", ""},
		{"Unknown variable", "UNKNOWN_VAR"},
		{"Division by zero", "10 / 0"},
		{"Unbalanced parens", "(1 + 2"},
		{"Invalid value ref", "$999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eval.EvaluateExpression(tt.expr, machine, symbols)
			if err == nil {
				t.Error("Expected error but got none")
			}
		})
	}
}

func TestExpressionEvaluator_Reset(t *testing.T) {
	eval := NewExpressionEvaluator()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{}

	eval.EvaluateExpression("42", machine, symbols)
	eval.EvaluateExpression("100", machine, symbols)

	if eval.GetValueNumber() != 2 {
		t.Error("Value number should be 2 before reset")
	}

	eval.Reset()

	if eval.GetValueNumber() != 0 {
		t.Error("Value number should be 0 after reset")
	}

	if len(eval.valueHistory) != 0 {
		t.Error("Value history should be empty after reset")
	}
}
