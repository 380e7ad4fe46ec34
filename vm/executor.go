package vm

import (
	"fmt"

	"github.com/lookbusy1344/arm-emulator/ir"
)

// ExecutionState mirrors the ARM emulator's ExecutionMode/ExecutionState
// naming for an interpreter's run state, generalized from "CPU halted on
// SWI" to "ran off the end of the body" / "raised a Panic".
type ExecutionState int

const (
	StateRunning ExecutionState = iota
	StateHalted
	StateError
)

func (s ExecutionState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ForeignFunc is a single entry in the foreign function table CallForeign
// dispatches to (see foreign.go).
type ForeignFunc func(*Executor) error

// Executor runs one ir.Module's entry body against a Machine. It is the
// native equivalent of the cvm/encoder targets: instead of emitting code
// that a C compiler or assembler turns into a binary, it interprets the IR
// directly.
type Executor struct {
	Machine *Machine
	Module  *ir.Module

	Foreign map[string]ForeignFunc

	In  Reader
	Out Writer

	pc    int
	loops []int // index of the BeginWhile matching each currently-open EndWhile search
	state ExecutionState
	err   error
	steps int

	MaxSteps int
}

// Reader/Writer narrow io.Reader/io.Writer to the one byte-at-a-time shape
// the foreign table needs, so tests can swap in a bytes.Buffer or a
// strings.Reader without pulling in io directly here.
type Reader interface {
	ReadByte() (byte, error)
}

type Writer interface {
	WriteString(string) (int, error)
}

// NewExecutor builds an Executor ready to run mod's entry body.
func NewExecutor(mod *ir.Module, in Reader, out Writer) *Executor {
	stackSize := mod.Entry.StackSize
	if stackSize <= 0 {
		stackSize = DefaultStackSize
	}
	heapSize := mod.Entry.HeapSize
	if heapSize <= 0 {
		heapSize = DefaultHeapSize
	}
	e := &Executor{
		Machine:  NewMachine(stackSize, heapSize),
		Module:   mod,
		In:       in,
		Out:      out,
		MaxSteps: DefaultMaxSteps,
	}
	e.Foreign = defaultForeignTable()
	return e
}

// Run steps the entry body to completion, returning the terminal state.
func (e *Executor) Run() (ExecutionState, error) {
	body := e.Module.Entry.Body
	for e.state == StateRunning {
		if e.pc >= len(body) {
			e.state = StateHalted
			return e.state, nil
		}
		if e.steps >= e.MaxSteps {
			e.state = StateError
			e.err = fmt.Errorf("exceeded max step count (%d)", e.MaxSteps)
			return e.state, e.err
		}
		if err := e.Step(); err != nil {
			e.state = StateError
			e.err = err
			return e.state, err
		}
		if e.state != StateRunning {
			return e.state, e.err
		}
	}
	return e.state, e.err
}

// Step executes the single statement at the current program counter.
func (e *Executor) Step() error {
	body := e.Module.Entry.Body
	if e.pc >= len(body) {
		e.state = StateHalted
		return nil
	}
	stmt := body[e.pc]
	e.steps++

	switch stmt.Op {
	case ir.Push:
		if err := e.Machine.Push(stmt.Number); err != nil {
			return err
		}
	case ir.Add:
		if err := e.Machine.Add(); err != nil {
			return err
		}
	case ir.Subtract:
		if err := e.Machine.Subtract(); err != nil {
			return err
		}
	case ir.Multiply:
		if err := e.Machine.Multiply(); err != nil {
			return err
		}
	case ir.Divide:
		if err := e.Machine.Divide(); err != nil {
			return err
		}
	case ir.Modulo:
		if err := e.Machine.Modulo(); err != nil {
			return err
		}
	case ir.Sign:
		if err := e.Machine.Sign(); err != nil {
			return err
		}
	case ir.Allocate:
		if err := e.Machine.Allocate(); err != nil {
			return err
		}
	case ir.Free:
		if err := e.Machine.Free(); err != nil {
			return err
		}
	case ir.Store:
		if err := e.Machine.Store(stmt.Size); err != nil {
			return err
		}
	case ir.Load:
		if err := e.Machine.Load(stmt.Size); err != nil {
			return err
		}
	case ir.Copy:
		if err := e.Machine.Copy(); err != nil {
			return err
		}
	case ir.Mov:
		if err := e.Machine.Mov(); err != nil {
			return err
		}
	case ir.LoadBasePtr:
		if err := e.Machine.LoadBasePtr(); err != nil {
			return err
		}
	case ir.EstablishStackFrame:
		if err := e.Machine.EstablishStackFrame(); err != nil {
			return err
		}
		if e.Module.Convention == ir.BaseEqualsTopMinusOne {
			e.Machine.BasePtr--
		}
	case ir.EndStackFrame:
		if err := e.Machine.EndStackFrame(stmt.ArgSize, stmt.LocalsSize); err != nil {
			return err
		}
	case ir.SetReturnRegister:
		if err := e.Machine.SetReturnRegister(); err != nil {
			return err
		}
	case ir.AccessReturnRegister:
		if err := e.Machine.AccessReturnRegister(); err != nil {
			return err
		}
	case ir.CallForeign:
		fn, ok := e.Foreign[stmt.Name]
		if !ok {
			return fmt.Errorf("unknown foreign function %q", stmt.Name)
		}
		if err := fn(e); err != nil {
			return err
		}
	case ir.Call:
		return fmt.Errorf("Call to %q: user-defined functions are not reachable from this grammar", stmt.Name)
	case ir.BeginWhile:
		cond, err := e.Machine.Pop()
		if err != nil {
			return err
		}
		if cond == 0 {
			end, err := matchingEndWhile(body, e.pc)
			if err != nil {
				return err
			}
			e.pc = end + 1
			return nil
		}
	case ir.EndWhile:
		begin, err := matchingBeginWhile(body, e.pc)
		if err != nil {
			return err
		}
		e.pc = begin
		return nil
	case ir.Hook, ir.RefHook:
		// Debugger/tooling breakpoints: no effect on execution semantics.
	case ir.Halt:
		e.state = StateHalted
		return nil
	default:
		return fmt.Errorf("unhandled opcode %s", stmt.Op)
	}

	e.pc++
	return nil
}

// matchingEndWhile scans forward from a BeginWhile at index start to the
// EndWhile that closes it, accounting for nested while loops in between.
func matchingEndWhile(body []ir.Statement, start int) (int, error) {
	depth := 0
	for i := start; i < len(body); i++ {
		switch body[i].Op {
		case ir.BeginWhile:
			depth++
		case ir.EndWhile:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("BeginWhile at %d has no matching EndWhile", start)
}

// matchingBeginWhile scans backward from an EndWhile at index end to the
// BeginWhile that opens it.
func matchingBeginWhile(body []ir.Statement, end int) (int, error) {
	depth := 0
	for i := end; i >= 0; i-- {
		switch body[i].Op {
		case ir.EndWhile:
			depth++
		case ir.BeginWhile:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("EndWhile at %d has no matching BeginWhile", end)
}

// State returns the executor's current run state and, if it stopped on an
// error, the error that stopped it.
func (e *Executor) State() (ExecutionState, error) { return e.state, e.err }

// PC returns the index into the entry body of the statement Step will
// execute next. A debugger driving the executor one Step at a time uses
// this to decide whether it has reached a breakpoint.
func (e *Executor) PC() int { return e.pc }

// StatementAt returns the statement at index i of the entry body, and
// whether i was in range. A debugger uses this to render the instruction a
// breakpoint or the next Step stopped on without reaching into Module
// directly.
func (e *Executor) StatementAt(i int) (ir.Statement, bool) {
	body := e.Module.Entry.Body
	if i < 0 || i >= len(body) {
		return ir.Statement{}, false
	}
	return body[i], true
}

// Steps returns how many statements this executor has run so far.
func (e *Executor) Steps() int { return e.steps }
