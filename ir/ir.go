// Package ir defines the stack-oriented intermediate representation that
// the code generator emits and the targets (the native vm package, the
// cvm C serializer, and the encoder assembly serializer) consume.
package ir

import "fmt"

// Op identifies the kind of an IRStatement. Modelled as a byte-tagged enum
// the way skx/math-compiler's instructions.InstructionType is, rather than
// as a family of Go types, since instructions carry at most one payload
// field and a flat switch over a tag is what every consumer (vm, cvm,
// encoder) needs to do anyway.
type Op byte

const (
	Push Op = iota + 1
	Add
	Subtract
	Multiply
	Divide
	Modulo
	Sign
	Allocate
	Free
	Store
	Load
	Copy
	Mov
	Call
	CallForeign
	BeginWhile
	EndWhile
	LoadBasePtr
	EstablishStackFrame
	EndStackFrame
	SetReturnRegister
	AccessReturnRegister
	Hook
	RefHook
	Halt
)

var opNames = map[Op]string{
	Push:                 "Push",
	Add:                  "Add",
	Subtract:             "Subtract",
	Multiply:             "Multiply",
	Divide:               "Divide",
	Modulo:               "Modulo",
	Sign:                 "Sign",
	Allocate:             "Allocate",
	Free:                 "Free",
	Store:                "Store",
	Load:                 "Load",
	Copy:                 "Copy",
	Mov:                  "Mov",
	Call:                 "Call",
	CallForeign:          "CallForeign",
	BeginWhile:           "BeginWhile",
	EndWhile:             "EndWhile",
	LoadBasePtr:          "LoadBasePtr",
	EstablishStackFrame:  "EstablishStackFrame",
	EndStackFrame:        "EndStackFrame",
	SetReturnRegister:    "SetReturnRegister",
	AccessReturnRegister: "AccessReturnRegister",
	Hook:                 "Hook",
	RefHook:              "RefHook",
	Halt:                 "Halt",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Op(%d)", byte(o))
}

// Statement is a single IR instruction. Only the fields relevant to its Op
// are meaningful; which ones those are is documented per Op below:
//
//	Push                 Number
//	Store, Load          Size
//	Call, CallForeign    Name
//	EndStackFrame        ArgSize, LocalsSize
//	Hook, RefHook         Slot
type Statement struct {
	Op Op

	Number float32
	Name   string
	Size   int
	Slot   int

	ArgSize    int
	LocalsSize int
}

// Push builds a Push instruction.
func PushStmt(v float32) Statement { return Statement{Op: Push, Number: v} }

// StoreStmt builds a Store(size) instruction.
func StoreStmt(size int) Statement { return Statement{Op: Store, Size: size} }

// LoadStmt builds a Load(size) instruction.
func LoadStmt(size int) Statement { return Statement{Op: Load, Size: size} }

// CallStmt builds a Call(name) instruction.
func CallStmt(name string) Statement { return Statement{Op: Call, Name: name} }

// CallForeignStmt builds a CallForeign(name) instruction.
func CallForeignStmt(name string) Statement { return Statement{Op: CallForeign, Name: name} }

// EndStackFrameStmt builds an EndStackFrame(argSize, localsSize) instruction.
func EndStackFrameStmt(argSize, localsSize int) Statement {
	return Statement{Op: EndStackFrame, ArgSize: argSize, LocalsSize: localsSize}
}

// HookStmt builds a Hook(slot) instruction.
func HookStmt(slot int) Statement { return Statement{Op: Hook, Slot: slot} }

// RefHookStmt builds a RefHook(slot) instruction.
func RefHookStmt(slot int) Statement { return Statement{Op: RefHook, Slot: slot} }

func (s Statement) String() string {
	switch s.Op {
	case Push:
		return fmt.Sprintf("Push(%v)", s.Number)
	case Store, Load:
		return fmt.Sprintf("%s(%d)", s.Op, s.Size)
	case Call, CallForeign:
		return fmt.Sprintf("%s(%q)", s.Op, s.Name)
	case EndStackFrame:
		return fmt.Sprintf("EndStackFrame(args=%d, locals=%d)", s.ArgSize, s.LocalsSize)
	case Hook, RefHook:
		return fmt.Sprintf("%s(%d)", s.Op, s.Slot)
	default:
		return s.Op.String()
	}
}

// Function is a user-defined IR function: a name plus a body that, when
// executed, observes the calling convention below.
// Nothing in the language surface this compiler accepts currently emits a
// user-defined function (there is no function-definition statement in the
// Statement sum codegen produces) — the type exists because the IR model is
// designed to support them, and the cvm/encoder serializers both already
// know how to emit one. See DESIGN.md for the reasoning.
type Function struct {
	Name string
	Body []Statement
}

// FrameConvention selects which of the two supported EstablishStackFrame
// behaviors the code generator and serializers agree on. Mixing
// conventions between the generator and a serializer would silently
// corrupt frames, so it is threaded through explicitly rather than
// assumed.
type FrameConvention int

const (
	// BaseEqualsTop sets base = sp at frame entry.
	BaseEqualsTop FrameConvention = iota
	// BaseEqualsTopMinusOne sets base = sp - 1 at frame entry.
	BaseEqualsTopMinusOne
)

// Entry is the program's main function.
type Entry struct {
	StackSize int
	HeapSize  int
	Body      []Statement
}

// Module is the complete output of lowering: every user-defined function
// plus the designated entry function.
type Module struct {
	Functions  []Function
	Entry      Entry
	Convention FrameConvention
}

// FunctionNames returns the set of names Call may legally reference.
func (m *Module) FunctionNames() map[string]bool {
	names := make(map[string]bool, len(m.Functions))
	for _, f := range m.Functions {
		names[f.Name] = true
	}
	return names
}

// ValidateFrames checks that every EstablishStackFrame reached in body has
// exactly one matching EndStackFrame before the body ends. allowAbandoned
// permits the last EstablishStackFrame to go unmatched, which is allowed
// for the entry function (the frame may be abandoned on program
// termination).
func ValidateFrames(body []Statement, allowAbandoned bool) error {
	depth := 0
	for _, s := range body {
		switch s.Op {
		case EstablishStackFrame:
			depth++
		case EndStackFrame:
			depth--
			if depth < 0 {
				return fmt.Errorf("EndStackFrame without matching EstablishStackFrame")
			}
		}
	}
	if depth > 0 && !(allowAbandoned && depth == 1) {
		return fmt.Errorf("%d EstablishStackFrame instruction(s) without a matching EndStackFrame", depth)
	}
	return nil
}
