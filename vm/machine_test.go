package vm_test

import (
	"testing"

	"github.com/lookbusy1344/arm-emulator/vm"
)

func TestMachineSubtractComputesLeftMinusRight(t *testing.T) {
	m := vm.NewMachine(16, 16)
	mustPush(t, m, 10) // left, pushed first
	mustPush(t, m, 3)  // right, pushed second (popped first)
	if err := m.Subtract(); err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	got, err := m.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if got != 7 {
		t.Fatalf("got %v, want 7 (left - right, not right - left)", got)
	}
}

func TestMachineDivideByZeroYieldsZero(t *testing.T) {
	m := vm.NewMachine(16, 16)
	mustPush(t, m, 5)
	mustPush(t, m, 0)
	if err := m.Divide(); err != nil {
		t.Fatalf("Divide: %v", err)
	}
	got, _ := m.Pop()
	if got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}

func TestMachineAllocateAndFreeRoundTrip(t *testing.T) {
	m := vm.NewMachine(16, 8)
	mustPush(t, m, 3)
	if err := m.Allocate(); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	base, _ := m.Pop()
	if base != 0 {
		t.Fatalf("got base %v, want 0", base)
	}
	if m.Allocated != 3 {
		t.Fatalf("got Allocated=%d, want 3", m.Allocated)
	}
	mustPush(t, m, base)
	if err := m.Free(); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if m.Allocated != 0 {
		t.Fatalf("got Allocated=%d, want 0 after Free", m.Allocated)
	}
}

func TestMachineAllocateOutOfMemoryPanics(t *testing.T) {
	m := vm.NewMachine(16, 2)
	mustPush(t, m, 3)
	err := m.Allocate()
	if err == nil {
		t.Fatalf("expected an out-of-memory error")
	}
	p, ok := err.(*vm.Panic)
	if !ok {
		t.Fatalf("got error type %T, want *vm.Panic", err)
	}
	if p.Code != vm.PanicNoFreeMemory {
		t.Fatalf("got code %v, want PanicNoFreeMemory", p.Code)
	}
}

func TestMachineStackUnderflowPanics(t *testing.T) {
	m := vm.NewMachine(4, 4)
	_, err := m.Pop()
	p, ok := err.(*vm.Panic)
	if !ok || p.Code != vm.PanicStackUnderflow {
		t.Fatalf("got %v, want a PanicStackUnderflow", err)
	}
}

func TestMachineFrameLocalsAreAddressableFromBase(t *testing.T) {
	m := vm.NewMachine(16, 4)
	if err := m.EstablishStackFrame(); err != nil {
		t.Fatalf("EstablishStackFrame: %v", err)
	}
	mustPush(t, m, 42) // first local, lands at base+0
	mustPush(t, m, 0)  // offset 0
	if err := m.Copy(); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	got, _ := m.Pop()
	if got != 42 {
		t.Fatalf("got %v, want 42 read back via base+0", got)
	}

	mustPush(t, m, 99) // new value
	mustPush(t, m, 0)  // offset 0
	if err := m.Mov(); err != nil {
		t.Fatalf("Mov: %v", err)
	}
	mustPush(t, m, 0)
	if err := m.Copy(); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	got, _ = m.Pop()
	if got != 99 {
		t.Fatalf("got %v, want 99 after Mov", got)
	}
}

func mustPush(t *testing.T, m *vm.Machine, v float32) {
	t.Helper()
	if err := m.Push(v); err != nil {
		t.Fatalf("Push(%v): %v", v, err)
	}
}
