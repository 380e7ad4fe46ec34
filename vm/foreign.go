package vm

import (
	"fmt"
	"strconv"
)

// defaultForeignTable builds the foreign function table with these names:
// prn, prs, prh, prc, prend, getch, print_string, read_string,
// float_to_int, int_to_float, string_to_int, string_to_float,
// int_to_string, float_to_string. Each pops its arguments off the Machine's
// stack in the order codegen pushed them and may push a single result,
// mirroring how the ARM emulator's syscall.go dispatched SWI numbers to Go
// functions operating directly on CPU/Memory.
func defaultForeignTable() map[string]ForeignFunc {
	return map[string]ForeignFunc{
		"prn":             prn,
		"prh":             prh,
		"prs":             prs,
		"prc":             prc,
		"prend":           prend,
		"getch":           getch,
		"print_string":    prs,
		"read_string":     readString,
		"float_to_int":    floatToInt,
		"int_to_float":    intToFloat,
		"string_to_int":   stringToInt,
		"string_to_float": stringToFloat,
		"int_to_string":   intToString,
		"float_to_string": floatToString,
	}
}

// readHeapString reads the length-prefixed byte string at addr (see
// DESIGN.md: cell 0 is the byte count, cells 1..n are the data).
func (e *Executor) readHeapString(addr int) (string, error) {
	if addr < 0 || addr >= len(e.Machine.Heap) {
		return "", fmt.Errorf("string read out of range: %d", addr)
	}
	n := int(e.Machine.Heap[addr])
	if n < 0 || addr+1+n > len(e.Machine.Heap) {
		return "", fmt.Errorf("corrupt string header at %d: length %d", addr, n)
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := cellToByte(e.Machine.Heap[addr+1+i])
		if err != nil {
			return "", fmt.Errorf("string at %d: %w", addr, err)
		}
		buf[i] = b
	}
	return string(buf), nil
}

// allocHeapString reserves a fresh length+1 cell heap object for s and
// writes its length prefix and bytes, bypassing the stack-based Allocate
// op since the caller already has s in hand rather than a runtime length.
func (e *Executor) allocHeapString(s string) (int, error) {
	m := e.Machine
	n := len(s)
	if m.Allocated+n+1 > len(m.Heap) {
		return 0, &Panic{Code: PanicNoFreeMemory, Message: fmt.Sprintf("cannot allocate %d-byte string", n)}
	}
	base := m.Allocated
	m.Heap[base] = float32(n)
	for i := 0; i < n; i++ {
		m.Heap[base+1+i] = byteToCell(s[i])
	}
	m.Allocated += n + 1
	return base, nil
}

func prn(e *Executor) error {
	v, err := e.Machine.Pop()
	if err != nil {
		return err
	}
	_, err = e.Out.WriteString(strconv.FormatInt(int64(v), 10))
	return err
}

func prh(e *Executor) error {
	v, err := e.Machine.Pop()
	if err != nil {
		return err
	}
	_, err = e.Out.WriteString(strconv.FormatFloat(float64(v), 'f', 6, 32))
	return err
}

func prs(e *Executor) error {
	addr, err := e.Machine.Pop()
	if err != nil {
		return err
	}
	s, err := e.readHeapString(int(addr))
	if err != nil {
		return err
	}
	_, err = e.Out.WriteString(s)
	return err
}

func prc(e *Executor) error {
	v, err := e.Machine.Pop()
	if err != nil {
		return err
	}
	word := "FAIL"
	if v != 0 {
		word = "WIN"
	}
	_, err = e.Out.WriteString(word)
	return err
}

func prend(e *Executor) error {
	_, err := e.Out.WriteString("\n")
	return err
}

// getch reads a single byte from the input, pushing -1 on end of input —
// the GIMMEH byte-at-a-time primitive underneath read_string.
func getch(e *Executor) error {
	b, err := e.In.ReadByte()
	if err != nil {
		return e.Machine.Push(-1)
	}
	return e.Machine.Push(float32(b))
}

// readString reads one line from the input (stopping at '\n' or end of
// input), allocates a heap string for it, and pushes the string's address.
func readString(e *Executor) error {
	var buf []byte
	for {
		b, err := e.In.ReadByte()
		if err != nil {
			break
		}
		if b == '\n' {
			break
		}
		buf = append(buf, b)
	}
	addr, err := e.allocHeapString(string(buf))
	if err != nil {
		return err
	}
	return e.Machine.Push(float32(addr))
}

func floatToInt(e *Executor) error {
	v, err := e.Machine.Pop()
	if err != nil {
		return err
	}
	return e.Machine.Push(float32(int64(v)))
}

// intToFloat is the identity conversion: both NUMBER and NUMBAR are stored
// as float32 cells already, so nothing needs to change bit-for-bit.
func intToFloat(e *Executor) error {
	v, err := e.Machine.Pop()
	if err != nil {
		return err
	}
	return e.Machine.Push(v)
}

func stringToInt(e *Executor) error {
	addr, err := e.Machine.Pop()
	if err != nil {
		return err
	}
	s, err := e.readHeapString(int(addr))
	if err != nil {
		return err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("string_to_int: %w", err)
	}
	return e.Machine.Push(float32(n))
}

func stringToFloat(e *Executor) error {
	addr, err := e.Machine.Pop()
	if err != nil {
		return err
	}
	s, err := e.readHeapString(int(addr))
	if err != nil {
		return err
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return fmt.Errorf("string_to_float: %w", err)
	}
	return e.Machine.Push(float32(f))
}

func intToString(e *Executor) error {
	v, err := e.Machine.Pop()
	if err != nil {
		return err
	}
	addr, err := e.allocHeapString(strconv.FormatInt(int64(v), 10))
	if err != nil {
		return err
	}
	return e.Machine.Push(float32(addr))
}

func floatToString(e *Executor) error {
	v, err := e.Machine.Pop()
	if err != nil {
		return err
	}
	addr, err := e.allocHeapString(strconv.FormatFloat(float64(v), 'f', 6, 32))
	if err != nil {
		return err
	}
	return e.Machine.Push(float32(addr))
}
