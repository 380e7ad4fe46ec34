package debugger

import (
	"fmt"
	"sync"

	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/vm"
)

// WatchType identifies what kind of access a watchpoint is meant to catch.
// As in the ARM emulator's implementation, the underlying check is pure
// value-change detection -- there's no instrumentation on Machine's reads
// and writes to distinguish a read from a write -- so all three types
// currently behave identically. The distinction is kept because a future
// Machine that traps accesses (rather than exposing Stack/Heap directly)
// could honor it without changing this package's interface.
type WatchType int

const (
	WatchWrite WatchType = iota
	WatchRead
	WatchReadWrite
)

// Watchpoint monitors one variable's frame slot for a change in value.
type Watchpoint struct {
	ID         int
	Type       WatchType
	Expression string // variable name being watched
	Enabled    bool
	LastValue  float32
	HitCount   int
}

// WatchpointManager manages all watchpoints.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager creates a new watchpoint manager.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

// AddWatchpoint adds a new watchpoint on the named variable.
func (wm *WatchpointManager) AddWatchpoint(wpType WatchType, expression string) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:         wm.nextID,
		Type:       wpType,
		Expression: expression,
		Enabled:    true,
	}

	wm.watchpoints[wp.ID] = wp
	wm.nextID++

	return wp
}

// DeleteWatchpoint removes a watchpoint by ID.
func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	delete(wm.watchpoints, id)
	return nil
}

// EnableWatchpoint enables a watchpoint by ID.
func (wm *WatchpointManager) EnableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	wp.Enabled = true
	return nil
}

// DisableWatchpoint disables a watchpoint by ID.
func (wm *WatchpointManager) DisableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	wp.Enabled = false
	return nil
}

// GetWatchpoint gets a watchpoint by ID.
func (wm *WatchpointManager) GetWatchpoint(id int) *Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	return wm.watchpoints[id]
}

// GetAllWatchpoints returns all watchpoints.
func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}

	return result
}

// slotValue reads the current value of the variable wp.Expression names
// out of machine's frame, using symbols to resolve it to an offset.
func slotValue(machine *vm.Machine, symbols map[string]codegen.VarSymbol, name string) (float32, error) {
	sym, ok := symbols[name]
	if !ok {
		return 0, fmt.Errorf("undeclared variable %q", name)
	}
	idx := machine.BasePtr + sym.Offset
	if idx < 0 || idx >= len(machine.Stack) {
		return 0, fmt.Errorf("variable %q is out of frame", name)
	}
	return machine.Stack[idx], nil
}

// CheckWatchpoints checks all enabled watchpoints and returns the first
// one whose variable's value differs from what was last observed.
func (wm *WatchpointManager) CheckWatchpoints(machine *vm.Machine, symbols map[string]codegen.VarSymbol) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}

		current, err := slotValue(machine, symbols, wp.Expression)
		if err != nil {
			continue
		}

		if current != wp.LastValue {
			wp.HitCount++
			wp.LastValue = current
			return wp, true
		}
	}

	return nil, false
}

// InitializeWatchpoint records a watchpoint's starting value so the first
// CheckWatchpoints call afterward only fires on a genuine change.
func (wm *WatchpointManager) InitializeWatchpoint(id int, machine *vm.Machine, symbols map[string]codegen.VarSymbol) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	value, err := slotValue(machine, symbols, wp.Expression)
	if err != nil {
		return fmt.Errorf("failed to initialize watchpoint: %w", err)
	}
	wp.LastValue = value

	return nil
}

// Clear removes all watchpoints.
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wm.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of watchpoints.
func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	return len(wm.watchpoints)
}
