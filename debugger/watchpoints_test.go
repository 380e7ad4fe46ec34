package debugger

import (
	"testing"

	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/parser"
	"github.com/lookbusy1344/arm-emulator/vm"
)

func TestWatchpointManager_AddWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint(WatchWrite, "IT")

	if wp == nil {
		t.Fatal("AddWatchpoint returned nil")
	}

	if wp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", wp.ID)
	}

	if wp.Type != WatchWrite {
		t.Errorf("Wrong watchpoint type: got %d, want %d", wp.Type, WatchWrite)
	}

	if wp.Expression != "IT" {
		t.Errorf("Expression = %s, want IT", wp.Expression)
	}

	if !wp.Enabled {
		t.Error("Watchpoint should be enabled by default")
	}

	if wp.HitCount != 0 {
		t.Errorf("Initial hit count should be 0, got %d", wp.HitCount)
	}
}

func TestWatchpointManager_AddMultiple(t *testing.T) {
	wm := NewWatchpointManager()

	wp1 := wm.AddWatchpoint(WatchWrite, "IT")
	wp2 := wm.AddWatchpoint(WatchRead, "COUNT")

	if wp1.ID == wp2.ID {
		t.Error("Watchpoint IDs should be unique")
	}

	if wm.Count() != 2 {
		t.Errorf("Expected 2 watchpoints, got %d", wm.Count())
	}
}

func TestWatchpointManager_DeleteWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint(WatchWrite, "IT")

	err := wm.DeleteWatchpoint(wp.ID)
	if err != nil {
		t.Fatalf("DeleteWatchpoint failed: %v", err)
	}

	if wm.GetWatchpoint(wp.ID) != nil {
		t.Error("Watchpoint not deleted")
	}

	// Try to delete non-existent watchpoint
	err = wm.DeleteWatchpoint(999)
	if err == nil {
		t.Error("Expected error when deleting non-existent watchpoint")
	}
}

func TestWatchpointManager_EnableDisable(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint(WatchWrite, "IT")

	// Disable
	err := wm.DisableWatchpoint(wp.ID)
	if err != nil {
		t.Fatalf("DisableWatchpoint failed: %v", err)
	}

	if wp.Enabled {
		t.Error("Watchpoint not disabled")
	}

	// Enable
	err = wm.EnableWatchpoint(wp.ID)
	if err != nil {
		t.Fatalf("EnableWatchpoint failed: %v", err)
	}

	if !wp.Enabled {
		t.Error("Watchpoint not enabled")
	}
}

func TestWatchpointManager_CheckWatchpoints(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{
		"IT": {Offset: 0, Type: parser.TokenNumber},
	}

	wp := wm.AddWatchpoint(WatchWrite, "IT")

	machine.Stack[0] = 100
	if err := wm.InitializeWatchpoint(wp.ID, machine, symbols); err != nil {
		t.Fatalf("InitializeWatchpoint failed: %v", err)
	}

	if wp.LastValue != 100 {
		t.Errorf("LastValue = %v, want 100", wp.LastValue)
	}

	// No change
	triggered, changed := wm.CheckWatchpoints(machine, symbols)
	if triggered != nil || changed {
		t.Error("Should not trigger when value hasn't changed")
	}

	// Change value
	machine.Stack[0] = 200
	triggered, changed = wm.CheckWatchpoints(machine, symbols)
	if triggered == nil || !changed {
		t.Fatal("Should trigger when value changes")
	}

	if triggered.ID != wp.ID {
		t.Errorf("Wrong watchpoint triggered: got %d, want %d", triggered.ID, wp.ID)
	}

	if wp.HitCount != 1 {
		t.Errorf("Hit count = %d, want 1", wp.HitCount)
	}

	if wp.LastValue != 200 {
		t.Errorf("LastValue not updated: got %v, want 200", wp.LastValue)
	}
}

func TestWatchpointManager_CheckWatchpoints_SecondVariable(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{
		"IT":    {Offset: 0, Type: parser.TokenNumber},
		"COUNT": {Offset: 1, Type: parser.TokenNumber},
	}

	wp := wm.AddWatchpoint(WatchWrite, "COUNT")

	machine.Stack[1] = 5
	if err := wm.InitializeWatchpoint(wp.ID, machine, symbols); err != nil {
		t.Fatalf("InitializeWatchpoint failed: %v", err)
	}

	// Unrelated variable changes; watched slot doesn't.
	machine.Stack[0] = 999
	triggered, changed := wm.CheckWatchpoints(machine, symbols)
	if triggered != nil || changed {
		t.Error("Should not trigger when a different variable changes")
	}

	machine.Stack[1] = 6
	triggered, changed = wm.CheckWatchpoints(machine, symbols)
	if triggered == nil || !changed {
		t.Fatal("Should trigger when the watched variable changes")
	}
	if triggered.ID != wp.ID {
		t.Errorf("Wrong watchpoint triggered: got %d, want %d", triggered.ID, wp.ID)
	}
}

func TestWatchpointManager_InitializeWatchpoint_UndeclaredVariable(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{}

	wp := wm.AddWatchpoint(WatchWrite, "MISSING")

	if err := wm.InitializeWatchpoint(wp.ID, machine, symbols); err == nil {
		t.Error("Expected error initializing watchpoint on undeclared variable")
	}
}

func TestWatchpointManager_Disabled(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.NewMachine(vm.DefaultStackSize, vm.DefaultHeapSize)
	symbols := map[string]codegen.VarSymbol{
		"IT": {Offset: 0, Type: parser.TokenNumber},
	}

	wp := wm.AddWatchpoint(WatchWrite, "IT")
	wm.InitializeWatchpoint(wp.ID, machine, symbols)
	wm.DisableWatchpoint(wp.ID)

	machine.Stack[0] = 100

	triggered, _ := wm.CheckWatchpoints(machine, symbols)
	if triggered != nil {
		t.Error("Disabled watchpoint should not trigger")
	}
}

func TestWatchpointManager_GetAllWatchpoints(t *testing.T) {
	wm := NewWatchpointManager()

	wm.AddWatchpoint(WatchWrite, "IT")
	wm.AddWatchpoint(WatchRead, "COUNT")
	wm.AddWatchpoint(WatchReadWrite, "TOTAL")

	all := wm.GetAllWatchpoints()

	if len(all) != 3 {
		t.Errorf("Expected 3 watchpoints, got %d", len(all))
	}
}

func TestWatchpointManager_Clear(t *testing.T) {
	wm := NewWatchpointManager()

	wm.AddWatchpoint(WatchWrite, "IT")
	wm.AddWatchpoint(WatchRead, "COUNT")

	wm.Clear()

	if wm.Count() != 0 {
		t.Errorf("Expected 0 watchpoints after clear, got %d", wm.Count())
	}
}

func TestWatchpoint_Types(t *testing.T) {
	wm := NewWatchpointManager()

	wpWrite := wm.AddWatchpoint(WatchWrite, "IT")
	wpRead := wm.AddWatchpoint(WatchRead, "COUNT")
	wpAccess := wm.AddWatchpoint(WatchReadWrite, "TOTAL")

	if wpWrite.Type != WatchWrite {
		t.Error("Wrong type for write watchpoint")
	}

	if wpRead.Type != WatchRead {
		t.Error("Wrong type for read watchpoint")
	}

	if wpAccess.Type != WatchReadWrite {
		t.Error("Wrong type for access watchpoint")
	}
}
