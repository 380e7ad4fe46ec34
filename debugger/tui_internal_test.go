package debugger

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

const tuiTestSource = "HAI 1.2\nI HAS A x\nR 1\nKTHXBYE\n"

func newTestTUI(t *testing.T) *TUI {
	t.Helper()

	dbg, err := New("test.lol", []byte(tuiTestSource))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
	}
	t.Cleanup(screen.Fini)

	return NewTUIWithScreen(dbg, screen)
}

// TestExecuteCommandAsync tests that executeCommand doesn't block
func TestExecuteCommandAsync(t *testing.T) {
	tui := newTestTUI(t)

	done := make(chan bool, 1)
	go func() {
		tui.executeCommand("help")
		done <- true
	}()

	select {
	case <-done:
		// Success - command completed
	case <-time.After(time.Second * 2):
		t.Fatal("executeCommand blocked for more than 2 seconds - deadlock detected")
	}
}

// TestHandleCommandAsync tests that handleCommand doesn't block
func TestHandleCommandAsync(t *testing.T) {
	tui := newTestTUI(t)

	tui.CommandInput.SetText("help")

	done := make(chan bool, 1)
	go func() {
		tui.handleCommand(tcell.KeyEnter)
		done <- true
	}()

	select {
	case <-done:
		// Success - handleCommand returned immediately
	case <-time.After(time.Millisecond * 100):
		t.Fatal("handleCommand blocked for more than 100ms - should return immediately")
	}
}
