package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the text user interface front end for a Debugger, built the way
// the ARM emulator's register/memory/disassembly panels were: one view per
// artifact the debugger can show, all refreshed together after every
// command.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	SourceView      *tview.TextView
	IRView          *tview.TextView
	VarsView        *tview.TextView
	StackView       *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

// NewTUI creates a new text user interface.
func NewTUI(debugger *Debugger) *TUI {
	tui := &TUI{
		Debugger: debugger,
		App:      tview.NewApplication(),
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()

	return tui
}

// NewTUIWithScreen is NewTUI with the tview.Application's screen pinned to
// screen instead of the real terminal, so tests can drive it against a
// tcell.SimulationScreen.
func NewTUIWithScreen(debugger *Debugger, screen tcell.Screen) *TUI {
	tui := NewTUI(debugger)
	tui.App.SetScreen(screen)
	return tui
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.IRView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.IRView.SetBorder(true).SetTitle(" IR ")

	t.VarsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.VarsView.SetBorder(true).SetTitle(" Variables ")

	t.StackView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.BreakpointsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 3, false).
		AddItem(t.IRView, 0, 2, false)

	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.VarsView, 10, 0, false).
		AddItem(t.StackView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	t.RefreshAll()
}

// WriteOutput writes to the output view.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll refreshes all view panels.
func (t *TUI) RefreshAll() {
	t.UpdateSourceView()
	t.UpdateIRView()
	t.UpdateVarsView()
	t.UpdateStackView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

// UpdateSourceView shows source lines around the current statement, with
// the current line and any breakpointed line marked.
func (t *TUI) UpdateSourceView() {
	t.SourceView.Clear()

	d := t.Debugger
	line, ok := d.lineForIndex(d.Exec.PC())
	if !ok {
		t.SourceView.SetText("[yellow]no source mapping for current position[white]")
		return
	}

	lo, hi := line-CodeContextLinesBeforeCompact, line+CodeContextLinesAfterCompact
	if lo < 1 {
		lo = 1
	}
	if hi > len(d.Lines) {
		hi = len(d.Lines)
	}

	var lines []string
	for l := lo; l <= hi; l++ {
		marker, color := "  ", "white"
		if l == line {
			marker, color = "->", "yellow"
		}
		lines = append(lines, fmt.Sprintf("[%s]%s %4d: %s[white]", color, marker, l, d.sourceLine(l)))
	}

	t.SourceView.SetText(strings.Join(lines, "\n"))
}

// UpdateIRView shows the lowered IR around the program counter, marking
// the current statement and any breakpoints.
func (t *TUI) UpdateIRView() {
	t.IRView.Clear()

	d := t.Debugger
	pc := d.Exec.PC()
	body := d.Module.Entry.Body

	lo, hi := pc-CodeContextLinesBeforeCompact, pc+CodeContextLinesAfterCompact
	if lo < 0 {
		lo = 0
	}
	if hi > len(body) {
		hi = len(body)
	}

	var lines []string
	for i := lo; i < hi; i++ {
		marker, color := "  ", "white"
		if i == pc {
			marker, color = "->", "yellow"
		}
		if d.Breakpoints.HasBreakpoint(i) {
			marker = "* "
		}
		lines = append(lines, fmt.Sprintf("[%s]%s [%4d] %s[white]", color, marker, i, body[i]))
	}

	t.IRView.SetText(strings.Join(lines, "\n"))
}

// UpdateVarsView shows every declared variable's current value.
func (t *TUI) UpdateVarsView() {
	t.VarsView.Clear()

	d := t.Debugger
	m := d.Exec.Machine

	var lines []string
	for name, sym := range d.Debug.Symbols {
		idx := m.BasePtr + sym.Offset
		if idx >= 0 && idx < len(m.Stack) {
			lines = append(lines, fmt.Sprintf("%-12s = %v", name, m.Stack[idx]))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "[yellow]no variables declared[white]")
	}

	t.VarsView.SetText(strings.Join(lines, "\n"))
}

// UpdateStackView shows the frame stack, marking the current base pointer.
func (t *TUI) UpdateStackView() {
	t.StackView.Clear()

	m := t.Debugger.Exec.Machine
	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]sp=%d base=%d[white]", m.StackPointer, m.BasePtr))

	limit := m.StackPointer
	if limit > StackDisplayWords {
		limit = StackDisplayWords
	}
	for i := 0; i < limit; i++ {
		marker := "  "
		if i == m.BasePtr {
			marker = "->"
		}
		lines = append(lines, fmt.Sprintf("%s [%3d] %v", marker, i, m.Stack[i]))
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView shows every breakpoint and watchpoint.
func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	d := t.Debugger
	var lines []string

	bps := d.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status, color := "enabled", "green"
			if !bp.Enabled {
				status, color = "disabled", "red"
			}
			line := fmt.Sprintf("  %d: [%s]%s[white] statement %d", bp.ID, color, status, bp.Index)
			if bp.Condition != "" {
				line += fmt.Sprintf(" if %s", bp.Condition)
			}
			line += fmt.Sprintf(" (hits: %d)", bp.HitCount)
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := d.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			typeStr := "watch"
			switch wp.Type {
			case WatchRead:
				typeStr = "rwatch"
			case WatchReadWrite:
				typeStr = "awatch"
			}
			lines = append(lines, fmt.Sprintf("  %d: %s %s = %v", wp.ID, typeStr, wp.Expression, wp.LastValue))
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI application.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]Debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F10/F11 to step\n")
	t.WriteOutput("Type 'help' for command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI application.
func (t *TUI) Stop() {
	t.App.Stop()
}
