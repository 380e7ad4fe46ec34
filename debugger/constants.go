package debugger

// Code View Context Constants
const (
	// CodeContextLinesBefore is the default number of lines to show before the
	// current line in a full source/IR listing.
	CodeContextLinesBefore = 20

	// CodeContextLinesAfter is the default number of lines to show after the
	// current line in a full source/IR listing.
	CodeContextLinesAfter = 80

	// CodeContextLinesBeforeCompact is the number of lines to show before the
	// current line in the TUI panels and the "list" command.
	CodeContextLinesBeforeCompact = 5

	// CodeContextLinesAfterCompact is the number of lines to show after the
	// current line in the TUI panels and the "list" command.
	CodeContextLinesAfterCompact = 10
)

// Stack Display Constants
const (
	// StackDisplayWords is the number of frame slots to show in the stack view.
	StackDisplayWords = 16
)
