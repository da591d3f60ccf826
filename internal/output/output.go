package output

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ============================================================================
// Runner Interface
// ============================================================================

// Runner starts an interactive program with inherited stdio
type Runner interface {
	Run(name string, args ...string) error
}

// execRunner implements Runner with os/exec
type execRunner struct{}

// Run executes the program and waits for it to exit
func (execRunner) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	return cmd.Run()
}

// ============================================================================
// Clipboard Interface
// ============================================================================

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// clipboardTools are tried in order; the first one found in PATH wins
var clipboardTools = [][]string{
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
	{"pbcopy"},
}

// systemClipboard pipes text into the first available clipboard tool and
// prints it when there is none
type systemClipboard struct {
	fallback io.Writer
}

func (c *systemClipboard) Copy(text string) error {
	for _, tool := range clipboardTools {
		if _, err := exec.LookPath(tool[0]); err != nil {
			continue
		}
		cmd := exec.Command(tool[0], tool[1:]...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("copy with %s: %w", tool[0], err)
		}
		return nil
	}
	_, err := fmt.Fprintln(c.fallback, text)
	return err
}

// ============================================================================
// Output Handling
// ============================================================================

// Mode represents how a chosen prompt file is handed back
type Mode string

const (
	ModePrint Mode = "print"
	ModeCopy  Mode = "copy"
	ModeEdit  Mode = "edit"
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePrint, ModeCopy, ModeEdit:
		return m, nil
	case "":
		return ModePrint, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want print, copy or edit)", s)
	}
}

// Handler delivers a path according to a Mode
type Handler struct {
	w         io.Writer
	editor    string
	clipboard Clipboard
	runner    Runner
}

// NewHandler creates a handler printing to w and editing with editor.
// The editor string may carry arguments, e.g. "code --wait".
func NewHandler(w io.Writer, editor string) *Handler {
	return &Handler{
		w:         w,
		editor:    editor,
		clipboard: &systemClipboard{fallback: w},
		runner:    execRunner{},
	}
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (h *Handler) WithClipboard(c Clipboard) *Handler {
	h.clipboard = c
	return h
}

// WithRunner sets a custom runner (useful for testing)
func (h *Handler) WithRunner(r Runner) *Handler {
	h.runner = r
	return h
}

// Deliver hands path back in the given mode
func (h *Handler) Deliver(path string, mode Mode) error {
	switch mode {
	case ModeEdit:
		fields := strings.Fields(h.editor)
		if len(fields) == 0 {
			return fmt.Errorf("no editor configured")
		}
		args := append(fields[1:], path)
		if err := h.runner.Run(fields[0], args...); err != nil {
			return fmt.Errorf("open %s in %s: %w", path, fields[0], err)
		}
		return nil
	case ModeCopy:
		return h.clipboard.Copy(path)
	default: // print
		_, err := fmt.Fprintln(h.w, path)
		return err
	}
}
