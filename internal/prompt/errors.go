package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched with errors.Is against an ErrorCondition
var (
	ErrFileOpen      = errors.New("failed to open file")
	ErrRecursive     = errors.New("recursive reference")
	ErrNotPrompt     = errors.New("not a prompt file")
	ErrDepthExceeded = errors.New("reference depth exceeded")
)

// ErrorCondition explains why a reference could not be resolved.
// Conditions are recorded on the reference, never returned from Resolve.
type ErrorCondition interface {
	error
	Path() string
	// Name is a stable identifier used in reports and metrics
	Name() string
}

// FileOpenFailed means the referenced file could not be read
type FileOpenFailed struct {
	path  string
	cause error
}

func NewFileOpenFailed(path string, cause error) *FileOpenFailed {
	return &FileOpenFailed{path: path, cause: cause}
}

func (e *FileOpenFailed) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrFileOpen, e.path, e.cause)
}
func (e *FileOpenFailed) Path() string { return e.path }
func (e *FileOpenFailed) Name() string { return "file_open_failed" }
func (e *FileOpenFailed) Unwrap() []error { return []error{ErrFileOpen, e.cause} }

// RecursiveReference means the file is already one of its own ancestors
type RecursiveReference struct {
	path  string
	chain []string
}

func NewRecursiveReference(path string, chain []string) *RecursiveReference {
	return &RecursiveReference{path: path, chain: append([]string(nil), chain...)}
}

func (e *RecursiveReference) Error() string {
	return fmt.Sprintf("%s: %s", ErrRecursive, strings.Join(e.chain, " -> "))
}
func (e *RecursiveReference) Path() string { return e.path }
func (e *RecursiveReference) Name() string { return "recursive_reference" }
func (e *RecursiveReference) Unwrap() error { return ErrRecursive }

// Chain returns the reference path from the root to the repeated file,
// both ends included.
func (e *RecursiveReference) Chain() []string {
	return append([]string(nil), e.chain...)
}

// NotPromptFile means the reference points at a file without the prompt
// extension
type NotPromptFile struct {
	path      string
	extension string
}

func NewNotPromptFile(path, extension string) *NotPromptFile {
	return &NotPromptFile{path: path, extension: extension}
}

func (e *NotPromptFile) Error() string {
	return fmt.Sprintf("%s %q: expected %q extension", ErrNotPrompt, e.path, e.extension)
}
func (e *NotPromptFile) Path() string { return e.path }
func (e *NotPromptFile) Name() string { return "not_prompt_file" }
func (e *NotPromptFile) Unwrap() error { return ErrNotPrompt }

// DepthExceeded means the reference is nested deeper than allowed
type DepthExceeded struct {
	path  string
	limit int
}

func NewDepthExceeded(path string, limit int) *DepthExceeded {
	return &DepthExceeded{path: path, limit: limit}
}

func (e *DepthExceeded) Error() string {
	return fmt.Sprintf("%s at %q (limit %d)", ErrDepthExceeded, e.path, e.limit)
}
func (e *DepthExceeded) Path() string { return e.path }
func (e *DepthExceeded) Name() string { return "depth_exceeded" }
func (e *DepthExceeded) Unwrap() error { return ErrDepthExceeded }

// SameCondition reports whether a and b are the same kind of condition for
// the same path. Causes and messages are not compared.
func SameCondition(a, b ErrorCondition) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Name() != b.Name() || a.Path() != b.Path() {
		return false
	}
	ra, okA := a.(*RecursiveReference)
	rb, okB := b.(*RecursiveReference)
	if okA && okB {
		return strings.Join(ra.chain, "\x00") == strings.Join(rb.chain, "\x00")
	}
	return true
}
