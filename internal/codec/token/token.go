package token

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind classifies a token
type Kind uint8

const (
	Text Kind = iota
	Space
	Tab
	NewLine
	CarriageReturn
	VerticalTab
	FormFeed
	LeftBracket
	RightBracket
	LeftParenthesis
	RightParenthesis

	// MarkdownLink is the only composite kind; it spans several atomic tokens
	MarkdownLink
)

var kindNames = [...]string{
	Text:             "text",
	Space:            "space",
	Tab:              "tab",
	NewLine:          "newline",
	CarriageReturn:   "carriage-return",
	VerticalTab:      "vertical-tab",
	FormFeed:         "form-feed",
	LeftBracket:      "left-bracket",
	RightBracket:     "right-bracket",
	LeftParenthesis:  "left-paren",
	RightParenthesis: "right-paren",
	MarkdownLink:     "markdown-link",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Symbols of the single-character kinds
const (
	SymbolNewLine          = "\n"
	SymbolCarriageReturn   = "\r"
	SymbolVerticalTab      = "\v"
	SymbolFormFeed         = "\f"
	SymbolLeftBracket      = "["
	SymbolRightBracket     = "]"
	SymbolLeftParenthesis  = "("
	SymbolRightParenthesis = ")"
)

// Range is a 1-based source range. EndColumn is exclusive.
type Range struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.StartLine, r.StartColumn, r.EndLine, r.EndColumn)
}

// Token is an immutable classified piece of the input.
// For MarkdownLink tokens Text is always Caption+Reference.
type Token struct {
	Kind      Kind
	Text      string
	Range     Range
	Caption   string
	Reference string
}

// New creates an atomic token starting at line:column. The end position is
// derived from the rune length of text.
func New(kind Kind, text string, line, column int) Token {
	return Token{
		Kind: kind,
		Text: text,
		Range: Range{
			StartLine:   line,
			StartColumn: column,
			EndLine:     line,
			EndColumn:   column + utf8.RuneCountInString(text),
		},
	}
}

// NewMarkdownLink creates a composite link token. The reference keeps its
// enclosing parentheses.
func NewMarkdownLink(line, column int, caption, reference string) Token {
	t := New(MarkdownLink, caption+reference, line, column)
	t.Caption = caption
	t.Reference = reference
	return t
}

// IsLink reports whether t is a composite Markdown link
func (t Token) IsLink() bool {
	return t.Kind == MarkdownLink
}

// Target returns the link reference without its enclosing parentheses.
// It is empty for atomic tokens.
func (t Token) Target() string {
	if !t.IsLink() {
		return ""
	}
	ref := strings.TrimPrefix(t.Reference, SymbolLeftParenthesis)
	return strings.TrimSuffix(ref, SymbolRightParenthesis)
}

// CaptionText returns the caption without the surrounding brackets
func (t Token) CaptionText() string {
	if !t.IsLink() {
		return ""
	}
	c := strings.TrimPrefix(t.Caption, SymbolLeftBracket)
	return strings.TrimSuffix(c, SymbolRightBracket)
}

// Equal compares kind, text, range and link parts
func (t Token) Equal(other Token) bool {
	return t == other
}

func (t Token) String() string {
	if t.IsLink() {
		return fmt.Sprintf("%s(%s %q %q)", t.Kind, t.Range, t.Caption, t.Reference)
	}
	return fmt.Sprintf("%s(%s %q)", t.Kind, t.Range, t.Text)
}

// IsStop reports whether text is one of the characters that break a
// Markdown link sequence.
func IsStop(text string) bool {
	switch text {
	case SymbolCarriageReturn, SymbolNewLine, SymbolVerticalTab, SymbolFormFeed:
		return true
	}
	return false
}

// Join concatenates the text of tokens
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}
