package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gubarz/promptref/internal/codec/token"
	"github.com/gubarz/promptref/internal/prompt"
)

// RenderTree draws the reference tree with box-drawing connectors.
// Paths of children are shown relative to the root directory.
func RenderTree(root *prompt.Reference) string {
	var b strings.Builder
	base := filepath.Dir(root.Path)
	b.WriteString(renderNode(root, root.Path))
	b.WriteString("\n")
	renderChildren(&b, root, base, "")
	return b.String()
}

func renderChildren(b *strings.Builder, ref *prompt.Reference, base, prefix string) {
	for i, child := range ref.Children {
		last := i == len(ref.Children)-1
		connector, next := "├── ", "│   "
		if last {
			connector, next = "└── ", "    "
		}
		b.WriteString(styles.Dim.Render(prefix + connector))
		b.WriteString(renderNode(child, displayPath(base, child.Path)))
		b.WriteString("\n")
		renderChildren(b, child, base, prefix+next)
	}
}

func renderNode(ref *prompt.Reference, label string) string {
	if ref.Err == nil {
		return styles.OK.Render("✓ ") + styles.Path.Render(label)
	}
	return styles.Error.Render("✗ ") + styles.Path.Render(label) + " " +
		styles.Condition.Render(ref.Err.Name())
}

func displayPath(base, p string) string {
	if rel, err := filepath.Rel(base, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}

// WriteTokens prints one line per token: kind, range and quoted text
func WriteTokens(w io.Writer, tokens []token.Token) error {
	for _, t := range tokens {
		var err error
		if t.IsLink() {
			_, err = fmt.Fprintf(w, "%s  %s  %s %s\n",
				styles.Dim.Render(fmt.Sprintf("%-8s", t.Range.String())),
				styles.OK.Render(fmt.Sprintf("%-16s", t.Kind)),
				styles.Path.Render(fmt.Sprintf("%q", t.Caption)),
				styles.Path.Render(fmt.Sprintf("%q", t.Reference)))
		} else {
			_, err = fmt.Fprintf(w, "%s  %s  %q\n",
				styles.Dim.Render(fmt.Sprintf("%-8s", t.Range.String())),
				fmt.Sprintf("%-16s", t.Kind),
				t.Text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteLinks prints the references found in a single file
func WriteLinks(w io.Writer, links []prompt.Link) error {
	for _, l := range links {
		_, err := fmt.Fprintf(w, "%d:%d\t%s\t%s\n",
			l.Range.StartLine, l.Range.StartColumn,
			styles.Dim.Render(l.Kind.String()),
			styles.Path.Render(l.Path))
		if err != nil {
			return err
		}
	}
	return nil
}
