package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// goldmarkLinks returns link destinations as seen by a full CommonMark parser
func goldmarkLinks(t *testing.T, src string) []string {
	t.Helper()
	doc := goldmark.New().Parser().Parse(text.NewReader([]byte(src)))

	var dests []string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if link, ok := n.(*ast.Link); ok && entering {
			dests = append(dests, string(link.Destination))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return dests
}

// Inline links in the common subset must agree with CommonMark.
func TestDecoderAgreesWithCommonMark(t *testing.T) {
	inputs := []string{
		"[a](b)",
		"see [docs](./x.md) now",
		"[c](a(b)c)",
		"[one](1) and [two](2)",
		"[a] (b)",
		"[a]\n(b)",
		"[c](a(b)c",
		"plain text",
	}

	for _, in := range inputs {
		var ours []string
		for _, link := range Links(DecodeString(in)) {
			ours = append(ours, link.Target())
		}
		assert.Equal(t, goldmarkLinks(t, in), ours, "input %q", in)
	}
}
