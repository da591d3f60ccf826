package markdown

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/promptref/internal/codec/simple"
	"github.com/gubarz/promptref/internal/codec/token"
)

func decode(t *testing.T, input string) []token.Token {
	t.Helper()
	out, err := DecodeAll(simple.NewSliceSource(simple.Tokenize(input)))
	require.NoError(t, err)
	return out
}

func TestDecoderRecognizesLink(t *testing.T) {
	out := decode(t, "[caption](ref)")

	require.Len(t, out, 1)
	link := out[0]
	assert.Equal(t, token.MarkdownLink, link.Kind)
	assert.Equal(t, "[caption]", link.Caption)
	assert.Equal(t, "(ref)", link.Reference)
	assert.Equal(t, "ref", link.Target())
	assert.Equal(t, 1, link.Range.StartLine)
	assert.Equal(t, 1, link.Range.StartColumn)
}

func TestDecoderLinkPositions(t *testing.T) {
	out := decode(t, "intro\nsee [a](x) and [b](y)")

	links := Links(out)
	require.Len(t, links, 2)
	assert.Equal(t, token.Range{StartLine: 2, StartColumn: 5, EndLine: 2, EndColumn: 11}, links[0].Range)
	assert.Equal(t, token.Range{StartLine: 2, StartColumn: 16, EndLine: 2, EndColumn: 22}, links[1].Range)
	assert.Equal(t, "y", links[1].Target())
}

func TestDecoderBalancedNesting(t *testing.T) {
	out := decode(t, "[c](a(b)c)")

	require.Len(t, out, 1)
	assert.Equal(t, "(a(b)c)", out[0].Reference)
	assert.Equal(t, "[c]", out[0].Caption)
}

func TestDecoderUnterminatedReferenceFlushesAtEnd(t *testing.T) {
	in := simple.Tokenize("[c](a(b)c")
	out, err := DecodeAll(simple.NewSliceSource(in))
	require.NoError(t, err)

	assert.Empty(t, Links(out))
	assert.Equal(t, in, out)
}

func TestDecoderStopCharacterAbortsCaption(t *testing.T) {
	in := simple.Tokenize("[caption\nmore](x)")
	d := NewDecoder(nil)

	assert.Empty(t, d.Push(in[0]))
	assert.Empty(t, d.Push(in[1]))
	// the newline fails the candidate and is re-evaluated in text mode
	assert.Equal(t, in[:3], d.Push(in[2]))
	assert.False(t, d.Pending())

	var rest []token.Token
	for _, tok := range in[3:] {
		rest = append(rest, d.Push(tok)...)
	}
	rest = append(rest, d.End()...)
	assert.Equal(t, in[3:], rest)
}

func TestDecoderStopCharacterAbortsReference(t *testing.T) {
	for _, stop := range []string{"\n", "\r", "\v", "\f"} {
		in := simple.Tokenize("[a](b" + stop + "c)")
		out := decode(t, "[a](b"+stop+"c)")
		assert.Empty(t, Links(out), "stop %q", stop)
		assert.Equal(t, in, out, "stop %q", stop)
	}
}

func TestDecoderReevaluatesAfterFailure(t *testing.T) {
	out := decode(t, "[a][b](c)")

	require.Len(t, out, 4)
	assert.Equal(t, "[", out[0].Text)
	assert.Equal(t, "a", out[1].Text)
	assert.Equal(t, "]", out[2].Text)
	assert.Equal(t, token.MarkdownLink, out[3].Kind)
	assert.Equal(t, "[b]", out[3].Caption)
	assert.Equal(t, "(c)", out[3].Reference)
	assert.Equal(t, 4, out[3].Range.StartColumn)
}

func TestDecoderEndOfStreamFlush(t *testing.T) {
	in := simple.Tokenize("text [open")
	d := NewDecoder(nil)

	var out []token.Token
	for _, tok := range in {
		out = append(out, d.Push(tok)...)
	}
	assert.Equal(t, in[:2], out, "only text before the candidate is final")

	flushed := d.End()
	assert.Equal(t, in[2:], flushed)
	assert.Nil(t, d.End(), "second End has nothing to flush")
	assert.Equal(t, 1, d.Stats().FlushedCandidates)
}

func TestDecoderRejectsNonAdjacentReference(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "space between parts", input: "[a] (b)"},
		{name: "newline between parts", input: "[a]\n(b)"},
		{name: "nested caption", input: "[[a]](b)"},
		{name: "lonely closing bracket", input: "a] (b)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := decode(t, tt.input)
			assert.Empty(t, Links(out))
			assert.Equal(t, tt.input, token.Join(out))
		})
	}
}

func TestDecoderRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"no links at all",
		"[a](b) [c](d(e)f) [g](h",
		"## Files\n\t- this [file](#file:folder1/file3.prompt.md) \n",
		"[x]\r\n(y) [[z]](w)) ((",
		"]]]) [[[ (((",
		"[🤭](./yetAnotherFolder🤭/another-file.prompt.md)",
	}
	for _, in := range inputs {
		assert.Equal(t, in, token.Join(decode(t, in)), "input %q", in)
	}
}

func TestDecoderNextReturnsEOFAfterFlush(t *testing.T) {
	d := NewDecoder(simple.NewSliceSource(simple.Tokenize("[x")))

	tok, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "[", tok.Text)

	tok, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, "x", tok.Text)

	_, err = d.Next()
	assert.ErrorIs(t, err, io.EOF)
	_, err = d.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderStats(t *testing.T) {
	d := NewDecoder(simple.NewSliceSource(simple.Tokenize("[a](b) [c]")))
	_, err := simple.ConsumeAll(d)
	require.NoError(t, err)

	stats := d.Stats()
	assert.Equal(t, 1, stats.Links)
	assert.Equal(t, 1, stats.FlushedCandidates)
	assert.Equal(t, 10, stats.TokensIn)
	assert.Equal(t, 5, stats.TokensOut)
}

func TestReferenceParserUnderflowPanics(t *testing.T) {
	p := &referenceParser{
		caption:    simple.Tokenize("[a]"),
		reference:  simple.Tokenize("("),
		openParens: 0,
	}
	assert.Panics(t, func() {
		p.accept(token.New(token.RightParenthesis, ")", 1, 5))
	})
}

func FuzzDecoderRoundTrip(f *testing.F) {
	for _, seed := range []string{"[a](b)", "[c](a(b)c", "[a][b](c)", "x\n[y\r](z)"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, input string) {
		in := simple.Tokenize(input)
		out, err := DecodeAll(simple.NewSliceSource(in))
		if err != nil {
			t.Fatal(err)
		}
		if token.Join(in) != token.Join(out) {
			t.Errorf("decoder is not lossless for %q", input)
		}
	})
}
