// Package markdown recognizes Markdown links in a stream of atomic tokens.
//
// The decoder never fails on input: a candidate that does not turn into a
// link is re-emitted as its original tokens, so the concatenated output
// text always equals the input text.
package markdown

import (
	"errors"
	"io"
	"strings"

	"github.com/gubarz/promptref/internal/codec/simple"
	"github.com/gubarz/promptref/internal/codec/token"
)

// Stats counts what a decoder has seen and produced
type Stats struct {
	TokensIn          int
	TokensOut         int
	Links             int
	FlushedCandidates int
}

// Decoder turns atomic tokens into atomic tokens and MarkdownLink tokens.
// It can be driven by pushing tokens (Push/End) or by pulling from an
// upstream source (Next).
type Decoder struct {
	current parser
	stats   Stats

	src     simple.Source
	pending []token.Token
	ended   bool
}

// NewDecoder creates a pull-driven decoder reading from src. A nil src is
// allowed when only Push and End are used.
func NewDecoder(src simple.Source) *Decoder {
	return &Decoder{src: src}
}

// Push feeds a single upstream token and returns the tokens that became
// final because of it.
func (d *Decoder) Push(tok token.Token) []token.Token {
	d.stats.TokensIn++
	out := d.push(nil, tok)
	d.stats.TokensOut += len(out)
	return out
}

func (d *Decoder) push(out []token.Token, tok token.Token) []token.Token {
	if d.current == nil {
		if tok.Kind == token.LeftBracket {
			d.current = newCaptionParser(tok)
			return out
		}
		return append(out, tok)
	}

	res := d.current.accept(tok)
	switch {
	case res.outcome == success && res.link != nil:
		out = append(out, *res.link)
		d.current = nil
		d.stats.Links++
	case res.outcome == success:
		d.current = res.next
	default:
		out = append(out, d.current.tokens()...)
		d.current = nil
		d.stats.FlushedCandidates++
	}

	if !res.consumed {
		// the parser is gone now, so the token may start a new candidate
		return d.push(out, tok)
	}
	return out
}

// End signals the end of the upstream stream. An unfinished candidate is
// flushed as its original tokens. The decoder can be reused afterwards.
func (d *Decoder) End() []token.Token {
	if d.current == nil {
		return nil
	}
	out := append([]token.Token(nil), d.current.tokens()...)
	d.current = nil
	d.stats.FlushedCandidates++
	d.stats.TokensOut += len(out)
	return out
}

// Pending reports whether a link candidate is being assembled
func (d *Decoder) Pending() bool {
	return d.current != nil
}

// Stats returns counters accumulated since the decoder was created
func (d *Decoder) Stats() Stats {
	return d.stats
}

// Next returns the next decoded token, or io.EOF after the upstream source
// ended and any unfinished candidate was flushed. Upstream errors other than
// io.EOF are returned unchanged.
func (d *Decoder) Next() (token.Token, error) {
	for len(d.pending) == 0 {
		if d.ended {
			return token.Token{}, io.EOF
		}
		tok, err := d.src.Next()
		if errors.Is(err, io.EOF) {
			d.ended = true
			d.pending = d.End()
			continue
		}
		if err != nil {
			return token.Token{}, err
		}
		d.pending = d.Push(tok)
	}

	tok := d.pending[0]
	d.pending = d.pending[1:]
	return tok, nil
}

// DecodeAll decodes every token of src
func DecodeAll(src simple.Source) ([]token.Token, error) {
	return simple.ConsumeAll(NewDecoder(src))
}

// DecodeString tokenizes and decodes s
func DecodeString(s string) []token.Token {
	tokens, _ := DecodeAll(simple.NewDecoder(strings.NewReader(s)))
	return tokens
}

// Links returns only the MarkdownLink tokens of tokens
func Links(tokens []token.Token) []token.Token {
	var links []token.Token
	for _, t := range tokens {
		if t.IsLink() {
			links = append(links, t)
		}
	}
	return links
}
