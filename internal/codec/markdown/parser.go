package markdown

import (
	"fmt"

	"github.com/gubarz/promptref/internal/codec/token"
)

// outcome of feeding a single token to a parser
type outcome uint8

const (
	failure outcome = iota
	success
)

// acceptResult describes a parser transition. On success exactly one of
// next or link is set.
type acceptResult struct {
	outcome  outcome
	next     parser
	link     *token.Token
	consumed bool
}

// parser is a partially recognized link candidate
type parser interface {
	accept(tok token.Token) acceptResult
	// tokens returns everything accumulated so far, in input order
	tokens() []token.Token
}

func fail() acceptResult {
	return acceptResult{outcome: failure}
}

func advance(next parser) acceptResult {
	return acceptResult{outcome: success, next: next, consumed: true}
}

// captionParser collects the `[caption` part of a link
type captionParser struct {
	acc []token.Token
}

func newCaptionParser(open token.Token) *captionParser {
	return &captionParser{acc: []token.Token{open}}
}

func (p *captionParser) tokens() []token.Token {
	return p.acc
}

func (p *captionParser) accept(tok token.Token) acceptResult {
	if token.IsStop(tok.Text) {
		return fail()
	}

	if tok.Kind == token.RightBracket {
		caption := make([]token.Token, 0, len(p.acc)+1)
		caption = append(caption, p.acc...)
		caption = append(caption, tok)
		return advance(&captionCompleteParser{caption: caption})
	}

	p.acc = append(p.acc, tok)
	return advance(p)
}

// captionCompleteParser holds `[caption]` and only accepts `(`
type captionCompleteParser struct {
	caption []token.Token
}

func (p *captionCompleteParser) tokens() []token.Token {
	return p.caption
}

func (p *captionCompleteParser) accept(tok token.Token) acceptResult {
	if tok.Kind != token.LeftParenthesis {
		return fail()
	}
	return advance(newReferenceParser(p.caption, tok))
}

// referenceParser collects the `(reference)` part. Nested parentheses are
// part of the reference as long as they stay balanced.
type referenceParser struct {
	caption    []token.Token
	reference  []token.Token
	openParens int
}

func newReferenceParser(caption []token.Token, open token.Token) *referenceParser {
	return &referenceParser{
		caption:    caption,
		reference:  []token.Token{open},
		openParens: 1,
	}
}

func (p *referenceParser) tokens() []token.Token {
	all := make([]token.Token, 0, len(p.caption)+len(p.reference))
	all = append(all, p.caption...)
	return append(all, p.reference...)
}

func (p *referenceParser) accept(tok token.Token) acceptResult {
	switch tok.Kind {
	case token.LeftParenthesis:
		p.openParens++
	case token.RightParenthesis:
		p.openParens--
		if p.openParens < 0 {
			panic(fmt.Sprintf("markdown: unexpected right parenthesis %s", tok))
		}
		if p.openParens == 0 {
			p.reference = append(p.reference, tok)
			first := p.caption[0].Range
			link := token.NewMarkdownLink(
				first.StartLine,
				first.StartColumn,
				token.Join(p.caption),
				token.Join(p.reference),
			)
			return acceptResult{outcome: success, link: &link, consumed: true}
		}
	}

	if token.IsStop(tok.Text) {
		return fail()
	}

	p.reference = append(p.reference, tok)
	return advance(p)
}
