package simple

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/gubarz/promptref/internal/codec/token"
)

// Source produces tokens one at a time and returns io.EOF once exhausted
type Source interface {
	Next() (token.Token, error)
}

// Decoder splits a character stream into atomic tokens
type Decoder struct {
	r       *bufio.Reader
	line    int
	column  int
	peeked  rune
	hasPeek bool
	run     strings.Builder
}

// NewDecoder creates a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:      bufio.NewReader(r),
		line:   1,
		column: 1,
	}
}

func (d *Decoder) readRune() (rune, error) {
	if d.hasPeek {
		d.hasPeek = false
		return d.peeked, nil
	}
	r, _, err := d.r.ReadRune()
	return r, err
}

func (d *Decoder) unreadRune(r rune) {
	d.peeked = r
	d.hasPeek = true
}

// Next returns the next atomic token
func (d *Decoder) Next() (token.Token, error) {
	r, err := d.readRune()
	if err != nil {
		return token.Token{}, err
	}

	if kind, ok := singleKind(r); ok {
		tok := token.New(kind, string(r), d.line, d.column)
		if kind == token.NewLine {
			d.line++
			d.column = 1
		} else {
			d.column++
		}
		return tok, nil
	}

	class := runClass(r)
	d.run.Reset()
	d.run.WriteRune(r)
	for {
		next, err := d.readRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return token.Token{}, err
			}
			// the run is complete, EOF is reported on the following call
			break
		}
		if _, single := singleKind(next); single || runClass(next) != class {
			d.unreadRune(next)
			break
		}
		d.run.WriteRune(next)
	}

	tok := token.New(class, d.run.String(), d.line, d.column)
	d.column = tok.Range.EndColumn
	return tok, nil
}

func singleKind(r rune) (token.Kind, bool) {
	switch r {
	case '\n':
		return token.NewLine, true
	case '\r':
		return token.CarriageReturn, true
	case '\v':
		return token.VerticalTab, true
	case '\f':
		return token.FormFeed, true
	case '[':
		return token.LeftBracket, true
	case ']':
		return token.RightBracket, true
	case '(':
		return token.LeftParenthesis, true
	case ')':
		return token.RightParenthesis, true
	}
	return 0, false
}

func runClass(r rune) token.Kind {
	switch r {
	case ' ':
		return token.Space
	case '\t':
		return token.Tab
	}
	return token.Text
}

// SliceSource replays a fixed list of tokens
type SliceSource struct {
	tokens []token.Token
	pos    int
}

// NewSliceSource creates a source over tokens
func NewSliceSource(tokens []token.Token) *SliceSource {
	return &SliceSource{tokens: tokens}
}

// Next implements Source
func (s *SliceSource) Next() (token.Token, error) {
	if s.pos >= len(s.tokens) {
		return token.Token{}, io.EOF
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}

// ConsumeAll drains src until io.EOF
func ConsumeAll(src Source) ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := src.Next()
		if errors.Is(err, io.EOF) {
			return tokens, nil
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
}

// Tokenize decodes s in full
func Tokenize(s string) []token.Token {
	// reading from a strings.Reader only fails with io.EOF
	tokens, _ := ConsumeAll(NewDecoder(strings.NewReader(s)))
	return tokens
}
