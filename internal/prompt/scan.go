package prompt

import (
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/gubarz/promptref/internal/codec/markdown"
	"github.com/gubarz/promptref/internal/codec/simple"
	"github.com/gubarz/promptref/internal/codec/token"
)

// FileReferencePrefix starts an inline file reference, e.g. `#file:./a.prompt.md`
const FileReferencePrefix = "#file:"

// LinkKind tells how a reference was written
type LinkKind uint8

const (
	FileReference LinkKind = iota
	MarkdownLinkReference
)

func (k LinkKind) String() string {
	if k == MarkdownLinkReference {
		return "markdown-link"
	}
	return "file-reference"
}

// Link is a reference to another file found in a prompt
type Link struct {
	Kind  LinkKind
	Path  string
	Text  string
	Range token.Range
}

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// ScanLinks decodes src and collects every `#file:` reference and every
// Markdown link that points at a local path, in input order.
func ScanLinks(src simple.Source) ([]Link, markdown.Stats, error) {
	dec := markdown.NewDecoder(src)
	s := &scanner{}
	for {
		tok, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s.links, dec.Stats(), err
		}
		s.feed(tok)
	}
	s.finish()
	return s.links, dec.Stats(), nil
}

// ScanString is ScanLinks over an in-memory prompt
func ScanString(text string) []Link {
	links, _, _ := ScanLinks(simple.NewDecoder(strings.NewReader(text)))
	return links
}

type scanner struct {
	links []Link
	cur   *Link
	path  strings.Builder
}

func (s *scanner) feed(tok token.Token) {
	if s.cur != nil {
		if tok.Kind == token.Space || tok.Kind == token.Tab || token.IsStop(tok.Text) {
			s.finish()
		} else {
			s.path.WriteString(tok.Text)
			s.cur.Range.EndColumn = tok.Range.EndColumn
			return
		}
	}

	switch {
	case tok.IsLink():
		if p, ok := localTarget(tok.Target()); ok {
			s.links = append(s.links, Link{
				Kind:  MarkdownLinkReference,
				Path:  p,
				Text:  tok.Text,
				Range: tok.Range,
			})
		}
	case tok.Kind == token.Text && strings.HasPrefix(tok.Text, FileReferencePrefix):
		s.cur = &Link{Kind: FileReference, Range: tok.Range}
		s.path.Reset()
		s.path.WriteString(tok.Text)
	}
}

func (s *scanner) finish() {
	if s.cur == nil {
		return
	}
	text := s.path.String()
	if p := strings.TrimPrefix(text, FileReferencePrefix); p != "" {
		s.cur.Path = p
		s.cur.Text = text
		s.links = append(s.links, *s.cur)
	}
	s.cur = nil
}

// localTarget extracts a filesystem path from a link target. URLs and pure
// anchors are not local.
func localTarget(target string) (string, bool) {
	target = strings.TrimSpace(target)
	if rest, ok := strings.CutPrefix(target, FileReferencePrefix); ok {
		return rest, rest != ""
	}
	if target == "" || strings.HasPrefix(target, "#") {
		return "", false
	}
	// a drive letter is not a scheme
	if schemeRe.MatchString(target) && !isDriveLetter(target) {
		return "", false
	}
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	return target, target != ""
}

func isDriveLetter(s string) bool {
	return len(s) >= 3 && s[1] == ':' && (s[2] == '\\' || s[2] == '/')
}
