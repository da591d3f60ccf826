package prompt

import (
	"testing"

	"github.com/gubarz/promptref/internal/codec/token"
)

func TestScanString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "file references",
			input: "## Files\n\t- this file #file:folder1/file3.prompt.md \n\t- also this #file:./folder1/some-other-folder/file4.prompt.md please!\n ",
			want:  []string{"folder1/file3.prompt.md", "./folder1/some-other-folder/file4.prompt.md"},
		},
		{
			name:  "reference at end of input",
			input: "some test goes\t\nhere #file:/infinite-recursion/file2.prompt.md",
			want:  []string{"/infinite-recursion/file2.prompt.md"},
		},
		{
			name:  "reference with parentheses",
			input: "#file:./a(1).prompt.md\tnext",
			want:  []string{"./a(1).prompt.md"},
		},
		{
			name:  "markdown links",
			input: "see [docs](./docs.prompt.md) and [site](https://example.com) and [top](#top)",
			want:  []string{"./docs.prompt.md"},
		},
		{
			name:  "markdown link with file prefix and fragment",
			input: "[x](#file:b.prompt.md) [y](c.prompt.md#intro) [z](mailto:me@example.com)",
			want:  []string{"b.prompt.md", "c.prompt.md"},
		},
		{
			name:  "empty references are skipped",
			input: "#file: [](  ) #file:\n",
			want:  nil,
		},
		{
			name:  "prefix must start the word",
			input: "foo#file:x.prompt.md",
			want:  nil,
		},
		{
			name:  "reference ends at carriage return",
			input: "#file:a.prompt.md\r\nrest",
			want:  []string{"a.prompt.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := ScanString(tt.input)
			if len(links) != len(tt.want) {
				t.Fatalf("expected %d links, got %d: %+v", len(tt.want), len(links), links)
			}
			for i, want := range tt.want {
				if links[i].Path != want {
					t.Errorf("link %d: expected path %q, got %q", i, want, links[i].Path)
				}
			}
		})
	}
}

func TestScanStringRanges(t *testing.T) {
	links := ScanString("x\n  #file:a(b).prompt.md [c](d.prompt.md)")
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}

	ref := links[0]
	if ref.Kind != FileReference {
		t.Errorf("expected file reference, got %s", ref.Kind)
	}
	want := token.Range{StartLine: 2, StartColumn: 3, EndLine: 2, EndColumn: 23}
	if ref.Range != want {
		t.Errorf("expected range %s, got %s", want, ref.Range)
	}
	if ref.Text != "#file:a(b).prompt.md" {
		t.Errorf("unexpected text %q", ref.Text)
	}

	md := links[1]
	if md.Kind != MarkdownLinkReference {
		t.Errorf("expected markdown link, got %s", md.Kind)
	}
	if md.Range.StartColumn != 24 {
		t.Errorf("expected link at column 24, got %d", md.Range.StartColumn)
	}
}

func TestLocalTarget(t *testing.T) {
	tests := []struct {
		target string
		want   string
		ok     bool
	}{
		{"./a.md", "./a.md", true},
		{"/abs/a.md", "/abs/a.md", true},
		{`C:\docs\a.md`, `C:\docs\a.md`, true},
		{"http://example.com/a.md", "", false},
		{"#anchor", "", false},
		{"", "", false},
		{"a.md?raw=1", "a.md", true},
		{"#file:x.md", "x.md", true},
	}
	for _, tt := range tests {
		got, ok := localTarget(tt.target)
		if got != tt.want || ok != tt.ok {
			t.Errorf("localTarget(%q) = %q, %v; want %q, %v", tt.target, got, ok, tt.want, tt.ok)
		}
	}
}
