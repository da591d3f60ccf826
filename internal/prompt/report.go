package prompt

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Report is the serializable form of a reference tree
type Report struct {
	Path      string   `json:"path" yaml:"path"`
	Kind      string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Line      int      `json:"line,omitempty" yaml:"line,omitempty"`
	Column    int      `json:"column,omitempty" yaml:"column,omitempty"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Error     string   `json:"error,omitempty" yaml:"error,omitempty"`
	Chain     []string `json:"chain,omitempty" yaml:"chain,omitempty"`
	Children  []Report `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewReport converts the tree rooted at ref
func NewReport(ref *Reference) Report {
	rep := Report{Path: ref.Path}
	if ref.Link != nil {
		rep.Kind = ref.Link.Kind.String()
		rep.Line = ref.Link.Range.StartLine
		rep.Column = ref.Link.Range.StartColumn
	}
	if ref.Err != nil {
		rep.Condition = ref.Err.Name()
		rep.Error = ref.Err.Error()
		if rec, ok := ref.Err.(*RecursiveReference); ok {
			rep.Chain = rec.Chain()
		}
	}
	for _, c := range ref.Children {
		rep.Children = append(rep.Children, NewReport(c))
	}
	return rep
}

// reportValue is a single Report for one root, a list otherwise
func reportValue(refs []*Reference) any {
	if len(refs) == 1 {
		return NewReport(refs[0])
	}
	out := make([]Report, len(refs))
	for i, ref := range refs {
		out[i] = NewReport(ref)
	}
	return out
}

// WriteJSON writes the trees as indented JSON
func WriteJSON(w io.Writer, refs ...*Reference) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reportValue(refs)); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// WriteYAML writes the trees as YAML
func WriteYAML(w io.Writer, refs ...*Reference) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reportValue(refs)); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return enc.Close()
}
