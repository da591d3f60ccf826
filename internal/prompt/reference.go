package prompt

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Reference is a node of a resolved prompt tree
type Reference struct {
	Path     string
	Parent   *Reference
	Children []*Reference
	// Link is how the parent referred to this file; nil for the root
	Link *Link
	// Links found in this file, empty when it could not be read
	Links []Link
	Err   ErrorCondition
}

// Depth is 0 for the root
func (r *Reference) Depth() int {
	d := 0
	for p := r.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Flatten lists the tree depth-first, parents before children
func (r *Reference) Flatten() []*Reference {
	out := []*Reference{r}
	for _, c := range r.Children {
		out = append(out, c.Flatten()...)
	}
	return out
}

// Conditions returns every error condition of the tree in Flatten order
func (r *Reference) Conditions() []ErrorCondition {
	var errs []ErrorCondition
	for _, ref := range r.Flatten() {
		if ref.Err != nil {
			errs = append(errs, ref.Err)
		}
	}
	return errs
}

// AllValid reports whether every reference of the tree resolved
func (r *Reference) AllValid() bool {
	return len(r.Conditions()) == 0
}

// ValidFiles returns the paths of all resolved prompt files, without
// duplicates, in Flatten order
func (r *Reference) ValidFiles() []string {
	seen := make(map[string]bool)
	var files []string
	for _, ref := range r.Flatten() {
		if ref.Err == nil && !seen[ref.Path] {
			seen[ref.Path] = true
			files = append(files, ref.Path)
		}
	}
	return files
}

// Equal compares path and error condition, not children
func (r *Reference) Equal(other *Reference) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Path == other.Path && SameCondition(r.Err, other.Err)
}

func (r *Reference) String() string {
	if r.Err != nil {
		return fmt.Sprintf("prompt-reference:%s (%s)", r.Path, r.Err.Name())
	}
	return "prompt-reference:" + r.Path
}

// chain returns the paths from the root down to r
func (r *Reference) chain() []string {
	var rev []string
	for p := r; p != nil; p = p.Parent {
		rev = append(rev, p.Path)
	}
	out := make([]string, len(rev))
	for i, p := range rev {
		out[len(rev)-1-i] = p
	}
	return out
}

// normalizePath gives every spelling of a file the same identity
func normalizePath(p string) string {
	return norm.NFC.String(filepath.Clean(p))
}

// joinTarget resolves target against the directory of the referring file
func joinTarget(from, target string) string {
	target = filepath.FromSlash(target)
	if filepath.IsAbs(target) || strings.HasPrefix(target, string(filepath.Separator)) {
		return normalizePath(target)
	}
	return normalizePath(filepath.Join(filepath.Dir(from), target))
}
