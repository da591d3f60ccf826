package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	copied []string
}

func (c *fakeClipboard) Copy(text string) error {
	c.copied = append(c.copied, text)
	return nil
}

type fakeRunner struct {
	name string
	args []string
	err  error
}

func (r *fakeRunner) Run(name string, args ...string) error {
	r.name = name
	r.args = args
	return r.err
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"print", ModePrint, false},
		{"COPY", ModeCopy, false},
		{" edit ", ModeEdit, false},
		{"", ModePrint, false},
		{"exec", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDeliverPrint(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, "vi")
	require.NoError(t, h.Deliver("/p/a.prompt.md", ModePrint))
	assert.Equal(t, "/p/a.prompt.md\n", buf.String())
}

func TestDeliverCopy(t *testing.T) {
	var buf bytes.Buffer
	clip := &fakeClipboard{}
	h := NewHandler(&buf, "vi").WithClipboard(clip)

	require.NoError(t, h.Deliver("/p/a.prompt.md", ModeCopy))
	assert.Equal(t, []string{"/p/a.prompt.md"}, clip.copied)
	assert.Empty(t, buf.String())
}

func TestDeliverEdit(t *testing.T) {
	runner := &fakeRunner{}
	h := NewHandler(&bytes.Buffer{}, "code --wait").WithRunner(runner)

	require.NoError(t, h.Deliver("/p/a.prompt.md", ModeEdit))
	assert.Equal(t, "code", runner.name)
	assert.Equal(t, []string{"--wait", "/p/a.prompt.md"}, runner.args)
}

func TestDeliverEditErrors(t *testing.T) {
	h := NewHandler(&bytes.Buffer{}, "").WithRunner(&fakeRunner{})
	assert.Error(t, h.Deliver("/p/a.prompt.md", ModeEdit))

	boom := errors.New("boom")
	h = NewHandler(&bytes.Buffer{}, "vi").WithRunner(&fakeRunner{err: boom})
	err := h.Deliver("/p/a.prompt.md", ModeEdit)
	assert.ErrorIs(t, err, boom)
}

func TestSystemClipboardFallsBackToPrint(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	var buf bytes.Buffer
	c := &systemClipboard{fallback: &buf}
	require.NoError(t, c.Copy("/p/a.prompt.md"))
	assert.Equal(t, "/p/a.prompt.md\n", buf.String())
}
