package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/promptref/internal/prompt"
)

const (
	filterDelay  = 50 * time.Millisecond
	detailHeight = 4
	pageSize     = 10
)

// keyMap lists the bindings of the browser
type keyMap struct {
	Quit     key.Binding
	Pick     key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	First    key.Binding
	Last     key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "exit")),
	Pick:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Up:       key.NewBinding(key.WithKeys("up", "ctrl+p")),
	Down:     key.NewBinding(key.WithKeys("down", "ctrl+n")),
	PageUp:   key.NewBinding(key.WithKeys("pgup")),
	PageDown: key.NewBinding(key.WithKeys("pgdown")),
	First:    key.NewBinding(key.WithKeys("home", "ctrl+a")),
	Last:     key.NewBinding(key.WithKeys("end", "ctrl+e")),
}

// row is one reference as shown in the list
type row struct {
	ref    *prompt.Reference
	label  string
	indent int
	// haystack is the lowercased text the filter matches against
	haystack string
}

func newRow(ref *prompt.Reference, base string) row {
	label := displayPath(base, ref.Path)
	haystack := label
	if ref.Err != nil {
		haystack += " " + ref.Err.Name()
	}
	return row{
		ref:      ref,
		label:    label,
		indent:   ref.Depth(),
		haystack: strings.ToLower(haystack),
	}
}

// matches reports whether every word occurs in the row
func (r row) matches(words []string) bool {
	for _, w := range words {
		if !strings.Contains(r.haystack, w) {
			return false
		}
	}
	return true
}

// filterMsg fires after the query has been still for filterDelay. Ticks
// carrying an older seq are stale and ignored.
type filterMsg struct {
	seq int
}

// mainModel browses the flattened reference tree
type mainModel struct {
	input  textinput.Model
	width  int
	height int

	rows    []row
	visible []row
	cursor  int
	top     int // first visible row
	seq     int

	picked *prompt.Reference
	done   bool
}

func newMainModel(root *prompt.Reference) mainModel {
	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = "filter by path or condition"
	in.CharLimit = 256
	in.Focus()

	base := filepath.Dir(root.Path)
	refs := root.Flatten()
	rows := make([]row, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, newRow(ref, base))
	}

	return mainModel{input: in, rows: rows, visible: rows}
}

func (m mainModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case filterMsg:
		if msg.seq == m.seq {
			m.applyFilter()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, keys.Pick):
			if len(m.visible) > 0 {
				m.picked = m.visible[m.cursor].ref
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		case key.Matches(msg, keys.Up):
			m.move(-1)
			return m, nil
		case key.Matches(msg, keys.Down):
			m.move(1)
			return m, nil
		case key.Matches(msg, keys.PageUp):
			m.move(-pageSize)
			return m, nil
		case key.Matches(msg, keys.PageDown):
			m.move(pageSize)
			return m, nil
		case key.Matches(msg, keys.First):
			m.cursor = 0
			return m, nil
		case key.Matches(msg, keys.Last):
			m.cursor = max(len(m.visible)-1, 0)
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	m.seq++
	seq := m.seq
	return m, tea.Batch(cmd, tea.Tick(filterDelay, func(time.Time) tea.Msg {
		return filterMsg{seq: seq}
	}))
}

func (m *mainModel) move(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.visible)-1, 0))
}

// applyFilter narrows the rows to those matching every word of the query
func (m *mainModel) applyFilter() {
	words := strings.Fields(strings.ToLower(m.input.Value()))
	if len(words) == 0 {
		m.visible = m.rows
	} else {
		m.visible = nil
		for _, r := range m.rows {
			if r.matches(words) {
				m.visible = append(m.visible, r)
			}
		}
	}
	m.cursor = clamp(m.cursor, 0, max(len(m.visible)-1, 0))
	m.top = 0
}

func (m mainModel) View() string {
	if m.done {
		return ""
	}

	width := max(m.width, 60)
	height := max(m.height, 16)
	rule := styles.Divider.Render(strings.Repeat("─", width))

	detail := m.detailView(width)
	footer := lipgloss.JoinVertical(lipgloss.Left, rule, m.statusLine(), m.input.View())

	listHeight := max(height-lipgloss.Height(detail)-lipgloss.Height(footer)-1, 3)
	list := lipgloss.NewStyle().Height(listHeight).Render(m.listView(listHeight))

	return lipgloss.JoinVertical(lipgloss.Left, detail, rule, list, footer)
}

// detailView describes the reference under the cursor
func (m mainModel) detailView(width int) string {
	lines := make([]string, 0, detailHeight)
	if len(m.visible) > 0 {
		ref := m.visible[m.cursor].ref
		lines = append(lines, styles.DetailHeader.Render(ref.Path))
		if l := ref.Link; l != nil {
			lines = append(lines, styles.Dim.Render(fmt.Sprintf("%s at %d:%d  %s",
				l.Kind, l.Range.StartLine, l.Range.StartColumn, l.Text)))
		}
		switch {
		case ref.Err != nil:
			lines = append(lines, styles.Error.Render(truncate(ref.Err.Error(), width)))
		case len(ref.Links) == 1:
			lines = append(lines, styles.OK.Render("1 reference"))
		default:
			lines = append(lines, styles.OK.Render(fmt.Sprintf("%d references", len(ref.Links))))
		}
	}
	return lipgloss.NewStyle().Height(detailHeight).Render(strings.Join(lines, "\n"))
}

// listView renders the rows that fit in height, keeping the cursor in view
func (m *mainModel) listView(height int) string {
	if len(m.visible) == 0 {
		return styles.Dim.Render("  no matching references")
	}
	from, to := m.window(height)
	lines := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		lines = append(lines, m.rowView(m.visible[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

// window scrolls m.top so the cursor is visible and returns the row range
func (m *mainModel) window(height int) (from, to int) {
	switch {
	case m.cursor < m.top:
		m.top = m.cursor
	case m.cursor >= m.top+height:
		m.top = m.cursor - height + 1
	}
	m.top = clamp(m.top, 0, max(len(m.visible)-height, 0))
	return m.top, min(m.top+height, len(m.visible))
}

func (m mainModel) rowView(r row, current bool) string {
	mark := styles.OK.Render("✓")
	if r.ref.Err != nil {
		mark = styles.Error.Render("✗")
	}

	pointer, path := "  ", styles.Path
	if current {
		pointer, path = styles.Cursor.Render("> "), styles.WithSelection(styles.Path)
	}

	line := pointer + strings.Repeat("  ", r.indent) + mark + " " + path.Render(r.label)
	if r.ref.Err != nil {
		line += " " + styles.Condition.Render(r.ref.Err.Name())
	}
	return line
}

func (m mainModel) statusLine() string {
	return styles.Dim.Render(fmt.Sprintf("  %d/%d • %s • %s",
		len(m.visible), len(m.rows),
		keys.Pick.Help().Key+" "+keys.Pick.Help().Desc,
		keys.Quit.Help().Key+" "+keys.Quit.Help().Desc))
}

// terminal holds the streams the program draws on
type terminal struct {
	in, out *os.File
	opened  []*os.File
}

// openTerminal prefers /dev/tty when stdout is redirected, so the browser
// still works inside $(...) while the picked path goes to stdout
func openTerminal() *terminal {
	t := &terminal{in: os.Stdin, out: os.Stdout}
	if info, err := os.Stdout.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
		return t
	}

	if f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0); err == nil {
		t.out = f
		t.opened = append(t.opened, f)
	} else {
		t.out = os.Stderr
	}
	if f, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0); err == nil {
		t.in = f
		t.opened = append(t.opened, f)
	}
	// Color detection follows the terminal, not the redirected stdout
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(t.out))
	return t
}

func (t *terminal) Close() {
	for _, f := range t.opened {
		f.Close()
	}
}

// Browse runs the interactive reference browser. It returns the reference
// picked with Enter, or nil when the user left without picking.
func Browse(root *prompt.Reference) (*prompt.Reference, error) {
	term := openTerminal()
	defer term.Close()
	RefreshStyles()

	final, err := tea.NewProgram(newMainModel(root),
		tea.WithAltScreen(),
		tea.WithInput(term.in),
		tea.WithOutput(term.out),
	).Run()
	if err != nil {
		return nil, fmt.Errorf("run browser: %w", err)
	}
	return final.(mainModel).picked, nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// truncate shortens s to width runes, ending with an ellipsis
func truncate(s string, width int) string {
	r := []rune(s)
	if width < 2 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
