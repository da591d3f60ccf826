package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gubarz/promptref/internal/config"
)

// StyleManager encapsulates all styles used by the tree renderer and the TUI
type StyleManager struct {
	// Reference styles
	OK        lipgloss.Style
	Error     lipgloss.Style
	Path      lipgloss.Style
	Condition lipgloss.Style
	Dim       lipgloss.Style
	Selected  lipgloss.Style
	Cursor    lipgloss.Style

	// Detail pane styles
	DetailHeader lipgloss.Style
	DetailBody   lipgloss.Style

	// Chrome styles
	Border  lipgloss.Style
	Divider lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		OK:           lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Path:         lipgloss.NewStyle(),
		Condition:    lipgloss.NewStyle().Italic(true),
		Dim:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Selected:     lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Cursor:       lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		DetailHeader: lipgloss.NewStyle().Bold(true),
		DetailBody:   lipgloss.NewStyle(),
		Border:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		Divider:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		SelectedBg:   lipgloss.Color("236"),
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	okColor := parseANSIColor(config.GetColorOK())
	errColor := parseANSIColor(config.GetColorError())
	pathColor := parseANSIColor(config.GetColorPath())
	dimColor := parseANSIColor(config.GetColorDim())

	s.OK = lipgloss.NewStyle().Foreground(okColor)
	s.Error = lipgloss.NewStyle().Foreground(errColor)
	s.Path = lipgloss.NewStyle().Foreground(pathColor)
	s.Condition = lipgloss.NewStyle().Italic(true).Foreground(errColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)
	s.DetailHeader = lipgloss.NewStyle().Bold(true).Foreground(pathColor)
	s.Divider = lipgloss.NewStyle().Foreground(dimColor)
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// parseANSIColor converts ANSI color codes to lipgloss colors
func parseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}
