package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// Theme defines a color scheme for UI output.
// Each field contains an ANSI escape code for the corresponding color category.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Primary is the main accent color for important elements.
	Primary string
	// Secondary is used for less prominent elements.
	Secondary string
	// Success indicates positive outcomes or completed operations.
	Success string
	// Warning is used for caution messages or non-critical issues.
	Warning string
	// Error indicates failures or critical issues.
	Error string
	// Info is used for informational messages.
	Info string
	// Bold is the escape code for bold text.
	Bold string
	// Underline is the escape code for underlined text.
	Underline string
	// Reset clears all formatting.
	Reset string
	// Heading is the lipgloss color of section headings.
	Heading lipgloss.TerminalColor
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",  // Bright blue
		Secondary: "\033[38;5;245m", // Grey
		Success:   "\033[38;5;82m",  // Bright green
		Warning:   "\033[38;5;220m", // Yellow
		Error:     "\033[38;5;196m", // Red
		Info:      "\033[38;5;141m", // Purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
		Heading:   lipgloss.Color("#FF8C00"),
	}

	// LightTheme is optimized for light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",  // Dark blue
		Secondary: "\033[38;5;240m", // Dark grey
		Success:   "\033[38;5;28m",  // Dark green
		Warning:   "\033[38;5;130m", // Orange
		Error:     "\033[38;5;124m", // Dark red
		Info:      "\033[38;5;54m",  // Dark purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
		Heading:   lipgloss.Color("#AF5F00"),
	}

	// NoColorTheme disables all color output.
	// Used when NO_COLOR is set or --no-color flag is provided.
	NoColorTheme = Theme{
		Name:    "none",
		Heading: lipgloss.NoColor{},
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// GetCurrentTheme returns the currently active theme in a thread-safe manner.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme sets the currently active theme in a thread-safe manner.
// This is primarily used for testing purposes to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
	color.NoColor = t.Name == "none"
}

// SetTheme changes the active theme by name.
// Valid names are: "dark", "light", "none". Unknown names select dark.
func SetTheme(name string) {
	switch name {
	case "light":
		SetCurrentTheme(LightTheme)
	case "none":
		SetCurrentTheme(NoColorTheme)
	default:
		SetCurrentTheme(DarkTheme)
	}
}

// InitTheme initializes the theme based on the noColor flag and environment.
// It respects the NO_COLOR environment variable (https://no-color.org/).
// If noColor is true or NO_COLOR is set, colors are disabled.
func InitTheme(noColor bool) {
	if noColor {
		SetCurrentTheme(NoColorTheme)
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(DarkTheme)
}
