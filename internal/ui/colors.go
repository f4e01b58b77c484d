package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// ColorRed returns the escape code for errors in the current theme.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the escape code for success in the current theme.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the escape code for warnings in the current theme.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary accent escape code.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorMagenta returns the info escape code.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan returns the secondary escape code.
func ColorCyan() string { return GetCurrentTheme().Secondary }

// ColorBold returns the bold escape code.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline escape code.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// ColorReset returns the reset escape code.
func ColorReset() string { return GetCurrentTheme().Reset }

// Heading renders a section title with the theme's heading style.
func Heading(title string) string {
	t := GetCurrentTheme()
	if t.Name == "none" {
		return title
	}
	return lipgloss.NewStyle().Bold(true).Foreground(t.Heading).Render(title)
}

// Status helpers used for table cells. fatih/color honours color.NoColor,
// which SetCurrentTheme keeps in sync with the active theme.
var (
	successText = color.New(color.FgGreen).SprintFunc()
	failureText = color.New(color.FgRed, color.Bold).SprintFunc()
	dimText     = color.New(color.Faint).SprintFunc()
)

// Success renders a success status.
func Success(a ...any) string { return successText(a...) }

// Failure renders a failure status.
func Failure(a ...any) string { return failureText(a...) }

// Dim renders secondary text.
func Dim(a ...any) string { return dimText(a...) }
