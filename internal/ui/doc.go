// Package ui provides theme and color support for terminal output.
// ANSI escape codes come from the active Theme; headings are styled with
// lipgloss and status cells with fatih/color. Both follow NO_COLOR.
package ui
