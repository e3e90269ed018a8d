package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#D97706") // Amber
	activeColor  = lipgloss.Color("#DC2626") // Red
	meterColor   = lipgloss.Color("#16A34A") // Green
	mutedColor   = lipgloss.Color("#888888") // Gray
	textColor    = lipgloss.Color("#FFFFFF") // White
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(activeColor)

	keyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	fadingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(activeColor)

	meterStyle = lipgloss.NewStyle().
			Foreground(meterColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	aboutStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1).
			MarginTop(1)
)

// printVersion prints version information
func printVersion(version string) {
	fmt.Println(titleStyle.Render("fadeplay"))
	fmt.Printf("%s %s\n", keyStyle.Render("Version:"), valueStyle.Render(version))
	fmt.Println()
}

// printError prints an error message
func printError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("Error:"), message)
}
