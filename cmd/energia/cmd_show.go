package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	offlineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

var showCmd = &cobra.Command{
	Use:   "show [meditation-id]",
	Short: "Display a saved meditation",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.gateway.Get(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Println(renderMarkdown(rec.GeminiGuidance))

	var notes []string
	if rec.Offline {
		notes = append(notes, offlineStyle.Render("offline"))
	}
	if rec.Style != "" {
		notes = append(notes, mutedStyle.Render("style: "+rec.Style))
	}
	if rec.Theme != "" {
		notes = append(notes, mutedStyle.Render("theme: "+rec.Theme))
	}
	if len(notes) > 0 {
		fmt.Println(strings.Join(notes, "  "))
	}
	return nil
}

// renderMarkdown pretty-prints meditation markdown for the terminal,
// falling back to the raw text when rendering is unavailable.
func renderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
