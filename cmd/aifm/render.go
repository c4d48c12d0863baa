package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/codefionn/aifm/internal/agent"
	"golang.org/x/term"
)

var (
	typeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

// terminalWidth returns the stdout width, or 80 when it cannot be determined
func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// renderMarkdown formats the assistant's message for the terminal. It falls
// back to the raw text when rendering fails.
func renderMarkdown(text string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// printResponse writes a chat response in human readable form
func printResponse(w io.Writer, resp *agent.Response, width int) {
	label := typeStyle
	if resp.Type == "error" {
		label = errorStyle
	}
	fmt.Fprintln(w, label.Render("["+resp.Type+"]"))
	fmt.Fprintln(w, renderMarkdown(resp.Message, width))

	if resp.ActionResult == nil {
		return
	}
	if msg, ok := resp.ActionResult["error"]; ok {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprint(msg)))
	} else if msg, ok := resp.ActionResult["message"]; ok {
		fmt.Fprintln(w, resultStyle.Render(fmt.Sprint(msg)))
	}
}
