package wm

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// helpMarkdown builds the keymap reference shown in the help overlay.
func helpMarkdown(k keyMap) string {
	var b strings.Builder
	b.WriteString("# loom\n\n")
	b.WriteString("Press `Esc` twice to send a literal Esc to the pane. ")
	b.WriteString("A lone `Esc` held past the window opens manager mode.\n\n")
	b.WriteString("## Manager mode\n\n")
	for _, e := range menuEntries(k) {
		h := e.binding.Help()
		fmt.Fprintf(&b, "- `%s` %s\n", h.Key, h.Desc)
	}
	b.WriteString("\n## Mouse\n\n")
	b.WriteString("- drag a floating title bar to move it; drop at an edge to snap\n")
	b.WriteString("- drag the bottom-right corner to resize\n")
	b.WriteString("- hold `Shift` to select text from a pane that captures the mouse\n")
	b.WriteString("- release with `Alt` held, or press `y` in manager mode, to copy\n")
	return b.String()
}

// renderHelp renders the keymap markdown to plain formatted text. The
// compositor paints cells itself, so the renderer must not emit ANSI.
func renderHelp(k keyMap) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(44),
	)
	if err != nil {
		return helpMarkdown(k)
	}
	out, err := r.Render(helpMarkdown(k))
	if err != nil {
		return helpMarkdown(k)
	}
	return out
}
