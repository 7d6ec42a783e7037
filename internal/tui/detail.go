package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"

	"github.com/Makepad-fr/dropwise/internal/model"
)

// when formats t relative to now. An unparsed date is shown as sent;
// a missing one renders as "never".
func when(t model.Time) string {
	if !t.Valid() {
		if t.Raw != "" {
			return t.Raw
		}
		return "never"
	}
	return humanize.Time(t.Time)
}

// notesRenderer renders markdown notes. The glamour renderer is rebuilt
// only when the wrap width changes.
type notesRenderer struct {
	width int
	r     *glamour.TermRenderer
	built int // renderers created
}

// render falls back to the raw text when glamour fails.
func (n *notesRenderer) render(notes string, width int) string {
	if strings.TrimSpace(notes) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	if n.r == nil || n.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return notes
		}
		n.r, n.width = r, width
		n.built++
	}
	out, err := n.r.Render(notes)
	if err != nil {
		return notes
	}
	return strings.TrimRight(out, "\n")
}

func detailView(d model.Drop, width int, notes *notesRenderer) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Topic))
	b.WriteString("  " + statusBadge(d.Status) + "\n")
	b.WriteString(accentStyle.Render(d.URL) + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	tags := mutedStyle.Render("none")
	if len(d.Tags) > 0 {
		tags = "#" + strings.Join(d.Tags, " #")
	}
	row("Tags", tags)
	row("Added", when(d.AddedDate))
	row("Updated", when(d.UpdatedAt))
	last := "never"
	if d.LastSentDate != nil {
		last = when(*d.LastSentDate)
	}
	row("Last sent", last)
	row("Sent", fmt.Sprintf("%d times", d.SendCount))
	if d.Priority != nil {
		row("Priority", fmt.Sprint(*d.Priority))
	}

	if n := notes.render(d.Notes(), width-4); n != "" {
		b.WriteString("\n" + n + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("e edit • d delete • esc back"))
	return b.String()
}
