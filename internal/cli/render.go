package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Makepad-fr/dropwise/internal/drops"
	"github.com/Makepad-fr/dropwise/internal/model"
	"github.com/Makepad-fr/dropwise/internal/ui"
)

// listLines renders the ls panel: a header with per status counts, then
// one entry per visible drop.
func listLines(l *drops.List, status model.DropStatus, tag string, now time.Time) []string {
	t := ui.Current()
	counts := l.Counts()
	header := ui.C(t.Title, "Drops")
	for _, s := range model.Statuses {
		header += fmt.Sprintf("  %s %d", ui.C(t.Status[s], string(s)), counts[s])
	}
	header += fmt.Sprintf("  %s %d", ui.C(t.Accent, "total"), l.Len())

	lines := []string{header}
	if status != "" || tag != "" {
		var filter []string
		if status != "" {
			filter = append(filter, "status "+string(status))
		}
		if tag != "" {
			filter = append(filter, "tag "+t.SymTag+tag)
		}
		lines = append(lines, ui.C(t.Muted, "showing "+strings.Join(filter, ", ")))
	}
	lines = append(lines, "")
	lines = append(lines, dropLines(l.Filter(status, tag), now)...)
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: add with `dropwise add --url <link> --topic <topic>`"))
	return lines
}

func dropLines(ds []model.Drop, now time.Time) []string {
	t := ui.Current()
	if len(ds) == 0 {
		return []string{ui.C(t.Muted, "no drops")}
	}
	out := make([]string, 0, len(ds)*2)
	for i, d := range ds {
		idx := fmt.Sprintf("%2d.", i+1)
		out = append(out, fmt.Sprintf("%s %s %s",
			ui.C(t.Muted, idx), ui.Badge(d.Status), ui.Truncate(d.Topic, 60)))

		meta := []string{d.Host(), "id " + d.ID}
		switch {
		case d.AddedDate.Valid():
			meta = append(meta, "added "+humanize.RelTime(d.AddedDate.Time, now, "ago", "from now"))
		case d.AddedDate.Raw != "":
			meta = append(meta, "added "+d.AddedDate.Raw)
		}
		if len(d.Tags) > 0 {
			meta = append(meta, t.SymTag+strings.Join(d.Tags, " "+t.SymTag))
		}
		out = append(out, "    "+ui.C(t.Muted, strings.Join(meta, " · ")))
		if n := strings.TrimSpace(d.Notes()); n != "" {
			first, _, _ := strings.Cut(n, "\n")
			out = append(out, "    "+ui.C(t.Notes, t.SymNotes+" "+ui.Truncate(first, 60)))
		}
	}
	return out
}
