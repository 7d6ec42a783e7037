package ui

import (
	"strings"

	"github.com/Makepad-fr/dropwise/internal/model"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Notes string
	Status                                     map[model.DropStatus]string
	CornerTL, CornerTR, CornerBL, CornerBR     string
	H, V                                       string
	SymTag, SymNotes                           string
}

var current = classic()

func classic() Theme {
	return Theme{
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Notes: italic,
		Status: map[model.DropStatus]string{
			model.StatusNew:      fgCyan,
			model.StatusSent:     fgRed,
			model.StatusArchived: fgGreen,
			model.StatusSnoozed:  fgYellow,
		},
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		H: "─", V: "│",
		SymTag: "#", SymNotes: "✎",
	}
}

func SetTheme(name string) {
	disableColor = false
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Title: "\033[95m", // bright magenta
			Muted: fgGray, Accent: "\033[96m",
			Success: fgGreen, Error: fgRed, Notes: italic,
			Status: map[model.DropStatus]string{
				model.StatusNew:      "\033[96m",
				model.StatusSent:     "\033[91m",
				model.StatusArchived: "\033[92m",
				model.StatusSnoozed:  "\033[93m",
			},
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
			SymTag: "#", SymNotes: "✎",
		}
	case "mono":
		disableColor = true
		current = Theme{
			Status:   map[model.DropStatus]string{},
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
			SymTag: "#", SymNotes: "*",
		}
	default: // classic
		current = classic()
	}
}

// Expose what renderers need
func Current() Theme { return current }

// Badge renders a status label in its color.
func Badge(s model.DropStatus) string {
	return C(current.Status[s], "["+string(s)+"]")
}
