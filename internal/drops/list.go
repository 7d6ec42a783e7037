// Package drops keeps the client's local copy of the user's drops. Order
// is the server's order, with drops added locally placed first.
package drops

import (
	"sort"
	"strings"

	"github.com/Makepad-fr/dropwise/internal/model"
)

// Page level messages for failures that have no form to report them.
const (
	MsgFetchFailed  = "Failed to fetch drops. Please try again later."
	MsgDeleteFailed = "Failed to delete the drop. Please try again."
)

// List is not safe for concurrent use; the UI event loop owns it.
type List struct {
	items []model.Drop
}

func NewList(items []model.Drop) *List {
	l := &List{}
	l.Replace(items)
	return l
}

// Replace swaps in a freshly fetched set.
func (l *List) Replace(items []model.Drop) {
	l.items = append([]model.Drop(nil), items...)
}

// Clear forgets every drop (on logout).
func (l *List) Clear() { l.items = nil }

func (l *List) Len() int { return len(l.items) }

// All returns a copy in display order.
func (l *List) All() []model.Drop {
	return append([]model.Drop(nil), l.items...)
}

// Prepend puts a newly created drop at the front.
func (l *List) Prepend(d model.Drop) {
	l.items = append([]model.Drop{d}, l.items...)
}

// Upsert replaces the drop with the same id in place. It reports false
// when no such drop was held.
func (l *List) Upsert(d model.Drop) bool {
	for i := range l.items {
		if l.items[i].ID == d.ID {
			l.items[i] = d
			return true
		}
	}
	return false
}

// Remove drops every entry with id and reports whether one was found.
func (l *List) Remove(id string) bool {
	out := l.items[:0]
	found := false
	for _, d := range l.items {
		if d.ID == id {
			found = true
			continue
		}
		out = append(out, d)
	}
	l.items = out
	return found
}

func (l *List) Get(id string) (model.Drop, bool) {
	for _, d := range l.items {
		if d.ID == id {
			return d, true
		}
	}
	return model.Drop{}, false
}

func (l *List) ByStatus(s model.DropStatus) []model.Drop {
	return l.Filter(s, "")
}

func (l *List) ByTag(tag string) []model.Drop {
	return l.Filter("", tag)
}

// Filter keeps drops matching status and tag; empty values match all.
func (l *List) Filter(s model.DropStatus, tag string) []model.Drop {
	tag = strings.TrimSpace(tag)
	out := []model.Drop{}
	for _, d := range l.items {
		if s != "" && d.Status != s {
			continue
		}
		if tag != "" && !d.HasTag(tag) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Counts returns the number of drops per status.
func (l *List) Counts() map[model.DropStatus]int {
	c := make(map[model.DropStatus]int, len(model.Statuses))
	for _, d := range l.items {
		c[d.Status]++
	}
	return c
}

// Tags returns the distinct tags, lowercased and sorted.
func (l *List) Tags() []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range l.items {
		for _, t := range d.Tags {
			k := strings.ToLower(t)
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}
