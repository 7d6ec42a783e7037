package model

import (
	"net/url"
	"strings"
)

// DropStatus is where a drop sits in the reading lifecycle.
type DropStatus string

const (
	StatusNew      DropStatus = "new"
	StatusSent     DropStatus = "sent"
	StatusArchived DropStatus = "archived"
	StatusSnoozed  DropStatus = "snoozed"
)

// Statuses lists every known status in display order.
var Statuses = []DropStatus{StatusNew, StatusSent, StatusArchived, StatusSnoozed}

func (s DropStatus) Valid() bool {
	switch s {
	case StatusNew, StatusSent, StatusArchived, StatusSnoozed:
		return true
	}
	return false
}

// ParseStatus accepts a status name case-insensitively.
func ParseStatus(s string) (DropStatus, bool) {
	st := DropStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Drop is a saved link the user intends to read. The backend owns it;
// the client only keeps a cached copy.
type Drop struct {
	ID           string     `json:"id"`
	Topic        string     `json:"topic"`
	URL          string     `json:"url"`
	Status       DropStatus `json:"status"`
	Tags         []string   `json:"tags"`
	AddedDate    Time       `json:"added_date"`
	UpdatedAt    Time       `json:"updated_at"`
	UserNotes    *string    `json:"user_notes,omitempty"`
	LastSentDate *Time      `json:"last_sent_date,omitempty"`
	SendCount    int        `json:"send_count"`
	Priority     *int       `json:"priority,omitempty"`
}

// Notes returns the user notes or "".
func (d Drop) Notes() string {
	if d.UserNotes == nil {
		return ""
	}
	return *d.UserNotes
}

// Host returns the hostname of the drop URL, or the raw URL when it
// cannot be parsed.
func (d Drop) Host() string {
	u, err := url.Parse(d.URL)
	if err != nil || u.Hostname() == "" {
		return d.URL
	}
	return u.Hostname()
}

// HasTag reports whether the drop carries tag (case-insensitive).
func (d Drop) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// DropInput is the body of create and update calls.
type DropInput struct {
	URL       string   `json:"url"`
	Topic     string   `json:"topic"`
	UserNotes string   `json:"user_notes"`
	Tags      []string `json:"tags"`
}

// ParseTags splits a comma separated string into tags. Pieces are trimmed
// and empty ones dropped; order and duplicates are kept.
func ParseTags(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// JoinTags is the inverse used to seed edit forms.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
