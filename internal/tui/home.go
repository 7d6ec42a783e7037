package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/dropwise/internal/api"
	"github.com/Makepad-fr/dropwise/internal/drops"
	"github.com/Makepad-fr/dropwise/internal/model"
)

type action int

const (
	actionNone action = iota
	actionQuit
	actionLogout
)

type homeMode int

const (
	modeList homeMode = iota
	modeForm
	modeDetail
	modeConfirm
)

// homeTabs are the status tabs of the home screen.
var homeTabs = []model.DropStatus{model.StatusNew, model.StatusSent, model.StatusArchived}

// dropItem adapts a Drop to bubbles/list.Item
type dropItem struct{ d model.Drop }

func (i dropItem) Title() string       { return i.d.Topic }
func (i dropItem) Description() string { return i.d.Host() }
func (i dropItem) FilterValue() string { return i.d.Topic }

// Two lines per drop: topic, then host, tags and age.
type dropDelegate struct{}

func (d dropDelegate) Height() int                               { return 2 }
func (d dropDelegate) Spacing() int                              { return 1 }
func (d dropDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d dropDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(dropItem)
	if !ok {
		return
	}
	prefix, topic := "  ", it.d.Topic
	if index == m.Index() {
		prefix = selectedStyle.Render(">") + " "
		topic = titleStyle.Render(topic)
	}
	meta := it.d.Host() + " · added " + when(it.d.AddedDate)
	if len(it.d.Tags) > 0 {
		meta += " · #" + strings.Join(it.d.Tags, " #")
	}
	fmt.Fprintln(w, prefix+topic)
	fmt.Fprint(w, "  "+mutedStyle.Render(meta))
}

type homeScreen struct {
	keys  KeyMap
	drops *drops.List
	list  list.Model
	tab   int
	tag   string // empty shows every tag

	mode    homeMode
	editor  *dropEditor
	current string // id shown in detail or pending deletion

	gen     int
	loading bool
	banner  string

	notes notesRenderer

	width, height int
}

func newHomeScreen(keys KeyMap, defaultTab model.DropStatus) *homeScreen {
	l := list.New(nil, dropDelegate{}, 76, 16)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(true)
	l.SetStatusBarItemName("drop", "drops")
	l.DisableQuitKeybindings()
	l.Styles.PaginationStyle = helpStyle

	h := &homeScreen{keys: keys, drops: drops.NewList(nil), list: l, width: 80, height: 24}
	for i, s := range homeTabs {
		if s == defaultTab {
			h.tab = i
		}
	}
	return h
}

func fetchDrops(ctx context.Context, svc DropService, gen int) tea.Cmd {
	return func() tea.Msg {
		ds, err := svc.List(ctx)
		return dropsLoadedMsg{gen: gen, drops: ds, err: err}
	}
}

// enter is called whenever the home screen becomes visible.
func (h *homeScreen) enter(ctx context.Context, svc DropService) tea.Cmd {
	h.gen++
	h.loading = true
	h.banner = ""
	return fetchDrops(ctx, svc, h.gen)
}

// reset forgets everything belonging to the previous session.
func (h *homeScreen) reset() {
	h.gen++
	h.drops.Clear()
	h.mode = modeList
	h.editor = nil
	h.current = ""
	h.tag = ""
	h.loading = false
	h.banner = ""
	h.refresh()
}

func (h *homeScreen) setSize(w, ht int) {
	h.width, h.height = w, ht
	if w > 4 && ht > 8 {
		h.list.SetSize(w-4, ht-8)
	}
	if h.editor != nil {
		h.editor.setWidth(w - 16)
	}
}

func (h *homeScreen) status() model.DropStatus { return homeTabs[h.tab] }

// refresh rebuilds the visible list from the local drops.
func (h *homeScreen) refresh() {
	visible := h.drops.Filter(h.status(), h.tag)
	items := make([]list.Item, 0, len(visible))
	for _, d := range visible {
		items = append(items, dropItem{d: d})
	}
	h.list.SetItems(items)
}

func (h *homeScreen) selected() (model.Drop, bool) {
	it, ok := h.list.SelectedItem().(dropItem)
	if !ok {
		return model.Drop{}, false
	}
	return it.d, true
}

func (h *homeScreen) selectID(id string) {
	for i, it := range h.list.Items() {
		if di, ok := it.(dropItem); ok && di.d.ID == id {
			h.list.Select(i)
			return
		}
	}
}

// nextTag cycles the tag filter through "" and every known tag.
func (h *homeScreen) nextTag() {
	tags := append([]string{""}, h.drops.Tags()...)
	next := 0
	for i, t := range tags {
		if t == h.tag {
			next = (i + 1) % len(tags)
			break
		}
	}
	h.tag = tags[next]
}

func (h *homeScreen) openEditor(e *dropEditor) tea.Cmd {
	h.editor = e
	h.editor.setWidth(h.width - 16)
	h.mode = modeForm
	return h.editor.setFocus(0)
}

func (h *homeScreen) update(ctx context.Context, svc DropService, msg tea.Msg) (tea.Cmd, action) {
	switch msg := msg.(type) {
	case dropsLoadedMsg:
		if msg.gen != h.gen {
			return nil, actionNone
		}
		h.loading = false
		if msg.err != nil {
			if !api.IsUnauthorized(msg.err) {
				h.banner = drops.MsgFetchFailed
			}
			return nil, actionNone
		}
		h.drops.Replace(msg.drops)
		h.refresh()
		return nil, actionNone

	case dropSavedMsg:
		if h.editor == nil {
			return nil, actionNone
		}
		out := h.editor.ctl.Complete(msg.drop, msg.err, h.drops)
		if !out.OK {
			return nil, actionNone
		}
		h.editor = nil
		h.mode = modeList
		if out.Refetch {
			return h.enter(ctx, svc), actionNone
		}
		h.refresh()
		h.selectID(msg.drop.ID)
		return nil, actionNone

	case dropDeletedMsg:
		if msg.err != nil {
			if !api.IsUnauthorized(msg.err) {
				h.banner = drops.MsgDeleteFailed
			}
			return nil, actionNone
		}
		h.drops.Remove(msg.id)
		h.refresh()
		return nil, actionNone

	case tea.KeyMsg:
		switch h.mode {
		case modeForm:
			return h.updateForm(ctx, svc, msg), actionNone
		case modeConfirm:
			return h.updateConfirm(ctx, svc, msg), actionNone
		case modeDetail:
			return h.updateDetail(msg), actionNone
		}
		return h.updateList(ctx, svc, msg)
	}

	if h.mode == modeForm && h.editor != nil {
		_, cmd := h.editor.update(msg)
		return cmd, actionNone
	}
	var cmd tea.Cmd
	h.list, cmd = h.list.Update(msg)
	return cmd, actionNone
}

func (h *homeScreen) updateList(ctx context.Context, svc DropService, msg tea.KeyMsg) (tea.Cmd, action) {
	switch {
	case key.Matches(msg, h.keys.Quit):
		return nil, actionQuit
	case key.Matches(msg, h.keys.Logout):
		return nil, actionLogout
	case key.Matches(msg, h.keys.Refresh):
		return h.enter(ctx, svc), actionNone
	case key.Matches(msg, h.keys.Add):
		return h.openEditor(newAddEditor(h.keys)), actionNone
	case key.Matches(msg, h.keys.NextTab):
		h.tab = (h.tab + 1) % len(homeTabs)
		h.refresh()
		return nil, actionNone
	case key.Matches(msg, h.keys.PrevTab):
		h.tab = (h.tab + len(homeTabs) - 1) % len(homeTabs)
		h.refresh()
		return nil, actionNone
	case key.Matches(msg, h.keys.TagCycle):
		h.nextTag()
		h.refresh()
		return nil, actionNone
	}

	d, ok := h.selected()
	switch {
	case !ok:
	case key.Matches(msg, h.keys.Edit):
		return h.openEditor(newEditEditor(d, h.keys)), actionNone
	case key.Matches(msg, h.keys.Delete):
		h.current = d.ID
		h.mode = modeConfirm
		return nil, actionNone
	case key.Matches(msg, h.keys.Open):
		h.current = d.ID
		h.mode = modeDetail
		return nil, actionNone
	}

	var cmd tea.Cmd
	h.list, cmd = h.list.Update(msg)
	return cmd, actionNone
}

func (h *homeScreen) updateForm(ctx context.Context, svc DropService, msg tea.KeyMsg) tea.Cmd {
	ctl := h.editor.ctl
	if key.Matches(msg, h.keys.Cancel) {
		if !ctl.Submitting {
			h.editor = nil
			h.mode = modeList
		}
		return nil
	}
	submit, cmd := h.editor.update(msg)
	if !submit {
		return cmd
	}
	in, id := ctl.Input(), ctl.ID()
	return tea.Batch(cmd, func() tea.Msg {
		var (
			d   model.Drop
			err error
		)
		if id != "" {
			d, err = svc.Update(ctx, id, in)
		} else {
			d, err = svc.Create(ctx, in)
		}
		return dropSavedMsg{drop: d, err: err}
	})
}

func (h *homeScreen) updateConfirm(ctx context.Context, svc DropService, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, h.keys.Yes):
		id := h.current
		h.mode = modeList
		h.banner = ""
		return func() tea.Msg {
			return dropDeletedMsg{id: id, err: svc.Delete(ctx, id)}
		}
	case key.Matches(msg, h.keys.No):
		h.mode = modeList
	}
	return nil
}

func (h *homeScreen) updateDetail(msg tea.KeyMsg) tea.Cmd {
	d, ok := h.drops.Get(h.current)
	switch {
	case !ok, key.Matches(msg, h.keys.Cancel), key.Matches(msg, h.keys.Open), key.Matches(msg, h.keys.Quit):
		h.mode = modeList
	case key.Matches(msg, h.keys.Edit):
		return h.openEditor(newEditEditor(d, h.keys))
	case key.Matches(msg, h.keys.Delete):
		h.mode = modeConfirm
	}
	return nil
}

func (h *homeScreen) tabsView() string {
	counts := h.drops.Counts()
	parts := make([]string, 0, len(homeTabs))
	for i, s := range homeTabs {
		label := fmt.Sprintf("%s (%d)", strings.ToUpper(string(s[:1]))+string(s[1:]), counts[s])
		if i == h.tab {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return strings.Join(parts, "   ")
}

func (h *homeScreen) view(spinnerView string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dropwise") + "   " + h.tabsView() + "\n")
	if h.tag != "" {
		b.WriteString(accentStyle.Render("tag: #"+h.tag) + "\n")
	}
	if h.banner != "" {
		b.WriteString(errorStyle.Render(h.banner) + "\n")
	}
	b.WriteString("\n")

	switch h.mode {
	case modeForm:
		b.WriteString(h.editor.view())
		return panelString(b.String())
	case modeDetail:
		if d, ok := h.drops.Get(h.current); ok {
			b.WriteString(detailView(d, h.width, &h.notes))
			return panelString(b.String())
		}
	case modeConfirm:
		if d, ok := h.drops.Get(h.current); ok {
			b.WriteString(fmt.Sprintf("Delete %q? ", d.Topic))
			b.WriteString(helpStyle.Render("y yes • n no"))
			return panelString(b.String())
		}
	}

	switch {
	case h.loading:
		b.WriteString(spinnerView + " Fetching drops...")
	case len(h.list.Items()) == 0:
		b.WriteString(mutedStyle.Render("No drops here yet. Press a to add one."))
	default:
		b.WriteString(h.list.View())
	}
	b.WriteString("\n\n" + helpStyle.Render("a add • e edit • d delete • enter details • tab switch • / tag • r refresh • L log out • q quit"))
	return panelString(b.String())
}
