package component

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/usecase"
)

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func exec(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

// ============================================
// ConfirmDialog Tests
// ============================================

func TestNewConfirmDialog(t *testing.T) {
	cd := NewConfirmDialog()
	if cd.selected {
		t.Error("NewConfirmDialog should default selected to false (No)")
	}
	if cd.IsVisible() {
		t.Error("NewConfirmDialog should not be visible by default")
	}
	if cd.View() != "" {
		t.Error("hidden dialog should render nothing")
	}
}

func TestConfirmDialog_ShowHide(t *testing.T) {
	cd := NewConfirmDialog()
	cd.Show("Discard changes?", "The draft has unsaved changes.", "discard", 42)

	if !cd.IsVisible() {
		t.Fatal("Dialog should be visible after Show()")
	}
	if cd.action != "discard" {
		t.Errorf("action = %q, want %q", cd.action, "discard")
	}
	if !strings.Contains(cd.View(), "Discard changes?") {
		t.Error("View should contain the title")
	}

	cd.Hide()
	if cd.IsVisible() {
		t.Error("Dialog should not be visible after Hide()")
	}
}

func TestConfirmDialog_Answers(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		confirmed bool
	}{
		{"y confirms", []string{"y"}, true},
		{"n declines", []string{"n"}, false},
		{"esc declines", []string{"esc"}, false},
		{"enter defaults to no", []string{"enter"}, false},
		{"tab then enter confirms", []string{"tab", "enter"}, true},
		{"toggle twice then enter declines", []string{"left", "right", "enter"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cd := NewConfirmDialog()
			cd.Show("t", "m", "discard", "data")

			var cmd tea.Cmd
			for _, k := range tt.keys {
				msg := keyMsg(k)
				if k == "left" {
					msg = tea.KeyMsg{Type: tea.KeyLeft}
				}
				if k == "right" {
					msg = tea.KeyMsg{Type: tea.KeyRight}
				}
				cd, cmd = cd.Update(msg)
			}

			res, ok := exec(cmd).(ConfirmResult)
			if !ok {
				t.Fatal("expected a ConfirmResult")
			}
			if res.Confirmed != tt.confirmed {
				t.Errorf("Confirmed = %v, want %v", res.Confirmed, tt.confirmed)
			}
			if res.Action != "discard" || res.Data != "data" {
				t.Errorf("result did not echo action/data: %+v", res)
			}
			if cd.IsVisible() {
				t.Error("dialog should hide after answering")
			}
		})
	}
}

func TestConfirmDialog_IgnoresWhenHidden(t *testing.T) {
	cd := NewConfirmDialog()
	_, cmd := cd.Update(keyMsg("y"))
	if cmd != nil {
		t.Error("hidden dialog should not answer")
	}
}

// ============================================
// HelpPanel Tests
// ============================================

func TestHelpPanel(t *testing.T) {
	h := NewHelpPanel()
	if h.IsVisible() {
		t.Error("help should start hidden")
	}
	h.Toggle()
	if !h.IsVisible() {
		t.Error("Toggle should show the panel")
	}
	h.SetSize(120, 40)
	view := h.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("View should contain the title")
	}
	if !strings.Contains(view, "ctrl+s") {
		t.Error("View should list the save binding")
	}
	if h.ShortHelp() == "" {
		t.Error("ShortHelp should not be empty")
	}
	h.Hide()
	if h.IsVisible() {
		t.Error("Hide should hide the panel")
	}
}

func TestDefaultHelpEntries(t *testing.T) {
	entries := defaultHelpEntries()
	if len(entries) == 0 {
		t.Fatal("expected help columns")
	}
	for i, col := range entries {
		for _, e := range col {
			if e.Key == "" || e.Desc == "" {
				t.Errorf("column %d has an incomplete entry: %+v", i, e)
			}
		}
	}
}

// ============================================
// Breadcrumb Tests
// ============================================

func TestBreadcrumb(t *testing.T) {
	b := NewBreadcrumb()
	if b.View() != "" {
		t.Error("empty breadcrumb should render nothing")
	}

	b.SetItems("dev", "", "APP", "app.yaml")
	view := b.View()
	if !strings.Contains(view, "dev") || !strings.Contains(view, "app.yaml") {
		t.Errorf("View = %q, missing items", view)
	}
	if strings.Count(view, ">") != 2 {
		t.Errorf("View = %q, want two separators (empty item skipped)", view)
	}
}

func TestBreadcrumb_DropsLeadingItems(t *testing.T) {
	b := NewBreadcrumb()
	b.SetItems("a-very-long-namespace", "GROUP", "data")
	b.SetWidth(15)

	view := b.View()
	if strings.Contains(view, "a-very-long-namespace") {
		t.Errorf("leading item should be dropped, got %q", view)
	}
	if !strings.Contains(view, "data") {
		t.Errorf("last item must stay, got %q", view)
	}
}

// ============================================
// RenderPageStrip Tests
// ============================================

func TestRenderPageStrip(t *testing.T) {
	if RenderPageStrip(nil, 1, 0) != "" {
		t.Error("no items should render nothing")
	}

	items := usecase.PageRange(5, 10, usecase.DefaultDelta)
	got := RenderPageStrip(items, 5, 97)
	for _, want := range []string{"1", "...", "3", "5", "7", "10", "97 entries"} {
		if !strings.Contains(got, want) {
			t.Errorf("strip %q missing %q", got, want)
		}
	}
}

// ============================================
// NamespaceList Tests
// ============================================

func testNamespaces() []entity.Namespace {
	return []entity.Namespace{
		{ID: "public", ShowName: "public"},
		{ID: "dev", ShowName: "Development", Description: "dev cluster"},
		{ID: "prod", ShowName: "Production"},
	}
}

func TestNamespaceList_Navigation(t *testing.T) {
	n := NewNamespaceList()
	n.SetNamespaces(testNamespaces())

	if sel := n.Selected(); sel == nil || sel.ID != "public" {
		t.Fatalf("Selected = %v, want public", sel)
	}
	n, _ = n.Update(keyMsg("down"))
	n, _ = n.Update(keyMsg("down"))
	n, _ = n.Update(keyMsg("down"))
	if sel := n.Selected(); sel.ID != "prod" {
		t.Errorf("cursor should stop at the end, got %s", sel.ID)
	}
	n, _ = n.Update(keyMsg("g"))
	if sel := n.Selected(); sel.ID != "public" {
		t.Errorf("g should jump to top, got %s", sel.ID)
	}
}

func TestNamespaceList_Search(t *testing.T) {
	n := NewNamespaceList()
	n.SetNamespaces(testNamespaces())

	n, _ = n.Update(keyMsg("/"))
	if !n.IsSearching() {
		t.Fatal("/ should start searching")
	}
	for _, r := range "prod" {
		n, _ = n.Update(keyMsg(string(r)))
	}
	n, _ = n.Update(keyMsg("enter"))

	if n.IsSearching() {
		t.Error("enter should end searching")
	}
	if !n.HasFilter() {
		t.Error("filter should stay applied")
	}
	got := n.Filtered()
	if len(got) != 1 || got[0].ID != "prod" {
		t.Errorf("Filtered = %v, want [prod]", got)
	}

	n.ClearSearch()
	if len(n.Filtered()) != 3 {
		t.Error("ClearSearch should restore the full list")
	}
}

func TestNamespaceList_FavouritesFirst(t *testing.T) {
	n := NewNamespaceList()
	n.SetNamespaces(testNamespaces())
	n.SelectID("dev")

	n.SetFavourites([]string{"prod"})
	got := n.Filtered()
	if got[0].ID != "prod" {
		t.Errorf("favourite should be listed first, got %s", got[0].ID)
	}
	if sel := n.Selected(); sel.ID != "dev" {
		t.Errorf("selection should follow the id, got %s", sel.ID)
	}

	n.SetSize(80, 20)
	if !strings.Contains(n.View(), "★") {
		t.Error("favourites should be marked")
	}
}

func TestNamespaceList_SelectIDMissing(t *testing.T) {
	n := NewNamespaceList()
	n.SetNamespaces(testNamespaces())
	if n.SelectID("nope") {
		t.Error("SelectID should report a missing id")
	}
}

func TestVisibleWindow(t *testing.T) {
	tests := []struct {
		cursor, total, rows int
		start, end          int
	}{
		{0, 5, 10, 0, 5},
		{0, 20, 5, 0, 5},
		{10, 20, 5, 6, 11},
		{19, 20, 5, 15, 20},
	}
	for _, tt := range tests {
		start, end := visibleWindow(tt.cursor, tt.total, tt.rows)
		if end-start > tt.rows || tt.cursor < start || tt.cursor >= end {
			t.Errorf("visibleWindow(%d,%d,%d) = %d,%d does not contain cursor", tt.cursor, tt.total, tt.rows, start, end)
		}
		if end > tt.total {
			t.Errorf("visibleWindow(%d,%d,%d) end %d past total", tt.cursor, tt.total, tt.rows, end)
		}
	}
}

// ============================================
// NamespaceForm Tests
// ============================================

func TestNamespaceForm_RequiresName(t *testing.T) {
	f := NewNamespaceForm()
	f.Show(nil)

	f, _ = f.Update(keyMsg("ctrl+s"))
	if !f.IsVisible() {
		t.Fatal("form should stay open")
	}
	if !strings.Contains(f.View(), "name is required") {
		t.Error("form should show the validation error")
	}
}

func TestNamespaceForm_Create(t *testing.T) {
	f := NewNamespaceForm()
	f.Show(nil)

	for _, r := range "staging" {
		f, _ = f.Update(keyMsg(string(r)))
	}
	f, _ = f.Update(keyMsg("tab"))
	for _, r := range "pre-prod" {
		f, _ = f.Update(keyMsg(string(r)))
	}
	_, cmd := f.Update(keyMsg("ctrl+s"))

	sub, ok := exec(cmd).(NamespaceFormSubmitted)
	if !ok {
		t.Fatal("expected NamespaceFormSubmitted")
	}
	if sub.Name != "staging" || sub.Description != "pre-prod" || sub.Editing {
		t.Errorf("unexpected submission: %+v", sub)
	}
}

func TestNamespaceForm_EditKeepsName(t *testing.T) {
	f := NewNamespaceForm()
	f.Show(&entity.Namespace{ID: "dev", ShowName: "dev", Description: "old"})
	if !f.IsEditing() {
		t.Fatal("form should be in edit mode")
	}

	f, _ = f.Update(keyMsg("shift+tab"))
	f, _ = f.Update(keyMsg("x"))
	_, cmd := f.Update(keyMsg("ctrl+s"))

	sub := exec(cmd).(NamespaceFormSubmitted)
	if sub.Name != "dev" {
		t.Errorf("name should not change while editing, got %q", sub.Name)
	}
	if !sub.Editing {
		t.Error("submission should be marked as editing")
	}
}

func TestNamespaceForm_Escape(t *testing.T) {
	f := NewNamespaceForm()
	f.Show(nil)
	f, cmd := f.Update(keyMsg("esc"))
	if f.IsVisible() {
		t.Error("esc should close the form")
	}
	if _, ok := exec(cmd).(NamespaceFormClosed); !ok {
		t.Error("expected NamespaceFormClosed")
	}
}

// ============================================
// GroupList Tests
// ============================================

func TestGroupList(t *testing.T) {
	g := NewGroupList()
	if g.Selected() != "" {
		t.Error("empty list should have no selection")
	}

	g.SetActive("DB")
	g.SetGroups([]string{"APP", "DB", "MQ"})
	if g.Selected() != "DB" {
		t.Errorf("cursor should start on the active group, got %q", g.Selected())
	}
	g, _ = g.Update(keyMsg("down"))
	g, _ = g.Update(keyMsg("down"))
	if g.Selected() != "MQ" {
		t.Errorf("Selected = %q, want MQ", g.Selected())
	}
	g, _ = g.Update(keyMsg("home"))
	g, _ = g.Update(keyMsg("g"))
	if g.Selected() != "APP" {
		t.Errorf("Selected = %q, want APP", g.Selected())
	}
	if g.Len() != 3 {
		t.Errorf("Len = %d, want 3", g.Len())
	}

	g.SetSize(30, 20)
	if !strings.Contains(g.View(), "GROUPS (3)") {
		t.Error("View should show the group count")
	}
}

func TestGroupList_EmptyStates(t *testing.T) {
	g := NewGroupList()
	g.SetLoading(true)
	if !strings.Contains(g.View(), "Loading") {
		t.Error("loading list should say so")
	}
	g.SetLoading(false)
	if !strings.Contains(g.View(), "No groups") {
		t.Error("empty list should say so")
	}
}

// ============================================
// ConfigTable Tests
// ============================================

func testEntries() []entity.ConfigEntry {
	return []entity.ConfigEntry{
		{Namespace: "dev", Group: "APP", DataID: "a.yaml", Type: entity.TypeYAML, Description: "first"},
		{Namespace: "dev", Group: "APP", DataID: "b.json", Type: entity.TypeJSON},
	}
}

func TestConfigTable_PageAndSelection(t *testing.T) {
	tbl := NewConfigTable()
	tbl.SetSize(100, 20)
	if tbl.Selected() != nil {
		t.Error("empty table should have no selection")
	}
	if !strings.Contains(tbl.View(), "Select a group") {
		t.Error("table without a group should prompt for one")
	}

	tbl.SetPage("APP", testEntries(), usecase.PageRange(1, 3, 2), 1, 6)
	tbl.SetFocused(true)
	if tbl.Entries() != 2 {
		t.Errorf("Entries = %d, want 2", tbl.Entries())
	}
	tbl, _ = tbl.Update(keyMsg("down"))
	if sel := tbl.Selected(); sel == nil || sel.DataID != "b.json" {
		t.Errorf("Selected = %v, want b.json", sel)
	}

	view := tbl.View()
	for _, want := range []string{"CONFIGS · APP", "DATA ID", "a.yaml", "b.json", "6 entries"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestConfigTable_FilterEmitsOnCommit(t *testing.T) {
	tbl := NewConfigTable()
	tbl.SetPage("APP", testEntries(), nil, 1, 2)

	tbl, _ = tbl.Update(keyMsg("/"))
	if !tbl.IsSearching() {
		t.Fatal("/ should start searching")
	}
	for _, r := range "b.js" {
		tbl, _ = tbl.Update(keyMsg(string(r)))
	}
	if tbl.Filter() != "" {
		t.Fatal("filter must not be committed while typing")
	}
	tbl, cmd := tbl.Update(keyMsg("enter"))
	msg, ok := exec(cmd).(ConfigFilterChanged)
	if !ok || msg.Filter != "b.js" {
		t.Fatalf("expected ConfigFilterChanged{b.js}, got %#v", msg)
	}
	if tbl.Filter() != "b.js" {
		t.Errorf("Filter = %q", tbl.Filter())
	}

	// committing the same filter again is a no-op
	tbl, _ = tbl.Update(keyMsg("/"))
	_, cmd = tbl.Update(keyMsg("enter"))
	if cmd != nil {
		t.Error("unchanged filter should not be emitted")
	}

	tbl, cmd = tbl.Update(keyMsg("c"))
	if msg, ok := exec(cmd).(ConfigFilterChanged); !ok || msg.Filter != "" {
		t.Error("c should clear the filter")
	}
}

func TestConfigTable_EscapeCancelsSearch(t *testing.T) {
	tbl := NewConfigTable()
	tbl.SetFilter("keep")
	tbl, _ = tbl.Update(keyMsg("/"))
	tbl, _ = tbl.Update(keyMsg("x"))
	tbl, cmd := tbl.Update(keyMsg("esc"))
	if cmd != nil || tbl.Filter() != "keep" {
		t.Errorf("esc should keep the committed filter, got %q", tbl.Filter())
	}
}

func TestConfigTable_WatchedMarker(t *testing.T) {
	tbl := NewConfigTable()
	tbl.SetSize(100, 20)
	entries := testEntries()
	tbl.SetPage("APP", entries, nil, 1, 2)
	if strings.Contains(tbl.View(), "●") {
		t.Error("no entry should be marked yet")
	}
	tbl.SetWatched([]entity.ConfigKey{entries[0].Key()})
	if !strings.Contains(tbl.View(), "●") {
		t.Error("watched entry should be marked")
	}
}

// ============================================
// ConfigModal Tests
// ============================================

func testEntry() entity.ConfigEntry {
	return entity.ConfigEntry{
		Namespace:   "dev",
		Group:       "APP",
		DataID:      "app.yaml",
		Content:     "port: 8080",
		Description: "service config",
		Type:        entity.TypeYAML,
	}
}

func TestConfigModal_ViewingKeys(t *testing.T) {
	m := NewConfigModal()
	m.SetSize(100, 40)
	m.Show(usecase.ModalViewing, testEntry())

	if !m.IsVisible() || m.Mode() != usecase.ModalViewing {
		t.Fatal("modal should be viewing")
	}
	if m.Dirty() {
		t.Error("viewing is never dirty")
	}
	if !strings.Contains(m.View(), "app.yaml") {
		t.Error("View should show the data id")
	}

	_, cmd := m.Update(keyMsg("e"))
	if req, ok := exec(cmd).(ConfigEditRequested); !ok || req.Key != testEntry().Key() {
		t.Error("e should request editing")
	}

	m, cmd = m.Update(keyMsg("esc"))
	if m.IsVisible() {
		t.Error("esc should close the viewer")
	}
	if closed, ok := exec(cmd).(ConfigModalClosed); !ok || closed.Dirty {
		t.Error("expected a clean ConfigModalClosed")
	}
}

func TestConfigModal_Copy(t *testing.T) {
	var copied string
	orig := clipboardWrite
	clipboardWrite = func(s string) error {
		copied = s
		return nil
	}
	defer func() { clipboardWrite = orig }()

	m := NewConfigModal()
	m.Show(usecase.ModalViewing, testEntry())
	m, cmd := m.Update(keyMsg("y"))

	if copied != "port: 8080" {
		t.Errorf("copied %q", copied)
	}
	if msg, ok := exec(cmd).(ConfigCopied); !ok || msg.Err != nil {
		t.Error("expected a successful ConfigCopied")
	}
	if !strings.Contains(m.View(), "Copied") {
		t.Error("View should confirm the copy")
	}
}

func TestConfigModal_CopyFailure(t *testing.T) {
	orig := clipboardWrite
	clipboardWrite = func(string) error { return errors.New("no clipboard") }
	defer func() { clipboardWrite = orig }()

	m := NewConfigModal()
	m.Show(usecase.ModalViewing, testEntry())
	_, cmd := m.Update(keyMsg("y"))
	if msg := exec(cmd).(ConfigCopied); msg.Err == nil {
		t.Error("copy failure should be reported")
	}
}

func TestConfigModal_EditingDraft(t *testing.T) {
	m := NewConfigModal()
	m.SetSize(100, 40)
	m.Show(usecase.ModalEditing, testEntry())

	if m.Dirty() {
		t.Fatal("freshly opened draft should be clean")
	}
	m, _ = m.Update(keyMsg("x"))
	if !m.Dirty() {
		t.Error("typing into the content should dirty the draft")
	}
	if !strings.Contains(m.Draft().Content, "x") {
		t.Errorf("draft content = %q", m.Draft().Content)
	}

	m, cmd := m.Update(keyMsg("esc"))
	if !m.IsVisible() {
		t.Error("esc while editing leaves closing to the caller")
	}
	if closed := exec(cmd).(ConfigModalClosed); !closed.Dirty {
		t.Error("close should report the dirty draft")
	}

	_, cmd = m.Update(keyMsg("ctrl+s"))
	req, ok := exec(cmd).(ConfigSaveRequested)
	if !ok {
		t.Fatal("ctrl+s should request a save")
	}
	if req.Draft.DataID != "app.yaml" || req.Draft.Group != "APP" {
		t.Errorf("draft key changed: %+v", req.Draft.Key())
	}
}

func TestConfigModal_EditingLocksKey(t *testing.T) {
	m := NewConfigModal()
	m.Show(usecase.ModalEditing, testEntry())

	if m.editable(fieldDataID) || m.editable(fieldGroup) {
		t.Error("data id and group are fixed while editing")
	}
	if !m.editable(fieldDescription) || !m.editable(fieldContent) {
		t.Error("description and content are editable")
	}

	// focus never lands on a locked field
	for i := 0; i < fieldCount*2; i++ {
		m, _ = m.Update(keyMsg("tab"))
		if m.focus == fieldDataID || m.focus == fieldGroup {
			t.Fatalf("focus reached locked field %d", m.focus)
		}
	}
}

func TestConfigModal_Creating(t *testing.T) {
	m := NewConfigModal()
	m.Show(usecase.ModalCreating, entity.ConfigEntry{Namespace: "dev", Group: "APP", Type: entity.DefaultDraftType})

	if m.focus != fieldDataID {
		t.Errorf("focus = %d, want data id", m.focus)
	}
	for _, r := range "new.yaml" {
		m, _ = m.Update(keyMsg(string(r)))
	}
	d := m.Draft()
	if d.DataID != "new.yaml" || d.Group != "APP" {
		t.Errorf("draft = %+v", d.Key())
	}
	if !m.editable(fieldGroup) {
		t.Error("group is editable while creating")
	}
}

func TestConfigModal_CycleTypeRevalidates(t *testing.T) {
	m := NewConfigModal()
	e := testEntry()
	e.Content = "{not json"
	m.Show(usecase.ModalEditing, e)

	start := m.Type()
	for i := 0; i < len(entity.AllConfigTypes) && m.Type() != entity.TypeJSON; i++ {
		m, _ = m.Update(keyMsg("ctrl+t"))
	}
	if m.Type() != entity.TypeJSON {
		t.Fatalf("ctrl+t never reached json (started at %s)", start)
	}
	if m.Warning() == "" {
		t.Error("invalid json should produce a warning")
	}
	if m.Draft().Type != entity.TypeJSON {
		t.Error("draft should carry the selected type")
	}
}

func TestConfigModal_SubmittingBlocksSave(t *testing.T) {
	m := NewConfigModal()
	m.Show(usecase.ModalEditing, testEntry())
	m.SetSubmitting(true)
	if _, cmd := m.Update(keyMsg("ctrl+s")); cmd != nil {
		t.Error("save must not be requested while a submit is running")
	}
}

func TestConfigModal_RemoteChangedNotice(t *testing.T) {
	m := NewConfigModal()
	m.SetSize(100, 40)
	m.Show(usecase.ModalViewing, testEntry())
	m.SetRemoteChanged(true)
	if !strings.Contains(m.View(), "changed remotely") {
		t.Error("View should show the remote change notice")
	}

	m.Show(usecase.ModalViewing, testEntry())
	if m.RemoteChanged() {
		t.Error("reopening resets the notice")
	}
}

func TestConfigModal_HiddenIgnoresKeys(t *testing.T) {
	m := NewConfigModal()
	if _, cmd := m.Update(keyMsg("e")); cmd != nil {
		t.Error("hidden modal should ignore keys")
	}
	if m.View() != "" {
		t.Error("hidden modal renders nothing")
	}
}
