// Package tui provides the terminal user interface for confnav.
// This file contains the root Model, its construction and the Update loop.
package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/andrebassi/confnav/configs"
	"github.com/andrebassi/confnav/internal/adapters/tui/component"
	"github.com/andrebassi/confnav/internal/adapters/tui/keys"
	"github.com/andrebassi/confnav/internal/adapters/tui/style"
	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/domain/port"
	"github.com/andrebassi/confnav/internal/usecase"
)

// ViewState is the top-level screen.
type ViewState int

const (
	ViewNamespaces ViewState = iota // Namespace selector
	ViewBrowser                     // Groups and entries of one namespace
)

// panel is the focused half of the browser screen.
type panel int

const (
	panelGroups panel = iota
	panelConfigs
)

// Options configures the application model.
type Options struct {
	Store   port.ConfigStore
	Config  *configs.Config
	Logger  *zap.Logger
	Watcher *usecase.ConfigWatcher // optional; enables remote change notices

	// Namespace opens this namespace directly once the list is loaded.
	Namespace string
	// Group is preselected when the namespace opens.
	Group string

	// SaveConfig persists cfg on quit. Nil means configs.Config.Save.
	SaveConfig func(cfg *configs.Config) error
}

// Model is the bubbletea model of the whole application.
type Model struct {
	store      port.ConfigStore
	config     *configs.Config
	saveConfig func(cfg *configs.Config) error
	logger     *zap.Logger
	namespaces *usecase.NamespaceUseCase
	nsGate     *usecase.FetchGate
	browser    *usecase.NamespaceBrowser
	watcher    *usecase.ConfigWatcher
	pinned     map[entity.ConfigKey]bool

	nsList     component.NamespaceList
	nsForm     component.NamespaceForm
	groups     component.GroupList
	table      component.ConfigTable
	modal      component.ConfigModal
	confirm    component.ConfirmDialog
	help       component.HelpPanel
	breadcrumb component.Breadcrumb
	spinner    spinner.Model
	keys       keys.KeyMap

	view      ViewState
	panel     panel
	width     int
	height    int
	loading   bool
	statusMsg string

	startNamespace string
	startGroup     string
}

// NewWithOptions creates the application model.
func NewWithOptions(opts Options) (*Model, error) {
	if opts.Store == nil {
		return nil, errors.New("config store is required")
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = configs.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	save := opts.SaveConfig
	if save == nil {
		save = func(c *configs.Config) error { return c.Save() }
	}

	startNamespace := opts.Namespace
	startGroup := opts.Group
	if startNamespace == "" {
		startNamespace = cfg.LastNamespace
		if startGroup == "" {
			startGroup = cfg.LastGroup
		}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = style.SpinnerStyle

	nsList := component.NewNamespaceList()
	nsList.SetFavourites(cfg.FavoriteNamespaces)

	return &Model{
		store:          opts.Store,
		config:         cfg,
		saveConfig:     save,
		logger:         logger,
		namespaces:     usecase.NewNamespaceUseCase(opts.Store, logger, cfg.Timeout()),
		nsGate:         usecase.NewFetchGate(),
		watcher:        opts.Watcher,
		pinned:         map[entity.ConfigKey]bool{},
		nsList:         nsList,
		nsForm:         component.NewNamespaceForm(),
		groups:         component.NewGroupList(),
		table:          component.NewConfigTable(),
		modal:          component.NewConfigModal(),
		confirm:        component.NewConfirmDialog(),
		help:           component.NewHelpPanel(),
		breadcrumb:     component.NewBreadcrumb(),
		spinner:        s,
		keys:           keys.DefaultKeyMap(),
		view:           ViewNamespaces,
		loading:        true,
		startNamespace: startNamespace,
		startGroup:     startGroup,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadNamespaces(),
		m.waitForWatchEvent(),
	)
}

// busy reports whether a store request is outstanding.
func (m Model) busy() bool {
	return m.loading || (m.browser != nil && m.browser.Gate().Busy())
}

func (m *Model) setStatus(msg string, d time.Duration) tea.Cmd {
	m.statusMsg = msg
	return clearStatusAfter(d)
}

func (m *Model) setError(err error) tea.Cmd {
	return m.setStatus("Error: "+err.Error(), 5*time.Second)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clearStatusMsg:
		m.statusMsg = ""
		return m, nil

	case namespacesLoadedMsg:
		return m, m.applyNamespaces(msg)

	case namespaceSavedMsg:
		if msg.err != nil {
			m.nsForm.SetError(msg.err.Error())
			return m, nil
		}
		m.nsForm.Hide()
		verb := "created"
		if msg.editing {
			verb = "updated"
		}
		return m, tea.Batch(
			m.setStatus(fmt.Sprintf("Namespace %s %s", msg.name, verb), 3*time.Second),
			m.loadNamespaces(),
		)

	case groupsLoadedMsg:
		if msg.browser != m.browser {
			return m, nil
		}
		return m, m.applyGroups(msg.result)

	case configsLoadedMsg:
		if msg.browser != m.browser {
			return m, nil
		}
		return m, m.applyConfigs(msg.result)

	case detailLoadedMsg:
		if msg.browser != m.browser {
			return m, nil
		}
		return m, m.applyDetail(msg.result)

	case submitDoneMsg:
		if msg.browser != m.browser {
			return m, nil
		}
		return m, m.applySubmit(msg.result)

	case watchEventMsg:
		return m, tea.Batch(m.applyWatchEvent(msg.event), m.waitForWatchEvent())

	case watchStoppedMsg:
		return m, nil

	case component.NamespaceFormSubmitted:
		return m, m.saveNamespace(msg.Name, msg.Description, msg.Editing)

	case component.NamespaceFormClosed:
		return m, nil

	case component.ConfigFilterChanged:
		if m.browser == nil {
			return m, nil
		}
		return m, m.issueConfigs(m.browser.SetFilter(msg.Filter))

	case component.ConfigModalClosed:
		if msg.Dirty {
			m.confirm.Show("Discard changes?", "The draft has unsaved changes.", "discard", nil)
			return m, nil
		}
		m.closeModal()
		return m, nil

	case component.ConfigEditRequested:
		return m, m.openEntry(msg.Key, true)

	case component.ConfigSaveRequested:
		return m, m.beginSubmit(msg.Draft)

	case component.ConfigCopied:
		if msg.Err != nil {
			return m, m.setStatus("Copy failed: "+msg.Err.Error(), 3*time.Second)
		}
		return m, m.setStatus("Copied "+msg.Key.DataID, 3*time.Second)

	case component.ConfirmResult:
		if msg.Confirmed && msg.Action == "discard" {
			m.closeModal()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blinks and other component messages go to whatever has focus.
	return m, m.forward(msg)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	contentH := height - 4 // border, status bar and breadcrumb

	m.nsList.SetSize(width-2, contentH)
	m.nsForm.SetWidth(width)
	leftW := max(20, width/4)
	m.groups.SetSize(leftW, contentH)
	m.table.SetSize(width-leftW-5, contentH)
	m.modal.SetSize(width, height)
	m.help.SetSize(width, height)
	m.breadcrumb.SetWidth(width - 4)
}

func (m *Model) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.nsForm.IsVisible():
		m.nsForm, cmd = m.nsForm.Update(msg)
	case m.modal.IsVisible():
		m.modal, cmd = m.modal.Update(msg)
	case m.view == ViewNamespaces:
		m.nsList, cmd = m.nsList.Update(msg)
	case m.view == ViewBrowser && m.panel == panelConfigs:
		m.table, cmd = m.table.Update(msg)
	}
	return cmd
}

func (m *Model) applyNamespaces(msg namespacesLoadedMsg) tea.Cmd {
	if !m.nsGate.End(msg.ticket) {
		m.logger.Debug("dropping stale namespace list")
		return nil
	}
	m.loading = false
	if msg.err != nil {
		m.logger.Warn("namespace list failed", zap.Error(msg.err))
		return m.setError(msg.err)
	}
	m.nsList.SetNamespaces(msg.namespaces)

	if m.startNamespace == "" {
		return nil
	}
	id := m.startNamespace
	m.startNamespace = ""
	if m.view != ViewNamespaces {
		return nil
	}
	if !m.nsList.SelectID(id) {
		return m.setStatus(fmt.Sprintf("Namespace %s not found", id), 3*time.Second)
	}
	return m.openNamespace(id)
}

func (m *Model) applyGroups(res usecase.GroupsResult) tea.Cmd {
	err := m.browser.ApplyGroups(res)
	m.groups.SetLoading(false)
	if errors.Is(err, usecase.ErrStaleResponse) {
		return nil
	}
	if err != nil {
		return m.setError(err)
	}

	groups := m.browser.Groups()
	m.groups.SetGroups(groups)

	if m.browser.Pagination().SelectedGroup() != "" || len(groups) == 0 {
		return nil
	}
	target := groups[0]
	for _, g := range groups {
		if g == m.startGroup {
			target = g
		}
	}
	m.startGroup = ""
	return m.selectGroup(target)
}

func (m *Model) applyConfigs(res usecase.ConfigsResult) tea.Cmd {
	next, err := m.browser.ApplyConfigs(res)
	if errors.Is(err, usecase.ErrStaleResponse) {
		return nil
	}
	m.syncTable()
	if err != nil {
		return m.setError(err)
	}
	if next != nil {
		return m.loadConfigs(*next)
	}
	return nil
}

func (m *Model) applyDetail(res usecase.DetailResult) tea.Cmd {
	err := m.browser.ApplyDetail(res)
	if errors.Is(err, usecase.ErrStaleResponse) {
		return nil
	}
	if err != nil {
		return m.setError(err)
	}

	m.statusMsg = ""
	mc := m.browser.Modal()
	cmd := m.modal.Show(mc.Mode(), mc.Entry())
	if m.watcher != nil {
		m.watcher.Watch(m.modal.Key())
	}
	return cmd
}

func (m *Model) applySubmit(res usecase.SubmitResult) tea.Cmd {
	// A superseded write leaves the indicator to the one still in flight.
	current := m.browser.Gate().Current(res.Request.Ticket)
	next, err := m.browser.ApplySubmit(res)
	if errors.Is(err, usecase.ErrStaleResponse) {
		return nil
	}
	if current {
		m.modal.SetSubmitting(false)
	}
	if err != nil {
		m.modal.SetError(err.Error())
		return m.setError(err)
	}

	key := res.Request.Entry.Key()
	if m.browser.Modal().Mode() == usecase.ModalClosed {
		m.hideModal()
	}
	cmds := []tea.Cmd{m.setStatus("Saved "+key.DataID, 3*time.Second)}
	if next != nil {
		m.syncTable()
		cmds = append(cmds, m.loadConfigs(*next))
	}
	return tea.Batch(cmds...)
}

func (m *Model) applyWatchEvent(ev usecase.ChangeEvent) tea.Cmd {
	what := "changed"
	if ev.Deleted {
		what = "deleted"
	}
	if m.modal.IsVisible() && m.modal.Key() == ev.Key {
		m.modal.SetRemoteChanged(true)
	}
	if !m.pinned[ev.Key] && !(m.modal.IsVisible() && m.modal.Key() == ev.Key) {
		return nil
	}
	return m.setStatus(fmt.Sprintf("%s %s remotely", ev.Key.DataID, what), 5*time.Second)
}

// openNamespace starts a browsing session for id.
func (m *Model) openNamespace(id string) tea.Cmd {
	b, err := usecase.NewNamespaceBrowser(m.store, id,
		usecase.WithLogger(m.logger),
		usecase.WithPageSize(m.config.PageSize),
		usecase.WithRequestTimeout(m.config.Timeout()),
	)
	if err != nil {
		return m.setError(err)
	}

	m.closeBrowser()
	m.browser = b
	m.view = ViewBrowser
	m.panel = panelGroups
	m.groups = component.NewGroupList()
	m.groups.SetLoading(true)
	m.table = component.NewConfigTable()
	m.resize(m.width, m.height)
	m.focusPanel(panelGroups)
	m.syncTable()
	m.config.SetLast(id, "")

	return m.loadGroups(b.LoadGroupsRequest())
}

// closeBrowser ends the current session and stops watching its entries.
func (m *Model) closeBrowser() {
	if m.browser == nil {
		return
	}
	m.hideModal()
	if m.watcher != nil {
		for k := range m.pinned {
			m.watcher.Unwatch(k)
		}
	}
	m.pinned = map[entity.ConfigKey]bool{}
	m.browser = nil
}

func (m *Model) selectGroup(group string) tea.Cmd {
	m.groups.SetActive(group)
	m.config.SetLast(m.browser.Namespace(), group)
	return m.issueConfigs(m.browser.SelectGroup(group))
}

// issueConfigs starts req, or reports why it could not be built.
func (m *Model) issueConfigs(req usecase.ConfigsRequest, err error) tea.Cmd {
	if err != nil {
		m.syncTable()
		if errors.Is(err, usecase.ErrPageOutOfRange) || errors.Is(err, usecase.ErrNoGroupSelected) {
			return nil
		}
		return m.setError(err)
	}
	m.syncTable()
	return m.loadConfigs(req)
}

// syncTable copies the browser's paging state into the components.
func (m *Model) syncTable() {
	if m.browser == nil {
		return
	}
	p := m.browser.Pagination()
	m.table.SetPage(p.SelectedGroup(), p.Configs(), m.browser.PageStrip(), p.CurrentPage(), p.TotalCount())
	m.table.SetLoading(m.browser.Gate().Loading(usecase.ClassConfigs))
	m.table.SetFilter(p.SearchFilter())
	m.table.SetWatched(m.pinnedKeys())

	crumbs := []string{m.browser.Namespace(), p.SelectedGroup()}
	if m.modal.IsVisible() {
		crumbs = append(crumbs, m.modal.Key().DataID)
	}
	m.breadcrumb.SetItems(crumbs...)
}

func (m *Model) pinnedKeys() []entity.ConfigKey {
	out := make([]entity.ConfigKey, 0, len(m.pinned))
	for k := range m.pinned {
		out = append(out, k)
	}
	return out
}

func (m *Model) focusPanel(p panel) {
	m.panel = p
	m.groups.SetFocused(p == panelGroups)
	m.table.SetFocused(p == panelConfigs)
}

// handleKey routes a key press. Overlays take priority over the screen
// below them, and text inputs swallow keys while they have focus.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	if m.confirm.IsVisible() {
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	}
	if m.nsForm.IsVisible() {
		m.nsForm, cmd = m.nsForm.Update(msg)
		return m, cmd
	}
	if m.modal.IsVisible() {
		m.modal, cmd = m.modal.Update(msg)
		if !m.modal.IsVisible() {
			m.syncTable()
		}
		return m, cmd
	}
	if m.help.IsVisible() {
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.help.Hide()
		}
		return m, nil
	}

	if m.view == ViewNamespaces && m.nsList.IsSearching() {
		m.nsList, cmd = m.nsList.Update(msg)
		return m, cmd
	}
	if m.view == ViewBrowser && m.table.IsSearching() {
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help.Toggle()
		return m, nil
	}

	switch m.view {
	case ViewNamespaces:
		return m, m.handleNamespaceKey(msg)
	case ViewBrowser:
		return m, m.handleBrowserKey(msg)
	}
	return m, nil
}
