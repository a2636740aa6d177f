// Package tui provides the terminal user interface for confnav.
// This file contains the actions triggered from the browser and the
// namespace selector: opening entries, saving drafts, pinning watches and
// favourites.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/usecase"
)

// openEntry loads key into the modal for viewing or editing.
func (m *Model) openEntry(key entity.ConfigKey, edit bool) tea.Cmd {
	if m.browser == nil {
		return nil
	}
	m.hideModal()

	var req usecase.DetailRequest
	var err error
	if edit {
		req, err = m.browser.OpenEdit(key)
	} else {
		req, err = m.browser.OpenView(key)
	}
	if err != nil {
		return m.setError(err)
	}
	m.statusMsg = "Loading " + key.DataID + "..."
	return m.loadDetail(req)
}

func (m *Model) openCreate() tea.Cmd {
	if m.browser == nil {
		return nil
	}
	m.hideModal()
	m.browser.OpenCreate()
	mc := m.browser.Modal()
	return m.modal.Show(mc.Mode(), mc.Entry())
}

// beginSubmit copies the draft into the modal controller and starts the
// write. Local validation failures stay in the modal.
func (m *Model) beginSubmit(draft entity.ConfigEntry) tea.Cmd {
	if m.browser == nil {
		return nil
	}
	if err := syncDraft(m.browser.Modal(), draft); err != nil {
		m.modal.SetError(err.Error())
		return nil
	}

	req, err := m.browser.BeginSubmit()
	if err != nil {
		m.modal.SetError(err.Error())
		return nil
	}
	m.modal.SetSubmitting(true)
	m.statusMsg = "Saving " + req.Entry.DataID + "..."
	return m.submit(req)
}

// closeModal discards the draft and closes the modal.
func (m *Model) closeModal() {
	if m.browser != nil {
		m.browser.Close()
	}
	m.hideModal()
}

func (m *Model) hideModal() {
	if k := m.modal.Key(); m.watcher != nil && k.DataID != "" && !m.pinned[k] {
		m.watcher.Unwatch(k)
	}
	m.modal.Hide()
	m.syncTable()
}

// togglePin starts or stops watching the selected entry.
func (m *Model) togglePin() tea.Cmd {
	if m.watcher == nil {
		return m.setStatus("Watching is disabled", 3*time.Second)
	}
	sel := m.table.Selected()
	if sel == nil {
		return nil
	}
	k := sel.Key()
	if k.Namespace == "" {
		k.Namespace = m.browser.Namespace()
	}
	if m.pinned[k] {
		delete(m.pinned, k)
		m.watcher.Unwatch(k)
		m.syncTable()
		return m.setStatus("Stopped watching "+k.DataID, 3*time.Second)
	}
	m.pinned[k] = true
	m.watcher.Watch(k)
	m.syncTable()
	return m.setStatus("Watching "+k.DataID, 3*time.Second)
}

func (m *Model) toggleFavourite() tea.Cmd {
	ns := m.nsList.Selected()
	if ns == nil {
		return nil
	}
	on := m.config.ToggleFavorite(ns.ID)
	m.nsList.SetFavourites(m.config.FavoriteNamespaces)
	if on {
		return m.setStatus(ns.DisplayName()+" added to favourites", 3*time.Second)
	}
	return m.setStatus(ns.DisplayName()+" removed from favourites", 3*time.Second)
}

func (m *Model) quit() tea.Cmd {
	if err := m.saveConfig(m.config); err != nil {
		m.logger.Warn("failed to save config", zap.Error(err))
	}
	if m.browser != nil {
		m.browser.Close()
	}
	return tea.Quit
}

// syncDraft copies the form fields into the controller's working copy.
// The key fields are only taken for a new entry.
func syncDraft(mc *usecase.ModalController, draft entity.ConfigEntry) error {
	if mc.Mode() == usecase.ModalCreating {
		if err := mc.SetGroup(draft.Group); err != nil {
			return err
		}
		if err := mc.SetDataID(draft.DataID); err != nil {
			return err
		}
	}
	if err := mc.SetDescription(draft.Description); err != nil {
		return err
	}
	if err := mc.SetContent(draft.Content); err != nil {
		return err
	}
	return mc.SetType(draft.Type)
}
