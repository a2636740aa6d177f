// Package tui provides the terminal user interface for confnav.
// This file contains the message types passed between loaders and Update
// via the tea.Msg interface.
package tui

import (
	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/usecase"
)

// namespacesLoadedMsg is sent when the namespace list has been fetched.
type namespacesLoadedMsg struct {
	ticket     usecase.Ticket
	namespaces []entity.Namespace
	err        error
}

// namespaceSavedMsg is sent when a namespace create or edit completes.
type namespaceSavedMsg struct {
	name    string
	editing bool
	err     error
}

// groupsLoadedMsg carries a group list response. browser identifies the
// session that issued it; results for a closed session are dropped.
type groupsLoadedMsg struct {
	browser *usecase.NamespaceBrowser
	result  usecase.GroupsResult
}

// configsLoadedMsg carries one page of entries.
type configsLoadedMsg struct {
	browser *usecase.NamespaceBrowser
	result  usecase.ConfigsResult
}

// detailLoadedMsg carries a single entry for the modal.
type detailLoadedMsg struct {
	browser *usecase.NamespaceBrowser
	result  usecase.DetailResult
}

// submitDoneMsg carries the outcome of a create or update.
type submitDoneMsg struct {
	browser *usecase.NamespaceBrowser
	result  usecase.SubmitResult
}

// watchEventMsg is sent when a watched entry changed remotely.
type watchEventMsg struct {
	event usecase.ChangeEvent
}

// watchStoppedMsg is sent once the watcher's event channel is closed.
type watchStoppedMsg struct{}

// clearStatusMsg clears the status bar after a delay.
type clearStatusMsg struct{}
