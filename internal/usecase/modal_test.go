package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/domain/port"
)

func openWith(t *testing.T, m *ModalController, mode ModalMode, entry entity.ConfigEntry) {
	t.Helper()
	req, err := m.BeginOpen(mode, entry.Key())
	require.NoError(t, err)
	require.NoError(t, m.ApplyDetail(DetailResult{Request: req, Entry: &entry}))
}

func TestModalOpenCreate(t *testing.T) {
	m := NewModalController(NewFetchGate())
	m.OpenCreate("public", "g1")

	assert.Equal(t, ModalCreating, m.Mode())
	assert.Equal(t, entity.ConfigEntry{Namespace: "public", Group: "g1", Type: entity.TypeYAML}, m.Entry())
	assert.False(t, m.gate.Busy(), "creating issues no request")
}

func TestModalBeginOpenValidation(t *testing.T) {
	m := NewModalController(NewFetchGate())

	_, err := m.BeginOpen(ModalCreating, entity.ConfigKey{Group: "g", DataID: "x"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = m.BeginOpen(ModalViewing, entity.ConfigKey{Group: "g"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, m.gate.Loading(ClassDetail))
}

func TestModalOpenEditAndClose(t *testing.T) {
	m := NewModalController(NewFetchGate())
	x := entity.ConfigEntry{Namespace: "public", Group: "g1", DataID: "x", Content: "a: 1", Type: entity.TypeYAML}
	openWith(t, m, ModalEditing, x)

	assert.Equal(t, ModalEditing, m.Mode())
	require.NoError(t, m.SetContent("a: 2"))
	assert.Equal(t, "a: 2", m.Entry().Content)

	m.Close()
	assert.Equal(t, ModalClosed, m.Mode())
	assert.Equal(t, entity.ConfigEntry{}, m.Entry())
}

func TestModalReopenNeverShowsPreviousDraft(t *testing.T) {
	m := NewModalController(NewFetchGate())
	x := entity.ConfigEntry{Namespace: "public", Group: "g1", DataID: "x", Content: "x-content"}
	y := entity.ConfigEntry{Namespace: "public", Group: "g1", DataID: "y", Content: "y-content"}

	openWith(t, m, ModalEditing, x)
	require.NoError(t, m.SetContent("unsaved x draft"))

	req, err := m.BeginOpen(ModalEditing, y.Key())
	require.NoError(t, err)

	// Between request and response nothing of x is visible.
	assert.Equal(t, ModalClosed, m.Mode())
	assert.Equal(t, entity.ConfigEntry{}, m.Entry())
	pending, ok := m.Pending()
	require.True(t, ok)
	assert.Equal(t, "y", pending.Key.DataID)

	require.NoError(t, m.ApplyDetail(DetailResult{Request: req, Entry: &y}))
	assert.Equal(t, "y-content", m.Entry().Content)
}

func TestModalStaleDetailDropped(t *testing.T) {
	m := NewModalController(NewFetchGate())
	x := entity.ConfigEntry{Group: "g1", DataID: "x", Content: "x"}
	y := entity.ConfigEntry{Group: "g1", DataID: "y", Content: "y"}

	reqX, err := m.BeginOpen(ModalViewing, x.Key())
	require.NoError(t, err)
	reqY, err := m.BeginOpen(ModalViewing, y.Key())
	require.NoError(t, err)

	require.NoError(t, m.ApplyDetail(DetailResult{Request: reqY, Entry: &y}))
	err = m.ApplyDetail(DetailResult{Request: reqX, Entry: &x})
	assert.ErrorIs(t, err, ErrStaleResponse)
	assert.Equal(t, "y", m.Entry().Content)
}

func TestModalDetailAfterCloseDropped(t *testing.T) {
	m := NewModalController(NewFetchGate())
	x := entity.ConfigEntry{Group: "g1", DataID: "x"}

	req, err := m.BeginOpen(ModalViewing, x.Key())
	require.NoError(t, err)
	m.Close()

	assert.ErrorIs(t, m.ApplyDetail(DetailResult{Request: req, Entry: &x}), ErrStaleResponse)
	assert.Equal(t, ModalClosed, m.Mode())
}

func TestModalDetailFailureStaysClosed(t *testing.T) {
	tests := []struct {
		name    string
		entry   *entity.ConfigEntry
		err     error
		wantErr error
	}{
		{"service error", nil, errors.New("boom"), nil},
		{"not found", nil, port.ErrNotFound, port.ErrNotFound},
		{"empty body", nil, nil, port.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModalController(NewFetchGate())
			req, err := m.BeginOpen(ModalEditing, entity.ConfigKey{Group: "g", DataID: "x"})
			require.NoError(t, err)

			err = m.ApplyDetail(DetailResult{Request: req, Entry: tt.entry, Err: tt.err})
			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, ModalClosed, m.Mode())
			assert.False(t, m.gate.Loading(ClassDetail), "loading must clear on failure")
		})
	}
}

func TestModalWorkingCopyIsNotAliased(t *testing.T) {
	m := NewModalController(NewFetchGate())
	src := entity.ConfigEntry{Group: "g1", DataID: "x", Content: "original"}
	openWith(t, m, ModalEditing, src)

	require.NoError(t, m.SetContent("changed"))
	assert.Equal(t, "original", src.Content)
}

func TestModalDraftSetters(t *testing.T) {
	m := NewModalController(NewFetchGate())
	assert.ErrorIs(t, m.SetContent("x"), ErrInvalidTransition)

	openWith(t, m, ModalViewing, entity.ConfigEntry{Group: "g", DataID: "x"})
	assert.ErrorIs(t, m.SetContent("x"), ErrInvalidTransition)
	assert.ErrorIs(t, m.SetType(entity.TypeJSON), ErrInvalidTransition)

	openWith(t, m, ModalEditing, entity.ConfigEntry{Group: "g", DataID: "x"})
	assert.NoError(t, m.SetDescription("d"))
	assert.NoError(t, m.SetType(entity.TypeJSON))
	assert.ErrorIs(t, m.SetDataID("other"), ErrInvalidTransition)
	assert.ErrorIs(t, m.SetGroup("other"), ErrInvalidTransition)

	m.OpenCreate("public", "g")
	assert.NoError(t, m.SetGroup("g2"))
	assert.NoError(t, m.SetDataID("new.yaml"))
	assert.Equal(t, entity.ConfigKey{Namespace: "public", Group: "g2", DataID: "new.yaml"}, m.Entry().Key())
}

func TestModalSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		group  string
		dataID string
		field  string
	}{
		{"empty dataId", "g1", "", "dataId"},
		{"blank dataId", "g1", "   ", "dataId"},
		{"empty group", "", "x", "group"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModalController(NewFetchGate())
			m.OpenCreate("public", tt.group)
			require.NoError(t, m.SetDataID(tt.dataID))

			_, err := m.BeginSubmit()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, ModalCreating, m.Mode())
			assert.False(t, m.Submitting())
		})
	}
}

func TestModalSubmitFromClosedOrViewing(t *testing.T) {
	m := NewModalController(NewFetchGate())
	_, err := m.BeginSubmit()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	openWith(t, m, ModalViewing, entity.ConfigEntry{Group: "g", DataID: "x"})
	_, err = m.BeginSubmit()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestModalSubmitLifecycle(t *testing.T) {
	m := NewModalController(NewFetchGate())
	m.OpenCreate("public", "g1")
	require.NoError(t, m.SetDataID(" new.yaml "))
	require.NoError(t, m.SetType(""))

	req, err := m.BeginSubmit()
	require.NoError(t, err)
	assert.Equal(t, ModalCreating, req.Mode)
	assert.Equal(t, "new.yaml", req.Entry.DataID)
	assert.Equal(t, entity.TypeText, req.Entry.Type)
	assert.True(t, m.Submitting())

	_, err = m.BeginSubmit()
	assert.ErrorIs(t, err, ErrBusy)

	// Failure keeps the draft for a retry.
	refresh, err := m.ApplySubmit(SubmitResult{Request: req, Err: port.ErrAlreadyExists})
	assert.False(t, refresh)
	var se *SubmitError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, port.ErrAlreadyExists)
	assert.Equal(t, ModalCreating, m.Mode())
	assert.Equal(t, " new.yaml ", m.Entry().DataID)
	assert.False(t, m.Submitting())

	req, err = m.BeginSubmit()
	require.NoError(t, err)
	refresh, err = m.ApplySubmit(SubmitResult{Request: req})
	require.NoError(t, err)
	assert.True(t, refresh)
	assert.Equal(t, ModalClosed, m.Mode())
}

func TestModalSubmitAfterClose(t *testing.T) {
	m := NewModalController(NewFetchGate())
	m.OpenCreate("public", "g1")
	require.NoError(t, m.SetDataID("x"))
	req, err := m.BeginSubmit()
	require.NoError(t, err)
	m.Close()

	_, err = m.ApplySubmit(SubmitResult{Request: req, Err: errors.New("boom")})
	assert.ErrorIs(t, err, ErrStaleResponse)

	m.OpenCreate("public", "g2")
	refresh, err := m.ApplySubmit(SubmitResult{Request: req})
	require.NoError(t, err)
	assert.True(t, refresh, "the write landed, so the list still changed")
	assert.Equal(t, ModalCreating, m.Mode(), "a newer draft is left alone")
	assert.Equal(t, "g2", m.Entry().Group)
}

func TestModalModeString(t *testing.T) {
	assert.Equal(t, "closed", ModalClosed.String())
	assert.Equal(t, "viewing", ModalViewing.String())
	assert.Equal(t, "editing", ModalEditing.String())
	assert.Equal(t, "creating", ModalCreating.String())
}
