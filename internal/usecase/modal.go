package usecase

import (
	"strings"

	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/domain/port"
)

// ModalMode is the state of the entry modal.
type ModalMode int

// Modal states. Exactly one is active at a time.
const (
	ModalClosed ModalMode = iota
	ModalViewing
	ModalEditing
	ModalCreating
)

func (m ModalMode) String() string {
	switch m {
	case ModalViewing:
		return "viewing"
	case ModalEditing:
		return "editing"
	case ModalCreating:
		return "creating"
	default:
		return "closed"
	}
}

// DetailRequest asks for one entry to be loaded into the modal.
type DetailRequest struct {
	Ticket Ticket
	Mode   ModalMode
	Key    entity.ConfigKey
}

// DetailResult carries the response to a DetailRequest.
type DetailResult struct {
	Request DetailRequest
	Entry   *entity.ConfigEntry
	Err     error
}

// SubmitRequest carries a validated draft to be written.
type SubmitRequest struct {
	Ticket Ticket
	Mode   ModalMode
	Entry  entity.ConfigEntry
}

// SubmitResult carries the response to a SubmitRequest.
type SubmitResult struct {
	Request SubmitRequest
	Err     error
}

// ModalController owns the view/edit/create lifecycle and the working copy
// of the entry on screen.
type ModalController struct {
	gate    *FetchGate
	mode    ModalMode
	entry   entity.ConfigEntry
	pending *DetailRequest
}

// NewModalController returns a closed modal that issues tickets from gate.
func NewModalController(gate *FetchGate) *ModalController {
	return &ModalController{gate: gate}
}

// Mode returns the active state.
func (m *ModalController) Mode() ModalMode { return m.mode }

// IsOpen reports whether any mode other than closed is active.
func (m *ModalController) IsOpen() bool { return m.mode != ModalClosed }

// Entry returns a copy of the working copy. It is the zero entry when closed.
func (m *ModalController) Entry() entity.ConfigEntry { return m.entry.Clone() }

// Pending returns the detail request awaiting a response, if any.
func (m *ModalController) Pending() (DetailRequest, bool) {
	if m.pending == nil {
		return DetailRequest{}, false
	}
	return *m.pending, true
}

// Submitting reports whether a write is in flight.
func (m *ModalController) Submitting() bool {
	return m.gate.Loading(ClassSubmit)
}

// BeginOpen starts loading key for viewing or editing. The modal is closed
// and emptied immediately so nothing from a previous entry stays visible
// while the request is outstanding.
func (m *ModalController) BeginOpen(mode ModalMode, key entity.ConfigKey) (DetailRequest, error) {
	if mode != ModalViewing && mode != ModalEditing {
		return DetailRequest{}, ErrInvalidTransition
	}
	if key.Group == "" || key.DataID == "" {
		return DetailRequest{}, &ValidationError{Field: "key", Message: "requires group and dataId"}
	}

	m.reset()
	req := DetailRequest{
		Ticket: m.gate.Begin(ClassDetail),
		Mode:   mode,
		Key:    key,
	}
	m.pending = &req
	return req, nil
}

// ApplyDetail opens the modal with the fetched entry. A response for a
// superseded request is dropped with ErrStaleResponse; a failed one leaves
// the modal closed.
func (m *ModalController) ApplyDetail(res DetailResult) error {
	if !m.gate.End(res.Request.Ticket) {
		return ErrStaleResponse
	}
	m.pending = nil

	if res.Err != nil {
		return &FetchError{Op: "get config " + res.Request.Key.String(), Err: classify(res.Err)}
	}
	if res.Entry == nil {
		return &FetchError{Op: "get config " + res.Request.Key.String(), Err: port.ErrNotFound}
	}

	entry := res.Entry.Clone()
	if entry.Namespace == "" {
		entry.Namespace = res.Request.Key.Namespace
	}
	if entry.Group == "" {
		entry.Group = res.Request.Key.Group
	}
	if entry.DataID == "" {
		entry.DataID = res.Request.Key.DataID
	}

	m.mode = res.Request.Mode
	m.entry = entry
	return nil
}

// OpenCreate opens an empty draft in group. No request is issued.
func (m *ModalController) OpenCreate(namespace, group string) {
	m.reset()
	m.mode = ModalCreating
	m.entry = entity.ConfigEntry{
		Namespace: namespace,
		Group:     group,
		Type:      entity.DefaultDraftType,
	}
}

// Close discards the working copy and any outstanding modal request.
func (m *ModalController) Close() {
	m.reset()
}

func (m *ModalController) reset() {
	m.gate.Invalidate(ClassDetail)
	m.gate.Invalidate(ClassSubmit)
	m.mode = ModalClosed
	m.entry = entity.ConfigEntry{}
	m.pending = nil
}

func (m *ModalController) editable() error {
	if m.mode != ModalEditing && m.mode != ModalCreating {
		return ErrInvalidTransition
	}
	return nil
}

// SetContent replaces the draft content.
func (m *ModalController) SetContent(content string) error {
	if err := m.editable(); err != nil {
		return err
	}
	m.entry.Content = content
	return nil
}

// SetDescription replaces the draft description.
func (m *ModalController) SetDescription(desc string) error {
	if err := m.editable(); err != nil {
		return err
	}
	m.entry.Description = desc
	return nil
}

// SetType replaces the draft format.
func (m *ModalController) SetType(t entity.ConfigType) error {
	if err := m.editable(); err != nil {
		return err
	}
	m.entry.Type = t
	return nil
}

// SetGroup changes the target group of a new entry.
func (m *ModalController) SetGroup(group string) error {
	if m.mode != ModalCreating {
		return ErrInvalidTransition
	}
	m.entry.Group = group
	return nil
}

// SetDataID changes the dataId of a new entry.
func (m *ModalController) SetDataID(dataID string) error {
	if m.mode != ModalCreating {
		return ErrInvalidTransition
	}
	m.entry.DataID = dataID
	return nil
}

// BeginSubmit validates the draft and returns the write to perform.
// Validation failures issue nothing and leave the modal as it was.
func (m *ModalController) BeginSubmit() (SubmitRequest, error) {
	if err := m.editable(); err != nil {
		return SubmitRequest{}, err
	}
	if m.gate.Loading(ClassSubmit) {
		return SubmitRequest{}, ErrBusy
	}

	entry := m.entry.Clone()
	entry.Group = strings.TrimSpace(entry.Group)
	entry.DataID = strings.TrimSpace(entry.DataID)
	if entry.Group == "" {
		return SubmitRequest{}, &ValidationError{Field: "group", Message: "is required"}
	}
	if entry.DataID == "" {
		return SubmitRequest{}, &ValidationError{Field: "dataId", Message: "is required"}
	}
	entry.Type = entry.Type.Normalize()

	return SubmitRequest{
		Ticket: m.gate.Begin(ClassSubmit),
		Mode:   m.mode,
		Entry:  entry,
	}, nil
}

// ApplySubmit settles a write. On success the modal closes and refresh is
// true. A write that succeeded after the modal moved on still reports
// refresh, since the listing changed; a failure for a discarded draft is
// dropped with ErrStaleResponse.
func (m *ModalController) ApplySubmit(res SubmitResult) (refresh bool, err error) {
	current := m.gate.End(res.Request.Ticket)

	if res.Err != nil {
		if !current {
			return false, ErrStaleResponse
		}
		return false, &SubmitError{Mode: res.Request.Mode, Key: res.Request.Entry.Key(), Err: classify(res.Err)}
	}

	if current {
		m.mode = ModalClosed
		m.entry = entity.ConfigEntry{}
		m.pending = nil
	}
	return true, nil
}
