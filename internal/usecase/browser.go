package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/domain/port"
)

// DefaultRequestTimeout bounds every remote call made by a browser.
const DefaultRequestTimeout = 15 * time.Second

// GroupsRequest asks for the group list of the browsed namespace.
type GroupsRequest struct {
	Ticket    Ticket
	Namespace string
}

// GroupsResult carries the response to a GroupsRequest.
type GroupsResult struct {
	Request GroupsRequest
	Groups  []string
	Err     error
}

// ConfigsRequest asks for one page of a group's entries.
type ConfigsRequest struct {
	Ticket    Ticket
	Namespace string
	Key       PageKey
}

// ConfigsResult carries the response to a ConfigsRequest.
type ConfigsResult struct {
	Request ConfigsRequest
	Page    *entity.Page[entity.ConfigEntry]
	Err     error
}

// Option configures a NamespaceBrowser.
type Option func(*NamespaceBrowser)

// WithLogger sets the browser's logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *NamespaceBrowser) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithPageSize sets the initial page size.
func WithPageSize(n int) Option {
	return func(b *NamespaceBrowser) {
		if n > 0 {
			b.pageSize = n
		}
	}
}

// WithRequestTimeout bounds each remote call. Non-positive values keep the
// default.
func WithRequestTimeout(d time.Duration) Option {
	return func(b *NamespaceBrowser) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// NamespaceBrowser is the controller for one namespace-browsing session.
//
// State changes happen through Select/Set/GoTo/Open methods, which return
// typed requests. Fetch* and ExecuteSubmit only perform I/O against fields
// fixed at construction, so callers may run them on another goroutine.
// Apply* must run on the same goroutine as the state-changing methods; they
// drop results whose request has been superseded.
type NamespaceBrowser struct {
	store     port.ConfigStore
	namespace string
	timeout   time.Duration
	pageSize  int
	logger    *zap.Logger

	gate       *FetchGate
	pagination *PaginationState
	modal      *ModalController
	groups     []string
}

// NewNamespaceBrowser creates a browser for namespace.
func NewNamespaceBrowser(store port.ConfigStore, namespace string, opts ...Option) (*NamespaceBrowser, error) {
	if store == nil {
		return nil, errors.New("config store is required")
	}
	if namespace == "" {
		return nil, &ValidationError{Field: "namespace", Message: "is required"}
	}

	b := &NamespaceBrowser{
		store:     store,
		namespace: namespace,
		timeout:   DefaultRequestTimeout,
		pageSize:  DefaultPageSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.logger = b.logger.With(zap.String("namespace", namespace))
	b.gate = NewFetchGate()
	b.pagination = NewPaginationState(b.pageSize)
	b.modal = NewModalController(b.gate)
	return b, nil
}

// Namespace returns the browsed namespace id.
func (b *NamespaceBrowser) Namespace() string { return b.namespace }

// Pagination exposes the paging state for rendering.
func (b *NamespaceBrowser) Pagination() *PaginationState { return b.pagination }

// Modal exposes the entry modal.
func (b *NamespaceBrowser) Modal() *ModalController { return b.modal }

// Gate exposes the loading flags.
func (b *NamespaceBrowser) Gate() *FetchGate { return b.gate }

// Groups returns a copy of the last loaded group list.
func (b *NamespaceBrowser) Groups() []string {
	return append([]string(nil), b.groups...)
}

// PageStrip returns the page strip for the current position.
func (b *NamespaceBrowser) PageStrip() []PageItem {
	return PageRange(b.pagination.CurrentPage(), b.pagination.TotalPages(), DefaultDelta)
}

func (b *NamespaceBrowser) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, b.timeout)
}

// ─── Groups ─────────────────────────────────────────────────────────────────

// LoadGroupsRequest starts a group list reload.
func (b *NamespaceBrowser) LoadGroupsRequest() GroupsRequest {
	return GroupsRequest{Ticket: b.gate.Begin(ClassGroups), Namespace: b.namespace}
}

// FetchGroups performs a GroupsRequest.
func (b *NamespaceBrowser) FetchGroups(ctx context.Context, req GroupsRequest) GroupsResult {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	groups, err := b.store.ListGroups(ctx, req.Namespace)
	return GroupsResult{Request: req, Groups: groups, Err: err}
}

// ApplyGroups stores a fetched group list. On failure the previous list is
// kept.
func (b *NamespaceBrowser) ApplyGroups(res GroupsResult) error {
	if !b.gate.End(res.Request.Ticket) {
		b.logger.Debug("dropping stale groups response")
		return ErrStaleResponse
	}
	if res.Err != nil {
		b.logger.Warn("failed to list groups", zap.Error(res.Err))
		return &FetchError{Op: "list groups", Err: classify(res.Err)}
	}
	b.groups = append([]string{}, res.Groups...)
	return nil
}

// ─── Configs ────────────────────────────────────────────────────────────────

// SelectGroup switches to group and requests its first page.
func (b *NamespaceBrowser) SelectGroup(group string) (ConfigsRequest, error) {
	b.pagination.SetGroup(group)
	return b.configsRequest()
}

// SetFilter applies a dataId filter and requests page 1.
func (b *NamespaceBrowser) SetFilter(dataID string) (ConfigsRequest, error) {
	b.pagination.SetFilter(dataID)
	return b.configsRequest()
}

// SetPageSize changes the page size and requests page 1.
func (b *NamespaceBrowser) SetPageSize(n int) (ConfigsRequest, error) {
	if err := b.pagination.SetPageSize(n); err != nil {
		return ConfigsRequest{}, err
	}
	return b.configsRequest()
}

// GoToPage requests page without touching group or filter. Pages outside
// [1, totalPages] return ErrPageOutOfRange and change nothing.
func (b *NamespaceBrowser) GoToPage(page int) (ConfigsRequest, error) {
	if !b.pagination.GoToPage(page) {
		return ConfigsRequest{}, ErrPageOutOfRange
	}
	return b.configsRequest()
}

// NextPage requests the page after the current one.
func (b *NamespaceBrowser) NextPage() (ConfigsRequest, error) {
	return b.GoToPage(b.pagination.CurrentPage() + 1)
}

// PrevPage requests the page before the current one.
func (b *NamespaceBrowser) PrevPage() (ConfigsRequest, error) {
	return b.GoToPage(b.pagination.CurrentPage() - 1)
}

// Refresh requests the current page again.
func (b *NamespaceBrowser) Refresh() (ConfigsRequest, error) {
	return b.configsRequest()
}

func (b *NamespaceBrowser) configsRequest() (ConfigsRequest, error) {
	key := b.pagination.Key()
	ticket, err := b.gate.BeginConfigs(key)
	if err != nil {
		// Whatever was in flight belongs to a previous selection.
		b.gate.Invalidate(ClassConfigs)
		return ConfigsRequest{}, err
	}
	return ConfigsRequest{Ticket: ticket, Namespace: b.namespace, Key: key}, nil
}

// FetchConfigs performs a ConfigsRequest.
func (b *NamespaceBrowser) FetchConfigs(ctx context.Context, req ConfigsRequest) ConfigsResult {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	page, err := b.store.ListConfigs(ctx, req.Namespace, req.Key.Group, port.ListOptions{
		DataID:   req.Key.Filter,
		PageNo:   req.Key.Page,
		PageSize: req.Key.PageSize,
	})
	return ConfigsResult{Request: req, Page: page, Err: err}
}

// ApplyConfigs shows a fetched page. If the new totals leave the current
// page past the end, the page is clamped and a follow-up request for it is
// returned; the caller must issue it.
func (b *NamespaceBrowser) ApplyConfigs(res ConfigsResult) (*ConfigsRequest, error) {
	if !b.gate.End(res.Request.Ticket) || res.Request.Key != b.pagination.Key() {
		b.logger.Debug("dropping stale configs response",
			zap.String("group", res.Request.Key.Group),
			zap.Int("page", res.Request.Key.Page))
		return nil, ErrStaleResponse
	}
	if res.Err != nil {
		b.logger.Warn("failed to list configs", zap.String("group", res.Request.Key.Group), zap.Error(res.Err))
		return nil, &FetchError{Op: "list configs", Err: classify(res.Err)}
	}
	if res.Page == nil {
		return nil, &FetchError{Op: "list configs", Err: errors.New("empty response")}
	}

	b.pagination.ApplyPage(*res.Page)
	b.logger.Debug("configs page applied",
		zap.String("group", res.Request.Key.Group),
		zap.Int("page", res.Request.Key.Page),
		zap.Int("items", len(res.Page.Items)),
		zap.Int("total", res.Page.TotalCount))

	if b.pagination.NeedsClamp() {
		b.pagination.Clamp()
		next, err := b.configsRequest()
		if err != nil {
			return nil, err
		}
		return &next, nil
	}
	return nil, nil
}

// ─── Modal ──────────────────────────────────────────────────────────────────

// OpenView starts loading key for read-only display.
func (b *NamespaceBrowser) OpenView(key entity.ConfigKey) (DetailRequest, error) {
	return b.modal.BeginOpen(ModalViewing, b.qualify(key))
}

// OpenEdit starts loading key for editing.
func (b *NamespaceBrowser) OpenEdit(key entity.ConfigKey) (DetailRequest, error) {
	return b.modal.BeginOpen(ModalEditing, b.qualify(key))
}

func (b *NamespaceBrowser) qualify(key entity.ConfigKey) entity.ConfigKey {
	if key.Namespace == "" {
		key.Namespace = b.namespace
	}
	return key
}

// FetchDetail performs a DetailRequest.
func (b *NamespaceBrowser) FetchDetail(ctx context.Context, req DetailRequest) DetailResult {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	entry, err := b.store.GetConfig(ctx, req.Key)
	return DetailResult{Request: req, Entry: entry, Err: err}
}

// ApplyDetail opens the modal with a fetched entry.
func (b *NamespaceBrowser) ApplyDetail(res DetailResult) error {
	err := b.modal.ApplyDetail(res)
	if err != nil && !errors.Is(err, ErrStaleResponse) {
		b.logger.Warn("failed to load config", zap.String("key", res.Request.Key.String()), zap.Error(err))
	}
	return err
}

// OpenCreate opens a new draft in the selected group.
func (b *NamespaceBrowser) OpenCreate() {
	b.modal.OpenCreate(b.namespace, b.pagination.SelectedGroup())
}

// Close closes the modal, discarding the draft.
func (b *NamespaceBrowser) Close() {
	b.modal.Close()
}

// BeginSubmit validates the draft and returns the write to perform.
func (b *NamespaceBrowser) BeginSubmit() (SubmitRequest, error) {
	return b.modal.BeginSubmit()
}

// ExecuteSubmit performs a SubmitRequest: an update when editing, a create
// otherwise.
func (b *NamespaceBrowser) ExecuteSubmit(ctx context.Context, req SubmitRequest) SubmitResult {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	var err error
	if req.Mode == ModalEditing {
		err = b.store.UpdateConfig(ctx, req.Entry)
	} else {
		err = b.store.CreateConfig(ctx, req.Entry)
	}
	return SubmitResult{Request: req, Err: err}
}

// ApplySubmit settles a write. After a successful write it returns a request
// that reloads the current page, keeping the operator's position.
func (b *NamespaceBrowser) ApplySubmit(res SubmitResult) (*ConfigsRequest, error) {
	refresh, err := b.modal.ApplySubmit(res)
	if err != nil {
		if !errors.Is(err, ErrStaleResponse) {
			b.logger.Warn("failed to save config", zap.String("key", res.Request.Entry.Key().String()), zap.Error(err))
		}
		return nil, err
	}
	b.logger.Info("config saved",
		zap.String("key", res.Request.Entry.Key().String()),
		zap.Stringer("mode", res.Request.Mode))

	if !refresh || b.pagination.SelectedGroup() == "" {
		return nil, nil
	}
	next, err := b.Refresh()
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// ─── Synchronous helpers ────────────────────────────────────────────────────

// LoadGroups reloads the group list inline.
func (b *NamespaceBrowser) LoadGroups(ctx context.Context) error {
	return b.ApplyGroups(b.FetchGroups(ctx, b.LoadGroupsRequest()))
}

// LoadConfigs performs req inline, following clamp re-fetches.
func (b *NamespaceBrowser) LoadConfigs(ctx context.Context, req ConfigsRequest) error {
	for {
		next, err := b.ApplyConfigs(b.FetchConfigs(ctx, req))
		if err != nil || next == nil {
			return err
		}
		req = *next
	}
}

// LoadDetail performs req inline.
func (b *NamespaceBrowser) LoadDetail(ctx context.Context, req DetailRequest) error {
	return b.ApplyDetail(b.FetchDetail(ctx, req))
}

// Submit writes the draft inline and reloads the current page on success.
func (b *NamespaceBrowser) Submit(ctx context.Context) error {
	req, err := b.BeginSubmit()
	if err != nil {
		return err
	}
	next, err := b.ApplySubmit(b.ExecuteSubmit(ctx, req))
	if err != nil || next == nil {
		return err
	}
	return b.LoadConfigs(ctx, *next)
}
