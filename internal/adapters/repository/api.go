// Package repository implements port.ConfigStore against the supported
// configuration backends: the confnav HTTP API, a Nacos server, and
// Kubernetes ConfigMaps.
package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/domain/port"
)

var _ port.ConfigStore = (*APIClient)(nil)

// APIClient talks to a configuration service exposing the /api/namespaces
// routes.
type APIClient struct {
	doer *httpDoer
}

// APIOption configures an APIClient.
type APIOption func(*httpDoer)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) APIOption {
	return func(d *httpDoer) {
		if c != nil {
			d.http = c
		}
	}
}

// WithBasicAuth sends credentials with every request.
func WithBasicAuth(username, password string) APIOption {
	return func(d *httpDoer) {
		d.username = username
		d.password = password
	}
}

// WithHTTPLogger sets the request logger.
func WithHTTPLogger(l *zap.Logger) APIOption {
	return func(d *httpDoer) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewAPIClient creates a client for the service at baseURL.
func NewAPIClient(baseURL string, opts ...APIOption) (*APIClient, error) {
	doer, err := newHTTPDoer(baseURL, nil, nil)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(doer)
	}
	doer.logger = doer.logger.With(zap.String("backend", "api"))
	return &APIClient{doer: doer}, nil
}

type apiNamespace struct {
	ID          string `json:"id"`
	ShowName    string `json:"showName"`
	Desc        string `json:"desc"`
	ConfigCount int    `json:"configCount"`

	// Passed through unchanged by servers fronting Nacos.
	NacosID       string `json:"namespace"`
	NacosShowName string `json:"namespaceShowName"`
	NacosDesc     string `json:"namespaceDesc"`
}

func (n apiNamespace) toEntity() entity.Namespace {
	ns := entity.Namespace{
		ID:          firstNonEmpty(n.ID, n.NacosID),
		ShowName:    firstNonEmpty(n.ShowName, n.NacosShowName),
		Description: firstNonEmpty(n.Desc, n.NacosDesc),
		ConfigCount: n.ConfigCount,
	}
	if ns.ID == "" {
		// The default namespace is reported with an empty id.
		ns.ID = ns.ShowName
	}
	return ns
}

type apiConfig struct {
	Namespace string `json:"tenant"`
	Group     string `json:"group"`
	DataID    string `json:"dataId"`
	Content   string `json:"content"`
	Desc      string `json:"desc"`
	Type      string `json:"type"`
}

func (c apiConfig) toEntity(key entity.ConfigKey) entity.ConfigEntry {
	return entity.ConfigEntry{
		Namespace:   firstNonEmpty(key.Namespace, c.Namespace),
		Group:       firstNonEmpty(c.Group, key.Group),
		DataID:      firstNonEmpty(c.DataID, key.DataID),
		Content:     c.Content,
		Description: c.Desc,
		Type:        entity.ConfigType(c.Type),
	}
}

type apiPage struct {
	PageItems      []apiConfig `json:"pageItems"`
	TotalCount     int         `json:"totalCount"`
	PagesAvailable int         `json:"pagesAvailable"`
	PageNumber     int         `json:"pageNumber"`
}

type apiConfigBody struct {
	Content string `json:"content"`
	Desc    string `json:"desc"`
	Type    string `json:"type"`
}

func configPath(key entity.ConfigKey) string {
	return fmt.Sprintf("/api/namespaces/%s/groups/%s/data_ids/%s",
		url.PathEscape(key.Namespace), url.PathEscape(key.Group), url.PathEscape(key.DataID))
}

// ListNamespaces returns every namespace.
func (c *APIClient) ListNamespaces(ctx context.Context) ([]entity.Namespace, error) {
	data, err := c.doer.do(ctx, http.MethodGet, "/api/namespaces", nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}

	var resp struct {
		Data []apiNamespace `json:"data"`
	}
	if err := decodeJSON(data, &resp, "namespaces"); err != nil {
		return nil, err
	}

	out := make([]entity.Namespace, 0, len(resp.Data))
	for _, n := range resp.Data {
		out = append(out, n.toEntity())
	}
	return out, nil
}

// UpsertNamespace creates or updates a namespace.
func (c *APIClient) UpsertNamespace(ctx context.Context, name, description string) error {
	body := map[string]string{"namespace_name": name, "namespace_desc": description}
	if _, err := c.doer.do(ctx, http.MethodPost, "/api/namespaces", nil, body, ""); err != nil {
		return fmt.Errorf("saving namespace %s: %w", name, err)
	}
	return nil
}

// ListGroups returns the groups of namespace.
func (c *APIClient) ListGroups(ctx context.Context, namespace string) ([]string, error) {
	path := fmt.Sprintf("/api/namespaces/%s/groups", url.PathEscape(namespace))
	data, err := c.doer.do(ctx, http.MethodGet, path, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("listing groups of %s: %w", namespace, err)
	}

	groups := []string{}
	if err := decodeJSON(data, &groups, "groups"); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListConfigs returns one page of a group's entries.
func (c *APIClient) ListConfigs(ctx context.Context, namespace, group string, opts port.ListOptions) (*entity.Page[entity.ConfigEntry], error) {
	path := fmt.Sprintf("/api/namespaces/%s/groups/%s/data_ids", url.PathEscape(namespace), url.PathEscape(group))
	query := url.Values{}
	query.Set("dataId", opts.DataID)
	query.Set("pageNo", strconv.Itoa(max(1, opts.PageNo)))
	if opts.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(opts.PageSize))
	}

	data, err := c.doer.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, fmt.Errorf("listing configs of %s/%s: %w", namespace, group, err)
	}

	var resp apiPage
	if err := decodeJSON(data, &resp, "config page"); err != nil {
		return nil, err
	}

	key := entity.ConfigKey{Namespace: namespace, Group: group}
	page := &entity.Page[entity.ConfigEntry]{
		Items:          make([]entity.ConfigEntry, 0, len(resp.PageItems)),
		TotalCount:     max(0, resp.TotalCount),
		PagesAvailable: max(1, resp.PagesAvailable),
		PageNumber:     resp.PageNumber,
	}
	for _, item := range resp.PageItems {
		page.Items = append(page.Items, item.toEntity(key))
	}
	return page, nil
}

// GetConfig returns one entry. A blank body is reported as not found.
func (c *APIClient) GetConfig(ctx context.Context, key entity.ConfigKey) (*entity.ConfigEntry, error) {
	data, err := c.doer.do(ctx, http.MethodGet, configPath(key), nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("getting config %s: %w", key, err)
	}
	if isBlank(data) {
		return nil, fmt.Errorf("config %s: %w", key, port.ErrNotFound)
	}

	var resp apiConfig
	if err := decodeJSON(data, &resp, "config"); err != nil {
		return nil, err
	}
	entry := resp.toEntity(key)
	return &entry, nil
}

// CreateConfig publishes a new entry. The service's POST also overwrites,
// so an existing key is refused before sending.
func (c *APIClient) CreateConfig(ctx context.Context, entry entity.ConfigEntry) error {
	if err := c.ensureAbsent(ctx, entry.Key()); err != nil {
		return err
	}
	body := apiConfigBody{Content: entry.Content, Desc: entry.Description, Type: string(entry.Type)}
	if _, err := c.doer.do(ctx, http.MethodPost, configPath(entry.Key()), nil, body, ""); err != nil {
		return fmt.Errorf("creating config %s: %w", entry.Key(), err)
	}
	return nil
}

// UpdateConfig replaces an existing entry. A missing key is ErrNotFound;
// it is never created.
func (c *APIClient) UpdateConfig(ctx context.Context, entry entity.ConfigEntry) error {
	if _, err := c.GetConfig(ctx, entry.Key()); err != nil {
		return err
	}
	body := apiConfigBody{Content: entry.Content, Desc: entry.Description, Type: string(entry.Type)}
	if _, err := c.doer.do(ctx, http.MethodPut, configPath(entry.Key()), nil, body, ""); err != nil {
		return fmt.Errorf("updating config %s: %w", entry.Key(), err)
	}
	return nil
}

func (c *APIClient) ensureAbsent(ctx context.Context, key entity.ConfigKey) error {
	_, err := c.GetConfig(ctx, key)
	switch {
	case err == nil:
		return fmt.Errorf("config %s: %w", key, port.ErrAlreadyExists)
	case isNotFound(err):
		return nil
	default:
		return err
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
