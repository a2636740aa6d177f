package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/domain/port"
)

var _ port.ConfigStore = (*NacosStore)(nil)

const (
	nacosNamespacesPath = "/nacos/v1/console/namespaces"
	nacosConfigsPath    = "/nacos/v1/cs/configs"

	// PublicNamespace is the show name of Nacos' default namespace, whose
	// tenant id is empty.
	PublicNamespace = "public"

	nacosScanPageSize = 100
)

// NacosStore speaks the Nacos open API directly.
type NacosStore struct {
	doer *httpDoer
}

// NewNacosStore creates a store for the Nacos server at baseURL.
func NewNacosStore(baseURL string, opts ...APIOption) (*NacosStore, error) {
	doer, err := newHTTPDoer(baseURL, nil, nil)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(doer)
	}
	doer.logger = doer.logger.With(zap.String("backend", "nacos"))
	return &NacosStore{doer: doer}, nil
}

// tenant maps a namespace id onto the Nacos tenant parameter.
func tenant(namespace string) string {
	if namespace == PublicNamespace {
		return ""
	}
	return namespace
}

type nacosPage struct {
	TotalCount     int         `json:"totalCount"`
	PageNumber     int         `json:"pageNumber"`
	PagesAvailable int         `json:"pagesAvailable"`
	PageItems      []apiConfig `json:"pageItems"`
}

// ListNamespaces returns every namespace, the public one included.
func (s *NacosStore) ListNamespaces(ctx context.Context) ([]entity.Namespace, error) {
	data, err := s.doer.do(ctx, http.MethodGet, nacosNamespacesPath, nil, nil, "")
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

func (s *NacosStore) namespaceExists(ctx context.Context, id string) (bool, error) {
	if id == PublicNamespace {
		return true, nil
	}
	namespaces, err := s.ListNamespaces(ctx)
	if err != nil {
		return false, err
	}
	for _, ns := range namespaces {
		if ns.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// UpsertNamespace creates the namespace with id and show name set to name,
// or updates its description when it exists.
func (s *NacosStore) UpsertNamespace(ctx context.Context, name, description string) error {
	exists, err := s.namespaceExists(ctx, name)
	if err != nil {
		return err
	}

	form := url.Values{}
	method := http.MethodPost
	if exists {
		method = http.MethodPut
		form.Set("namespace", tenant(name))
		form.Set("namespaceShowName", name)
	} else {
		form.Set("customNamespaceId", name)
		form.Set("namespaceName", name)
	}
	form.Set("namespaceDesc", description)

	if _, err := s.doer.do(ctx, method, nacosNamespacesPath, nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded"); err != nil {
		return fmt.Errorf("saving namespace %s: %w", name, err)
	}
	return nil
}

func (s *NacosStore) searchConfigs(ctx context.Context, query url.Values) (*nacosPage, error) {
	data, err := s.doer.do(ctx, http.MethodGet, nacosConfigsPath, query, nil, "")
	if err != nil {
		return nil, err
	}
	var page nacosPage
	if err := decodeJSON(data, &page, "config page"); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListGroups pages through every entry of namespace and returns the
// distinct groups, sorted.
func (s *NacosStore) ListGroups(ctx context.Context, namespace string) ([]string, error) {
	seen := map[string]bool{}
	for pageNo := 1; ; pageNo++ {
		query := url.Values{}
		query.Set("search", "accurate")
		query.Set("dataId", "")
		query.Set("group", "")
		query.Set("tenant", tenant(namespace))
		query.Set("pageNo", strconv.Itoa(pageNo))
		query.Set("pageSize", strconv.Itoa(nacosScanPageSize))

		page, err := s.searchConfigs(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("listing groups of %s: %w", namespace, err)
		}
		for _, item := range page.PageItems {
			seen[item.Group] = true
		}
		if len(page.PageItems) == 0 || pageNo >= page.PagesAvailable {
			break
		}
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups, nil
}

// ListConfigs returns one page of a group. A non-empty DataID filter is a
// substring match.
func (s *NacosStore) ListConfigs(ctx context.Context, namespace, group string, opts port.ListOptions) (*entity.Page[entity.ConfigEntry], error) {
	query := url.Values{}
	if opts.DataID != "" {
		query.Set("search", "blur")
		query.Set("dataId", "*"+opts.DataID+"*")
	} else {
		query.Set("search", "accurate")
		query.Set("dataId", "")
	}
	query.Set("group", group)
	query.Set("tenant", tenant(namespace))
	query.Set("pageNo", strconv.Itoa(max(1, opts.PageNo)))
	if opts.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(opts.PageSize))
	}

	resp, err := s.searchConfigs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing configs of %s/%s: %w", namespace, group, err)
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

// GetConfig fetches one entry with its metadata.
func (s *NacosStore) GetConfig(ctx context.Context, key entity.ConfigKey) (*entity.ConfigEntry, error) {
	query := url.Values{}
	query.Set("dataId", key.DataID)
	query.Set("group", key.Group)
	query.Set("tenant", tenant(key.Namespace))
	query.Set("show", "all")

	data, err := s.doer.do(ctx, http.MethodGet, nacosConfigsPath, query, nil, "")
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

func (s *NacosStore) publish(ctx context.Context, entry entity.ConfigEntry) error {
	form := url.Values{}
	form.Set("dataId", entry.DataID)
	form.Set("group", entry.Group)
	form.Set("tenant", tenant(entry.Namespace))
	form.Set("content", entry.Content)
	form.Set("type", string(entry.Type))
	form.Set("desc", entry.Description)

	data, err := s.doer.do(ctx, http.MethodPost, nacosConfigsPath, nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(data)) != "true" {
		return &APIError{StatusCode: http.StatusOK, Message: "publish rejected: " + errorMessage(data)}
	}
	return nil
}

// CreateConfig publishes a new entry, creating its namespace first when it
// does not exist yet.
func (s *NacosStore) CreateConfig(ctx context.Context, entry entity.ConfigEntry) error {
	key := entry.Key()
	_, err := s.GetConfig(ctx, key)
	switch {
	case err == nil:
		return fmt.Errorf("config %s: %w", key, port.ErrAlreadyExists)
	case !isNotFound(err):
		return err
	}

	exists, err := s.namespaceExists(ctx, entry.Namespace)
	if err != nil {
		return err
	}
	if !exists {
		s.doer.logger.Info("creating missing namespace", zap.String("namespace", entry.Namespace))
		if err := s.UpsertNamespace(ctx, entry.Namespace, ""); err != nil {
			return err
		}
	}

	if err := s.publish(ctx, entry); err != nil {
		return fmt.Errorf("creating config %s: %w", key, err)
	}
	return nil
}

// UpdateConfig republishes an existing entry. A missing key is ErrNotFound.
func (s *NacosStore) UpdateConfig(ctx context.Context, entry entity.ConfigEntry) error {
	if _, err := s.GetConfig(ctx, entry.Key()); err != nil {
		return err
	}
	if err := s.publish(ctx, entry); err != nil {
		return fmt.Errorf("updating config %s: %w", entry.Key(), err)
	}
	return nil
}
