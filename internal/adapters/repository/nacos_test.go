package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/domain/port"
)

// fakeNacos implements the subset of the Nacos open API NacosStore uses.
type fakeNacos struct {
	mu         sync.Mutex
	namespaces map[string]string
	configs    []apiConfig
	queries    []map[string]string
	nsCreates  int
	nsUpdates  int
}

func newFakeNacos() *fakeNacos {
	return &fakeNacos{namespaces: map[string]string{"dev": "development"}}
}

func (f *fakeNacos) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ParseForm()

	switch r.URL.Path {
	case nacosNamespacesPath:
		switch r.Method {
		case http.MethodGet:
			data := []map[string]any{{"namespace": "", "namespaceShowName": "public"}}
			names := make([]string, 0, len(f.namespaces))
			for id := range f.namespaces {
				names = append(names, id)
			}
			sort.Strings(names)
			for _, id := range names {
				data = append(data, map[string]any{"namespace": id, "namespaceShowName": id, "namespaceDesc": f.namespaces[id]})
			}
			json.NewEncoder(w).Encode(map[string]any{"code": 200, "data": data})
		case http.MethodPost:
			f.nsCreates++
			f.namespaces[r.PostForm.Get("customNamespaceId")] = r.PostForm.Get("namespaceDesc")
			w.Write([]byte("true"))
		case http.MethodPut:
			f.nsUpdates++
			f.namespaces[r.PostForm.Get("namespace")] = r.PostForm.Get("namespaceDesc")
			w.Write([]byte("true"))
		}
	case nacosConfigsPath:
		if r.Method == http.MethodPost {
			f.publish(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("show") == "all" {
			for _, c := range f.configs {
				if c.Namespace == q.Get("tenant") && c.Group == q.Get("group") && c.DataID == q.Get("dataId") {
					json.NewEncoder(w).Encode(c)
					return
				}
			}
			return
		}
		f.search(w, q)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeNacos) publish(w http.ResponseWriter, r *http.Request) {
	c := apiConfig{
		Namespace: r.PostForm.Get("tenant"),
		Group:     r.PostForm.Get("group"),
		DataID:    r.PostForm.Get("dataId"),
		Content:   r.PostForm.Get("content"),
		Desc:      r.PostForm.Get("desc"),
		Type:      r.PostForm.Get("type"),
	}
	if c.DataID == "" {
		w.Write([]byte("false"))
		return
	}
	for i, existing := range f.configs {
		if existing.Namespace == c.Namespace && existing.Group == c.Group && existing.DataID == c.DataID {
			f.configs[i] = c
			w.Write([]byte("true"))
			return
		}
	}
	f.configs = append(f.configs, c)
	w.Write([]byte("true"))
}

func (f *fakeNacos) search(w http.ResponseWriter, q map[string][]string) {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	f.queries = append(f.queries, map[string]string{
		"search": get("search"), "dataId": get("dataId"), "group": get("group"),
		"tenant": get("tenant"), "pageNo": get("pageNo"), "pageSize": get("pageSize"),
	})

	needle := strings.Trim(get("dataId"), "*")
	var items []apiConfig
	for _, c := range f.configs {
		if c.Namespace != get("tenant") {
			continue
		}
		if g := get("group"); g != "" && c.Group != g {
			continue
		}
		if needle != "" && !strings.Contains(c.DataID, needle) {
			continue
		}
		items = append(items, c)
	}

	pageNo, _ := strconv.Atoi(get("pageNo"))
	pageSize, _ := strconv.Atoi(get("pageSize"))
	page := entity.Paginate(items, pageNo, pageSize)
	json.NewEncoder(w).Encode(map[string]any{
		"totalCount":     page.TotalCount,
		"pageNumber":     page.PageNumber,
		"pagesAvailable": page.PagesAvailable,
		"pageItems":      page.Items,
	})
}

func newTestNacos(t *testing.T, f *fakeNacos) *NacosStore {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	s, err := NewNacosStore(srv.URL, WithBasicAuth("nacos", "nacos"))
	require.NoError(t, err)
	return s
}

func TestNacosListNamespaces(t *testing.T) {
	s := newTestNacos(t, newFakeNacos())

	got, err := s.ListNamespaces(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, PublicNamespace, got[0].ID, "empty tenant is reported as public")
	assert.Equal(t, entity.Namespace{ID: "dev", ShowName: "dev", Description: "development"}, got[1])
}

func TestNacosUpsertNamespace(t *testing.T) {
	f := newFakeNacos()
	s := newTestNacos(t, f)
	ctx := context.Background()

	require.NoError(t, s.UpsertNamespace(ctx, "qa", "quality"))
	require.NoError(t, s.UpsertNamespace(ctx, "dev", "renamed"))

	assert.Equal(t, 1, f.nsCreates)
	assert.Equal(t, 1, f.nsUpdates)
	assert.Equal(t, "quality", f.namespaces["qa"])
	assert.Equal(t, "renamed", f.namespaces["dev"])
}

func TestNacosListGroupsScansAllPages(t *testing.T) {
	f := newFakeNacos()
	for i := 0; i < 250; i++ {
		group := "g" + strconv.Itoa(i%3)
		f.configs = append(f.configs, apiConfig{Namespace: "dev", Group: group, DataID: "id-" + strconv.Itoa(i)})
	}
	f.configs = append(f.configs, apiConfig{Namespace: "", Group: "public-only", DataID: "x"})
	s := newTestNacos(t, f)

	got, err := s.ListGroups(context.Background(), "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"g0", "g1", "g2"}, got)
	assert.Len(t, f.queries, 3)

	got, err = s.ListGroups(context.Background(), PublicNamespace)
	require.NoError(t, err)
	assert.Equal(t, []string{"public-only"}, got)
}

func TestNacosListConfigsBlurSearch(t *testing.T) {
	f := newFakeNacos()
	for _, id := range []string{"app.yaml", "db.yaml", "app-db.json"} {
		f.configs = append(f.configs, apiConfig{Namespace: "dev", Group: "g1", DataID: id, Type: "yaml"})
	}
	s := newTestNacos(t, f)

	page, err := s.ListConfigs(context.Background(), "dev", "g1", port.ListOptions{DataID: "db", PageNo: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "dev", page.Items[0].Namespace)

	last := f.queries[len(f.queries)-1]
	assert.Equal(t, "blur", last["search"])
	assert.Equal(t, "*db*", last["dataId"])
	assert.Equal(t, "dev", last["tenant"])

	_, err = s.ListConfigs(context.Background(), "dev", "g1", port.ListOptions{PageNo: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, "accurate", f.queries[len(f.queries)-1]["search"])
}

func TestNacosCreateAutoCreatesNamespace(t *testing.T) {
	f := newFakeNacos()
	s := newTestNacos(t, f)
	ctx := context.Background()
	entry := entity.ConfigEntry{Namespace: "staging", Group: "g1", DataID: "app.yaml", Content: "a: 1", Description: "d", Type: entity.TypeYAML}

	require.NoError(t, s.CreateConfig(ctx, entry))
	assert.Equal(t, 1, f.nsCreates)
	_, ok := f.namespaces["staging"]
	assert.True(t, ok)

	got, err := s.GetConfig(ctx, entry.Key())
	require.NoError(t, err)
	assert.Equal(t, entry, *got)

	assert.ErrorIs(t, s.CreateConfig(ctx, entry), port.ErrAlreadyExists)
}

func TestNacosCreateInPublic(t *testing.T) {
	f := newFakeNacos()
	s := newTestNacos(t, f)

	entry := entity.ConfigEntry{Namespace: PublicNamespace, Group: "DEFAULT_GROUP", DataID: "x", Content: "1"}
	require.NoError(t, s.CreateConfig(context.Background(), entry))
	assert.Zero(t, f.nsCreates)
	require.Len(t, f.configs, 1)
	assert.Equal(t, "", f.configs[0].Namespace)
}

func TestNacosUpdate(t *testing.T) {
	f := newFakeNacos()
	s := newTestNacos(t, f)
	ctx := context.Background()
	entry := entity.ConfigEntry{Namespace: "dev", Group: "g1", DataID: "app.yaml", Content: "a: 1"}

	assert.ErrorIs(t, s.UpdateConfig(ctx, entry), port.ErrNotFound)
	assert.Empty(t, f.configs, "update never publishes a missing key")

	require.NoError(t, s.CreateConfig(ctx, entry))
	entry.Content = "a: 2"
	require.NoError(t, s.UpdateConfig(ctx, entry))
	assert.Equal(t, "a: 2", f.configs[0].Content)
}

func TestNacosPublishRejected(t *testing.T) {
	s := newTestNacos(t, newFakeNacos())

	err := s.publish(context.Background(), entity.ConfigEntry{Namespace: "dev", Group: "g1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "publish rejected")
}
