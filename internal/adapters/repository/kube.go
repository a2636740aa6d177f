package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	"k8s.io/client-go/util/retry"

	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/domain/port"
)

var _ port.ConfigStore = (*KubeStore)(nil)

// Annotations and labels written by KubeStore.
const (
	// AnnotationDescription holds a namespace's description.
	AnnotationDescription = "confnav.io/description"

	// AnnotationEntries holds a JSON object mapping each data key of a
	// ConfigMap to its description and type.
	AnnotationEntries = "confnav.io/entries"

	LabelManagedBy = "app.kubernetes.io/managed-by"
	managedByValue = "confnav"
)

// entryMeta is the per-key metadata kept in AnnotationEntries.
type entryMeta struct {
	Desc string `json:"desc,omitempty"`
	Type string `json:"type,omitempty"`
}

// KubeStore maps the configuration hierarchy onto Kubernetes:
// namespace → Namespace, group → ConfigMap, dataId → ConfigMap data key.
type KubeStore struct {
	clientset kubernetes.Interface
	selector  string
	logger    *zap.Logger
}

// KubeOption configures a KubeStore.
type KubeOption func(*KubeStore)

// WithLabelSelector restricts the ConfigMaps listed as groups.
func WithLabelSelector(selector string) KubeOption {
	return func(s *KubeStore) { s.selector = selector }
}

// WithKubeLogger sets the store's logger.
func WithKubeLogger(l *zap.Logger) KubeOption {
	return func(s *KubeStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewKubeStore creates a store from a kubeconfig path. An empty path means
// ~/.kube/config; if that cannot be loaded the in-cluster config is tried.
func NewKubeStore(kubeconfigPath string, opts ...KubeOption) (*KubeStore, error) {
	if kubeconfigPath == "" {
		kubeconfigPath = filepath.Join(homedir.HomeDir(), ".kube", "config")
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create kubernetes config: %w", err)
		}
	}
	config.Timeout = 30 * time.Second
	config.WarningHandler = rest.NoWarnings{}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return NewKubeStoreFromClientset(clientset, opts...), nil
}

// NewKubeStoreFromClientset wraps an existing clientset.
func NewKubeStoreFromClientset(clientset kubernetes.Interface, opts ...KubeOption) *KubeStore {
	s := &KubeStore{clientset: clientset, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("backend", "kubernetes"))
	return s
}

// translate maps Kubernetes API errors onto the store's sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case apierrors.IsNotFound(err):
		return fmt.Errorf("%s: %w", what, port.ErrNotFound)
	case apierrors.IsAlreadyExists(err):
		return fmt.Errorf("%s: %w", what, port.ErrAlreadyExists)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// ListNamespaces returns all namespaces sorted by name.
func (s *KubeStore) ListNamespaces(ctx context.Context) ([]entity.Namespace, error) {
	nsList, err := s.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, translate(err, "listing namespaces")
	}

	namespaces := make([]entity.Namespace, 0, len(nsList.Items))
	for _, ns := range nsList.Items {
		namespaces = append(namespaces, entity.Namespace{
			ID:          ns.Name,
			ShowName:    ns.Name,
			Description: ns.Annotations[AnnotationDescription],
		})
	}
	sort.Slice(namespaces, func(i, j int) bool { return namespaces[i].ID < namespaces[j].ID })
	return namespaces, nil
}

// UpsertNamespace creates the namespace or updates its description.
func (s *KubeStore) UpsertNamespace(ctx context.Context, name, description string) error {
	namespaces := s.clientset.CoreV1().Namespaces()

	err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		ns, err := namespaces.Get(ctx, name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			_, err = namespaces.Create(ctx, &corev1.Namespace{
				ObjectMeta: metav1.ObjectMeta{
					Name:        name,
					Labels:      map[string]string{LabelManagedBy: managedByValue},
					Annotations: map[string]string{AnnotationDescription: description},
				},
			}, metav1.CreateOptions{})
			return err
		}
		if err != nil {
			return err
		}

		if ns.Annotations == nil {
			ns.Annotations = map[string]string{}
		}
		ns.Annotations[AnnotationDescription] = description
		_, err = namespaces.Update(ctx, ns, metav1.UpdateOptions{})
		return err
	})
	return translate(err, "saving namespace "+name)
}

// ListGroups returns the ConfigMap names of namespace, sorted.
func (s *KubeStore) ListGroups(ctx context.Context, namespace string) ([]string, error) {
	cms, err := s.clientset.CoreV1().ConfigMaps(namespace).List(ctx, metav1.ListOptions{LabelSelector: s.selector})
	if err != nil {
		return nil, translate(err, "listing groups of "+namespace)
	}

	groups := make([]string, 0, len(cms.Items))
	for _, cm := range cms.Items {
		groups = append(groups, cm.Name)
	}
	sort.Strings(groups)
	return groups, nil
}

// ListConfigs returns one page of a ConfigMap's keys in name order.
// A ConfigMap that does not exist is an empty group.
func (s *KubeStore) ListConfigs(ctx context.Context, namespace, group string, opts port.ListOptions) (*entity.Page[entity.ConfigEntry], error) {
	cm, err := s.clientset.CoreV1().ConfigMaps(namespace).Get(ctx, group, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		page := entity.Paginate([]entity.ConfigEntry{}, opts.PageNo, opts.PageSize)
		return &page, nil
	}
	if err != nil {
		return nil, translate(err, fmt.Sprintf("listing configs of %s/%s", namespace, group))
	}

	meta := readMeta(cm)
	keys := make([]string, 0, len(cm.Data))
	for k := range cm.Data {
		if opts.DataID == "" || strings.Contains(k, opts.DataID) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	entries := make([]entity.ConfigEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, toEntry(cm, k, meta))
	}
	page := entity.Paginate(entries, opts.PageNo, opts.PageSize)
	return &page, nil
}

// GetConfig returns one data key of a ConfigMap.
func (s *KubeStore) GetConfig(ctx context.Context, key entity.ConfigKey) (*entity.ConfigEntry, error) {
	cm, err := s.clientset.CoreV1().ConfigMaps(key.Namespace).Get(ctx, key.Group, metav1.GetOptions{})
	if err != nil {
		return nil, translate(err, "getting config "+key.String())
	}
	if _, ok := cm.Data[key.DataID]; !ok {
		return nil, fmt.Errorf("config %s: %w", key, port.ErrNotFound)
	}
	entry := toEntry(cm, key.DataID, readMeta(cm))
	return &entry, nil
}

// CreateConfig adds a data key, creating the ConfigMap for a new group.
func (s *KubeStore) CreateConfig(ctx context.Context, entry entity.ConfigEntry) error {
	key := entry.Key()
	cms := s.clientset.CoreV1().ConfigMaps(entry.Namespace)

	err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		cm, err := cms.Get(ctx, entry.Group, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			cm = &corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{
					Name:      entry.Group,
					Namespace: entry.Namespace,
					Labels:    map[string]string{LabelManagedBy: managedByValue},
				},
			}
			writeEntry(cm, entry)
			s.logger.Info("creating group configmap", zap.String("namespace", entry.Namespace), zap.String("group", entry.Group))
			_, err = cms.Create(ctx, cm, metav1.CreateOptions{})
			return err
		}
		if err != nil {
			return err
		}

		if _, ok := cm.Data[entry.DataID]; ok {
			return fmt.Errorf("config %s: %w", key, port.ErrAlreadyExists)
		}
		writeEntry(cm, entry)
		_, err = cms.Update(ctx, cm, metav1.UpdateOptions{})
		return err
	})
	return translate(err, "creating config "+key.String())
}

// UpdateConfig replaces an existing data key. A missing key is ErrNotFound.
func (s *KubeStore) UpdateConfig(ctx context.Context, entry entity.ConfigEntry) error {
	key := entry.Key()
	cms := s.clientset.CoreV1().ConfigMaps(entry.Namespace)

	err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		cm, err := cms.Get(ctx, entry.Group, metav1.GetOptions{})
		if err != nil {
			return err
		}
		if _, ok := cm.Data[entry.DataID]; !ok {
			return fmt.Errorf("config %s: %w", key, port.ErrNotFound)
		}
		writeEntry(cm, entry)
		_, err = cms.Update(ctx, cm, metav1.UpdateOptions{})
		return err
	})
	return translate(err, "updating config "+key.String())
}

func readMeta(cm *corev1.ConfigMap) map[string]entryMeta {
	meta := map[string]entryMeta{}
	raw := cm.Annotations[AnnotationEntries]
	if raw == "" {
		return meta
	}
	// A hand-edited annotation that fails to parse is ignored as a whole.
	parsed := map[string]entryMeta{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return meta
	}
	return parsed
}

func toEntry(cm *corev1.ConfigMap, dataID string, meta map[string]entryMeta) entity.ConfigEntry {
	m := meta[dataID]
	t := entity.ConfigType(m.Type)
	if t == "" {
		t = entity.TypeFromDataID(dataID)
	}
	return entity.ConfigEntry{
		Namespace:   cm.Namespace,
		Group:       cm.Name,
		DataID:      dataID,
		Content:     cm.Data[dataID],
		Description: m.Desc,
		Type:        t,
	}
}

func writeEntry(cm *corev1.ConfigMap, entry entity.ConfigEntry) {
	if cm.Data == nil {
		cm.Data = map[string]string{}
	}
	cm.Data[entry.DataID] = entry.Content

	meta := readMeta(cm)
	meta[entry.DataID] = entryMeta{Desc: entry.Description, Type: string(entry.Type)}
	raw, _ := json.Marshal(meta)

	if cm.Annotations == nil {
		cm.Annotations = map[string]string{}
	}
	cm.Annotations[AnnotationEntries] = string(raw)
}
