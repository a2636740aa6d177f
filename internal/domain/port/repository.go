// Package port defines the interfaces (ports) for the domain layer.
// These interfaces decouple the domain from external dependencies,
// following the dependency inversion principle.
package port

import (
	"context"
	"errors"

	"github.com/andrebassi/confnav/internal/domain/entity"
)

// Errors a ConfigStore reports for key-level conflicts.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// ConfigStore is the primary port for the remote configuration service.
type ConfigStore interface {
	// Namespace operations
	ListNamespaces(ctx context.Context) ([]entity.Namespace, error)
	UpsertNamespace(ctx context.Context, name, description string) error

	// Group operations
	ListGroups(ctx context.Context, namespace string) ([]string, error)

	// Entry operations
	ListConfigs(ctx context.Context, namespace, group string, opts ListOptions) (*entity.Page[entity.ConfigEntry], error)
	GetConfig(ctx context.Context, key entity.ConfigKey) (*entity.ConfigEntry, error)

	// CreateConfig publishes a new entry.
	CreateConfig(ctx context.Context, entry entity.ConfigEntry) error
	// UpdateConfig replaces an existing entry. Updating a key that does not
	// exist fails with ErrNotFound; it never creates the entry.
	UpdateConfig(ctx context.Context, entry entity.ConfigEntry) error
}

// ListOptions configures a paged config listing.
type ListOptions struct {
	DataID   string // substring filter on dataId; empty matches all
	PageNo   int    // 1-based
	PageSize int
}
