package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/domain/port"
)

// NamespaceUseCase handles namespace listing and management.
type NamespaceUseCase struct {
	store   port.ConfigStore
	logger  *zap.Logger
	timeout time.Duration
}

// NewNamespaceUseCase creates a new NamespaceUseCase.
func NewNamespaceUseCase(store port.ConfigStore, logger *zap.Logger, timeout time.Duration) *NamespaceUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &NamespaceUseCase{store: store, logger: logger, timeout: timeout}
}

// ListNamespaces returns every namespace known to the store.
func (uc *NamespaceUseCase) ListNamespaces(ctx context.Context) ([]entity.Namespace, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	namespaces, err := uc.store.ListNamespaces(ctx)
	if err != nil {
		uc.logger.Warn("failed to list namespaces", zap.Error(err))
		return nil, &FetchError{Op: "list namespaces", Err: classify(err)}
	}
	return namespaces, nil
}

// SaveNamespace creates or updates a namespace. The name is required.
func (uc *NamespaceUseCase) SaveNamespace(ctx context.Context, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Field: "namespace name", Message: "is required"}
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	if err := uc.store.UpsertNamespace(ctx, name, strings.TrimSpace(description)); err != nil {
		uc.logger.Warn("failed to save namespace", zap.String("name", name), zap.Error(err))
		return &FetchError{Op: "save namespace " + name, Err: classify(err)}
	}
	uc.logger.Info("namespace saved", zap.String("name", name))
	return nil
}

// FilterNamespaces returns the namespaces whose id, name or description
// contains query, case-insensitively. Favourites come first, in their
// original order.
func FilterNamespaces(namespaces []entity.Namespace, query string, favourites []string) []entity.Namespace {
	query = strings.ToLower(strings.TrimSpace(query))

	fav := make(map[string]bool, len(favourites))
	for _, f := range favourites {
		fav[f] = true
	}

	result := make([]entity.Namespace, 0, len(namespaces))
	for _, ns := range namespaces {
		if query != "" &&
			!strings.Contains(strings.ToLower(ns.ID), query) &&
			!strings.Contains(strings.ToLower(ns.ShowName), query) &&
			!strings.Contains(strings.ToLower(ns.Description), query) {
			continue
		}
		result = append(result, ns)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return fav[result[i].ID] && !fav[result[j].ID]
	})
	return result
}
