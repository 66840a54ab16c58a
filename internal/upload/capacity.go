package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"vidyeet/internal/mux"
)

const invalidParameters = "invalid_parameters"

// IsCapacityError reports whether a session-creation failure means the
// account hit its asset limit.
func IsCapacityError(err error) bool {
	var apiErr *mux.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if apiErr.Type != invalidParameters {
			return false
		}
		msg := strings.ToLower(apiErr.Message())
		return strings.Contains(msg, "limited to") && strings.Contains(msg, "assets")
	default:
		return false
	}
}

type AssetStore interface {
	ListAssets(ctx context.Context) ([]mux.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
}

// CapacityManager frees one slot by deleting the oldest asset.
type CapacityManager struct {
	store AssetStore
}

func NewCapacityManager(store AssetStore) *CapacityManager {
	return &CapacityManager{store: store}
}

func (m *CapacityManager) EvictOldest(ctx context.Context) (*mux.Asset, error) {
	assets, err := m.store.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets for eviction: %w", err)
	}
	if len(assets) == 0 {
		return nil, &CapacityError{Err: errors.New("no existing assets to delete")}
	}

	oldest, err := OldestAsset(assets)
	if err != nil {
		return nil, err
	}

	slog.Info("Deleting oldest asset to free capacity", "asset_id", oldest.ID, "created_at", oldest.CreatedAt)
	if err := m.store.DeleteAsset(ctx, oldest.ID); err != nil {
		return nil, fmt.Errorf("failed to delete oldest asset %s: %w", oldest.ID, err)
	}

	return oldest, nil
}

// OldestAsset picks the asset with the earliest creation time. Ties keep
// list order.
func OldestAsset(assets []mux.Asset) (*mux.Asset, error) {
	type dated struct {
		asset   mux.Asset
		created time.Time
	}

	sorted := make([]dated, 0, len(assets))
	for _, a := range assets {
		created, err := a.CreatedTime()
		if err != nil {
			return nil, err
		}
		sorted = append(sorted, dated{asset: a, created: created})
	}
	if len(sorted) == 0 {
		return nil, errors.New("no assets")
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].created.Before(sorted[j].created)
	})

	oldest := sorted[0].asset
	return &oldest, nil
}
