package upload

import (
	"context"
	"fmt"
	"log/slog"

	"vidyeet/internal/mux"
)

type SessionCreator interface {
	CreateUpload(ctx context.Context, settings mux.UploadSettings) (*mux.Upload, error)
}

// SessionFactory opens direct-upload sessions. With a CapacityManager it
// evicts the oldest asset once when the account is full.
type SessionFactory struct {
	api      SessionCreator
	settings mux.UploadSettings
	capacity *CapacityManager
}

func NewSessionFactory(api SessionCreator, settings mux.UploadSettings, capacity *CapacityManager) *SessionFactory {
	return &SessionFactory{
		api:      api,
		settings: settings,
		capacity: capacity,
	}
}

func (f *SessionFactory) Create(ctx context.Context) (*mux.Upload, error) {
	session, err := f.api.CreateUpload(ctx, f.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload session: %w", err)
	}
	slog.Debug("Upload session created", "upload_id", session.ID)
	return session, nil
}

// CreateWithCapacity returns the session and how many assets were deleted
// to make room for it (0 or 1).
func (f *SessionFactory) CreateWithCapacity(ctx context.Context) (*mux.Upload, int, error) {
	session, err := f.Create(ctx)
	if err == nil {
		return session, 0, nil
	}
	if f.capacity == nil || !IsCapacityError(err) {
		return nil, 0, err
	}

	slog.Info("Asset limit reached", "error", err)
	evicted, err := f.capacity.EvictOldest(ctx)
	if err != nil {
		return nil, 0, err
	}

	session, err = f.Create(ctx)
	if err != nil {
		if IsCapacityError(err) {
			return nil, 1, &CapacityError{EvictedAssetID: evicted.ID, Err: err}
		}
		return nil, 1, err
	}

	return session, 1, nil
}
