package upload

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vidyeet/internal/mux"
	"vidyeet/pkg/retry"
)

type StatusReader interface {
	GetUpload(ctx context.Context, id string) (*mux.Upload, error)
	GetAsset(ctx context.Context, id string) (*mux.Asset, error)
}

type PollConfig struct {
	Interval time.Duration
	MaxWait  time.Duration
}

// CompletionPoller waits for the server to turn an upload into an asset.
// Fetch failures end the wait; they are not retried.
type CompletionPoller struct {
	api      StatusReader
	interval time.Duration
	maxWait  time.Duration
	sleep    retry.SleepFunc
}

func NewCompletionPoller(api StatusReader, cfg PollConfig, sleep retry.SleepFunc) *CompletionPoller {
	if sleep == nil {
		sleep = retry.Sleep
	}
	return &CompletionPoller{
		api:      api,
		interval: cfg.Interval,
		maxWait:  cfg.MaxWait,
		sleep:    sleep,
	}
}

// MaxPolls is the iteration budget, floor(maxWait / interval), at least 1.
func (p *CompletionPoller) MaxPolls() int {
	if p.interval <= 0 {
		return 1
	}
	return max(int(p.maxWait/p.interval), 1)
}

func (p *CompletionPoller) WaitForCompletion(ctx context.Context, uploadID string, sink Sink) (*mux.Asset, error) {
	sink.Emit(ctx, WaitingForAsset{UploadID: uploadID, ElapsedSeconds: 0})

	polls := p.MaxPolls()
	step := int64(p.interval / time.Second)

	for i := 0; i < polls; i++ {
		upload, err := p.api.GetUpload(ctx, uploadID)
		if err != nil {
			return nil, fmt.Errorf("failed to check upload %s: %w", uploadID, err)
		}

		switch upload.Status {
		case mux.UploadAssetCreated:
			if upload.AssetID == "" {
				return nil, &ProtocolError{UploadID: uploadID, Msg: "status asset_created without asset_id"}
			}
			asset, err := p.api.GetAsset(ctx, upload.AssetID)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch asset %s: %w", upload.AssetID, err)
			}
			slog.Debug("Asset created", "upload_id", uploadID, "asset_id", asset.ID, "polls", i+1)
			return asset, nil
		case mux.UploadErrored, mux.UploadCancelled, mux.UploadTimedOut:
			return nil, &TerminalStatusError{UploadID: uploadID, Status: upload.Status, Reason: upload.ErrorMessage()}
		}

		slog.Debug("Asset not ready", "upload_id", uploadID, "status", upload.Status, "poll", i+1)
		if err := p.sleep(ctx, p.interval); err != nil {
			return nil, err
		}
		sink.Emit(ctx, WaitingForAsset{UploadID: uploadID, ElapsedSeconds: int64(i+1) * step})
	}

	return nil, &PollingTimeoutError{UploadID: uploadID, MaxWait: p.maxWait, Polls: polls}
}
