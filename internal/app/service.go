package app

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"vidyeet/internal/app/model"
	"vidyeet/internal/mux"
	"vidyeet/internal/upload"
	"vidyeet/pkg/config"
)

type Validator func(path string) (*upload.File, error)

type Service struct {
	cfg      *config.Config
	client   *mux.Client
	validate Validator
	pipeline *upload.Pipeline
}

type ServiceOptions struct {
	Config   *config.Config
	Client   *mux.Client
	Validate Validator
	Pipeline *upload.Pipeline
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:      opts.Config,
		client:   opts.Client,
		validate: opts.Validate,
		pipeline: opts.Pipeline,
	}
}

func (s *Service) Config() *config.Config { return s.cfg }
func (s *Service) Client() *mux.Client    { return s.client }

// Upload runs the upload sequence and the progress consumer concurrently.
// observer sees every displayable event in order. If the consumer times
// out, the upload still runs to the end and its outcome is returned.
func (s *Service) Upload(ctx context.Context, path string, observer func(upload.Event)) (*model.UploadResult, error) {
	if observer == nil {
		observer = func(upload.Event) {}
	}

	bus := upload.NewBus(s.cfg.Upload.ChannelCapacity, s.cfg.Upload.ProgressInterval())

	var (
		g      errgroup.Group
		result *model.UploadResult
	)

	g.Go(func() error {
		defer bus.Close()
		res, err := s.run(ctx, path, bus)
		if err != nil {
			return err
		}
		result = res
		return nil
	})

	g.Go(func() error {
		err := bus.Consume(s.cfg.Upload.ConsumerTimeout(), observer)
		if errors.Is(err, upload.ErrConsumerTimeout) {
			slog.Debug("Progress output stopped before the upload finished")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) run(ctx context.Context, path string, sink upload.Sink) (*model.UploadResult, error) {
	sink.Emit(ctx, upload.Validating{Path: path})
	file, err := s.validate(path)
	if err != nil {
		return nil, err
	}
	sink.Emit(ctx, upload.Validated{Name: file.Name, Size: file.Size, Format: file.Extension})

	outcome, err := s.pipeline.Run(ctx, *file, sink)
	if err != nil {
		return nil, err
	}

	slog.Debug("Upload finished", "upload_id", outcome.UploadID, "asset_id", outcome.Asset.ID, "evicted", outcome.Evicted)
	return NewUploadResult(*file, *outcome, s.cfg.Asset.StaticRendition != "none"), nil
}

// NewUploadResult flattens the asset into the locators shown to the user.
// While the MP4 rendition is still being generated its future URL is
// reported.
func NewUploadResult(file upload.File, outcome upload.Outcome, mp4Enabled bool) *model.UploadResult {
	asset := outcome.Asset
	result := &model.UploadResult{
		AssetID:          asset.ID,
		UploadID:         outcome.UploadID,
		PlaybackID:       asset.PlaybackID(),
		HLSURL:           asset.HLSURL(),
		Duration:         asset.Duration,
		FilePath:         file.Path,
		FileSize:         file.Size,
		FileFormat:       file.Extension,
		DeletedOldVideos: outcome.Evicted,
	}

	switch {
	case !mp4Enabled:
		result.MP4Status = model.MP4Disabled
	case asset.MP4URL() != "":
		result.MP4Status = model.MP4Ready
		result.MP4URL = asset.MP4URL()
	default:
		result.MP4Status = model.MP4Generating
		result.MP4URL = asset.PredictedMP4URL()
	}

	return result
}
