package app

import (
	"errors"

	"vidyeet/internal/credentials"
	"vidyeet/internal/mux"
	"vidyeet/internal/upload"
	"vidyeet/internal/validate"
	"vidyeet/pkg/config"
)

func BuildService(cfg *config.Config, creds *credentials.Credentials) (*Service, error) {
	if creds == nil || !creds.Valid() {
		return nil, credentials.ErrNotLoggedIn
	}
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	client := mux.NewClient(mux.Options{
		BaseURL:    cfg.API.Endpoint,
		Timeout:    cfg.API.Timeout(),
		AuthHeader: creds.AuthHeader(),
	})

	sessions := upload.NewSessionFactory(client, mux.UploadSettings{
		PlaybackPolicy:  cfg.Asset.PlaybackPolicy,
		VideoQuality:    cfg.Asset.VideoQuality,
		StaticRendition: cfg.Asset.StaticRendition,
		Title:           cfg.Asset.Title,
	}, upload.NewCapacityManager(client))

	transporter := upload.NewChunkTransporter(client, upload.TransportConfig{
		ChunkSize:   cfg.Upload.ChunkSize,
		MaxRetries:  cfg.Upload.MaxRetries,
		BackoffBase: cfg.Upload.BackoffBase(),
	}, nil)

	poller := upload.NewCompletionPoller(client, upload.PollConfig{
		Interval: cfg.Upload.PollInterval(),
		MaxWait:  cfg.Upload.MaxWait(),
	}, nil)

	rules := validate.Rules{
		MaxSize: cfg.Upload.MaxFileSize,
		Formats: cfg.Upload.SupportedFormats,
	}

	return NewService(ServiceOptions{
		Config: cfg,
		Client: client,
		Validate: func(path string) (*upload.File, error) {
			return validate.Validate(path, rules)
		},
		Pipeline: upload.NewPipeline(sessions, transporter, poller),
	}), nil
}
