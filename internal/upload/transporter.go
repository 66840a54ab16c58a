package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"vidyeet/internal/mux"
	"vidyeet/pkg/retry"
)

// File is a validated local video ready for transmission.
type File struct {
	Path        string
	Name        string
	Size        int64
	Extension   string
	ContentType string
}

type ChunkSender interface {
	PutChunk(ctx context.Context, uploadURL string, chunk mux.ChunkRequest) (int, error)
}

type TransportConfig struct {
	ChunkSize   int64
	MaxRetries  int
	BackoffBase time.Duration
}

// ChunkTransporter streams a file to an upload URL strictly in order, one
// chunk in flight at a time.
type ChunkTransporter struct {
	sender    ChunkSender
	chunkSize int64
	retrier   *retry.Retrier
}

func NewChunkTransporter(sender ChunkSender, cfg TransportConfig, sleep retry.SleepFunc) *ChunkTransporter {
	return &ChunkTransporter{
		sender:    sender,
		chunkSize: cfg.ChunkSize,
		retrier: retry.New(retry.Config{
			MaxAttempts:  cfg.MaxRetries,
			InitialDelay: cfg.BackoffBase,
			Multiplier:   2.0,
		}, sleep),
	}
}

func (t *ChunkTransporter) UploadFile(ctx context.Context, session *mux.Upload, file File, sink Sink) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file.Path, err)
	}
	defer func() { _ = f.Close() }()

	reader := NewChunkReader(f, file.Size, t.chunkSize)
	total := reader.Count()

	slog.Debug("Uploading file", "name", file.Name, "size", file.Size, "chunks", total, "chunk_size", t.chunkSize)
	sink.Emit(ctx, UploadingFile{Name: file.Name, Size: file.Size, TotalChunks: total})

	var sent int64
	for {
		chunk, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read chunk %d of %s: %w", reader.index, file.Name, err)
		}

		if err := t.sendChunk(ctx, session.URL, chunk, file.ContentType); err != nil {
			return err
		}

		sent += chunk.Len()
		sink.Emit(ctx, UploadingChunk{
			Current:    chunk.Index + 1,
			Total:      total,
			BytesSent:  sent,
			TotalBytes: file.Size,
		})
	}

	sink.Emit(ctx, FileUploaded{Name: file.Name, Size: file.Size})
	return nil
}

func (t *ChunkTransporter) sendChunk(ctx context.Context, uploadURL string, chunk Chunk, contentType string) error {
	req := mux.ChunkRequest{
		Start:       chunk.Start,
		End:         chunk.End,
		Total:       chunk.Total,
		ContentType: contentType,
		Payload:     chunk.Payload,
	}

	err := t.retrier.Do(ctx, func(attempt int) error {
		status, err := t.sender.PutChunk(ctx, uploadURL, req)
		if err == nil && mux.IsSuccessfulChunkStatus(status) {
			slog.Debug("Chunk accepted", "index", chunk.Index, "range", chunk.ContentRange(), "status", status)
			return nil
		}
		if ctx.Err() != nil {
			return retry.Permanent(ctx.Err())
		}

		attemptErr := &TransportError{Index: chunk.Index, Attempt: attempt, StatusCode: status, Err: err}
		slog.Warn("Chunk upload failed", "index", chunk.Index, "attempt", attempt, "error", attemptErr)
		return attemptErr
	})

	var exhausted *retry.AttemptError
	if errors.As(err, &exhausted) {
		return &ChunkUploadError{Index: chunk.Index, Attempts: exhausted.Attempts, Err: exhausted.Err}
	}
	return err
}
