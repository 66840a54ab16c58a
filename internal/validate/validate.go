package validate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"vidyeet/internal/upload"
)

var contentTypes = map[string]string{
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"wmv":  "video/x-ms-wmv",
	"flv":  "video/x-flv",
	"mkv":  "video/x-matroska",
	"webm": "video/webm",
}

type Rules struct {
	MaxSize int64
	Formats []string
}

// Validate checks that path names a non-empty regular file of a supported
// format within the size limit.
func Validate(path string, rules Rules) (*upload.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &upload.ValidationError{Path: path, Reason: upload.ReasonNotFound}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, &upload.ValidationError{Path: path, Reason: upload.ReasonNotAFile}
	}

	size := info.Size()
	if size == 0 {
		return nil, &upload.ValidationError{Path: path, Reason: upload.ReasonEmpty}
	}
	if rules.MaxSize > 0 && size > rules.MaxSize {
		return nil, &upload.ValidationError{
			Path:   path,
			Reason: upload.ReasonTooLarge,
			Detail: fmt.Sprintf("%s exceeds the %s limit", humanize.IBytes(uint64(size)), humanize.IBytes(uint64(rules.MaxSize))),
		}
	}

	ext := Extension(path)
	if !slices.Contains(rules.Formats, ext) {
		detail := fmt.Sprintf("supported: %s", strings.Join(rules.Formats, ", "))
		if ext == "" {
			detail = "no file extension; " + detail
		}
		return nil, &upload.ValidationError{Path: path, Reason: upload.ReasonUnsupportedFormat, Detail: detail}
	}

	return &upload.File{
		Path:        path,
		Name:        filepath.Base(path),
		Size:        size,
		Extension:   ext,
		ContentType: ContentType(path, ext),
	}, nil
}

func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ContentType prefers a sniffed video/* type and falls back to the
// extension table.
func ContentType(path, ext string) string {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		slog.Debug("Content sniffing failed", "path", path, "error", err)
	} else if strings.HasPrefix(mime.String(), "video/") {
		return mime.String()
	}

	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
