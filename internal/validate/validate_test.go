package validate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vidyeet/internal/upload"
)

var testFormats = []string{"mp4", "mov", "avi", "wmv", "flv", "mkv", "webm"}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	rules := Rules{MaxSize: 1024, Formats: testFormats}

	tests := []struct {
		name       string
		path       string
		wantReason upload.ValidationReason
	}{
		{name: "missing", path: filepath.Join(dir, "missing.mp4"), wantReason: upload.ReasonNotFound},
		{name: "directory", path: dir, wantReason: upload.ReasonNotAFile},
		{name: "empty", path: writeFile(t, dir, "empty.mp4", nil), wantReason: upload.ReasonEmpty},
		{name: "tooLarge", path: writeFile(t, dir, "big.mp4", make([]byte, 2048)), wantReason: upload.ReasonTooLarge},
		{name: "unsupported", path: writeFile(t, dir, "notes.txt", []byte("hello")), wantReason: upload.ReasonUnsupportedFormat},
		{name: "noExtension", path: writeFile(t, dir, "video", []byte("hello")), wantReason: upload.ReasonUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.path, rules)

			var validationErr *upload.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected *upload.ValidationError, got %v", err)
			}
			if validationErr.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", validationErr.Reason, tt.wantReason)
			}
			if validationErr.Hint() == "" {
				t.Error("expected a hint")
			}
			if upload.SeverityOf(err) != upload.SeverityUser {
				t.Errorf("SeverityOf() = %v, want user", upload.SeverityOf(err))
			}
		})
	}
}

func TestValidateAcceptsVideo(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Holiday.MKV", []byte("not really matroska"))

	file, err := Validate(path, Rules{MaxSize: 1024, Formats: testFormats})
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if file.Name != "Holiday.MKV" || file.Extension != "mkv" || file.Size != 19 {
		t.Errorf("Validate() = %+v", file)
	}
	if file.ContentType != "video/x-matroska" {
		t.Errorf("ContentType = %q, want video/x-matroska", file.ContentType)
	}
}

func TestContentTypeSniffsVideo(t *testing.T) {
	// Minimal ISO base media header: size, "ftyp", brand "isom".
	header := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'm', 'p', '4', '1'}
	path := writeFile(t, t.TempDir(), "clip.mov", header)

	if got := ContentType(path, "mov"); got != "video/mp4" {
		t.Errorf("ContentType() = %q, want sniffed video/mp4", got)
	}
}

func TestContentTypeFallback(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{ext: "mp4", want: "video/mp4"},
		{ext: "mov", want: "video/quicktime"},
		{ext: "avi", want: "video/x-msvideo"},
		{ext: "wmv", want: "video/x-ms-wmv"},
		{ext: "flv", want: "video/x-flv"},
		{ext: "webm", want: "video/webm"},
		{ext: "bin", want: "application/octet-stream"},
	}

	path := writeFile(t, t.TempDir(), "blob", []byte("plain text"))
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := ContentType(path, tt.ext); got != tt.want {
				t.Errorf("ContentType(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}
