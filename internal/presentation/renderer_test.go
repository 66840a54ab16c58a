package presentation

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"vidyeet/internal/app/model"
	"vidyeet/internal/upload"
)

func TestProgressMessage(t *testing.T) {
	tests := []struct {
		name string
		ev   upload.Event
		want string
	}{
		{name: "validating", ev: upload.Validating{Path: "clip.mp4"}, want: "Validating file: clip.mp4"},
		{name: "validated", ev: upload.Validated{Name: "clip.mp4", Size: 1 << 20, Format: "mp4"}, want: "File validated: clip.mp4 (1.0 MiB, mp4)"},
		{name: "sessionCreated", ev: upload.SessionCreated{UploadID: "up_1"}, want: "Upload session created (ID: up_1)"},
		{name: "chunk", ev: upload.UploadingChunk{Current: 2, Total: 4, BytesSent: 64 << 20, TotalBytes: 100 << 20}, want: "Uploading chunk 2/4 (64 MiB / 100 MiB)"},
		{name: "waitingInitial", ev: upload.WaitingForAsset{ElapsedSeconds: 0}, want: "Waiting for asset creation..."},
		{name: "waitingElapsed", ev: upload.WaitingForAsset{ElapsedSeconds: 20}, want: "Still waiting... (20s elapsed)"},
		{name: "completed", ev: upload.Completed{AssetID: "asset_1"}, want: "Asset created: asset_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressMessage(tt.ev); got != tt.want {
				t.Errorf("ProgressMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMachineModeSuppressesProgress(t *testing.T) {
	var out, errOut bytes.Buffer
	r := New(&out, &errOut, true)

	r.Progress(upload.Validating{Path: "clip.mp4"})

	if out.Len() != 0 || errOut.Len() != 0 {
		t.Errorf("machine mode wrote progress: stdout=%q stderr=%q", out.String(), errOut.String())
	}
}

func TestUploadResultJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	r := New(&out, &errOut, true)

	err := r.UploadResult(&model.UploadResult{
		AssetID:          "asset_1",
		HLSURL:           "https://stream.mux.com/pb_1.m3u8",
		MP4Status:        model.MP4Generating,
		FileSize:         42,
		FileFormat:       "mp4",
		DeletedOldVideos: 1,
	})
	if err != nil {
		t.Fatalf("UploadResult() error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("stdout is not JSON: %v: %q", err, out.String())
	}
	if got["success"] != true || got["command"] != "upload" {
		t.Errorf("envelope = %v", got)
	}
	if got["asset_id"] != "asset_1" || got["mp4_status"] != "generating" || got["deleted_old_videos"] != float64(1) {
		t.Errorf("fields = %v", got)
	}
	if errOut.Len() != 0 {
		t.Errorf("stderr = %q, want empty", errOut.String())
	}
}

func TestUploadResultHuman(t *testing.T) {
	var out, errOut bytes.Buffer
	r := New(&out, &errOut, false)

	err := r.UploadResult(&model.UploadResult{
		AssetID:          "asset_1",
		HLSURL:           "https://stream.mux.com/pb_1.m3u8",
		MP4URL:           "https://stream.mux.com/pb_1/highest.mp4",
		MP4Status:        model.MP4Ready,
		DeletedOldVideos: 2,
	})
	if err != nil {
		t.Fatalf("UploadResult() error: %v", err)
	}

	text := errOut.String()
	for _, want := range []string{"asset_1", "pb_1.m3u8", "highest.mp4", "Deleted 2 old video(s)"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}
}

func TestLoginJSONAction(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, &bytes.Buffer{}, true)

	if err := r.Login(&model.LoginResult{WasLoggedIn: true}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if got["action"] != "updated" || got["was_logged_in"] != true {
		t.Errorf("login JSON = %v", got)
	}
}

func TestErrorWritesHint(t *testing.T) {
	var out, errOut bytes.Buffer
	r := New(&out, &errOut, true)

	r.Error(errors.New("file not found: clip.mp4"), "Check the file path.")

	if !strings.Contains(errOut.String(), "file not found") || !strings.Contains(errOut.String(), "Hint: Check the file path.") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}
}
