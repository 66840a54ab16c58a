package upload

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"vidyeet/internal/mux"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Emit(_ context.Context, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) ofPhase(phase Phase) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Phase() == phase {
			out = append(out, ev)
		}
	}
	return out
}

type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

// fakeAPI stands in for the Mux client. Every call is counted.
type fakeAPI struct {
	createErrs   []error
	createCalls  int
	assets       []mux.Asset
	listErr      error
	deleteErr    error
	deleted      []string
	statuses     []mux.Upload
	statusErrs   []error
	statusCalls  int
	asset        *mux.Asset
	assetErr     error
	assetCalls   int
	chunkSize    int64
	chunkResults map[int][]chunkResult
	chunkCalls   map[int]int
	ranges       []string
}

type chunkResult struct {
	status int
	err    error
}

func (f *fakeAPI) CreateUpload(_ context.Context, _ mux.UploadSettings) (*mux.Upload, error) {
	f.createCalls++
	if f.createCalls <= len(f.createErrs) && f.createErrs[f.createCalls-1] != nil {
		return nil, f.createErrs[f.createCalls-1]
	}
	return &mux.Upload{ID: "up_1", URL: "https://storage.example/up_1", Status: mux.UploadWaiting}, nil
}

func (f *fakeAPI) ListAssets(_ context.Context) ([]mux.Asset, error) {
	return f.assets, f.listErr
}

func (f *fakeAPI) DeleteAsset(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) GetUpload(_ context.Context, id string) (*mux.Upload, error) {
	f.statusCalls++
	if f.statusCalls <= len(f.statusErrs) && f.statusErrs[f.statusCalls-1] != nil {
		return nil, f.statusErrs[f.statusCalls-1]
	}
	idx := min(f.statusCalls-1, len(f.statuses)-1)
	upload := f.statuses[idx]
	upload.ID = id
	return &upload, nil
}

func (f *fakeAPI) GetAsset(_ context.Context, id string) (*mux.Asset, error) {
	f.assetCalls++
	if f.assetErr != nil {
		return nil, f.assetErr
	}
	if f.asset != nil {
		return f.asset, nil
	}
	return &mux.Asset{ID: id, Status: "ready"}, nil
}

func (f *fakeAPI) PutChunk(_ context.Context, _ string, chunk mux.ChunkRequest) (int, error) {
	if f.chunkCalls == nil {
		f.chunkCalls = map[int]int{}
	}
	index := int(chunk.Start / f.chunkSize)
	call := f.chunkCalls[index]
	f.chunkCalls[index]++
	f.ranges = append(f.ranges, Chunk{Start: chunk.Start, End: chunk.End, Total: chunk.Total}.ContentRange())

	results := f.chunkResults[index]
	if call < len(results) {
		return results[call].status, results[call].err
	}
	return mux.StatusResumeIncomplete, nil
}

func writeTempFile(t *testing.T, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
