package mux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL = "https://api.mux.com"
	defaultTimeout = 300 * time.Second

	uploadsPath = "/video/v1/uploads"
	assetsPath  = "/video/v1/assets"

	listLimit = 100

	// StatusResumeIncomplete is returned for an accepted chunk when more
	// chunks are expected.
	StatusResumeIncomplete = 308
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	AuthHeader string
	HTTPClient *http.Client
}

// ChunkRequest describes one range-addressed PUT. End is exclusive.
type ChunkRequest struct {
	Start       int64
	End         int64
	Total       int64
	ContentType string
	Payload     []byte
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    opts.BaseURL,
		authHeader: opts.AuthHeader,
	}
}

func (c *Client) CreateUpload(ctx context.Context, settings UploadSettings) (*Upload, error) {
	passthrough := settings.Passthrough
	if passthrough == "" {
		passthrough = uuid.NewString()
	}

	body := createUploadRequest{
		CORSOrigin: "*",
		NewAssetSettings: NewAssetSettings{
			PlaybackPolicies: []string{settings.PlaybackPolicy},
			VideoQuality:     settings.VideoQuality,
			Passthrough:      passthrough,
		},
	}
	if settings.StaticRendition != "" && settings.StaticRendition != "none" {
		body.NewAssetSettings.StaticRenditions = []StaticRenditionConfig{{Resolution: settings.StaticRendition}}
	}
	if settings.Title != "" {
		body.NewAssetSettings.Meta = &AssetMeta{Title: settings.Title, ExternalID: passthrough}
	}

	var resp dataEnvelope[Upload]
	if err := c.doJSON(ctx, http.MethodPost, uploadsPath, body, &resp); err != nil {
		return nil, err
	}

	if resp.Data.ID == "" || resp.Data.URL == "" {
		return nil, fmt.Errorf("mux api: upload response missing id or url")
	}

	return &resp.Data, nil
}

func (c *Client) GetUpload(ctx context.Context, id string) (*Upload, error) {
	var resp dataEnvelope[Upload]
	if err := c.doJSON(ctx, http.MethodGet, uploadsPath+"/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) GetAsset(ctx context.Context, id string) (*Asset, error) {
	var resp dataEnvelope[Asset]
	if err := c.doJSON(ctx, http.MethodGet, assetsPath+"/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) ListAssets(ctx context.Context) ([]Asset, error) {
	var resp dataEnvelope[[]Asset]
	endpoint := fmt.Sprintf("%s?limit=%d", assetsPath, listLimit)
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, assetsPath+"/"+url.PathEscape(id), nil, nil)
}

// Ping checks that the credentials are accepted.
func (c *Client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, assetsPath+"?limit=1", nil, nil)
}

// PutChunk sends one chunk to a direct upload URL and returns the HTTP
// status. Upload URLs are pre-signed, so no credentials are attached.
func (c *Client) PutChunk(ctx context.Context, uploadURL string, chunk ChunkRequest) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(chunk.Payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", chunk.ContentType)
	req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", chunk.Start, chunk.End-1, chunk.Total))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send chunk: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(method, endpoint, resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// IsSuccessfulChunkStatus reports whether a chunk PUT was accepted.
func IsSuccessfulChunkStatus(status int) bool {
	return status == StatusResumeIncomplete || (status >= 200 && status < 300)
}
