package mux

import (
	"fmt"
	"strconv"
	"time"
)

const streamBaseURL = "https://stream.mux.com"

type UploadStatus string

const (
	UploadWaiting      UploadStatus = "waiting"
	UploadAssetCreated UploadStatus = "asset_created"
	UploadErrored      UploadStatus = "errored"
	UploadCancelled    UploadStatus = "cancelled"
	UploadTimedOut     UploadStatus = "timed_out"
)

// Upload is a Mux direct upload: the server-side session a file is
// transferred into.
type Upload struct {
	ID               string            `json:"id"`
	URL              string            `json:"url"`
	Status           UploadStatus      `json:"status"`
	AssetID          string            `json:"asset_id,omitempty"`
	Timeout          int               `json:"timeout,omitempty"`
	CORSOrigin       string            `json:"cors_origin,omitempty"`
	Error            *UploadError      `json:"error,omitempty"`
	NewAssetSettings *NewAssetSettings `json:"new_asset_settings,omitempty"`
	Test             bool              `json:"test,omitempty"`
}

type UploadError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type UploadSettings struct {
	PlaybackPolicy  string
	VideoQuality    string
	StaticRendition string
	Title           string
	Passthrough     string
}

type NewAssetSettings struct {
	PlaybackPolicies []string                `json:"playback_policies"`
	VideoQuality     string                  `json:"video_quality,omitempty"`
	StaticRenditions []StaticRenditionConfig `json:"static_renditions,omitempty"`
	Passthrough      string                  `json:"passthrough,omitempty"`
	Meta             *AssetMeta              `json:"meta,omitempty"`
}

type StaticRenditionConfig struct {
	Resolution string `json:"resolution"`
}

type AssetMeta struct {
	Title      string `json:"title,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

type Asset struct {
	ID               string            `json:"id"`
	Status           string            `json:"status"`
	PlaybackIDs      []PlaybackID      `json:"playback_ids"`
	Duration         float64           `json:"duration,omitempty"`
	CreatedAt        string            `json:"created_at"`
	AspectRatio      string            `json:"aspect_ratio,omitempty"`
	VideoQuality     string            `json:"video_quality,omitempty"`
	Passthrough      string            `json:"passthrough,omitempty"`
	StaticRenditions *StaticRenditions `json:"static_renditions,omitempty"`
}

type PlaybackID struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

type StaticRenditions struct {
	Files []StaticRendition `json:"files"`
}

type StaticRendition struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Resolution string `json:"resolution"`
	Name       string `json:"name"`
	Ext        string `json:"ext"`
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

type createUploadRequest struct {
	CORSOrigin       string           `json:"cors_origin"`
	NewAssetSettings NewAssetSettings `json:"new_asset_settings"`
}

func (u *Upload) ErrorMessage() string {
	if u.Error == nil {
		return ""
	}
	if u.Error.Message != "" {
		return u.Error.Message
	}
	return u.Error.Type
}

// CreatedTime parses created_at, which Mux sends as a unix timestamp string.
func (a *Asset) CreatedTime() (time.Time, error) {
	sec, err := strconv.ParseInt(a.CreatedAt, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("asset %s: invalid created_at %q: %w", a.ID, a.CreatedAt, err)
	}
	return time.Unix(sec, 0), nil
}

func (a *Asset) PlaybackID() string {
	if len(a.PlaybackIDs) == 0 {
		return ""
	}
	return a.PlaybackIDs[0].ID
}

func (a *Asset) HLSURL() string {
	id := a.PlaybackID()
	if id == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s.m3u8", streamBaseURL, id)
}

// MP4URL returns the first ready mp4 static rendition, or "" while none
// is ready.
func (a *Asset) MP4URL() string {
	id := a.PlaybackID()
	if id == "" || a.StaticRenditions == nil {
		return ""
	}
	for _, r := range a.StaticRenditions.Files {
		if r.Status == "ready" && r.Ext == "mp4" {
			return fmt.Sprintf("%s/%s/%s", streamBaseURL, id, r.Name)
		}
	}
	return ""
}

// PredictedMP4URL is where the highest-resolution mp4 will be served once
// Mux finishes generating it.
func (a *Asset) PredictedMP4URL() string {
	id := a.PlaybackID()
	if id == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/highest.mp4", streamBaseURL, id)
}
