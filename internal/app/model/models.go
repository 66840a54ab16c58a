package model

type MP4Status string

const (
	MP4Ready      MP4Status = "ready"
	MP4Generating MP4Status = "generating"
	MP4Disabled   MP4Status = "disabled"
)

type UploadResult struct {
	AssetID          string    `json:"asset_id"`
	UploadID         string    `json:"upload_id"`
	PlaybackID       string    `json:"playback_id,omitempty"`
	HLSURL           string    `json:"hls_url,omitempty"`
	MP4URL           string    `json:"mp4_url,omitempty"`
	MP4Status        MP4Status `json:"mp4_status"`
	Duration         float64   `json:"duration,omitempty"`
	FilePath         string    `json:"file_path"`
	FileSize         int64     `json:"file_size"`
	FileFormat       string    `json:"file_format"`
	DeletedOldVideos int       `json:"deleted_old_videos"`
}

type LoginResult struct {
	WasLoggedIn bool `json:"was_logged_in"`
}

type LogoutResult struct {
	WasLoggedIn bool `json:"was_logged_in"`
}

type StatusResult struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	TokenID         string `json:"token_id,omitempty"`
	Source          string `json:"source,omitempty"`
	Detail          string `json:"detail,omitempty"`
}
