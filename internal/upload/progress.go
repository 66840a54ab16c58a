package upload

import "context"

type Phase string

const (
	PhaseValidating      Phase = "validating"
	PhaseValidated       Phase = "validated"
	PhaseCreatingSession Phase = "creating_session"
	PhaseSessionCreated  Phase = "session_created"
	PhaseUploadingFile   Phase = "uploading_file"
	PhaseUploadingChunk  Phase = "uploading_chunk"
	PhaseFileUploaded    Phase = "file_uploaded"
	PhaseWaitingForAsset Phase = "waiting_for_asset"
	PhaseCompleted       Phase = "completed"
)

// Event is a progress notification. The set of implementations is closed;
// consumers switch on the concrete type.
type Event interface {
	Phase() Phase
	isEvent()
}

// Sink receives progress events in emission order.
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

type Validating struct {
	Path string
}

type Validated struct {
	Name   string
	Size   int64
	Format string
}

type CreatingSession struct {
	Name string
}

type SessionCreated struct {
	UploadID string
}

type UploadingFile struct {
	Name        string
	Size        int64
	TotalChunks int
}

// UploadingChunk is emitted once per acknowledged chunk. Current is 1-based.
type UploadingChunk struct {
	Current    int
	Total      int
	BytesSent  int64
	TotalBytes int64
}

type FileUploaded struct {
	Name string
	Size int64
}

type WaitingForAsset struct {
	UploadID       string
	ElapsedSeconds int64
}

type Completed struct {
	AssetID string
}

func (Validating) Phase() Phase      { return PhaseValidating }
func (Validated) Phase() Phase       { return PhaseValidated }
func (CreatingSession) Phase() Phase { return PhaseCreatingSession }
func (SessionCreated) Phase() Phase  { return PhaseSessionCreated }
func (UploadingFile) Phase() Phase   { return PhaseUploadingFile }
func (UploadingChunk) Phase() Phase  { return PhaseUploadingChunk }
func (FileUploaded) Phase() Phase    { return PhaseFileUploaded }
func (WaitingForAsset) Phase() Phase { return PhaseWaitingForAsset }
func (Completed) Phase() Phase       { return PhaseCompleted }

func (Validating) isEvent()      {}
func (Validated) isEvent()       {}
func (CreatingSession) isEvent() {}
func (SessionCreated) isEvent()  {}
func (UploadingFile) isEvent()   {}
func (UploadingChunk) isEvent()  {}
func (FileUploaded) isEvent()    {}
func (WaitingForAsset) isEvent() {}
func (Completed) isEvent()       {}
