package upload

import (
	"context"

	"vidyeet/internal/mux"
)

type Outcome struct {
	UploadID string
	Asset    *mux.Asset
	Evicted  int
}

// Pipeline runs the remote half of an upload: open a session, send the
// file, then wait for the asset. Each step only starts after the previous
// one succeeded.
type Pipeline struct {
	sessions    *SessionFactory
	transporter *ChunkTransporter
	poller      *CompletionPoller
}

func NewPipeline(sessions *SessionFactory, transporter *ChunkTransporter, poller *CompletionPoller) *Pipeline {
	return &Pipeline{
		sessions:    sessions,
		transporter: transporter,
		poller:      poller,
	}
}

func (p *Pipeline) Run(ctx context.Context, file File, sink Sink) (*Outcome, error) {
	sink.Emit(ctx, CreatingSession{Name: file.Name})
	session, evicted, err := p.sessions.CreateWithCapacity(ctx)
	if err != nil {
		return nil, err
	}
	sink.Emit(ctx, SessionCreated{UploadID: session.ID})

	if err := p.transporter.UploadFile(ctx, session, file, sink); err != nil {
		return nil, err
	}

	asset, err := p.poller.WaitForCompletion(ctx, session.ID, sink)
	if err != nil {
		return nil, err
	}
	sink.Emit(ctx, Completed{AssetID: asset.ID})

	return &Outcome{
		UploadID: session.ID,
		Asset:    asset,
		Evicted:  evicted,
	}, nil
}
