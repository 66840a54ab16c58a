package upload

import (
	"errors"
	"fmt"
	"io"
)

// Chunk is a contiguous byte range of the file. End is exclusive.
type Chunk struct {
	Index   int
	Start   int64
	End     int64
	Total   int64
	Payload []byte
}

func (c Chunk) Len() int64 { return c.End - c.Start }

// ContentRange renders the inclusive range header value for the chunk.
func (c Chunk) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", c.Start, c.End-1, c.Total)
}

// ChunkCount is ceil(total / chunkSize).
func ChunkCount(total, chunkSize int64) int {
	if total <= 0 || chunkSize <= 0 {
		return 0
	}
	return int((total + chunkSize - 1) / chunkSize)
}

// ChunkReader produces chunks lazily, one read per chunk. The payload of a
// returned chunk is only valid until the next call to Next.
type ChunkReader struct {
	r         io.Reader
	total     int64
	chunkSize int64
	offset    int64
	index     int
	buf       []byte
}

func NewChunkReader(r io.Reader, total, chunkSize int64) *ChunkReader {
	return &ChunkReader{
		r:         r,
		total:     total,
		chunkSize: chunkSize,
	}
}

func (cr *ChunkReader) Count() int {
	return ChunkCount(cr.total, cr.chunkSize)
}

// Next returns the next chunk, or io.EOF once the whole file was read.
func (cr *ChunkReader) Next() (Chunk, error) {
	if cr.offset >= cr.total || cr.chunkSize <= 0 {
		return Chunk{}, io.EOF
	}

	size := min(cr.chunkSize, cr.total-cr.offset)
	if int64(cap(cr.buf)) < size {
		cr.buf = make([]byte, size)
	}
	payload := cr.buf[:size]

	if _, err := io.ReadFull(cr.r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Chunk{}, fmt.Errorf("failed to read bytes %d-%d: %w", cr.offset, cr.offset+size-1, err)
	}

	chunk := Chunk{
		Index:   cr.index,
		Start:   cr.offset,
		End:     cr.offset + size,
		Total:   cr.total,
		Payload: payload,
	}
	cr.offset += size
	cr.index++

	return chunk, nil
}
