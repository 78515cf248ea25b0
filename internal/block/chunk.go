package block

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrMalformedBlock indicates a block file whose framing is broken: a
// length prefix was read but fewer than that many ciphertext bytes
// followed, or the prefix exceeds maxChunkLength.
var ErrMalformedBlock = errors.New("block: malformed block (truncated chunk)")

// lengthPrefixSize is the width of the big-endian chunk length header.
const lengthPrefixSize = 4

// maxChunkLength bounds a single chunk's on-disk size, guarding against a
// corrupted length prefix driving an unbounded allocation.
const maxChunkLength = 256 * 1024 * 1024

// ChunkWriter frames a sequence of opaque byte chunks into a block file:
// each chunk is written as a 4-byte big-endian length followed by exactly
// that many bytes. Writes land in a uuid-named temp file beside the
// final path and are only renamed into place on Close, so a writer that
// dies mid-block never leaves a half-written file at its permanent
// location.
type ChunkWriter struct {
	file    *os.File
	bw      *bufio.Writer
	tmpPath string
	dst     string
}

// CreateChunkWriter opens a temp file beside path for writing a block.
// The block only appears at path once Close succeeds.
func CreateChunkWriter(path string) (*ChunkWriter, error) {
	tmpPath := filepath.Join(filepath.Dir(path), "."+uuid.NewString()+".tmp")
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("block: create %s: %w", tmpPath, err)
	}
	return &ChunkWriter{file: f, bw: bufio.NewWriter(f), tmpPath: tmpPath, dst: path}, nil
}

// Write appends one framed chunk containing data.
func (w *ChunkWriter) Write(data []byte) error {
	var header [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))

	if _, err := w.bw.Write(header[:]); err != nil {
		return fmt.Errorf("block: write chunk header: %w", err)
	}
	if _, err := w.bw.Write(data); err != nil {
		return fmt.Errorf("block: write chunk body: %w", err)
	}
	return nil
}

// Close flushes buffered data, closes the temp file, and renames it into
// its final location.
func (w *ChunkWriter) Close() error {
	if err := w.bw.Flush(); err != nil {
		_ = w.file.Close()
		_ = os.Remove(w.tmpPath)
		return fmt.Errorf("block: flush: %w", err)
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.tmpPath)
		return fmt.Errorf("block: close temp file: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.dst); err != nil {
		return fmt.Errorf("block: rename into place: %w", err)
	}
	return nil
}

// Abort closes and discards the temp file without touching the final
// path. Callers use this on an error path where Close would otherwise
// commit a partial block.
func (w *ChunkWriter) Abort() error {
	_ = w.bw.Flush()
	_ = w.file.Close()
	return os.Remove(w.tmpPath)
}

// ChunkReader reads a sequence of framed chunks previously written by a
// ChunkWriter. Frames are self-delimiting: the reader does not need to
// know the chunk size used at encryption time.
type ChunkReader struct {
	file *os.File
	br   *bufio.Reader
}

// OpenChunkReader opens path for reading framed chunks.
func OpenChunkReader(path string) (*ChunkReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("block: open %s: %w", path, err)
	}
	return &ChunkReader{file: f, br: bufio.NewReader(f)}, nil
}

// Next returns the next chunk's body, or ok=false at a clean EOF between
// chunks. It fails with ErrMalformedBlock if a length prefix is read but
// the body is short, or if the prefix exceeds maxChunkLength.
func (r *ChunkReader) Next() (data []byte, ok bool, err error) {
	var header [lengthPrefixSize]byte
	if _, err := io.ReadFull(r.br, header[:]); err != nil {
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("block: read chunk header: %w", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > maxChunkLength {
		return nil, false, ErrMalformedBlock
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return nil, false, ErrMalformedBlock
	}
	return buf, true, nil
}

// Close releases the underlying file handle.
func (r *ChunkReader) Close() error {
	return r.file.Close()
}
