// Package blobstore stores lab report attachments. It defines the BlobStore
// interface, an in-memory implementation used as the local fallback, a
// Fallback store that pairs a remote store with a local one, and Echo HTTP
// handlers for upload, download, metadata retrieval and deletion.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrBlobNotFound       = errors.New("attachment not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrMissingFileName    = errors.New("file name is required")
)

// MaxFileSize is the maximum allowed attachment size in bytes (20 MB).
const MaxFileSize = 20 * 1024 * 1024

// AllowedContentTypes lists the file types a lab report can carry.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"text/plain":      true,
	"text/csv":        true,
}

// BlobMetadata describes a stored attachment.
type BlobMetadata struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	LabReportID string    `json:"lab_report_id,omitempty"`
	PatientID   string    `json:"patient_id,omitempty"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlobStore defines the contract for attachment storage backends.
type BlobStore interface {
	Upload(ctx context.Context, meta BlobMetadata, content io.Reader) (*BlobMetadata, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *BlobMetadata, error)
	Delete(ctx context.Context, id string) error
	GetMetadata(ctx context.Context, id string) (*BlobMetadata, error)
}

// Prepare validates an upload, reads its content and fills in the id, size,
// hash and creation time. Every BlobStore implementation runs it first.
func Prepare(meta BlobMetadata, content io.Reader) (BlobMetadata, []byte, error) {
	if strings.TrimSpace(meta.FileName) == "" {
		return meta, nil, ErrMissingFileName
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(meta.ContentType, ";", 2)[0]))
	if !AllowedContentTypes[ct] {
		return meta, nil, fmt.Errorf("%w: %q", ErrInvalidContentType, meta.ContentType)
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return meta, nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return meta, nil, ErrFileTooLarge
	}

	h := sha256.Sum256(data)
	meta.ID = uuid.New().String()
	meta.ContentType = ct
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", h)
	meta.CreatedAt = time.Now().UTC()
	return meta, data, nil
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

type storedBlob struct {
	metadata BlobMetadata
	content  []byte
}

// InMemoryBlobStore is a thread-safe, in-memory BlobStore.
type InMemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]*storedBlob
}

func NewInMemoryBlobStore() *InMemoryBlobStore {
	return &InMemoryBlobStore{
		blobs: make(map[string]*storedBlob),
	}
}

func (s *InMemoryBlobStore) Upload(_ context.Context, meta BlobMetadata, content io.Reader) (*BlobMetadata, error) {
	meta, data, err := Prepare(meta, content)
	if err != nil {
		return nil, err
	}
	s.put(meta, data)
	out := meta
	return &out, nil
}

// put stores already prepared content under meta.ID.
func (s *InMemoryBlobStore) put(meta BlobMetadata, data []byte) {
	s.mu.Lock()
	s.blobs[meta.ID] = &storedBlob{metadata: meta, content: data}
	s.mu.Unlock()
}

func (s *InMemoryBlobStore) Download(_ context.Context, id string) (io.ReadCloser, *BlobMetadata, error) {
	s.mu.RLock()
	blob, ok := s.blobs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrBlobNotFound
	}
	meta := blob.metadata
	return io.NopCloser(bytes.NewReader(blob.content)), &meta, nil
}

func (s *InMemoryBlobStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[id]; !ok {
		return ErrBlobNotFound
	}
	delete(s.blobs, id)
	return nil
}

func (s *InMemoryBlobStore) GetMetadata(_ context.Context, id string) (*BlobMetadata, error) {
	s.mu.RLock()
	blob, ok := s.blobs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrBlobNotFound
	}
	meta := blob.metadata
	return &meta, nil
}

// ---------------------------------------------------------------------------
// Remote + local pairing
// ---------------------------------------------------------------------------

// Fallback writes and reads through a remote store and falls back to a local
// in-memory store whenever the remote call fails. Validation errors are
// returned as they are: they would fail locally too.
type Fallback struct {
	remote BlobStore
	local  *InMemoryBlobStore
	logger zerolog.Logger
}

func NewFallback(remote BlobStore, local *InMemoryBlobStore, logger zerolog.Logger) *Fallback {
	return &Fallback{remote: remote, local: local, logger: logger}
}

func (f *Fallback) Upload(ctx context.Context, meta BlobMetadata, content io.Reader) (*BlobMetadata, error) {
	prepared, data, err := Prepare(meta, content)
	if err != nil {
		return nil, err
	}
	out, err := f.remote.Upload(ctx, meta, bytes.NewReader(data))
	if err == nil {
		return out, nil
	}
	f.logger.Warn().Err(err).Str("file_name", meta.FileName).Msg("remote attachment upload failed, keeping local copy")
	f.local.put(prepared, data)
	return &prepared, nil
}

func (f *Fallback) Download(ctx context.Context, id string) (io.ReadCloser, *BlobMetadata, error) {
	rc, meta, err := f.remote.Download(ctx, id)
	if err == nil {
		return rc, meta, nil
	}
	f.logRemote(err, id, "download")
	return f.local.Download(ctx, id)
}

func (f *Fallback) GetMetadata(ctx context.Context, id string) (*BlobMetadata, error) {
	meta, err := f.remote.GetMetadata(ctx, id)
	if err == nil {
		return meta, nil
	}
	f.logRemote(err, id, "metadata")
	return f.local.GetMetadata(ctx, id)
}

// Delete removes the attachment wherever it lives. It fails with
// ErrBlobNotFound only when neither store had it.
func (f *Fallback) Delete(ctx context.Context, id string) error {
	remoteErr := f.remote.Delete(ctx, id)
	if remoteErr != nil {
		f.logRemote(remoteErr, id, "delete")
	}
	localErr := f.local.Delete(ctx, id)
	if remoteErr == nil || localErr == nil {
		return nil
	}
	return localErr
}

func (f *Fallback) logRemote(err error, id, op string) {
	if errors.Is(err, ErrBlobNotFound) {
		return
	}
	f.logger.Warn().Err(err).Str("attachment_id", id).Str("op", op).Msg("remote attachment store failed, using local copy")
}
