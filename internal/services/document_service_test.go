package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaggPerez/stututor-backend/internal/models"
)

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) UploadFile(_ context.Context, bucket, key string, data io.Reader, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[key] = buf
	s.mu.Unlock()
	return fmt.Sprintf("https://%s.s3.us-east-2.amazonaws.com/%s", bucket, key), nil
}

func (s *memStorage) DeleteFile(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type staticExtractor struct {
	text string
	err  error
}

func (e *staticExtractor) ExtractText(context.Context, []byte, string) (string, error) {
	return e.text, e.err
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		size        int64
		contentType string
		wantErr     error
	}{
		{"valid pdf", 1024, "application/pdf", nil},
		{"exactly at cap", MaxUploadBytes, "application/pdf", nil},
		{"one byte over", MaxUploadBytes + 1, "application/pdf", ErrFileTooLarge},
		{"plain text", 1024, "text/plain", ErrNotPDF},
		{"empty content type", 1024, "", ErrNotPDF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.size, tt.contentType)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestStoreWithoutConversation(t *testing.T) {
	db := newMemDB()
	storage := newMemStorage()
	svc := NewDocumentService(db, storage, &staticExtractor{text: "x"}, "pdfs")

	stored, err := svc.Store(context.Background(), "user-1", "", "notes.pdf", "application/pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Contains(t, stored.URL, "https://pdfs.s3.")
	assert.True(t, strings.HasSuffix(stored.Path, ".pdf"))
	assert.Len(t, storage.objects, 1)
}

func TestStoreWithConversation(t *testing.T) {
	db := newMemDB()
	storage := newMemStorage()
	svc := NewDocumentService(db, storage, &staticExtractor{text: "x"}, "pdfs")
	conv := seedThread(db, "user-1")

	data := []byte("%PDF-1.4 content")
	stored, err := svc.Store(context.Background(), "user-1", conv.ID, "my notes.pdf", "application/pdf", data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Path, conv.ID+"/"))
	assert.Contains(t, stored.Path, "my_notes.pdf")

	got, _ := db.GetConversationByID(context.Background(), conv.ID)
	assert.Equal(t, "my notes.pdf", got.PDFFileName)
	assert.Equal(t, stored.Path, got.PDFFilePath)
	assert.Equal(t, int64(len(data)), got.PDFFileSize)
	assert.Equal(t, stored.URL, got.PDFStorageURL)
}

func TestStoreConversationNotOwned(t *testing.T) {
	db := newMemDB()
	storage := newMemStorage()
	svc := NewDocumentService(db, storage, &staticExtractor{text: "x"}, "pdfs")
	conv := seedThread(db, "owner")

	_, err := svc.Store(context.Background(), "intruder", conv.ID, "notes.pdf", "application/pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrThreadNotFound)
	// the rejected request must not leave an object under the owner's prefix
	assert.Empty(t, storage.objects)

	got, _ := db.GetConversationByID(context.Background(), conv.ID)
	assert.Empty(t, got.PDFFileName)
}

func TestStoreUnknownConversation(t *testing.T) {
	storage := newMemStorage()
	svc := NewDocumentService(newMemDB(), storage, &staticExtractor{text: "x"}, "pdfs")

	_, err := svc.Store(context.Background(), "user-1", "no-such-thread", "notes.pdf", "application/pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrThreadNotFound)
	assert.Empty(t, storage.objects)
}

// pdfUpdateFailDB fails the metadata write after the upload has happened.
type pdfUpdateFailDB struct {
	*memDB
}

func (d *pdfUpdateFailDB) UpdateConversationPDF(context.Context, string, models.PDFMeta) error {
	return errors.New("update failed")
}

func TestStoreCleansUpWhenMetadataWriteFails(t *testing.T) {
	inner := newMemDB()
	storage := newMemStorage()
	svc := NewDocumentService(&pdfUpdateFailDB{inner}, storage, &staticExtractor{text: "x"}, "pdfs")
	conv := seedThread(inner, "user-1")

	_, err := svc.Store(context.Background(), "user-1", conv.ID, "notes.pdf", "application/pdf", []byte("%PDF"))
	assert.Error(t, err)
	// the uploaded object is removed again on the failure path
	assert.Empty(t, storage.objects)
}

func TestStoreRejectsInvalidUploads(t *testing.T) {
	storage := newMemStorage()
	svc := NewDocumentService(newMemDB(), storage, &staticExtractor{text: "x"}, "pdfs")

	_, err := svc.Store(context.Background(), "user-1", "", "notes.txt", "text/plain", []byte("text"))
	assert.ErrorIs(t, err, ErrNotPDF)
	// storage is never touched on rejection
	assert.Empty(t, storage.objects)
}

func TestUploadAndExtract(t *testing.T) {
	db := newMemDB()
	storage := newMemStorage()
	svc := NewDocumentService(db, storage, &staticExtractor{text: "extracted text"}, "pdfs")

	doc, err := svc.UploadAndExtract(context.Background(), "user-1", "lecture 1.pdf", "application/pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "lecture 1", doc.Title)
	assert.Equal(t, "lecture 1.pdf", doc.OriginalFilename)
	assert.Equal(t, "extracted text", doc.Content)
	assert.Equal(t, "user-1", doc.UserID)

	// stored under a user-scoped key
	require.Len(t, storage.objects, 1)
	for key := range storage.objects {
		assert.True(t, strings.HasPrefix(key, "users/user-1/documents/"+doc.ID+"/"))
		assert.Contains(t, key, "lecture_1.pdf")
	}

	stored, _ := db.GetDocumentByID(context.Background(), doc.ID)
	require.NotNil(t, stored)
	assert.Equal(t, "extracted text", stored.Content)
}

func TestUploadAndExtractExtractorFailure(t *testing.T) {
	db := newMemDB()
	svc := NewDocumentService(db, newMemStorage(), &staticExtractor{err: errors.New("bad pdf")}, "pdfs")

	_, err := svc.UploadAndExtract(context.Background(), "user-1", "broken.pdf", "application/pdf", []byte("%PDF"))
	assert.Error(t, err)
	assert.Empty(t, db.documents)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"notes.pdf", "notes.pdf"},
		{"my notes.pdf", "my_notes.pdf"},
		{"../../etc/passwd", "passwd"},
		{"  padded.pdf  ", "padded.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitize(tt.in), tt.in)
	}
}
