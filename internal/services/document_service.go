package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MaggPerez/stututor-backend/internal/core"
	"github.com/MaggPerez/stututor-backend/internal/models"
)

// MaxUploadBytes caps PDF uploads at 10MB.
const MaxUploadBytes = 10 << 20

var (
	ErrFileTooLarge = errors.New("file exceeds the 10MB limit")
	ErrNotPDF       = errors.New("file must be a PDF")
)

type DocumentService struct {
	db        core.DbClient
	storage   core.ObjectClient
	extractor core.TextExtractor
	bucket    string
}

func NewDocumentService(db core.DbClient, storage core.ObjectClient, extractor core.TextExtractor, bucket string) *DocumentService {
	return &DocumentService{db: db, storage: storage, extractor: extractor, bucket: bucket}
}

// ValidateUpload rejects oversized or non-PDF files before any storage call.
func ValidateUpload(size int64, contentType string) error {
	if size > MaxUploadBytes {
		return ErrFileTooLarge
	}
	if contentType != "application/pdf" {
		return ErrNotPDF
	}
	return nil
}

// StoredFile describes where an uploaded file landed in the bucket.
type StoredFile struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Store uploads the bytes and returns the public URL. When conversationID is
// set the object key is scoped to the conversation and the thread's PDF
// metadata is updated. Ownership is checked before the upload so a rejected
// request leaves nothing in the bucket.
func (s *DocumentService) Store(ctx context.Context, userID, conversationID, filename, contentType string, data []byte) (*StoredFile, error) {
	if err := ValidateUpload(int64(len(data)), contentType); err != nil {
		return nil, err
	}

	if conversationID != "" {
		conv, err := s.db.GetConversationByID(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		if conv == nil || conv.UserID != userID {
			return nil, ErrThreadNotFound
		}
	}

	key := s.objectKey(conversationID, filename)

	uploadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	url, err := s.storage.UploadFile(uploadCtx, s.bucket, key, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	if conversationID != "" {
		meta := models.PDFMeta{
			FileName:   filename,
			FilePath:   key,
			FileSize:   int64(len(data)),
			StorageURL: url,
		}
		if err := s.db.UpdateConversationPDF(ctx, conversationID, meta); err != nil {
			// don't leave the object orphaned when the row update fails
			_ = s.storage.DeleteFile(ctx, s.bucket, key)
			return nil, fmt.Errorf("update conversation pdf: %w", err)
		}
	}

	return &StoredFile{URL: url, Path: key}, nil
}

// UploadAndExtract stores the PDF, extracts its text and writes a documents
// row the chat turn can use as context.
func (s *DocumentService) UploadAndExtract(ctx context.Context, userID, filename, contentType string, data []byte) (*models.Document, error) {
	if err := ValidateUpload(int64(len(data)), contentType); err != nil {
		return nil, err
	}

	docID := uuid.NewString()
	key := path.Join("users", userID, "documents", docID, sanitize(filename))

	uploadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if _, err := s.storage.UploadFile(uploadCtx, s.bucket, key, bytes.NewReader(data), contentType); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	text, err := s.extractor.ExtractText(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	doc := &models.Document{
		ID:               docID,
		UserID:           userID,
		Title:            strings.TrimSuffix(filename, ".pdf"),
		OriginalFilename: filename,
		Content:          text,
		FileSize:         int64(len(data)),
		UploadDate:       time.Now(),
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist document: %w", err)
	}
	return doc, nil
}

func (s *DocumentService) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	return s.db.ListDocumentsByUser(ctx, userID)
}

// objectKey keys uploads by conversation ID and timestamp; files with no
// conversation land under a random name at the bucket root.
func (s *DocumentService) objectKey(conversationID, filename string) string {
	ts := time.Now().Unix()
	if conversationID != "" {
		return path.Join(conversationID, fmt.Sprintf("%d_%s", ts, sanitize(filename)))
	}
	return fmt.Sprintf("%d_%s.pdf", ts, randSuffix())
}

func sanitize(filename string) string {
	filename = path.Base(strings.TrimSpace(filename))
	return strings.ReplaceAll(filename, " ", "_")
}

func randSuffix() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 7)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}
