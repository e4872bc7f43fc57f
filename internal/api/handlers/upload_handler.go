package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	middleware "github.com/MaggPerez/stututor-backend/internal/api/middlewares"
	"github.com/MaggPerez/stututor-backend/internal/services"
)

type UploadHandler struct {
	docs *services.DocumentService
}

func NewUploadHandler(docs *services.DocumentService) *UploadHandler {
	return &UploadHandler{docs: docs}
}

// UploadToStorage stores a PDF in the bucket and returns its public URL.
// With a conversation_id form value the thread's PDF metadata is updated too.
func (h *UploadHandler) UploadToStorage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	filename, contentType, data, ok := readUploadedFile(w, r)
	if !ok {
		return
	}

	conversationID := r.FormValue("conversation_id")
	stored, err := h.docs.Store(r.Context(), userID, conversationID, filename, contentType, data)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	sendSuccess(w, stored, http.StatusOK)
}

// UploadDocument stores the PDF, extracts its text, and records a document
// row for chat context.
func (h *UploadHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	filename, contentType, data, ok := readUploadedFile(w, r)
	if !ok {
		return
	}

	doc, err := h.docs.UploadAndExtract(r.Context(), userID, filename, contentType, data)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	sendSuccess(w, map[string]interface{}{
		"message":    "File uploaded successfully.",
		"documentId": doc.ID,
		"title":      doc.Title,
		"fileSize":   doc.FileSize,
	}, http.StatusCreated)
}

// GetDocuments lists the caller's documents without their content.
func (h *UploadHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	documents, err := h.docs.ListByUser(r.Context(), userID)
	if err != nil {
		sendError(w, "Failed to fetch documents.", http.StatusInternalServerError)
		return
	}

	sendSuccess(w, map[string]interface{}{
		"documents": documents,
		"count":     len(documents),
	}, http.StatusOK)
}

// readUploadedFile pulls the multipart "file" field, enforcing the size cap
// at the request-body level before buffering.
func readUploadedFile(w http.ResponseWriter, r *http.Request) (filename, contentType string, data []byte, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadBytes+4096)
	if err := r.ParseMultipartForm(services.MaxUploadBytes); err != nil {
		sendError(w, "File exceeds the 10MB limit.", http.StatusBadRequest)
		return "", "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		sendError(w, "No PDF file provided.", http.StatusBadRequest)
		return "", "", nil, false
	}
	defer file.Close()

	contentType = header.Header.Get("Content-Type")
	if err := services.ValidateUpload(header.Size, contentType); err != nil {
		writeUploadError(w, err)
		return "", "", nil, false
	}

	data, err = io.ReadAll(file)
	if err != nil {
		sendError(w, "Failed to read uploaded file.", http.StatusInternalServerError)
		return "", "", nil, false
	}

	// Strip any path components from the client-supplied name.
	return filepath.Base(header.Filename), contentType, data, true
}

func writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrFileTooLarge):
		sendError(w, "File exceeds the 10MB limit.", http.StatusBadRequest)
	case errors.Is(err, services.ErrNotPDF):
		sendError(w, "File must be a PDF.", http.StatusBadRequest)
	case errors.Is(err, services.ErrThreadNotFound):
		sendError(w, "Conversation not found.", http.StatusNotFound)
	default:
		sendError(w, "Upload failed. Please try again.", http.StatusInternalServerError)
	}
}
