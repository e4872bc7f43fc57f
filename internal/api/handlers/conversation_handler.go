package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	middleware "github.com/MaggPerez/stututor-backend/internal/api/middlewares"
	"github.com/MaggPerez/stututor-backend/internal/core"
	"github.com/MaggPerez/stututor-backend/internal/models"
)

type ConversationHandler struct {
	dbclient core.DbClient
}

func NewConversationHandler(dbclient core.DbClient) *ConversationHandler {
	return &ConversationHandler{dbclient: dbclient}
}

// GetConversations lists the caller's threads, most recently updated first.
// Returns a bare array, matching what the chat sidebar consumes.
func (h *ConversationHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conversations, err := h.dbclient.ListConversationsByUser(r.Context(), userID)
	if err != nil {
		sendError(w, "Failed to fetch conversations.", http.StatusInternalServerError)
		return
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	sendJSON(w, conversations, http.StatusOK)
}

type createConversationRequest struct {
	Title string `json:"title"`
}

func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createConversationRequest
	_ = decodeAndValidate(r, &req)
	if req.Title == "" {
		req.Title = "New Conversation"
	}

	now := time.Now()
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     req.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.dbclient.CreateConversation(r.Context(), conv); err != nil {
		sendError(w, "Failed to create conversation.", http.StatusInternalServerError)
		return
	}
	sendJSON(w, conv, http.StatusCreated)
}

func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conv, err := h.ownedConversation(r, userID)
	if err != nil {
		sendError(w, "Conversation not found.", http.StatusNotFound)
		return
	}
	sendJSON(w, conv, http.StatusOK)
}

// GetMessages returns a thread's messages in timestamp order.
func (h *ConversationHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conv, err := h.ownedConversation(r, userID)
	if err != nil {
		sendError(w, "Conversation not found.", http.StatusNotFound)
		return
	}

	messages, err := h.dbclient.ListMessagesByConversation(r.Context(), conv.ID)
	if err != nil {
		sendError(w, "Failed to fetch messages.", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	sendJSON(w, messages, http.StatusOK)
}

// DeleteConversation removes the thread; its messages cascade with it.
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conv, err := h.ownedConversation(r, userID)
	if err != nil {
		sendError(w, "Conversation not found.", http.StatusNotFound)
		return
	}

	if err := h.dbclient.DeleteConversation(r.Context(), conv.ID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			sendError(w, "Conversation not found.", http.StatusNotFound)
			return
		}
		sendError(w, "Failed to delete conversation.", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]string{"message": "Conversation deleted successfully."}, http.StatusOK)
}

var errNotOwned = errors.New("conversation not owned by caller")

func (h *ConversationHandler) ownedConversation(r *http.Request, userID string) (*models.Conversation, error) {
	id := chi.URLParam(r, "conversationId")
	conv, err := h.dbclient.GetConversationByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if conv == nil || conv.UserID != userID {
		return nil, errNotOwned
	}
	return conv, nil
}
