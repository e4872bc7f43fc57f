package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/MaggPerez/stututor-backend/internal/api/middlewares"
	"github.com/MaggPerez/stututor-backend/internal/core/llm"
	"github.com/MaggPerez/stututor-backend/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Message    string `json:"message" validate:"required"`
	ThreadID   string `json:"threadId"`
	DocumentID string `json:"documentId"`
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := decodeAndValidate(r, &req); err != nil {
		sendError(w, "Message is required.", http.StatusBadRequest)
		return
	}

	turn, err := h.chat.SendMessage(r.Context(), userID, req.ThreadID, req.DocumentID, req.Message)
	if err != nil {
		if errors.Is(err, services.ErrThreadNotFound) {
			sendError(w, "Chat thread not found.", http.StatusNotFound)
			return
		}
		code, msg := llm.UserFacingError(err)
		sendError(w, msg, code)
		return
	}

	sendSuccess(w, map[string]interface{}{
		"message":     "Message sent successfully.",
		"threadId":    turn.ThreadID,
		"response":    turn.Response,
		"chatHistory": turn.History,
	}, http.StatusOK)
}

func (h *ChatHandler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	threadID := chi.URLParam(r, "threadId")
	conv, msgs, err := h.chat.GetThread(r.Context(), userID, threadID)
	if err != nil {
		if errors.Is(err, services.ErrThreadNotFound) {
			sendError(w, "Chat thread not found.", http.StatusNotFound)
			return
		}
		sendError(w, "Failed to fetch chat history.", http.StatusInternalServerError)
		return
	}

	sendSuccess(w, map[string]interface{}{
		"threadId":   conv.ID,
		"messages":   msgs,
		"documentId": conv.DocumentID,
		"createdAt":  conv.CreatedAt,
		"updatedAt":  conv.UpdatedAt,
	}, http.StatusOK)
}
