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

type AssignmentHandler struct {
	dbclient core.DbClient
}

func NewAssignmentHandler(dbclient core.DbClient) *AssignmentHandler {
	return &AssignmentHandler{dbclient: dbclient}
}

type assignmentRequest struct {
	AssignmentName string `json:"assignment_name" validate:"required"`
	Course         string `json:"course"`
	Type           string `json:"type"`
	Status         string `json:"status" validate:"required,oneof=pending in-progress completed overdue"`
	DueDate        string `json:"dueDate" validate:"required"`
	Priority       string `json:"priority" validate:"required,oneof=low medium high"`
	Progress       int    `json:"progress" validate:"min=0,max=100"`
}

func (h *AssignmentHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	assignments, err := h.dbclient.ListAssignmentsByUser(r.Context(), userID)
	if err != nil {
		sendError(w, "Failed to fetch assignments.", http.StatusInternalServerError)
		return
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	sendSuccess(w, assignments, http.StatusOK)
}

func (h *AssignmentHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req assignmentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		sendError(w, "Invalid assignment payload.", http.StatusBadRequest)
		return
	}

	now := time.Now()
	a := &models.Assignment{
		ID:             uuid.NewString(),
		UserID:         userID,
		AssignmentName: req.AssignmentName,
		Course:         req.Course,
		Type:           req.Type,
		Status:         req.Status,
		DueDate:        req.DueDate,
		Priority:       req.Priority,
		Progress:       req.Progress,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.dbclient.CreateAssignment(r.Context(), a); err != nil {
		sendError(w, "Failed to create assignment.", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, a, http.StatusCreated)
}

func (h *AssignmentHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	a, err := h.ownedAssignment(r, userID)
	if err != nil {
		sendError(w, "Assignment not found.", http.StatusNotFound)
		return
	}
	sendSuccess(w, a, http.StatusOK)
}

func (h *AssignmentHandler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	a, err := h.ownedAssignment(r, userID)
	if err != nil {
		sendError(w, "Assignment not found.", http.StatusNotFound)
		return
	}

	var req assignmentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		sendError(w, "Invalid assignment payload.", http.StatusBadRequest)
		return
	}

	a.AssignmentName = req.AssignmentName
	a.Course = req.Course
	a.Type = req.Type
	a.Status = req.Status
	a.DueDate = req.DueDate
	a.Priority = req.Priority
	a.Progress = req.Progress

	if err := h.dbclient.UpdateAssignment(r.Context(), a); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			sendError(w, "Assignment not found.", http.StatusNotFound)
			return
		}
		sendError(w, "Failed to update assignment.", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, a, http.StatusOK)
}

func (h *AssignmentHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	a, err := h.ownedAssignment(r, userID)
	if err != nil {
		sendError(w, "Assignment not found.", http.StatusNotFound)
		return
	}

	if err := h.dbclient.DeleteAssignment(r.Context(), a.ID); err != nil {
		sendError(w, "Failed to delete assignment.", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]string{"message": "Assignment deleted successfully."}, http.StatusOK)
}

func (h *AssignmentHandler) ownedAssignment(r *http.Request, userID string) (*models.Assignment, error) {
	id := chi.URLParam(r, "assignmentId")
	a, err := h.dbclient.GetAssignmentByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if a == nil || a.UserID != userID {
		return nil, errNotOwned
	}
	return a, nil
}
