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

type CourseHandler struct {
	dbclient core.DbClient
}

func NewCourseHandler(dbclient core.DbClient) *CourseHandler {
	return &CourseHandler{dbclient: dbclient}
}

type courseRequest struct {
	Title       string   `json:"title" validate:"required"`
	Professor   string   `json:"professor"`
	Description string   `json:"description"`
	Icon        string   `json:"icon" validate:"omitempty,oneof=math science chemistry literature art music physical language psychology programming"`
	CourseDays  []string `json:"course_days" validate:"dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
}

func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	courses, err := h.dbclient.ListCoursesByUser(r.Context(), userID)
	if err != nil {
		sendError(w, "Failed to fetch courses.", http.StatusInternalServerError)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	sendSuccess(w, courses, http.StatusOK)
}

func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req courseRequest
	if err := decodeAndValidate(r, &req); err != nil {
		sendError(w, "Invalid course payload.", http.StatusBadRequest)
		return
	}

	now := time.Now()
	course := &models.Course{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Professor:   req.Professor,
		Description: req.Description,
		Icon:        req.Icon,
		CourseDays:  req.CourseDays,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.dbclient.CreateCourse(r.Context(), course); err != nil {
		sendError(w, "Failed to create course.", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, course, http.StatusCreated)
}

func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	course, err := h.ownedCourse(r, userID)
	if err != nil {
		sendError(w, "Course not found.", http.StatusNotFound)
		return
	}
	sendSuccess(w, course, http.StatusOK)
}

func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	course, err := h.ownedCourse(r, userID)
	if err != nil {
		sendError(w, "Course not found.", http.StatusNotFound)
		return
	}

	var req courseRequest
	if err := decodeAndValidate(r, &req); err != nil {
		sendError(w, "Invalid course payload.", http.StatusBadRequest)
		return
	}

	course.Title = req.Title
	course.Professor = req.Professor
	course.Description = req.Description
	course.Icon = req.Icon
	course.CourseDays = req.CourseDays
	course.StartTime = req.StartTime
	course.EndTime = req.EndTime

	if err := h.dbclient.UpdateCourse(r.Context(), course); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			sendError(w, "Course not found.", http.StatusNotFound)
			return
		}
		sendError(w, "Failed to update course.", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, course, http.StatusOK)
}

func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	course, err := h.ownedCourse(r, userID)
	if err != nil {
		sendError(w, "Course not found.", http.StatusNotFound)
		return
	}

	if err := h.dbclient.DeleteCourse(r.Context(), course.ID); err != nil {
		sendError(w, "Failed to delete course.", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]string{"message": "Course deleted successfully."}, http.StatusOK)
}

func (h *CourseHandler) ownedCourse(r *http.Request, userID string) (*models.Course, error) {
	id := chi.URLParam(r, "courseId")
	course, err := h.dbclient.GetCourseByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if course == nil || course.UserID != userID {
		return nil, errNotOwned
	}
	return course, nil
}
