package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/MaggPerez/stututor-backend/internal/services"
)

type GenerateHandler struct {
	gen *services.GenerateService
}

func NewGenerateHandler(gen *services.GenerateService) *GenerateHandler {
	return &GenerateHandler{gen: gen}
}

type quizRequest struct {
	Topic        string `json:"topic" validate:"required"`
	Difficulty   string `json:"difficulty" validate:"required"`
	NumQuestions int    `json:"numQuestions" validate:"required,min=1,max=50"`
}

// GenerateQuiz accepts either JSON ({topic, difficulty, numQuestions}) or
// multipart form data (file + params) and returns the raw model text.
func (h *GenerateHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	if isMultipart(r) {
		h.quizFromPDF(w, r)
		return
	}

	var req quizRequest
	if err := decodeAndValidate(r, &req); err != nil {
		sendJSON(w, map[string]string{"error": "topic, difficulty and numQuestions are required"}, http.StatusBadRequest)
		return
	}

	text, err := h.gen.QuizFromTopic(r.Context(), req.Topic, req.Difficulty, req.NumQuestions)
	if err != nil {
		sendJSON(w, map[string]string{"error": "Failed to generate quiz"}, http.StatusInternalServerError)
		return
	}
	sendJSON(w, map[string]string{"response": text}, http.StatusOK)
}

func (h *GenerateHandler) quizFromPDF(w http.ResponseWriter, r *http.Request) {
	data, mimeType, ok := readGenerationFile(w, r)
	if !ok {
		return
	}
	difficulty := r.FormValue("difficulty")
	numQuestions, err := strconv.Atoi(r.FormValue("numQuestions"))
	if err != nil || numQuestions < 1 {
		sendJSON(w, map[string]string{"error": "numQuestions must be a positive number"}, http.StatusBadRequest)
		return
	}

	text, err := h.gen.QuizFromPDF(r.Context(), data, mimeType, difficulty, numQuestions)
	if err != nil {
		sendJSON(w, map[string]string{"error": "Failed to generate quiz"}, http.StatusInternalServerError)
		return
	}
	sendJSON(w, map[string]string{"response": text}, http.StatusOK)
}

type studyNotesRequest struct {
	Topic string `json:"topic" validate:"required"`
	Focus string `json:"focus"`
}

// GenerateStudyNotes mirrors GenerateQuiz for the study-notes shape.
func (h *GenerateHandler) GenerateStudyNotes(w http.ResponseWriter, r *http.Request) {
	if isMultipart(r) {
		data, mimeType, ok := readGenerationFile(w, r)
		if !ok {
			return
		}
		text, err := h.gen.StudyNotesFromPDF(r.Context(), data, mimeType, r.FormValue("focus"))
		if err != nil {
			sendJSON(w, map[string]string{"error": "Failed to generate study notes"}, http.StatusInternalServerError)
			return
		}
		sendJSON(w, map[string]string{"response": text}, http.StatusOK)
		return
	}

	var req studyNotesRequest
	if err := decodeAndValidate(r, &req); err != nil {
		sendJSON(w, map[string]string{"error": "topic is required"}, http.StatusBadRequest)
		return
	}

	text, err := h.gen.StudyNotesFromTopic(r.Context(), req.Topic, req.Focus)
	if err != nil {
		sendJSON(w, map[string]string{"error": "Failed to generate study notes"}, http.StatusInternalServerError)
		return
	}
	sendJSON(w, map[string]string{"response": text}, http.StatusOK)
}

// ParseQuizResponse validates that model output is the documented quiz shape.
// The HTTP routes hand raw text through; this helper exists for callers that
// want the parsed questions.
func ParseQuizResponse(raw string) ([]map[string]interface{}, error) {
	var payload struct {
		Questions []map[string]interface{} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}
	return payload.Questions, nil
}

func isMultipart(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data")
}

func readGenerationFile(w http.ResponseWriter, r *http.Request) (data []byte, mimeType string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadBytes+4096)
	if err := r.ParseMultipartForm(services.MaxUploadBytes); err != nil {
		sendJSON(w, map[string]string{"error": "File exceeds the 10MB limit"}, http.StatusBadRequest)
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		sendJSON(w, map[string]string{"error": "No file provided"}, http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	mimeType = header.Header.Get("Content-Type")
	if err := services.ValidateUpload(header.Size, mimeType); err != nil {
		sendJSON(w, map[string]string{"error": "File must be a PDF under 10MB"}, http.StatusBadRequest)
		return nil, "", false
	}

	data, err = io.ReadAll(file)
	if err != nil {
		sendJSON(w, map[string]string{"error": "Failed to read file"}, http.StatusInternalServerError)
		return nil, "", false
	}
	return data, mimeType, true
}
