package models

import (
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents an authenticated student account.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Conversation is a named chat thread belonging to one user. When a PDF is
// attached to the thread its storage metadata lives directly on the row.
type Conversation struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Title         string    `db:"title" json:"title"`
	DocumentID    string    `db:"document_id" json:"document_id,omitempty"`
	PDFFileName   string    `db:"pdf_file_name" json:"pdf_file_name,omitempty"`
	PDFFilePath   string    `db:"pdf_file_path" json:"pdf_file_path,omitempty"`
	PDFFileSize   int64     `db:"pdf_file_size" json:"pdf_file_size,omitempty"`
	PDFStorageURL string    `db:"pdf_storage_url" json:"pdf_storage_url,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// PDFMeta is the storage metadata stamped onto a conversation after an upload.
type PDFMeta struct {
	FileName   string `json:"file_name"`
	FilePath   string `json:"file_path"`
	FileSize   int64  `json:"file_size"`
	StorageURL string `json:"storage_url"`
}

// Message is one chat turn inside a conversation. Immutable once written;
// ordering within a thread is by timestamp.
type Message struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	Role           string    `db:"role" json:"role"`
	Content        string    `db:"content" json:"content"`
	Timestamp      time.Time `db:"timestamp" json:"timestamp"`
}

// Document holds the extracted text of an uploaded PDF, used as chat context.
type Document struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	Title            string    `db:"title" json:"title"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	Content          string    `db:"content" json:"-"`
	FileSize         int64     `db:"file_size" json:"file_size"`
	UploadDate       time.Time `db:"upload_date" json:"upload_date"`
}

// Course is a user-defined class shown on the dashboard and calendar.
type Course struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Professor   string    `db:"professor" json:"professor"`
	Description string    `db:"description" json:"description,omitempty"`
	Icon        string    `db:"icon" json:"icon"`
	CourseDays  []string  `db:"course_days" json:"course_days"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Assignment drives the calendar and dashboard widgets. The course link is by
// name, matching the dashboard forms.
type Assignment struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	AssignmentName string    `db:"assignment_name" json:"assignment_name"`
	Course         string    `db:"course" json:"course"`
	Type           string    `db:"type" json:"type"`
	Status         string    `db:"status" json:"status"`
	DueDate        string    `db:"due_date" json:"dueDate"`
	Priority       string    `db:"priority" json:"priority"`
	Progress       int       `db:"progress" json:"progress"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// QuizQuestion is the shape the quiz generator asks the model for. Generated
// per request and never persisted.
type QuizQuestion struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Choices    []string `json:"choices"`
	Difficulty string   `json:"difficulty"`
	Topic      string   `json:"topic"`
}

// StudyNotes is the shape the study-notes generator asks the model for.
type StudyNotes struct {
	Summary           string   `json:"summary"`
	KeyConcepts       []string `json:"key_concepts"`
	ImportantTerms    []string `json:"important_terms"`
	PracticeQuestions []string `json:"practice_questions"`
	Topic             string   `json:"topic"`
	Focus             string   `json:"focus"`
}
