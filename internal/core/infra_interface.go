package core

import (
	"context"
	"errors"
	"io"

	"github.com/MaggPerez/stututor-backend/internal/models"
)

// ErrNotFound is returned by update/delete operations that matched no row.
var ErrNotFound = errors.New("not found")

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)

	CreateConversation(ctx context.Context, conv *models.Conversation) error
	GetConversationByID(ctx context.Context, id string) (*models.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string) ([]models.Conversation, error)
	UpdateConversationPDF(ctx context.Context, id string, meta models.PDFMeta) error
	TouchConversation(ctx context.Context, id string) error
	DeleteConversation(ctx context.Context, id string) error

	InsertMessage(ctx context.Context, msg *models.Message) error
	ListMessagesByConversation(ctx context.Context, conversationID string) ([]models.Message, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)

	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourseByID(ctx context.Context, id string) (*models.Course, error)
	ListCoursesByUser(ctx context.Context, userID string) ([]models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id string) error

	CreateAssignment(ctx context.Context, a *models.Assignment) error
	GetAssignmentByID(ctx context.Context, id string) (*models.Assignment, error)
	ListAssignmentsByUser(ctx context.Context, userID string) ([]models.Assignment, error)
	UpdateAssignment(ctx context.Context, a *models.Assignment) error
	DeleteAssignment(ctx context.Context, id string) error

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
}
