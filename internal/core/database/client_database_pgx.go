package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MaggPerez/stututor-backend/internal/config"
	"github.com/MaggPerez/stututor-backend/internal/core"
	"github.com/MaggPerez/stututor-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	// Ensure bootstrap once
	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) GetUserByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1 OR username = $2
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Conversations

func (c *DatabaseClient) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	if conv == nil {
		return errors.New("nil conversation")
	}
	const q = `
		INSERT INTO conversations
			(id, user_id, title, document_id, pdf_file_name, pdf_file_path, pdf_file_size, pdf_storage_url, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()), COALESCE($10, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		conv.ID, conv.UserID, conv.Title, conv.DocumentID, conv.PDFFileName, conv.PDFFilePath,
		conv.PDFFileSize, conv.PDFStorageURL, conv.CreatedAt, conv.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetConversationByID(ctx context.Context, id string) (*models.Conversation, error) {
	const q = `
		SELECT id, user_id, title, document_id, pdf_file_name, pdf_file_path, pdf_file_size, pdf_storage_url, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`
	var cv models.Conversation
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&cv.ID, &cv.UserID, &cv.Title, &cv.DocumentID, &cv.PDFFileName, &cv.PDFFilePath,
		&cv.PDFFileSize, &cv.PDFStorageURL, &cv.CreatedAt, &cv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

func (c *DatabaseClient) ListConversationsByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	const q = `
		SELECT id, user_id, title, document_id, pdf_file_name, pdf_file_path, pdf_file_size, pdf_storage_url, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var cv models.Conversation
		if err := rows.Scan(
			&cv.ID, &cv.UserID, &cv.Title, &cv.DocumentID, &cv.PDFFileName, &cv.PDFFilePath,
			&cv.PDFFileSize, &cv.PDFStorageURL, &cv.CreatedAt, &cv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateConversationPDF(ctx context.Context, id string, meta models.PDFMeta) error {
	const q = `
		UPDATE conversations
		SET pdf_file_name = $2, pdf_file_path = $3, pdf_file_size = $4, pdf_storage_url = $5, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, meta.FileName, meta.FilePath, meta.FileSize, meta.StorageURL)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (c *DatabaseClient) TouchConversation(ctx context.Context, id string) error {
	const q = `UPDATE conversations SET updated_at = now() WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteConversation removes the thread; messages cascade via the FK.
func (c *DatabaseClient) DeleteConversation(ctx context.Context, id string) error {
	const q = `DELETE FROM conversations WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Messages

func (c *DatabaseClient) InsertMessage(ctx context.Context, msg *models.Message) error {
	if msg == nil {
		return errors.New("nil message")
	}
	const q = `
		INSERT INTO messages (id, conversation_id, role, content, timestamp)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.Timestamp)
	return err
}

func (c *DatabaseClient) ListMessagesByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	const q = `
		SELECT id, conversation_id, role, content, timestamp
		FROM messages
		WHERE conversation_id = $1
		ORDER BY timestamp ASC
	`
	rows, err := c.db.QueryContext(ctx, q, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Documents

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents (id, user_id, title, original_filename, content, file_size, upload_date)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.UserID, doc.Title, doc.OriginalFilename, doc.Content, doc.FileSize, doc.UploadDate)
	return err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, user_id, title, original_filename, content, file_size, upload_date
		FROM documents
		WHERE id = $1
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.UserID, &d.Title, &d.OriginalFilename, &d.Content, &d.FileSize, &d.UploadDate,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDocumentsByUser leaves Content empty; the list view never needs it.
func (c *DatabaseClient) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	const q = `
		SELECT id, user_id, title, original_filename, file_size, upload_date
		FROM documents
		WHERE user_id = $1
		ORDER BY upload_date DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.UserID, &d.Title, &d.OriginalFilename, &d.FileSize, &d.UploadDate); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Courses

func (c *DatabaseClient) CreateCourse(ctx context.Context, course *models.Course) error {
	if course == nil {
		return errors.New("nil course")
	}
	const q = `
		INSERT INTO courses
			(id, user_id, title, professor, description, icon, course_days, start_time, end_time, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()), COALESCE($11, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		course.ID, course.UserID, course.Title, course.Professor, course.Description,
		course.Icon, joinDays(course.CourseDays), course.StartTime, course.EndTime,
		course.CreatedAt, course.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetCourseByID(ctx context.Context, id string) (*models.Course, error) {
	const q = `
		SELECT id, user_id, title, professor, description, icon, course_days, start_time, end_time, created_at, updated_at
		FROM courses
		WHERE id = $1
	`
	var (
		course models.Course
		days   string
	)
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&course.ID, &course.UserID, &course.Title, &course.Professor, &course.Description,
		&course.Icon, &days, &course.StartTime, &course.EndTime, &course.CreatedAt, &course.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	course.CourseDays = splitDays(days)
	return &course, nil
}

func (c *DatabaseClient) ListCoursesByUser(ctx context.Context, userID string) ([]models.Course, error) {
	const q = `
		SELECT id, user_id, title, professor, description, icon, course_days, start_time, end_time, created_at, updated_at
		FROM courses
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Course
	for rows.Next() {
		var (
			course models.Course
			days   string
		)
		if err := rows.Scan(
			&course.ID, &course.UserID, &course.Title, &course.Professor, &course.Description,
			&course.Icon, &days, &course.StartTime, &course.EndTime, &course.CreatedAt, &course.UpdatedAt,
		); err != nil {
			return nil, err
		}
		course.CourseDays = splitDays(days)
		out = append(out, course)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateCourse(ctx context.Context, course *models.Course) error {
	if course == nil {
		return errors.New("nil course")
	}
	const q = `
		UPDATE courses
		SET title = $2, professor = $3, description = $4, icon = $5, course_days = $6,
		    start_time = $7, end_time = $8, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q,
		course.ID, course.Title, course.Professor, course.Description, course.Icon,
		joinDays(course.CourseDays), course.StartTime, course.EndTime)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (c *DatabaseClient) DeleteCourse(ctx context.Context, id string) error {
	const q = `DELETE FROM courses WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Assignments

func (c *DatabaseClient) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	if a == nil {
		return errors.New("nil assignment")
	}
	const q = `
		INSERT INTO assignments
			(id, user_id, assignment_name, course, type, status, due_date, priority, progress, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()), COALESCE($11, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		a.ID, a.UserID, a.AssignmentName, a.Course, a.Type, a.Status,
		a.DueDate, a.Priority, a.Progress, a.CreatedAt, a.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetAssignmentByID(ctx context.Context, id string) (*models.Assignment, error) {
	const q = `
		SELECT id, user_id, assignment_name, course, type, status, due_date, priority, progress, created_at, updated_at
		FROM assignments
		WHERE id = $1
	`
	var a models.Assignment
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.UserID, &a.AssignmentName, &a.Course, &a.Type, &a.Status,
		&a.DueDate, &a.Priority, &a.Progress, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *DatabaseClient) ListAssignmentsByUser(ctx context.Context, userID string) ([]models.Assignment, error) {
	const q = `
		SELECT id, user_id, assignment_name, course, type, status, due_date, priority, progress, created_at, updated_at
		FROM assignments
		WHERE user_id = $1
		ORDER BY due_date ASC, created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.AssignmentName, &a.Course, &a.Type, &a.Status,
			&a.DueDate, &a.Priority, &a.Progress, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateAssignment(ctx context.Context, a *models.Assignment) error {
	if a == nil {
		return errors.New("nil assignment")
	}
	const q = `
		UPDATE assignments
		SET assignment_name = $2, course = $3, type = $4, status = $5, due_date = $6,
		    priority = $7, progress = $8, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q,
		a.ID, a.AssignmentName, a.Course, a.Type, a.Status, a.DueDate, a.Priority, a.Progress)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (c *DatabaseClient) DeleteAssignment(ctx context.Context, id string) error {
	const q = `DELETE FROM assignments WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// course_days is stored as a comma-joined list of weekday names.

func joinDays(days []string) string {
	return strings.Join(days, ",")
}

func splitDays(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
