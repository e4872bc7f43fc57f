package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	middleware "github.com/MaggPerez/stututor-backend/internal/api/middlewares"
	"github.com/MaggPerez/stututor-backend/internal/core"
	"github.com/MaggPerez/stututor-backend/internal/models"
)

// fakeDB is an in-memory DbClient for handler tests.
type fakeDB struct {
	mu            sync.Mutex
	users         map[string]*models.User
	conversations map[string]*models.Conversation
	messages      map[string][]models.Message
	documents     map[string]*models.Document
	courses       map[string]*models.Course
	assignments   map[string]*models.Assignment
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:         map[string]*models.User{},
		conversations: map[string]*models.Conversation{},
		messages:      map[string][]models.Message{},
		documents:     map[string]*models.Document{},
		courses:       map[string]*models.Course{},
		assignments:   map[string]*models.Assignment{},
	}
}

func (f *fakeDB) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email || u.Username == user.Username {
			return errors.New("duplicate user")
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) GetUserByEmailOrUsername(_ context.Context, email, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email || u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) CreateConversation(_ context.Context, conv *models.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *conv
	f.conversations[conv.ID] = &cp
	return nil
}

func (f *fakeDB) GetConversationByID(_ context.Context, id string) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[id]
	if !ok {
		return nil, nil
	}
	cp := *conv
	return &cp, nil
}

func (f *fakeDB) ListConversationsByUser(_ context.Context, userID string) ([]models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Conversation
	for _, c := range f.conversations {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeDB) UpdateConversationPDF(_ context.Context, id string, meta models.PDFMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[id]
	if !ok {
		return core.ErrNotFound
	}
	conv.PDFFileName = meta.FileName
	conv.PDFFilePath = meta.FilePath
	conv.PDFFileSize = meta.FileSize
	conv.PDFStorageURL = meta.StorageURL
	return nil
}

func (f *fakeDB) TouchConversation(_ context.Context, id string) error { return nil }

func (f *fakeDB) DeleteConversation(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.conversations[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.conversations, id)
	delete(f.messages, id)
	return nil
}

func (f *fakeDB) InsertMessage(_ context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[msg.ConversationID] = append(f.messages[msg.ConversationID], *msg)
	return nil
}

func (f *fakeDB) ListMessagesByConversation(_ context.Context, conversationID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[conversationID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeDB) CreateDocument(_ context.Context, doc *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *doc
	f.documents[doc.ID] = &cp
	return nil
}

func (f *fakeDB) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.documents[id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (f *fakeDB) ListDocumentsByUser(_ context.Context, userID string) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Document
	for _, d := range f.documents {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadDate.After(out[j].UploadDate) })
	return out, nil
}

func (f *fakeDB) CreateCourse(_ context.Context, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *course
	f.courses[course.ID] = &cp
	return nil
}

func (f *fakeDB) GetCourseByID(_ context.Context, id string) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeDB) ListCoursesByUser(_ context.Context, userID string) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Course
	for _, c := range f.courses {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeDB) UpdateCourse(_ context.Context, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[course.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *course
	f.courses[course.ID] = &cp
	return nil
}

func (f *fakeDB) DeleteCourse(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeDB) CreateAssignment(_ context.Context, a *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.assignments[a.ID] = &cp
	return nil
}

func (f *fakeDB) GetAssignmentByID(_ context.Context, id string) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assignments[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeDB) ListAssignmentsByUser(_ context.Context, userID string) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Assignment
	for _, a := range f.assignments {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeDB) UpdateAssignment(_ context.Context, a *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assignments[a.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *a
	f.assignments[a.ID] = &cp
	return nil
}

func (f *fakeDB) DeleteAssignment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assignments[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.assignments, id)
	return nil
}

func (f *fakeDB) Close() error { return nil }

// stubLLM returns canned responses and records the prompts it was given.
type stubLLM struct {
	reply       string
	jsonReply   string
	err         error
	lastSystem  string
	lastUser    string
	lastParts   []core.GenPart
	generateCnt int
}

func (s *stubLLM) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	s.lastSystem = systemPrompt
	s.lastUser = userPrompt
	s.generateCnt++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubLLM) GenerateJSON(_ context.Context, systemPrompt string, parts []core.GenPart) (string, error) {
	s.lastSystem = systemPrompt
	s.lastParts = parts
	if s.err != nil {
		return "", s.err
	}
	return s.jsonReply, nil
}

// fakeStorage records uploads in memory.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) UploadFile(_ context.Context, bucket, key string, data io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.objects[key] = buf
	f.mu.Unlock()
	return fmt.Sprintf("https://%s.s3.us-east-2.amazonaws.com/%s", bucket, key), nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// fakeExtractor returns fixed text for any input.
type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(_ context.Context, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// newJSONRequest builds an authenticated JSON request for the given user.
func newJSONRequest(method, target, userID string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	return req
}

// newMultipartRequest builds an authenticated multipart upload request.
func newMultipartRequest(t *testing.T, target, userID, filename, contentType string, fileData []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	hdr["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(fileData); err != nil {
		t.Fatalf("write part: %v", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	return req
}
