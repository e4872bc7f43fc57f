package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MaggPerez/stututor-backend/internal/core"
	"github.com/MaggPerez/stututor-backend/internal/models"
)

// ErrThreadNotFound is returned when a threadId does not exist or belongs to
// another user.
var ErrThreadNotFound = errors.New("chat thread not found")

const (
	// historyWindow is how many recent messages go into the model context.
	historyWindow = 10
	// docContextLimit caps the document text prepended as system context.
	docContextLimit = 2000

	tutorSystemPrompt = "You are a helpful tutor for a student. Answer clearly and concisely."
)

type ChatService struct {
	db  core.DbClient
	llm core.LLMProvider
}

func NewChatService(db core.DbClient, llm core.LLMProvider) *ChatService {
	return &ChatService{db: db, llm: llm}
}

// ChatTurn is the result of one completed exchange.
type ChatTurn struct {
	ThreadID string
	Response string
	History  []models.Message
}

// SendMessage runs one chat turn: get or create the thread, persist the user
// message, call the model with the recent history (plus document context when
// the thread has one), and persist the reply.
func (s *ChatService) SendMessage(ctx context.Context, userID, threadID, documentID, message string) (*ChatTurn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.New("message is required")
	}

	conv, err := s.getOrCreateThread(ctx, userID, threadID, documentID)
	if err != nil {
		return nil, err
	}

	history, err := s.db.ListMessagesByConversation(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	userMsg := models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Content:        message,
		Timestamp:      time.Now(),
	}
	if err := s.db.InsertMessage(ctx, &userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}
	history = append(history, userMsg)

	systemPrompt := tutorSystemPrompt
	docID := conv.DocumentID
	if docID == "" {
		docID = documentID
	}
	if docID != "" {
		doc, err := s.db.GetDocumentByID(ctx, docID)
		if err == nil && doc != nil {
			systemPrompt = fmt.Sprintf(
				"You are a helpful tutor. Use the following document context to answer questions: %s",
				truncate(doc.Content, docContextLimit),
			)
		}
	}

	reply, err := s.llm.Generate(ctx, systemPrompt, transcript(lastN(history, historyWindow)))
	if err != nil {
		return nil, err
	}

	aiMsg := models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           models.RoleAssistant,
		Content:        reply,
		Timestamp:      time.Now(),
	}
	if err := s.db.InsertMessage(ctx, &aiMsg); err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}
	history = append(history, aiMsg)

	_ = s.db.TouchConversation(ctx, conv.ID)

	return &ChatTurn{ThreadID: conv.ID, Response: reply, History: history}, nil
}

// GetThread returns the conversation and its messages in timestamp order.
func (s *ChatService) GetThread(ctx context.Context, userID, threadID string) (*models.Conversation, []models.Message, error) {
	conv, err := s.db.GetConversationByID(ctx, threadID)
	if err != nil {
		return nil, nil, err
	}
	if conv == nil || conv.UserID != userID {
		return nil, nil, ErrThreadNotFound
	}
	msgs, err := s.db.ListMessagesByConversation(ctx, threadID)
	if err != nil {
		return nil, nil, err
	}
	return conv, msgs, nil
}

func (s *ChatService) getOrCreateThread(ctx context.Context, userID, threadID, documentID string) (*models.Conversation, error) {
	if threadID != "" {
		conv, err := s.db.GetConversationByID(ctx, threadID)
		if err != nil {
			return nil, err
		}
		if conv == nil || conv.UserID != userID {
			return nil, ErrThreadNotFound
		}
		return conv, nil
	}

	now := time.Now()
	conv := &models.Conversation{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      "New Conversation",
		DocumentID: documentID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	return conv, nil
}

// transcript flattens messages into a role-prefixed prompt block.
func transcript(msgs []models.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func lastN(msgs []models.Message, n int) []models.Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
