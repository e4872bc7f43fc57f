package services

import (
	"context"
	"strconv"

	"github.com/MaggPerez/stututor-backend/internal/core"
)

const quizSystemInstruction = `You are a helpful assistant that generates quizzes from a topic or document based on the difficulty and number of questions requested.
When you generate the quiz, it must always follow this format:
{
    "questions": [
        {
            "id": "1",
            "question": "question",
            "answer": "answer",
            "choices": ["choice1", "choice2", "choice3", "choice4"],
            "difficulty": "difficulty",
            "topic": "topic"
        }
    ]
}
Respond with only valid JSON. Do not include any other text.`

const studyNotesSystemInstruction = `You are a helpful assistant that generates study notes from a topic or document based on the course and focus requested.
When you generate the study notes. If the user does not provide a focus, move on. It is very important that you always follow this format:
{
    "summary": "summary",
    "key_concepts": ["key_concept1", "key_concept2", "key_concept3"],
    "important_terms": ["important_term1", "important_term2", "important_term3"],
    "practice_questions": ["practice_question1", "practice_question2", "practice_question3"],
    "topic": "topic",
    "focus": "focus"
}
Respond with only valid JSON. Do not include any other text.`

// GenerateService builds fixed-instruction generation requests and returns
// the raw model text; the client parses the JSON.
type GenerateService struct {
	llm core.LLMProvider
}

func NewGenerateService(llm core.LLMProvider) *GenerateService {
	return &GenerateService{llm: llm}
}

func (s *GenerateService) QuizFromTopic(ctx context.Context, topic, difficulty string, numQuestions int) (string, error) {
	parts := []core.GenPart{
		{Text: topic},
		{Text: difficulty},
		{Text: strconv.Itoa(numQuestions)},
	}
	return s.llm.GenerateJSON(ctx, quizSystemInstruction, parts)
}

func (s *GenerateService) QuizFromPDF(ctx context.Context, pdf []byte, mimeType, difficulty string, numQuestions int) (string, error) {
	parts := []core.GenPart{
		{MIMEType: mimeType, Data: pdf},
		{Text: difficulty},
		{Text: strconv.Itoa(numQuestions)},
	}
	return s.llm.GenerateJSON(ctx, quizSystemInstruction, parts)
}

func (s *GenerateService) StudyNotesFromTopic(ctx context.Context, topic, focus string) (string, error) {
	parts := []core.GenPart{{Text: topic}}
	if focus != "" {
		parts = append(parts, core.GenPart{Text: focus})
	}
	return s.llm.GenerateJSON(ctx, studyNotesSystemInstruction, parts)
}

func (s *GenerateService) StudyNotesFromPDF(ctx context.Context, pdf []byte, mimeType, focus string) (string, error) {
	parts := []core.GenPart{{MIMEType: mimeType, Data: pdf}}
	if focus != "" {
		parts = append(parts, core.GenPart{Text: focus})
	}
	return s.llm.GenerateJSON(ctx, studyNotesSystemInstruction, parts)
}
