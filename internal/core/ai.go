package core

import "context"

// GenPart is one piece of a generation request: either inline text or a raw
// file (MIMEType + Data set, Text empty).
type GenPart struct {
	Text     string
	MIMEType string
	Data     []byte
}

type LLMProvider interface {
	// Generate returns free-form text for a system + user prompt pair.
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
	// GenerateJSON asks the model for a strict-JSON response built from the
	// given parts. The raw model text is returned unparsed.
	GenerateJSON(ctx context.Context, systemPrompt string, parts []GenPart) (string, error)
}

// TextExtractor pulls plain text out of an uploaded file buffer.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
}
