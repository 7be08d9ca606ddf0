// Package gemini captions complaint photos and transcribes voice notes with
// a hosted Gemini model.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/media"
	"google.golang.org/genai"
)

const (
	captionInstruction = "Describe the civic problem visible in this photo in one short sentence."
	transcribeInstruction = "Transcribe this voice complaint verbatim. " +
		"Reply with the transcript only, in the language it was spoken."
)

var (
	// ErrNoCandidates means the model returned no usable answer.
	ErrNoCandidates = errors.New("no response candidates from gemini")
	// ErrMissingAPIKey is returned by New without a key.
	ErrMissingAPIKey = errors.New("gemini api key is required")
)

// generator is the slice of *genai.Models the client uses.
type generator interface {
	GenerateContent(
		ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Client implements captioning and transcription on Gemini.
type Client struct {
	models generator
	model  string
}

// New creates a Gemini API client.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{models: gc.Models, model: model}, nil
}

// Caption describes image.
func (c *Client) Caption(ctx context.Context, image []byte) (string, error) {
	return c.CaptionWithPrompt(ctx, image, "")
}

// CaptionWithPrompt describes image, continuing prompt when one is given.
func (c *Client) CaptionWithPrompt(ctx context.Context, image []byte, prompt string) (string, error) {
	instruction := captionInstruction
	if prompt != "" {
		instruction += " Complete this sentence: " + strings.TrimSpace(prompt)
	}
	text, err := c.generate(ctx, image, instruction)
	if err != nil {
		return "", fmt.Errorf("gemini caption: %w", err)
	}
	return text, nil
}

// Transcribe returns the spoken text of audio.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	text, err := c.generate(ctx, audio, transcribeInstruction)
	if err != nil {
		return "", fmt.Errorf("gemini transcribe: %w", err)
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, data []byte, instruction string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(data, media.DetectMIME(data)),
		genai.NewPartFromText(instruction),
	}
	content := genai.NewContentFromParts(parts, genai.RoleUser)

	resp, err := c.models.GenerateContent(ctx, c.model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoCandidates
	}

	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			result.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(result.String())
	if text == "" {
		return "", ErrNoCandidates
	}
	return text, nil
}
