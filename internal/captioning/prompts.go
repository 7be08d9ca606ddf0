package captioning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/logger"
)

// PromptCaptioner captions an image conditioned on a text prompt.
type PromptCaptioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
	CaptionWithPrompt(ctx context.Context, image []byte, prompt string) (string, error)
}

// CivicPrompts steer the captioning model towards infrastructure problems.
var CivicPrompts = []string{
	"a photo showing a civic issue: ",
	"a photo of a problem in the city: ",
	"a photo of infrastructure issue: ",
	"a photo of public service problem: ",
}

var civicKeywords = []string{
	"road", "street", "light", "water", "garbage", "drainage", "traffic", "signal", "park",
	"damage", "broken", "leak", "pothole", "dirty", "clean", "problem", "issue",
}

// CivicScore counts the civic keywords contained in caption. Containment is
// substring based so "streetlight" scores for both street and light.
func CivicScore(caption string) int {
	lower := strings.ToLower(caption)
	score := 0
	for _, kw := range civicKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	return score
}

// PromptSelector tries every civic prompt and keeps the caption with the
// highest civic score, falling back to an unprompted caption when none
// scores.
type PromptSelector struct {
	backend PromptCaptioner
	prompts []string
	logger  logger.Logger
}

// NewPromptSelector wraps backend. A nil log discards output.
func NewPromptSelector(backend PromptCaptioner, log logger.Logger) *PromptSelector {
	if log == nil {
		log = logger.NewNop()
	}
	return &PromptSelector{backend: backend, prompts: CivicPrompts, logger: log}
}

// Caption implements the civic caption selection.
func (s *PromptSelector) Caption(ctx context.Context, image []byte) (string, error) {
	best := ""
	bestScore := 0
	var errs []error
	for _, prompt := range s.prompts {
		caption, err := s.backend.CaptionWithPrompt(ctx, image, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("caption selection: %w", ctx.Err())
			}
			s.logger.Debug("prompted caption failed",
				logger.String("prompt", prompt),
				logger.Error(err))
			errs = append(errs, err)
			continue
		}
		if score := CivicScore(caption); score > bestScore {
			best, bestScore = caption, score
		}
	}

	if bestScore > 0 {
		return best, nil
	}

	caption, err := s.backend.Caption(ctx, image)
	if err != nil {
		errs = append(errs, err)
		return "", fmt.Errorf("caption selection: %w", errors.Join(errs...))
	}
	return caption, nil
}
