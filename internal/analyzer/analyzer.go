// Package analyzer orchestrates one civic complaint analysis: captioning,
// transcription, normalization, classification and result assembly.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/classifier"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/domain"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/logger"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/media"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/normalizer"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultTimeout = 30 * time.Second

	collaboratorCaptioning    = "captioning"
	collaboratorTranscription = "transcription"

	detectedPrefix = "Issue detected: "
)

var (
	// ErrNoCollaborator means media was supplied but no backend is configured.
	ErrNoCollaborator = errors.New("no collaborator configured")
	// ErrInvalidRequest is reported for a nil request.
	ErrInvalidRequest = errors.New("invalid analysis request")
	// ErrInternal wraps a recovered panic.
	ErrInternal = errors.New("internal analysis error")
)

// Captioner describes an image in natural language.
type Captioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
}

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Config wires an Analyzer. Nil collaborators are treated as unavailable.
type Config struct {
	Captioner   Captioner
	Transcriber Transcriber
	Classifier  *classifier.Classifier
	Normalizer  *normalizer.Normalizer
	Telemetry   *telemetry.Provider
	Logger      logger.Logger
	// Timeout bounds all collaborator calls of one analysis.
	Timeout time.Duration
	// NewID overrides analysis ID generation in tests.
	NewID func() string
}

// Analyzer runs the civic complaint pipeline. Safe for concurrent use.
type Analyzer struct {
	captioner   Captioner
	transcriber Transcriber
	classifier  *classifier.Classifier
	normalizer  *normalizer.Normalizer
	telemetry   *telemetry.Provider
	logger      logger.Logger
	timeout     time.Duration
	newID       func() string
}

// New creates an Analyzer, filling unset dependencies with the built-in
// catalog, transliteration table and a no-op logger.
func New(cfg Config) *Analyzer {
	if cfg.Classifier == nil {
		cfg.Classifier = classifier.Default()
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = normalizer.New(normalizer.DefaultTable())
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}

	return &Analyzer{
		captioner:   cfg.Captioner,
		transcriber: cfg.Transcriber,
		classifier:  cfg.Classifier,
		normalizer:  cfg.Normalizer,
		telemetry:   cfg.Telemetry,
		logger:      cfg.Logger,
		timeout:     cfg.Timeout,
		newID:       cfg.NewID,
	}
}

// Analyze classifies one complaint. It never panics and never returns nil:
// unexpected failures yield the low-confidence fallback with Success false.
func (a *Analyzer) Analyze(ctx context.Context, req *domain.Request) (resp *domain.Response) {
	id := a.newID()
	start := time.Now()
	log := a.logger.With(logger.String("analysis_id", id))

	ctx, span := a.telemetry.StartSpan(ctx, "civic.analyze", attribute.String("analysis_id", id))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrInternal, r)
			resp = a.fail(id, req, err, start, log)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if req == nil {
		return a.fail(id, nil, ErrInvalidRequest, start, log)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result := a.run(ctx, req, log)
	span.SetAttributes(
		attribute.String("civic.category", result.Category),
		attribute.String("civic.priority", string(result.Priority)),
	)

	duration := time.Since(start)
	a.telemetry.RecordAnalysis(telemetry.OutcomeSuccess, duration)
	a.telemetry.RecordClassification(result.Category, string(result.Priority))
	log.Info("civic issue analyzed",
		logger.String("problem", result.ProblemIdentified.String()),
		logger.String("category", result.Category),
		logger.String("priority", string(result.Priority)),
		logger.String("confidence", string(result.AIConfidence)),
		logger.Duration("duration", duration))

	return &domain.Response{Success: true, AnalysisID: id, Data: result}
}

func (a *Analyzer) run(ctx context.Context, req *domain.Request, log logger.Logger) *domain.ClassificationResult {
	caption := a.caption(ctx, req, log)
	rawText, complaintText := a.complaintText(ctx, req, log)
	if complaintText == "" && caption != domain.CaptionNoImage {
		complaintText = detectedPrefix + caption
	}

	matchStart := time.Now()
	problem := a.classifier.IdentifyProblem(caption, complaintText)
	priority := a.classifier.DeterminePriority(problem, caption, complaintText)
	a.telemetry.RecordRuleMatch(time.Since(matchStart))

	confidence := domain.ConfidenceMedium
	if complaintText != "" {
		confidence = domain.ConfidenceHigh
	}

	return &domain.ClassificationResult{
		Title:             classifier.GenerateTitle(problem, caption),
		ProblemIdentified: problem,
		Department:        classifier.MapDepartment(problem),
		Priority:          priority,
		PriorityRank:      priority.Rank(),
		Category:          classifier.MapCategoryCode(problem),
		ImageCaption:      caption,
		ComplaintText:     complaintText,
		Location:          location(req),
		AIConfidence:      confidence,
		Tags:              classifier.ExtractTags(complaintText, realCaption(caption)),
		Language:          classifier.DetectLanguage(rawText),
	}
}

// caption returns the image caption or a placeholder.
func (a *Analyzer) caption(ctx context.Context, req *domain.Request, log logger.Logger) string {
	if !req.HasImage() {
		return domain.CaptionNoImage
	}

	caption, err := a.describe(ctx, req)
	if err != nil {
		log.Warn("image captioning failed, using placeholder",
			logger.String("collaborator", collaboratorCaptioning),
			logger.Error(err))
		return domain.CaptionFailed
	}
	return caption
}

func (a *Analyzer) describe(ctx context.Context, req *domain.Request) (string, error) {
	img, err := media.Resolve(media.KindImage, req.Image, req.ImageData)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if a.captioner == nil {
		return "", fmt.Errorf("%s: %w", collaboratorCaptioning, ErrNoCollaborator)
	}

	start := time.Now()
	caption, err := a.captioner.Caption(ctx, img.Data)
	a.telemetry.RecordCollaboratorCall(collaboratorCaptioning, err, time.Since(start))
	if err != nil {
		return "", err
	}

	caption = strings.TrimSpace(caption)
	if caption == "" {
		return "", errors.New("captioner returned an empty caption")
	}
	return caption, nil
}

// complaintText returns the raw text (typed or transcribed) and its
// normalized form.
func (a *Analyzer) complaintText(ctx context.Context, req *domain.Request, log logger.Logger) (string, string) {
	if strings.TrimSpace(req.Text) != "" {
		return req.Text, strings.TrimSpace(a.normalizer.Normalize(req.Text))
	}
	if !req.HasAudio() {
		return "", ""
	}

	transcript, err := a.transcribe(ctx, req)
	if err != nil {
		log.Warn("transcription failed, continuing without text",
			logger.String("collaborator", collaboratorTranscription),
			logger.Error(err))
		return "", ""
	}
	return transcript, strings.TrimSpace(a.normalizer.Normalize(transcript))
}

func (a *Analyzer) transcribe(ctx context.Context, req *domain.Request) (string, error) {
	audio, err := media.Resolve(media.KindAudio, req.Audio, req.AudioData)
	if err != nil {
		return "", fmt.Errorf("decode audio: %w", err)
	}
	if a.transcriber == nil {
		return "", fmt.Errorf("%s: %w", collaboratorTranscription, ErrNoCollaborator)
	}

	start := time.Now()
	text, err := a.transcriber.Transcribe(ctx, audio.Data)
	a.telemetry.RecordCollaboratorCall(collaboratorTranscription, err, time.Since(start))
	return text, err
}

func (a *Analyzer) fail(
	id string, req *domain.Request, err error, start time.Time, log logger.Logger,
) *domain.Response {
	a.telemetry.RecordAnalysis(telemetry.OutcomeFallback, time.Since(start))
	log.Error("civic analysis failed, returning fallback", logger.Error(err))

	return &domain.Response{
		Success:    false,
		AnalysisID: id,
		Error:      err.Error(),
		Data:       Fallback(location(req)),
	}
}

// Fallback is the fixed low-confidence result returned when analysis fails.
func Fallback(loc string) *domain.ClassificationResult {
	if strings.TrimSpace(loc) == "" {
		loc = domain.DefaultLocation
	}
	return &domain.ClassificationResult{
		Title:             "Civic Issue Detected",
		ProblemIdentified: domain.Other,
		Department:        classifier.MapDepartment(domain.Other),
		Priority:          domain.PriorityMedium,
		PriorityRank:      domain.PriorityMedium.Rank(),
		Category:          classifier.MapCategoryCode(domain.Other),
		ImageCaption:      domain.CaptionAnalysisError,
		ComplaintText:     "Issue detected from image analysis. Please provide additional details.",
		Location:          loc,
		AIConfidence:      domain.ConfidenceLow,
		Tags:              []string{},
		Language:          classifier.LanguageUnknown,
	}
}

func location(req *domain.Request) string {
	if req == nil || strings.TrimSpace(req.Location) == "" {
		return domain.DefaultLocation
	}
	return strings.TrimSpace(req.Location)
}

func realCaption(caption string) string {
	switch caption {
	case domain.CaptionNoImage, domain.CaptionFailed:
		return ""
	default:
		return caption
	}
}
