package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/resumescore/backend/internal/domain/scoring"
	"github.com/resumescore/backend/internal/domain/shared"
	"github.com/resumescore/backend/internal/infrastructure/extraction"
	"github.com/resumescore/backend/internal/infrastructure/telemetry"
)

// promptTemplate is the instruction set sent to the model. The resume text is
// substituted for the %s placeholder.
const promptTemplate = `You are an expert HR and career coach.
Analyze the following resume and:
1. Summarize it in 1-2 sentences under the key "summary".
2. Give a score from 1-10 for Skills.
3. Give a score from 1-10 for Experience.
4. Give an overall score from 1-10.
5. Provide constructive feedback in 2-3 sentences.
6. List 2-4 key aspects missing from the resume in "missing_aspects".

Resume:
%s

Return ONLY valid JSON in this format:
{
  "summary": "string",
  "skills_score": number,
  "experience_score": number,
  "overall_score": number,
  "feedback": "string",
  "missing_aspects": ["string", "string", "string"]
}
No markdown. No code blocks. No extra text.`

// PDFExtractor extracts text from uploaded PDF documents
type PDFExtractor interface {
	ExtractPDF(ctx context.Context, data []byte) (*extraction.Result, error)
}

// ResumeArchiver stores the original uploaded file and returns its object key
type ResumeArchiver interface {
	Archive(ctx context.Context, fileName string, data []byte) (string, error)
}

// ArchiveCleaner removes an archived upload by its object key
type ArchiveCleaner interface {
	DeleteObject(ctx context.Context, storageKey string) error
}

// ScorerService orchestrates resume scoring: extraction, prompting,
// response validation, caching and persistence.
type ScorerService struct {
	generator   scoring.TextGenerator
	repo        scoring.AnalysisRepository
	extractor   PDFExtractor
	cache       scoring.ScoreCache
	archiver    ResumeArchiver
	cleaner     ArchiveCleaner
	validate    *validator.Validate
	logger      *zap.Logger
	maxAttempts int
}

// ScorerOption configures a ScorerService
type ScorerOption func(*ScorerService)

// WithCache attaches a score cache
func WithCache(cache scoring.ScoreCache) ScorerOption {
	return func(s *ScorerService) {
		s.cache = cache
	}
}

// WithArchiver attaches an upload archiver
func WithArchiver(archiver ResumeArchiver) ScorerOption {
	return func(s *ScorerService) {
		s.archiver = archiver
	}
}

// WithArchiveCleaner attaches archive cleanup for deleted analyses
func WithArchiveCleaner(cleaner ArchiveCleaner) ScorerOption {
	return func(s *ScorerService) {
		s.cleaner = cleaner
	}
}

// WithMaxAttempts overrides how many times the model may be retried
func WithMaxAttempts(attempts int) ScorerOption {
	return func(s *ScorerService) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
	}
}

// NewScorerService creates a new ScorerService
func NewScorerService(
	generator scoring.TextGenerator,
	repo scoring.AnalysisRepository,
	extractor PDFExtractor,
	logger *zap.Logger,
	opts ...ScorerOption,
) *ScorerService {
	s := &ScorerService{
		generator:   generator,
		repo:        repo,
		extractor:   extractor,
		validate:    validator.New(),
		logger:      logger,
		maxAttempts: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoreText scores raw resume text
func (s *ScorerService) ScoreText(ctx context.Context, resumeText string) (*AnalysisResult, error) {
	return s.score(ctx, scoring.SourceText, "", resumeText, scoring.ExtractionNone, nil)
}

// ScoreUpload scores an uploaded resume file (PDF or JSON)
func (s *ScorerService) ScoreUpload(ctx context.Context, req UploadRequest) (*AnalysisResult, error) {
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	switch contentType {
	case "application/pdf":
		res, err := s.extractor.ExtractPDF(ctx, req.Data)
		if err != nil {
			return nil, shared.NewDomainError("EXTRACTION_FAILED", fmt.Sprintf("Error reading PDF: %v", err))
		}
		return s.score(ctx, scoring.SourcePDF, req.FileName, res.Text, res.Method, req.Data)

	case "application/json":
		resumeText, err := resumeTextFromJSON(req.Data)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid JSON file")
		}
		return s.score(ctx, scoring.SourceJSON, req.FileName, resumeText, scoring.ExtractionNone, req.Data)

	default:
		return nil, shared.ErrUnsupportedFile
	}
}

// resumeTextFromJSON pulls the resume_text key out of an uploaded JSON
// document, falling back to the whole document when the key is absent.
// The document must be a JSON object; a bare null unmarshals into a nil
// map without error and is rejected here.
func resumeTextFromJSON(data []byte) (string, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", err
	}
	if doc == nil {
		return "", errors.New("JSON document is null")
	}
	if text, ok := doc["resume_text"].(string); ok && text != "" {
		return text, nil
	}
	whole, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(whole), nil
}

// score runs the shared scoring pipeline for all input sources
func (s *ScorerService) score(
	ctx context.Context,
	source scoring.Source,
	fileName, resumeText string,
	method scoring.ExtractionMethod,
	original []byte,
) (*AnalysisResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "scoring", "score",
		telemetry.WithAttribute(telemetry.SpanAttrSource, string(source)),
		telemetry.WithAttribute(telemetry.SpanAttrModel, s.generator.Model()),
	)
	defer span.End()

	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		telemetry.RecordError(span, shared.ErrEmptyResume)
		return nil, shared.ErrEmptyResume
	}

	digest := scoring.ComputeTextDigest(s.generator.Model(), resumeText)

	// A resume already scored with the same model short-circuits the pipeline
	if existing, err := s.repo.FindByDigest(ctx, digest); err == nil && existing != nil {
		telemetry.AddEvent(span, "digest_hit", telemetry.SpanAttrDigest, digest)
		result := ToAnalysisResult(existing, true)
		return &result, nil
	}

	score, attempts, err := s.generateScore(ctx, resumeText, digest)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	analysis, err := scoring.NewAnalysis(source, fileName, resumeText, s.generator.Model(), method, attempts, *score)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.archiver != nil && len(original) > 0 {
		key, err := s.archiver.Archive(ctx, fileName, original)
		if err != nil {
			// Archival is best effort, the score is still valid
			s.logger.Warn("Failed to archive uploaded resume",
				zap.String("file_name", fileName),
				zap.Error(err),
			)
		} else {
			analysis.AttachArchive(key)
		}
	}

	if err := s.repo.Save(ctx, analysis); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAnalysisID, analysis.ID.String(),
		telemetry.SpanAttrAttempts, attempts,
		telemetry.SpanAttrOverallScore, analysis.Score.OverallScore,
	)

	result := ToAnalysisResult(analysis, false)
	return &result, nil
}

// generateScore asks the model for a score, retrying on invalid JSON
func (s *ScorerService) generateScore(ctx context.Context, resumeText, digest string) (*scoring.Score, int, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, digest); err == nil && cached != nil {
			return cached, 1, nil
		}
	}

	prompt := fmt.Sprintf(promptTemplate, resumeText)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		raw, err := s.generator.Generate(ctx, prompt)
		if err != nil {
			s.logger.Warn("Model call failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		score, err := s.parseScore(raw)
		if err != nil {
			s.logger.Warn("Model returned invalid score payload",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		if s.cache != nil {
			if err := s.cache.Set(ctx, digest, *score); err != nil {
				s.logger.Warn("Failed to cache score", zap.Error(err))
			}
		}
		return score, attempt, nil
	}

	return nil, 0, shared.NewDomainError("MODEL_FAILURE",
		fmt.Sprintf("Model failed to return valid JSON after %d attempts", s.maxAttempts))
}

// parseScore cleans and validates a raw model completion
func (s *ScorerService) parseScore(raw string) (*scoring.Score, error) {
	cleaned := cleanModelJSON(raw)

	var score scoring.Score
	if err := json.Unmarshal([]byte(cleaned), &score); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := s.validate.Struct(score); err != nil {
		return nil, fmt.Errorf("invalid score payload: %w", err)
	}
	if err := score.Validate(); err != nil {
		return nil, err
	}
	return &score, nil
}

// cleanModelJSON strips markdown code fences that models wrap around JSON
// despite being told not to.
func cleanModelJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimSpace(cleaned)
	if strings.HasPrefix(strings.ToLower(cleaned), "json") {
		cleaned = cleaned[len("json"):]
	}
	return strings.TrimSpace(cleaned)
}

// GetAnalysis retrieves a stored analysis by ID
func (s *ScorerService) GetAnalysis(ctx context.Context, id uuid.UUID) (*AnalysisResult, error) {
	analysis, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := ToAnalysisResult(analysis, false)
	return &result, nil
}

// ListAnalyses returns stored analyses with pagination
func (s *ScorerService) ListAnalyses(ctx context.Context, filter shared.Filter) (*shared.Paginated[AnalysisResult], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	analyses, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]AnalysisResult, 0, len(analyses))
	for i := range analyses {
		items = append(items, ToAnalysisResult(&analyses[i], false))
	}

	paginated := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// DeleteAnalysis removes a stored analysis and, best effort, its
// archived upload. A failed archive delete does not undo the record
// delete; the orphaned object is only logged.
func (s *ScorerService) DeleteAnalysis(ctx context.Context, id uuid.UUID) error {
	analysis, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.cleaner != nil && analysis.ArchiveKey != "" {
		if err := s.cleaner.DeleteObject(ctx, analysis.ArchiveKey); err != nil {
			s.logger.Warn("Failed to delete archived resume",
				zap.String("archive_key", analysis.ArchiveKey),
				zap.Error(err),
			)
		}
	}
	return nil
}
