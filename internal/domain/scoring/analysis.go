package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/resumescore/backend/internal/domain/shared"
)

// Source describes where the resume text came from
type Source string

const (
	SourceText Source = "text"
	SourcePDF  Source = "pdf"
	SourceJSON Source = "json"
)

// IsValidSource checks if the source is valid
func IsValidSource(s Source) bool {
	switch s {
	case SourceText, SourcePDF, SourceJSON:
		return true
	}
	return false
}

// ExtractionMethod describes how text was pulled out of an upload
type ExtractionMethod string

const (
	ExtractionNone      ExtractionMethod = "none"
	ExtractionTextLayer ExtractionMethod = "text_layer"
	ExtractionOCR       ExtractionMethod = "ocr"
)

// Analysis is the aggregate root for a scored resume
type Analysis struct {
	shared.BaseAggregateRoot
	Source           Source
	FileName         string
	ResumeText       string
	TextDigest       string
	Model            string
	ExtractionMethod ExtractionMethod
	Attempts         int
	ArchiveKey       string
	Score            Score
}

// ComputeTextDigest returns the cache key digest for a model/resume pair
func ComputeTextDigest(model, resumeText string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(resumeText))
	return hex.EncodeToString(h.Sum(nil))
}

// NewAnalysis creates a new analysis aggregate for a scored resume
func NewAnalysis(source Source, fileName, resumeText, model string, method ExtractionMethod, attempts int, score Score) (*Analysis, error) {
	if !IsValidSource(source) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid analysis source")
	}
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, shared.ErrEmptyResume
	}
	if model == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Model name is required")
	}
	if attempts < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Attempts must be at least 1")
	}
	if err := score.Validate(); err != nil {
		return nil, err
	}
	if method == "" {
		method = ExtractionNone
	}

	a := &Analysis{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Source:            source,
		FileName:          fileName,
		ResumeText:        resumeText,
		TextDigest:        ComputeTextDigest(model, resumeText),
		Model:             model,
		ExtractionMethod:  method,
		Attempts:          attempts,
		Score:             score,
	}
	a.AddDomainEvent(NewAnalysisScoredEvent(a))
	return a, nil
}

// AttachArchive records the object storage key of the archived upload
func (a *Analysis) AttachArchive(key string) {
	a.ArchiveKey = key
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// AnalysisScoredEvent is emitted when a resume has been scored
type AnalysisScoredEvent struct {
	shared.BaseDomainEvent
	Model        string  `json:"model"`
	OverallScore float64 `json:"overall_score"`
	Attempts     int     `json:"attempts"`
}

// NewAnalysisScoredEvent creates a new analysis scored event
func NewAnalysisScoredEvent(a *Analysis) *AnalysisScoredEvent {
	return &AnalysisScoredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("scoring.analysis_scored", "Analysis", a.ID),
		Model:           a.Model,
		OverallScore:    a.Score.OverallScore,
		Attempts:        a.Attempts,
	}
}
