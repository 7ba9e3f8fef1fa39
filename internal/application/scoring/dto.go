package scoring

import (
	"time"

	"github.com/google/uuid"

	"github.com/resumescore/backend/internal/domain/scoring"
)

// ScoreTextRequest is the input for scoring raw resume text
type ScoreTextRequest struct {
	ResumeText string `json:"resume_text" binding:"required"`
}

// UploadRequest is the input for scoring an uploaded resume file
type UploadRequest struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AnalysisResult is the application-level view of a scored resume
type AnalysisResult struct {
	ID               uuid.UUID      `json:"id"`
	Source           string         `json:"source"`
	FileName         string         `json:"file_name,omitempty"`
	Model            string         `json:"model"`
	ExtractionMethod string         `json:"extraction_method,omitempty"`
	Attempts         int            `json:"attempts"`
	Cached           bool           `json:"cached"`
	ArchiveKey       string         `json:"archive_key,omitempty"`
	Score            scoring.Score  `json:"score"`
	CreatedAt        time.Time      `json:"created_at"`
}

// ToAnalysisResult converts an analysis aggregate to its response form
func ToAnalysisResult(a *scoring.Analysis, cached bool) AnalysisResult {
	method := string(a.ExtractionMethod)
	if a.ExtractionMethod == scoring.ExtractionNone {
		method = ""
	}
	return AnalysisResult{
		ID:               a.ID,
		Source:           string(a.Source),
		FileName:         a.FileName,
		Model:            a.Model,
		ExtractionMethod: method,
		Attempts:         a.Attempts,
		Cached:           cached,
		ArchiveKey:       a.ArchiveKey,
		Score:            a.Score,
		CreatedAt:        a.CreatedAt,
	}
}
