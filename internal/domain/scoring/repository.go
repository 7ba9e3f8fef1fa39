package scoring

import (
	"context"

	"github.com/google/uuid"

	"github.com/resumescore/backend/internal/domain/shared"
)

// AnalysisRepository persists scored resumes
type AnalysisRepository interface {
	Save(ctx context.Context, analysis *Analysis) error
	FindByID(ctx context.Context, id uuid.UUID) (*Analysis, error)
	FindByDigest(ctx context.Context, digest string) (*Analysis, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Analysis, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TextGenerator produces model completions for a prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// ScoreCache caches scores by resume digest
type ScoreCache interface {
	Get(ctx context.Context, digest string) (*Score, error)
	Set(ctx context.Context, digest string, score Score) error
}
