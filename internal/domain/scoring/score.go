package scoring

import (
	"strings"

	"github.com/resumescore/backend/internal/domain/shared"
)

// Score bounds returned by the model
const (
	MinScore = 1
	MaxScore = 10
)

// Score is the structured evaluation of a resume
type Score struct {
	Summary         string   `json:"summary" validate:"required"`
	SkillsScore     float64  `json:"skills_score" validate:"required,min=1,max=10"`
	ExperienceScore float64  `json:"experience_score" validate:"required,min=1,max=10"`
	OverallScore    float64  `json:"overall_score" validate:"required,min=1,max=10"`
	Feedback        string   `json:"feedback" validate:"required"`
	MissingAspects  []string `json:"missing_aspects" validate:"required"`
}

// NewScore creates a validated score
func NewScore(summary string, skills, experience, overall float64, feedback string, missingAspects []string) (Score, error) {
	s := Score{
		Summary:         strings.TrimSpace(summary),
		SkillsScore:     skills,
		ExperienceScore: experience,
		OverallScore:    overall,
		Feedback:        strings.TrimSpace(feedback),
		MissingAspects:  missingAspects,
	}
	if err := s.Validate(); err != nil {
		return Score{}, err
	}
	return s, nil
}

// Validate checks the score invariants
func (s Score) Validate() error {
	if s.Summary == "" {
		return shared.NewDomainError("INVALID_SCORE", "Score summary is required")
	}
	if s.Feedback == "" {
		return shared.NewDomainError("INVALID_SCORE", "Score feedback is required")
	}
	for _, v := range []float64{s.SkillsScore, s.ExperienceScore, s.OverallScore} {
		if v < MinScore || v > MaxScore {
			return shared.ErrInvalidScore
		}
	}
	if s.MissingAspects == nil {
		return shared.NewDomainError("INVALID_SCORE", "Missing aspects list is required")
	}
	return nil
}
