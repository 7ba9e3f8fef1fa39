package models

import (
	"encoding/json"

	"github.com/resumescore/backend/internal/domain/scoring"
)

// AnalysisModel is the persistence model for scored resume analyses
type AnalysisModel struct {
	AggregateModel
	Source           string  `gorm:"type:varchar(10);not null;index"`
	FileName         string  `gorm:"type:varchar(255)"`
	ResumeText       string  `gorm:"type:text;not null"`
	TextDigest       string  `gorm:"type:varchar(64);not null;uniqueIndex"`
	Model            string  `gorm:"type:varchar(100);not null"`
	ExtractionMethod string  `gorm:"type:varchar(20);not null;default:'none'"`
	Attempts         int     `gorm:"not null;default:1"`
	ArchiveKey       string  `gorm:"type:varchar(512)"`
	Summary          string  `gorm:"type:text;not null"`
	SkillsScore      float64 `gorm:"not null"`
	ExperienceScore  float64 `gorm:"not null"`
	OverallScore     float64 `gorm:"not null;index"`
	Feedback         string  `gorm:"type:text;not null"`
	MissingAspects   string  `gorm:"type:jsonb;default:'[]'"`
}

// TableName specifies the table name for AnalysisModel
func (AnalysisModel) TableName() string {
	return "analyses"
}

// ToDomain converts AnalysisModel to a domain Analysis aggregate
func (m *AnalysisModel) ToDomain() *scoring.Analysis {
	var missingAspects []string
	if m.MissingAspects != "" {
		// A corrupted column degrades to an empty list rather than failing the read
		if err := json.Unmarshal([]byte(m.MissingAspects), &missingAspects); err != nil {
			missingAspects = []string{}
		}
	}
	if missingAspects == nil {
		missingAspects = []string{}
	}

	analysis := &scoring.Analysis{
		Source:           scoring.Source(m.Source),
		FileName:         m.FileName,
		ResumeText:       m.ResumeText,
		TextDigest:       m.TextDigest,
		Model:            m.Model,
		ExtractionMethod: scoring.ExtractionMethod(m.ExtractionMethod),
		Attempts:         m.Attempts,
		ArchiveKey:       m.ArchiveKey,
		Score: scoring.Score{
			Summary:         m.Summary,
			SkillsScore:     m.SkillsScore,
			ExperienceScore: m.ExperienceScore,
			OverallScore:    m.OverallScore,
			Feedback:        m.Feedback,
			MissingAspects:  missingAspects,
		},
	}
	m.PopulateAggregateRoot(&analysis.BaseAggregateRoot)
	return analysis
}

// AnalysisModelFromDomain creates an AnalysisModel from a domain Analysis
func AnalysisModelFromDomain(a *scoring.Analysis) *AnalysisModel {
	model := &AnalysisModel{
		Source:           string(a.Source),
		FileName:         a.FileName,
		ResumeText:       a.ResumeText,
		TextDigest:       a.TextDigest,
		Model:            a.Model,
		ExtractionMethod: string(a.ExtractionMethod),
		Attempts:         a.Attempts,
		ArchiveKey:       a.ArchiveKey,
		Summary:          a.Score.Summary,
		SkillsScore:      a.Score.SkillsScore,
		ExperienceScore:  a.Score.ExperienceScore,
		OverallScore:     a.Score.OverallScore,
		Feedback:         a.Score.Feedback,
		MissingAspects:   "[]",
	}
	if jsonBytes, err := json.Marshal(a.Score.MissingAspects); err == nil {
		model.MissingAspects = string(jsonBytes)
	}
	model.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return model
}
