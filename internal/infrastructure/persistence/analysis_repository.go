package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resumescore/backend/internal/domain/scoring"
	"github.com/resumescore/backend/internal/domain/shared"
	"github.com/resumescore/backend/internal/infrastructure/persistence/models"
)

// GormAnalysisRepository implements scoring.AnalysisRepository using GORM
type GormAnalysisRepository struct {
	db *gorm.DB
}

// NewGormAnalysisRepository creates a new GORM analysis repository
func NewGormAnalysisRepository(db *gorm.DB) *GormAnalysisRepository {
	return &GormAnalysisRepository{db: db}
}

// Save creates or updates an analysis
func (r *GormAnalysisRepository) Save(ctx context.Context, analysis *scoring.Analysis) error {
	model := models.AnalysisModelFromDomain(analysis)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds an analysis by ID
func (r *GormAnalysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*scoring.Analysis, error) {
	var model models.AnalysisModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDigest finds an analysis by its model/resume digest
func (r *GormAnalysisRepository) FindByDigest(ctx context.Context, digest string) (*scoring.Analysis, error) {
	var model models.AnalysisModel
	if err := r.db.WithContext(ctx).First(&model, "text_digest = ?", digest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds analyses matching the filter
func (r *GormAnalysisRepository) FindAll(ctx context.Context, filter shared.Filter) ([]scoring.Analysis, error) {
	var analysisModels []models.AnalysisModel
	query := r.db.WithContext(ctx).Model(&models.AnalysisModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&analysisModels).Error; err != nil {
		return nil, err
	}

	analyses := make([]scoring.Analysis, 0, len(analysisModels))
	for i := range analysisModels {
		analyses = append(analyses, *analysisModels[i].ToDomain())
	}
	return analyses, nil
}

// Count counts analyses matching the filter
func (r *GormAnalysisRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.AnalysisModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete deletes an analysis
func (r *GormAnalysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AnalysisModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormAnalysisRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	// Apply ordering against the column whitelist
	orderBy := ValidateSortField(filter.OrderBy, AnalysisSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAnalysisRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("file_name LIKE ? OR summary LIKE ?", searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "source":
			query = query.Where("source = ?", value)
		case "model":
			query = query.Where("model = ?", value)
		case "extraction_method":
			query = query.Where("extraction_method = ?", value)
		case "min_overall_score":
			query = query.Where("overall_score >= ?", value)
		case "max_overall_score":
			query = query.Where("overall_score <= ?", value)
		}
	}

	return query
}

// Ensure GormAnalysisRepository implements AnalysisRepository
var _ scoring.AnalysisRepository = (*GormAnalysisRepository)(nil)
