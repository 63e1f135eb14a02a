package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/recruiter-assistant/internal/models"
)

type EvaluationRepository interface {
	Create(ctx context.Context, eval *models.Evaluation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Evaluation, error)
	ListByPhone(ctx context.Context, phone string, limit int) ([]models.Evaluation, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, eval *models.Evaluation) error {
	if err := r.db.WithContext(ctx).Create(eval).Error; err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}
	return nil
}

func (r *evaluationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Evaluation, error) {
	var eval models.Evaluation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&eval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluation %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &eval, nil
}

// ListByPhone returns the most recent evaluations first.
func (r *evaluationRepository) ListByPhone(ctx context.Context, phone string, limit int) ([]models.Evaluation, error) {
	var evals []models.Evaluation
	q := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&evals).Error; err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return evals, nil
}
