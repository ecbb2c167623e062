package repository

import (
	"learn_my_way_backend/internal/model"

	"gorm.io/gorm"
)

type ChallengeResultRepository struct {
	DB *gorm.DB
}

func NewChallengeResultRepository(db *gorm.DB) *ChallengeResultRepository {
	return &ChallengeResultRepository{DB: db}
}

func (r *ChallengeResultRepository) Create(result *model.ChallengeResult) error {
	return r.DB.Create(result).Error
}

func (r *ChallengeResultRepository) ListByUser(userID uint, limit int) ([]model.ChallengeResult, error) {
	var results []model.ChallengeResult
	q := r.DB.Where("user_id = ?", userID).Order("completed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&results).Error
	return results, err
}

func (r *ChallengeResultRepository) ListAll(page, limit int) ([]model.ChallengeResult, int64, error) {
	var results []model.ChallengeResult
	var total int64

	q := r.DB.Model(&model.ChallengeResult{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("completed_at DESC").Offset(offset).Limit(limit).Find(&results).Error
	return results, total, err
}
