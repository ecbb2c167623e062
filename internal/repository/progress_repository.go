package repository

import (
	"learn_my_way_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 写入某学科的进度百分比，同键覆盖
func (r *ProgressRepository) Upsert(userID uint, subject string, percent int) error {
	row := model.SubjectProgress{
		UserID:  userID,
		Subject: subject,
		Percent: percent,
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "subject"}},
		DoUpdates: clause.AssignmentColumns([]string{"percent", "updated_at"}),
	}).Create(&row).Error
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.SubjectProgress, error) {
	var rows []model.SubjectProgress
	err := r.DB.Where("user_id = ?", userID).Order("subject").Find(&rows).Error
	return rows, err
}
