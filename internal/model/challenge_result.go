package model

import (
	"time"
)

// ChallengeResult 存储一次挑战的最终成绩
type ChallengeResult struct {
	BaseModel
	UserID        uint          `gorm:"index;not null" json:"userId"`
	ChallengeType ChallengeType `gorm:"size:20;index;not null" json:"challengeType"`
	Score         int           `gorm:"not null" json:"score"`
	Total         int           `gorm:"not null" json:"total"`
	Percent       int           `gorm:"not null" json:"percent"`
	Badge         string        `gorm:"size:50" json:"badge"`
	Points        int           `gorm:"default:0" json:"points"`
	Attempts      int           `gorm:"default:1" json:"attempts"` // 当天用掉的尝试次数
	CompletedAt   time.Time     `json:"completedAt"`
}

func (ChallengeResult) TableName() string {
	return "challenge_results"
}
