package model

// SubjectProgress 学习者档案里各学科的进度百分比。
// 挑战完成后由调用方回写，不参与闸门判定。
type SubjectProgress struct {
	BaseModel
	UserID  uint   `gorm:"index:idx_user_subject,unique;not null" json:"userId"`
	Subject string `gorm:"size:30;index:idx_user_subject,unique;not null" json:"subject"`
	Percent int    `gorm:"default:0" json:"percent"`
}

func (SubjectProgress) TableName() string {
	return "subject_progress"
}
