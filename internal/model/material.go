package model

// Material 教师上传的学习资料
type Material struct {
	BaseModel
	Title       string `gorm:"size:200;not null" json:"title"`
	Subject     string `gorm:"size:30;index" json:"subject"`
	FileURL     string `gorm:"size:255" json:"fileUrl"`
	ContentType string `gorm:"size:100" json:"contentType"`
	Size        int64  `json:"size"`
	UploaderID  uint   `gorm:"index" json:"uploaderId"`
}

func (Material) TableName() string {
	return "materials"
}
