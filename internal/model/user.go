package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Parent  UserRole = "parent"
)

// swagger:model User
type User struct {
	BaseModel
	Name       string    `gorm:"size:100;not null" json:"Name"`
	Email      string    `gorm:"size:100;unique;not null" json:"Email"`
	Password   string    `gorm:"size:100;not null" json:"-"`
	Role       UserRole  `gorm:"type:enum('student','teacher','parent');default:'student'" json:"Role"`
	GradeLevel string    `gorm:"size:10;default:'4-6'" json:"GradeLevel"` // 年级区间，挑战内容按年级生成
	Points     int       `gorm:"default:0" json:"Points"`
	Badges     []string  `gorm:"serializer:json" json:"Badges"`
	Language   string    `gorm:"size:10;default:'en'" json:"Language"`
	Avatar     string    `gorm:"size:255" json:"avatar"`
	Disabled   bool      `gorm:"default:false" json:"Disabled"`
	LastLogin  time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"LastLogin"`
	LastSeen   time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"LastSeen"`
}

func (User) TableName() string {
	return "users"
}

// HasBadge 判断用户是否已获得指定徽章
func (u *User) HasBadge(badge string) bool {
	for _, b := range u.Badges {
		if b == badge {
			return true
		}
	}
	return false
}
