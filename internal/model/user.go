package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string   `gorm:"size:100;not null" json:"name"`
	Email     string   `gorm:"size:100;unique;not null" json:"email"`
	Password  string   `gorm:"size:100;not null" json:"-"`
	Role      UserRole `gorm:"size:20;default:'student'" json:"role"`
	StudentID *string  `gorm:"size:50;uniqueIndex" json:"studentId,omitempty"` // 学号，仅学生有
	Level     int      `gorm:"default:1" json:"level"`
	Avatar    string   `gorm:"size:255" json:"avatar"`
	Disabled  bool     `gorm:"default:false" json:"disabled"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	LastSeen  *time.Time `json:"lastSeen,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsStudent() bool {
	return u.Role == Student
}
