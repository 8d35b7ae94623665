package model

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User 用户主体（密码仅存哈希）
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	FullName  string    `gorm:"type:varchar(255);not null"`
	Username  string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `gorm:"type:text;not null"`
	Role      string    `gorm:"type:varchar(16);default:user"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }
