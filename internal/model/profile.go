package model

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

const (
	AccountActive = "active"
	AccountBanned = "banned"
	AccountFrozen = "frozen"
)

// ProfileInfo 用户资料（与 users 一对一，user_id 即主键）
type ProfileInfo struct {
	UserID        string `gorm:"primaryKey;type:varchar(36)"`
	ProfilePic    string `gorm:"type:text"`
	Bio           string `gorm:"type:varchar(500)"`
	Gender        string `gorm:"type:varchar(16)"`
	AccountStatus string `gorm:"type:varchar(16);default:active"`
}

func (ProfileInfo) TableName() string { return "profile_info" }
