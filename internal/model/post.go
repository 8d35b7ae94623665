package model

import "time"

// Post 内容主体
type Post struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	AuthorID  string `gorm:"type:varchar(36);index:idx_post_author"`
	Text      string `gorm:"type:text"`
	Image     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Post) TableName() string { return "posts" }

// Comment 评论；ReplyToID 非空时为对另一条评论的回复
type Comment struct {
	ID        string  `gorm:"primaryKey;type:varchar(36)"`
	PostID    string  `gorm:"type:varchar(36);index:idx_comment_post;not null"`
	AuthorID  string  `gorm:"type:varchar(36);not null"`
	Text      string  `gorm:"type:text"`
	ReplyToID *string `gorm:"type:varchar(36);index:idx_comment_reply"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Comment) TableName() string { return "comments" }

// Like 点赞，(post_id, user_id) 复合唯一
type Like struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	PostID    string `gorm:"type:varchar(36);index:idx_like_post;index:idx_like_pair,unique;not null"`
	UserID    string `gorm:"type:varchar(36);not null;index:idx_like_pair,unique"`
	CreatedAt time.Time
}

func (Like) TableName() string { return "likes" }
