package model

import (
	"time"
)

const (
	MessageStatusOpen     = "OPEN"     // 玩家已提交，等待客服处理
	MessageStatusAnswered = "ANSWERED" // 客服已回复
	MessageStatusClosed   = "CLOSED"   // 已关闭
)

// Message 客服咨询表
// 玩家发起咨询，客服回复后状态从 OPEN 迁移到 ANSWERED
type Message struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageNo string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"message_no"`
	UserID    int64      `gorm:"index;not null" json:"user_id"`
	Title     string     `gorm:"type:varchar(128);not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Status    string     `gorm:"type:varchar(20);index;not null;default:OPEN" json:"status"`
	Reply     string     `gorm:"type:text" json:"reply"`
	RepliedBy string     `gorm:"type:varchar(64)" json:"replied_by"`
	RepliedAt *time.Time `json:"replied_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Message) TableName() string {
	return "message"
}
