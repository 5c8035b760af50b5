package model

import (
	"time"
)

const (
	AnnouncementStatusDraft     = "DRAFT"
	AnnouncementStatusPublished = "PUBLISHED"
	AnnouncementStatusArchived  = "ARCHIVED"
)

// Announcement 公告表
type Announcement struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"type:varchar(128);not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Status      string     `gorm:"type:varchar(20);index;not null;default:DRAFT" json:"status"`
	Pinned      bool       `gorm:"not null;default:false" json:"pinned"` // 置顶
	CreatedBy   string     `gorm:"type:varchar(64);not null" json:"created_by"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Announcement) TableName() string {
	return "announcement"
}
