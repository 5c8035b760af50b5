package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/model"

	"gorm.io/gorm"
)

var ErrAnnouncementNotFound = errors.New("公告不存在")

type AnnouncementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Create(ctx context.Context, announcement *model.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*model.Announcement, error) {
	var announcement model.Announcement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&announcement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	return &announcement, nil
}

// ListPublished 已发布公告，置顶优先，其余按发布时间倒序
func (r *AnnouncementRepository) ListPublished(ctx context.Context, page, pageSize int) ([]*model.Announcement, int64, error) {
	var announcements []*model.Announcement
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.Announcement{}).
		Where("status = ?", model.AnnouncementStatusPublished)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("pinned DESC, published_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&announcements).Error

	return announcements, total, err
}

// Publish 发布公告：DRAFT -> PUBLISHED 并记录发布时间
func (r *AnnouncementRepository) Publish(ctx context.Context, tx *gorm.DB, id int64, publishedAt time.Time) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Announcement{}).
		Where("id = ? AND status = ?", id, model.AnnouncementStatusDraft).
		Updates(map[string]interface{}{
			"status":       model.AnnouncementStatusPublished,
			"published_at": publishedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAnnouncementNotFound
	}
	return nil
}

func (r *AnnouncementRepository) Archive(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Announcement{}).
		Where("id = ? AND status = ?", id, model.AnnouncementStatusPublished).
		Update("status", model.AnnouncementStatusArchived)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAnnouncementNotFound
	}
	return nil
}

func (r *AnnouncementRepository) Update(ctx context.Context, id int64, title, content string, pinned bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.Announcement{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":   title,
			"content": content,
			"pinned":  pinned,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAnnouncementNotFound
	}
	return nil
}
