package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/config"
	"github.com/lunatickworker/casino-sub002/internal/model"
	"github.com/lunatickworker/casino-sub002/internal/repository"

	"gorm.io/gorm"
)

type AnnouncementService struct {
	announcementRepo *repository.AnnouncementRepository
	outboxRepo       *repository.OutboxRepository
	db               *gorm.DB
	cfg              *config.Config
}

func NewAnnouncementService(db *gorm.DB, cfg *config.Config) *AnnouncementService {
	return &AnnouncementService{
		announcementRepo: repository.NewAnnouncementRepository(db),
		outboxRepo:       repository.NewOutboxRepository(db),
		db:               db,
		cfg:              cfg,
	}
}

func (s *AnnouncementService) Create(ctx context.Context, title, content, createdBy string, pinned bool) (*model.Announcement, error) {
	if title == "" || content == "" {
		return nil, errors.New("标题和内容不能为空")
	}

	announcement := &model.Announcement{
		Title:     title,
		Content:   content,
		Status:    model.AnnouncementStatusDraft,
		Pinned:    pinned,
		CreatedBy: createdBy,
	}
	if err := s.announcementRepo.Create(ctx, announcement); err != nil {
		return nil, fmt.Errorf("创建公告失败: %w", err)
	}
	return announcement, nil
}

// Publish 发布公告，发布事件与状态迁移同一事务写入发件箱
func (s *AnnouncementService) Publish(ctx context.Context, id int64) (*model.Announcement, error) {
	announcement, err := s.announcementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if announcement.Status != model.AnnouncementStatusDraft {
		return nil, errors.New("只有草稿状态的公告可以发布")
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.announcementRepo.Publish(ctx, tx, id, now); err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"announcement_id": id,
			"title":           announcement.Title,
			"pinned":          announcement.Pinned,
			"published_at":    now.Format(time.RFC3339),
		})
		outboxMsg := &model.OutboxMessage{
			EventType:  model.EventTypeAnnouncementPublished,
			MessageKey: fmt.Sprintf("announcement-%d", id),
			Topic:      s.cfg.Kafka.Topic.Announcement,
			Payload:    string(payload),
			Status:     model.OutboxStatusPending,
		}
		return s.outboxRepo.Create(ctx, tx, outboxMsg)
	})
	if err != nil {
		return nil, err
	}

	return s.announcementRepo.GetByID(ctx, id)
}

func (s *AnnouncementService) Archive(ctx context.Context, id int64) error {
	return s.announcementRepo.Archive(ctx, id)
}

func (s *AnnouncementService) Update(ctx context.Context, id int64, title, content string, pinned bool) error {
	if title == "" || content == "" {
		return errors.New("标题和内容不能为空")
	}
	return s.announcementRepo.Update(ctx, id, title, content, pinned)
}

func (s *AnnouncementService) Get(ctx context.Context, id int64) (*model.Announcement, error) {
	return s.announcementRepo.GetByID(ctx, id)
}

func (s *AnnouncementService) ListPublished(ctx context.Context, page, pageSize int) ([]*model.Announcement, int64, error) {
	return s.announcementRepo.ListPublished(ctx, page, pageSize)
}
