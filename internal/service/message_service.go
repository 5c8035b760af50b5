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
	"github.com/lunatickworker/casino-sub002/pkg/idgen"

	"gorm.io/gorm"
)

type MessageService struct {
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	outboxRepo  *repository.OutboxRepository
	db          *gorm.DB
	cfg         *config.Config
}

func NewMessageService(db *gorm.DB, cfg *config.Config) *MessageService {
	return &MessageService{
		messageRepo: repository.NewMessageRepository(db),
		userRepo:    repository.NewUserRepository(db),
		outboxRepo:  repository.NewOutboxRepository(db),
		db:          db,
		cfg:         cfg,
	}
}

// Open 玩家发起客服咨询
func (s *MessageService) Open(ctx context.Context, userID int64, title, content string) (*model.Message, error) {
	if title == "" || content == "" {
		return nil, errors.New("标题和内容不能为空")
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	message := &model.Message{
		MessageNo: idgen.GenerateMessageNo(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Status:    model.MessageStatusOpen,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("创建咨询失败: %w", err)
	}
	return message, nil
}

// Reply 客服回复，回复事件与状态迁移同一事务写入发件箱
func (s *MessageService) Reply(ctx context.Context, messageNo, reply, repliedBy string) (*model.Message, error) {
	if reply == "" {
		return nil, errors.New("回复内容不能为空")
	}

	message, err := s.messageRepo.GetByMessageNo(ctx, messageNo)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.messageRepo.Reply(ctx, tx, messageNo, reply, repliedBy, now); err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"message_no": messageNo,
			"user_id":    message.UserID,
			"replied_by": repliedBy,
			"replied_at": now.Format(time.RFC3339),
		})
		outboxMsg := &model.OutboxMessage{
			EventType:  model.EventTypeMessageAnswered,
			MessageKey: messageNo,
			Topic:      s.cfg.Kafka.Topic.Message,
			Payload:    string(payload),
			Status:     model.OutboxStatusPending,
		}
		return s.outboxRepo.Create(ctx, tx, outboxMsg)
	})
	if err != nil {
		return nil, err
	}

	return s.messageRepo.GetByMessageNo(ctx, messageNo)
}

func (s *MessageService) Close(ctx context.Context, messageNo string) error {
	return s.messageRepo.Close(ctx, messageNo)
}

func (s *MessageService) Get(ctx context.Context, messageNo string) (*model.Message, error) {
	return s.messageRepo.GetByMessageNo(ctx, messageNo)
}

func (s *MessageService) ListOpen(ctx context.Context, page, pageSize int) ([]*model.Message, int64, error) {
	return s.messageRepo.ListByStatus(ctx, model.MessageStatusOpen, page, pageSize)
}

func (s *MessageService) ListUserMessages(ctx context.Context, userID int64, page, pageSize int) ([]*model.Message, int64, error) {
	return s.messageRepo.ListByUser(ctx, userID, page, pageSize)
}
