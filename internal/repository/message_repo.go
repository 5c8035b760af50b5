package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/model"

	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("咨询不存在")

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepository) GetByMessageNo(ctx context.Context, messageNo string) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).Where("message_no = ?", messageNo).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) ListByStatus(ctx context.Context, status string, page, pageSize int) ([]*model.Message, int64, error) {
	var messages []*model.Message
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Message{}).Where("status = ?", status)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error

	return messages, total, err
}

func (r *MessageRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.Message, int64, error) {
	var messages []*model.Message
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Message{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error

	return messages, total, err
}

// Reply 客服回复：OPEN -> ANSWERED，CAS 条件更新防止重复回复
func (r *MessageRepository) Reply(ctx context.Context, tx *gorm.DB, messageNo, reply, repliedBy string, repliedAt time.Time) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Message{}).
		Where("message_no = ? AND status = ?", messageNo, model.MessageStatusOpen).
		Updates(map[string]interface{}{
			"status":     model.MessageStatusAnswered,
			"reply":      reply,
			"replied_by": repliedBy,
			"replied_at": repliedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) Close(ctx context.Context, messageNo string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("message_no = ? AND status <> ?", messageNo, model.MessageStatusClosed).
		Update("status", model.MessageStatusClosed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}
