package repository

import (
	"context"

	"anoa.com/pocmarket/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message, attachmentIDs []uint) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	FindThread(ctx context.Context, owner entity.ThreadOwner, offset, limit int) ([]*entity.Message, int64, error)
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts the message and claims any uploaded attachments for it in the
// same transaction, so the orphan sweeper never reaps a file that just got
// attached.
func (r *messageRepository) Create(ctx context.Context, message *entity.Message, attachmentIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		if len(attachmentIDs) > 0 {
			if err := tx.Model(&entity.Attachment{}).
				Where("id IN ? AND uploader_id = ? AND message_id IS NULL", attachmentIDs, message.SenderID).
				Update("message_id", message.ID).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *messageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	var message entity.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		First(&message, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) FindThread(ctx context.Context, owner entity.ThreadOwner, offset, limit int) ([]*entity.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Message{})

	switch owner.Kind {
	case entity.ThreadOwnerContract:
		query = query.Where("contract_id = ?", owner.ID)
	case entity.ThreadOwnerProposal:
		query = query.Where("proposal_id = ?", owner.ID)
	default:
		return nil, 0, gorm.ErrRecordNotFound
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []*entity.Message
	err := query.
		Preload("Sender").
		Preload("Parent").
		Order("is_pinned DESC, created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *messageRepository) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	return r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("id = ?", id).
		Update("is_pinned", pinned).Error
}
