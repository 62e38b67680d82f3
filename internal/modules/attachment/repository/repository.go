package repository

import (
	"context"
	"time"

	"anoa.com/pocmarket/internal/entity"
	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	FindOrphansBefore(ctx context.Context, cutoff time.Time) ([]entity.Attachment, error)
	Delete(ctx context.Context, id uint) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *entity.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

// FindOrphansBefore returns uploads that were never linked to a message and
// are older than the cutoff.
func (r *attachmentRepository) FindOrphansBefore(ctx context.Context, cutoff time.Time) ([]entity.Attachment, error) {
	var orphans []entity.Attachment
	err := r.db.WithContext(ctx).
		Where("message_id IS NULL AND created_at < ?", cutoff).
		Find(&orphans).Error
	return orphans, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Attachment{}, id).Error
}
