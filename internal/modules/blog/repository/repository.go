package repository

import (
	"context"

	"anoa.com/pocmarket/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BlogRepository interface {
	Create(ctx context.Context, post *entity.BlogPost) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.BlogPost, error)
	FindPublished(ctx context.Context, offset, limit int) ([]*entity.BlogPost, int64, error)
	FindByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*entity.BlogPost, int64, error)
	Update(ctx context.Context, post *entity.BlogPost) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type blogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, post *entity.BlogPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *blogRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.BlogPost, error) {
	var post entity.BlogPost
	err := r.db.WithContext(ctx).
		Preload("Author").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *blogRepository) FindPublished(ctx context.Context, offset, limit int) ([]*entity.BlogPost, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.BlogPost{}).Where("published = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*entity.BlogPost
	err := query.
		Preload("Author").
		Order("published_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *blogRepository) FindByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*entity.BlogPost, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.BlogPost{}).Where("author_id = ?", authorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*entity.BlogPost
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *blogRepository) Update(ctx context.Context, post *entity.BlogPost) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *blogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.BlogPost{}, "id = ?", id).Error
}
