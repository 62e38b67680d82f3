package repository

import (
	"context"

	"anoa.com/pocmarket/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	// Atomic runs fn against a repository bound to one transaction. The review
	// insert and any badge grants it causes commit or roll back together.
	Atomic(ctx context.Context, fn func(tx ReviewRepository) error) error

	Create(ctx context.Context, review *entity.Review) error
	ExistsByContractAndReviewer(ctx context.Context, contractID, reviewerID uuid.UUID) (bool, error)
	CountForReviewee(ctx context.Context, revieweeID uuid.UUID) (int64, error)
	AverageRating(ctx context.Context, revieweeID uuid.UUID) (float64, error)
	HasBadge(ctx context.Context, userID uuid.UUID, badgeType entity.BadgeType) (bool, error)
	GrantBadge(ctx context.Context, badge *entity.UserBadge) error
	FindForUser(ctx context.Context, userID uuid.UUID, received bool, offset, limit int) ([]*entity.Review, int64, error)
	FindBadges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Atomic(ctx context.Context, fn func(tx ReviewRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&reviewRepository{db: tx})
	})
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) ExistsByContractAndReviewer(ctx context.Context, contractID, reviewerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("contract_id = ? AND reviewer_id = ?", contractID, reviewerID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) CountForReviewee(ctx context.Context, revieweeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("reviewee_id = ?", revieweeID).
		Count(&count).Error
	return count, err
}

func (r *reviewRepository) AverageRating(ctx context.Context, revieweeID uuid.UUID) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("reviewee_id = ?", revieweeID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	return avg, err
}

func (r *reviewRepository) HasBadge(ctx context.Context, userID uuid.UUID, badgeType entity.BadgeType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.UserBadge{}).
		Where("user_id = ? AND badge_type = ?", userID, badgeType).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) GrantBadge(ctx context.Context, badge *entity.UserBadge) error {
	return r.db.WithContext(ctx).Create(badge).Error
}

func (r *reviewRepository) FindForUser(ctx context.Context, userID uuid.UUID, received bool, offset, limit int) ([]*entity.Review, int64, error) {
	column := "reviewee_id"
	if !received {
		column = "reviewer_id"
	}

	query := r.db.WithContext(ctx).Model(&entity.Review{}).Where(column+" = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []*entity.Review
	err := query.
		Preload("Reviewer").
		Preload("Contract.Project").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) FindBadges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error) {
	var badges []entity.UserBadge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&badges).Error
	return badges, err
}
