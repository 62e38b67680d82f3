package repository

import (
	"context"

	"anoa.com/pocmarket/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*entity.User, error)
	FindPublicProfile(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindAll(ctx context.Context, offset, limit int) ([]*entity.User, int64, error)
	Update(ctx context.Context, user *entity.User) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.UserStatus) error
	SwitchRole(ctx context.Context, id uuid.UUID, role entity.UserRole) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Where("google_id = ?", googleID).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindPublicProfile(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Badges").
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return db.Where("status <> ?", entity.ProjectDraft).Order("created_at DESC")
		}).
		Preload("Proposals", func(db *gorm.DB) *gorm.DB {
			return db.Where("status <> ?", entity.ProposalDraft).Order("created_at DESC")
		}).
		Preload("Proposals.Project").
		Preload("ReceivedReviews").
		Preload("ReceivedReviews.Reviewer").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context, offset, limit int) ([]*entity.User, int64, error) {
	var users []*entity.User
	var total int64

	if err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.UserStatus) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// SwitchRole updates the role and nulls the abandoned role's fields in one
// statement. The data loss is irreversible; the service layer gates this
// behind an explicit confirmation.
func (r *userRepository) SwitchRole(ctx context.Context, id uuid.UUID, role entity.UserRole) error {
	updates := map[string]interface{}{"role": role}

	switch role {
	case entity.RoleClient:
		updates["skills"] = nil
		updates["experience_years"] = nil
		updates["portfolio_url"] = nil
	case entity.RoleEngineer:
		updates["company_name"] = nil
		updates["company_size"] = nil
		updates["industry"] = nil
		updates["location"] = nil
	}

	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}
