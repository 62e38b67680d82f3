package repository

import (
	"context"

	"anoa.com/pocmarket/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	FindAll(ctx context.Context, status entity.ProjectStatus, ownerID *uuid.UUID, offset, limit int) ([]*entity.Project, int64, error)
	Update(ctx context.Context, project *entity.Project) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ProjectStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Proposals", func(db *gorm.DB) *gorm.DB {
			return db.Where("status <> ?", entity.ProposalDraft).Order("created_at DESC")
		}).
		Preload("Proposals.Engineer").
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindAll(ctx context.Context, status entity.ProjectStatus, ownerID *uuid.UUID, offset, limit int) ([]*entity.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Project{})

	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []*entity.Project
	err := query.
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *projectRepository) Update(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ProjectStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Project{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Project{}, "id = ?", id).Error
}
