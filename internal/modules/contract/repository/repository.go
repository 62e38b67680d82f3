package repository

import (
	"context"

	"anoa.com/pocmarket/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error)
	FindByParty(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Contract, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ContractStatus) error
}

type contractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	var contract entity.Contract
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Project.User").
		Preload("Proposal").
		Preload("Proposal.Engineer").
		First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// FindByParty lists contracts where the user is either the client behind the
// project or the engineer behind the proposal.
func (r *contractRepository) FindByParty(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Contract, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Contract{}).
		Joins("JOIN projects ON projects.id = contracts.project_id").
		Joins("JOIN proposals ON proposals.id = contracts.proposal_id").
		Where("projects.user_id = ? OR proposals.engineer_id = ?", userID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contracts []*entity.Contract
	err := query.
		Preload("Project").
		Preload("Proposal.Engineer").
		Order("contracts.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&contracts).Error
	if err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

func (r *contractRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ContractStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Contract{}).
		Where("id = ?", id).
		Update("status", status).Error
}
