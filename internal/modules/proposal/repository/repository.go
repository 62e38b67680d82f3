package repository

import (
	"context"
	"fmt"
	"time"

	"anoa.com/pocmarket/internal/entity"
	"anoa.com/pocmarket/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProposalRepository interface {
	Create(ctx context.Context, proposal *entity.Proposal) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	FindByEngineer(ctx context.Context, engineerID uuid.UUID, offset, limit int) ([]*entity.Proposal, int64, error)
	FindActiveByProjectAndEngineer(ctx context.Context, projectID, engineerID uuid.UUID) (*entity.Proposal, error)
	Update(ctx context.Context, proposal *entity.Proposal) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ProposalStatus) error
	Accept(ctx context.Context, proposal *entity.Proposal) (*entity.Contract, []entity.Proposal, error)
}

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) Create(ctx context.Context, proposal *entity.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *proposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	var proposal entity.Proposal
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Engineer").
		First(&proposal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) FindByEngineer(ctx context.Context, engineerID uuid.UUID, offset, limit int) ([]*entity.Proposal, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Proposal{}).Where("engineer_id = ?", engineerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proposals []*entity.Proposal
	err := query.
		Preload("Project").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

// FindActiveByProjectAndEngineer returns the engineer's live proposal on the
// project, where live means DRAFT, SUBMITTED or ACCEPTED.
func (r *proposalRepository) FindActiveByProjectAndEngineer(ctx context.Context, projectID, engineerID uuid.UUID) (*entity.Proposal, error) {
	var proposal entity.Proposal
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND engineer_id = ?", projectID, engineerID).
		Where("status IN ?", []entity.ProposalStatus{entity.ProposalDraft, entity.ProposalSubmitted, entity.ProposalAccepted}).
		First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) Update(ctx context.Context, proposal *entity.Proposal) error {
	return r.db.WithContext(ctx).Save(proposal).Error
}

func (r *proposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ProposalStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Proposal{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Accept runs the whole acceptance in one transaction: the proposal becomes
// ACCEPTED, the project moves to IN_PROGRESS, a contract is materialized from
// the proposed terms and every other submitted proposal on the project is
// rejected. Returns the new contract and the siblings that were rejected.
//
// Both status updates carry their current-status predicate so a concurrent
// accept on a sibling proposal cannot produce a second contract: whichever
// transaction commits second sees zero rows updated and fails with a conflict.
func (r *proposalRepository) Accept(ctx context.Context, proposal *entity.Proposal) (*entity.Contract, []entity.Proposal, error) {
	var contract *entity.Contract
	var rejected []entity.Proposal

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Proposal{}).
			Where("id = ? AND status = ?", proposal.ID, entity.ProposalSubmitted).
			Update("status", entity.ProposalAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: proposal is no longer awaiting a decision", apperror.ErrConflict)
		}

		res = tx.Model(&entity.Project{}).
			Where("id = ? AND status = ?", proposal.ProjectID, entity.ProjectOpen).
			Update("status", entity.ProjectInProgress)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: project is no longer open", apperror.ErrConflict)
		}

		now := time.Now()
		contract = &entity.Contract{
			ProjectID:      proposal.ProjectID,
			ProposalID:     proposal.ID,
			ContractAmount: proposal.ProposedBudget,
			StartDate:      now,
			EndDate:        now.AddDate(0, 1, 0),
			Status:         entity.ContractActive,
		}
		if err := tx.Create(contract).Error; err != nil {
			return err
		}

		if err := tx.
			Where("project_id = ? AND id <> ? AND status = ?", proposal.ProjectID, proposal.ID, entity.ProposalSubmitted).
			Find(&rejected).Error; err != nil {
			return err
		}
		if len(rejected) > 0 {
			if err := tx.Model(&entity.Proposal{}).
				Where("project_id = ? AND id <> ? AND status = ?", proposal.ProjectID, proposal.ID, entity.ProposalSubmitted).
				Update("status", entity.ProposalRejected).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return contract, rejected, nil
}
