package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/pocmarket/internal/entity"
	"anoa.com/pocmarket/internal/modules/contract/repository"
	projectRepo "anoa.com/pocmarket/internal/modules/project/repository"
	"anoa.com/pocmarket/pkg/apperror"
	commonDto "anoa.com/pocmarket/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractService interface {
	GetContract(ctx context.Context, callerID, id uuid.UUID) (*entity.Contract, error)
	ListMyContracts(ctx context.Context, callerID uuid.UUID, filter commonDto.PageFilter) ([]*entity.Contract, commonDto.PaginationMeta, error)
	UpdateContractStatus(ctx context.Context, callerID, id uuid.UUID, status entity.ContractStatus) (*entity.Contract, error)
}

type contractService struct {
	repo     repository.ContractRepository
	projects projectRepo.ProjectRepository
}

func NewContractService(repo repository.ContractRepository, projects projectRepo.ProjectRepository) ContractService {
	return &contractService{repo: repo, projects: projects}
}

// isParty reports whether the caller is the client or the engineer behind the
// contract.
func isParty(contract *entity.Contract, callerID uuid.UUID) bool {
	return contract.Project.UserID == callerID || contract.Proposal.EngineerID == callerID
}

func (s *contractService) GetContract(ctx context.Context, callerID, id uuid.UUID) (*entity.Contract, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !isParty(contract, callerID) {
		return nil, fmt.Errorf("%w: not a party to this contract", apperror.ErrForbidden)
	}

	return contract, nil
}

func (s *contractService) ListMyContracts(ctx context.Context, callerID uuid.UUID, filter commonDto.PageFilter) ([]*entity.Contract, commonDto.PaginationMeta, error) {
	filter.Normalize()

	contracts, total, err := s.repo.FindByParty(ctx, callerID, filter.Offset(), filter.Limit)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	return contracts, commonDto.NewPaginationMeta(filter.Page, filter.Limit, total), nil
}

// UpdateContractStatus lets the client complete or cancel an active contract.
// Completing the contract also closes the project.
func (s *contractService) UpdateContractStatus(ctx context.Context, callerID, id uuid.UUID, status entity.ContractStatus) (*entity.Contract, error) {
	if status != entity.ContractCompleted && status != entity.ContractCancelled {
		return nil, fmt.Errorf("%w: status must be COMPLETED or CANCELLED", apperror.ErrInvalidInput)
	}

	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract", apperror.ErrNotFound)
		}
		return nil, err
	}

	if contract.Project.UserID != callerID {
		return nil, fmt.Errorf("%w: only the client can close a contract", apperror.ErrForbidden)
	}
	if contract.Status != entity.ContractActive {
		return nil, fmt.Errorf("%w: contract is already %s", apperror.ErrConflict, contract.Status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	contract.Status = status

	projectStatus := entity.ProjectClosed
	if status == entity.ContractCancelled {
		projectStatus = entity.ProjectCancelled
	}
	if err := s.projects.UpdateStatus(ctx, contract.ProjectID, projectStatus); err != nil {
		return nil, err
	}

	return contract, nil
}
