package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/pocmarket/internal/entity"
	notif "anoa.com/pocmarket/internal/modules/notification/service"
	projectRepo "anoa.com/pocmarket/internal/modules/project/repository"
	"anoa.com/pocmarket/internal/modules/proposal/dto"
	"anoa.com/pocmarket/internal/modules/proposal/repository"
	search "anoa.com/pocmarket/internal/modules/search/service"
	userRepo "anoa.com/pocmarket/internal/modules/user/repository"
	"anoa.com/pocmarket/pkg/apperror"
	commonDto "anoa.com/pocmarket/pkg/dto"
	"anoa.com/pocmarket/pkg/ratelimiter"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

type ProposalService interface {
	SubmitProposal(ctx context.Context, engineerID uuid.UUID, input dto.CreateProposalInput) (*entity.Proposal, error)
	GetProposal(ctx context.Context, callerID, id uuid.UUID) (*entity.Proposal, error)
	ListMyProposals(ctx context.Context, engineerID uuid.UUID, filter commonDto.PageFilter) ([]*entity.Proposal, commonDto.PaginationMeta, error)
	UpdateProposal(ctx context.Context, callerID, id uuid.UUID, input dto.UpdateProposalInput) (*entity.Proposal, error)
	DecideProposal(ctx context.Context, callerID, id uuid.UUID, action string) (*entity.Proposal, *entity.Contract, error)
	WithdrawProposal(ctx context.Context, callerID, id uuid.UUID) (*entity.Proposal, error)
}

type proposalService struct {
	repo     repository.ProposalRepository
	projects projectRepo.ProjectRepository
	users    userRepo.UserRepository
	notifier notif.NotificationService
	meili    search.MeiliService
	limiter  *ratelimiter.Limiter
	cooldown time.Duration
}

func NewProposalService(
	repo repository.ProposalRepository,
	projects projectRepo.ProjectRepository,
	users userRepo.UserRepository,
	notifier notif.NotificationService,
	meili search.MeiliService,
	limiter *ratelimiter.Limiter,
	cooldown time.Duration,
) ProposalService {
	return &proposalService{
		repo:     repo,
		projects: projects,
		users:    users,
		notifier: notifier,
		meili:    meili,
		limiter:  limiter,
		cooldown: cooldown,
	}
}

func (s *proposalService) SubmitProposal(ctx context.Context, engineerID uuid.UUID, input dto.CreateProposalInput) (*entity.Proposal, error) {
	engineer, err := s.users.FindByID(ctx, engineerID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", apperror.ErrNotFound)
		}
		return nil, err
	}
	if engineer.Role != entity.RoleEngineer {
		return nil, fmt.Errorf("%w: only engineers can submit proposals", apperror.ErrForbidden)
	}

	projectID, err := uuid.Parse(input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid project id", apperror.ErrInvalidInput)
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project", apperror.ErrNotFound)
		}
		return nil, err
	}
	if project.Status != entity.ProjectOpen {
		return nil, fmt.Errorf("%w: project is not open for proposals", apperror.ErrConflict)
	}
	if project.UserID == engineerID {
		return nil, fmt.Errorf("%w: cannot propose on your own project", apperror.ErrForbidden)
	}

	if existing, err := s.repo.FindActiveByProjectAndEngineer(ctx, projectID, engineerID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: you already have a proposal on this project", apperror.ErrConflict)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if s.limiter != nil && !input.Draft {
		if err := s.limiter.Allow(ctx, "proposal_submit", engineerID.String(), s.cooldown); err != nil {
			var rl *ratelimiter.RateLimitError
			if errors.As(err, &rl) {
				return nil, fmt.Errorf("%w: %s", apperror.ErrRateLimitExceeded, rl.Message)
			}
			return nil, err
		}
	}

	proposal := &entity.Proposal{
		ProjectID:        projectID,
		EngineerID:       engineerID,
		ProposalText:     input.ProposalText,
		ProposedBudget:   input.ProposedBudget,
		ProposedTimeline: input.ProposedTimeline,
		Status:           entity.ProposalSubmitted,
	}
	if input.Draft {
		proposal.Status = entity.ProposalDraft
	}

	if err := s.repo.Create(ctx, proposal); err != nil {
		return nil, err
	}

	if proposal.Status == entity.ProposalSubmitted && s.notifier != nil {
		_ = s.notifier.Notify(ctx, project.UserID, entity.NotificationProposalReceived,
			"New proposal received",
			fmt.Sprintf("%s sent a proposal for %q", engineer.DisplayName, project.Title))
	}

	proposal.Engineer = *engineer
	return proposal, nil
}

func (s *proposalService) GetProposal(ctx context.Context, callerID, id uuid.UUID) (*entity.Proposal, error) {
	proposal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: proposal", apperror.ErrNotFound)
		}
		return nil, err
	}

	// Only the engineer who wrote it and the project owner may read it.
	if proposal.EngineerID != callerID && proposal.Project.UserID != callerID {
		return nil, fmt.Errorf("%w: not a party to this proposal", apperror.ErrForbidden)
	}

	return proposal, nil
}

func (s *proposalService) ListMyProposals(ctx context.Context, engineerID uuid.UUID, filter commonDto.PageFilter) ([]*entity.Proposal, commonDto.PaginationMeta, error) {
	filter.Normalize()

	proposals, total, err := s.repo.FindByEngineer(ctx, engineerID, filter.Offset(), filter.Limit)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	return proposals, commonDto.NewPaginationMeta(filter.Page, filter.Limit, total), nil
}

func (s *proposalService) UpdateProposal(ctx context.Context, callerID, id uuid.UUID, input dto.UpdateProposalInput) (*entity.Proposal, error) {
	proposal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: proposal", apperror.ErrNotFound)
		}
		return nil, err
	}

	if proposal.EngineerID != callerID {
		return nil, fmt.Errorf("%w: only the author can edit a proposal", apperror.ErrForbidden)
	}
	if proposal.Status != entity.ProposalDraft && proposal.Status != entity.ProposalSubmitted {
		return nil, fmt.Errorf("%w: proposal has already been decided", apperror.ErrConflict)
	}

	if input.ProposalText != nil && *input.ProposalText != "" {
		proposal.ProposalText = *input.ProposalText
	}
	if input.ProposedBudget != nil {
		proposal.ProposedBudget = *input.ProposedBudget
	}
	if input.ProposedTimeline != nil {
		proposal.ProposedTimeline = *input.ProposedTimeline
	}

	wasDraft := proposal.Status == entity.ProposalDraft
	if input.Submit && wasDraft {
		proposal.Status = entity.ProposalSubmitted
	}

	if err := s.repo.Update(ctx, proposal); err != nil {
		return nil, err
	}

	if input.Submit && wasDraft && s.notifier != nil {
		_ = s.notifier.Notify(ctx, proposal.Project.UserID, entity.NotificationProposalReceived,
			"New proposal received",
			fmt.Sprintf("%s sent a proposal for %q", proposal.Engineer.DisplayName, proposal.Project.Title))
	}

	return proposal, nil
}

// DecideProposal is the client's verdict on a submitted proposal. Accepting
// forms the contract, starts the project and rejects the competing proposals
// in a single transaction; rejecting only flips the one proposal.
func (s *proposalService) DecideProposal(ctx context.Context, callerID, id uuid.UUID, action string) (*entity.Proposal, *entity.Contract, error) {
	if action != ActionAccept && action != ActionReject {
		return nil, nil, fmt.Errorf("%w: action must be accept or reject", apperror.ErrInvalidInput)
	}

	proposal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: proposal", apperror.ErrNotFound)
		}
		return nil, nil, err
	}

	if proposal.Project.UserID != callerID {
		return nil, nil, fmt.Errorf("%w: only the project owner can decide proposals", apperror.ErrForbidden)
	}
	if proposal.Status != entity.ProposalSubmitted {
		return nil, nil, fmt.Errorf("%w: proposal is %s, only submitted proposals can be decided", apperror.ErrConflict, proposal.Status)
	}

	if action == ActionReject {
		if err := s.repo.UpdateStatus(ctx, id, entity.ProposalRejected); err != nil {
			return nil, nil, err
		}
		proposal.Status = entity.ProposalRejected

		if s.notifier != nil {
			_ = s.notifier.Notify(ctx, proposal.EngineerID, entity.NotificationProposalRejected,
				"Proposal rejected",
				fmt.Sprintf("Your proposal for %q was not selected", proposal.Project.Title))
		}

		return proposal, nil, nil
	}

	contract, rejected, err := s.repo.Accept(ctx, proposal)
	if err != nil {
		return nil, nil, err
	}
	proposal.Status = entity.ProposalAccepted

	// Notifications go out only after the transaction committed.
	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, proposal.EngineerID, entity.NotificationProposalAccepted,
			"Proposal accepted",
			fmt.Sprintf("Your proposal for %q was accepted, the contract is now active", proposal.Project.Title))

		for _, sibling := range rejected {
			_ = s.notifier.Notify(ctx, sibling.EngineerID, entity.NotificationProposalRejected,
				"Proposal rejected",
				fmt.Sprintf("Your proposal for %q was not selected", proposal.Project.Title))
		}
	}

	if s.meili != nil {
		proposal.Project.Status = entity.ProjectInProgress
		_ = s.meili.IndexProject(&proposal.Project)
	}

	return proposal, contract, nil
}

func (s *proposalService) WithdrawProposal(ctx context.Context, callerID, id uuid.UUID) (*entity.Proposal, error) {
	proposal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: proposal", apperror.ErrNotFound)
		}
		return nil, err
	}

	if proposal.EngineerID != callerID {
		return nil, fmt.Errorf("%w: only the author can withdraw a proposal", apperror.ErrForbidden)
	}
	if proposal.Status != entity.ProposalDraft && proposal.Status != entity.ProposalSubmitted {
		return nil, fmt.Errorf("%w: proposal is %s and can no longer be withdrawn", apperror.ErrConflict, proposal.Status)
	}

	if err := s.repo.UpdateStatus(ctx, id, entity.ProposalWithdrawn); err != nil {
		return nil, err
	}
	proposal.Status = entity.ProposalWithdrawn

	return proposal, nil
}
