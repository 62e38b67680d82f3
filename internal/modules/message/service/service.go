package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/pocmarket/internal/entity"
	contractRepo "anoa.com/pocmarket/internal/modules/contract/repository"
	"anoa.com/pocmarket/internal/modules/message/dto"
	"anoa.com/pocmarket/internal/modules/message/repository"
	notif "anoa.com/pocmarket/internal/modules/notification/service"
	proposalRepo "anoa.com/pocmarket/internal/modules/proposal/repository"
	"anoa.com/pocmarket/pkg/apperror"
	commonDto "anoa.com/pocmarket/pkg/dto"
	"anoa.com/pocmarket/pkg/ratelimiter"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageService interface {
	SendMessage(ctx context.Context, senderID uuid.UUID, owner entity.ThreadOwner, input dto.CreateMessageInput) (*entity.Message, error)
	GetThread(ctx context.Context, callerID uuid.UUID, owner entity.ThreadOwner, filter commonDto.PageFilter) ([]*entity.Message, commonDto.PaginationMeta, error)
	PinMessage(ctx context.Context, callerID, id uuid.UUID, pinned bool) (*entity.Message, error)
}

type messageService struct {
	repo      repository.MessageRepository
	contracts contractRepo.ContractRepository
	proposals proposalRepo.ProposalRepository
	notifier  notif.NotificationService
	limiter   *ratelimiter.Limiter
	cooldown  time.Duration
}

func NewMessageService(
	repo repository.MessageRepository,
	contracts contractRepo.ContractRepository,
	proposals proposalRepo.ProposalRepository,
	notifier notif.NotificationService,
	limiter *ratelimiter.Limiter,
	cooldown time.Duration,
) MessageService {
	return &messageService{
		repo:      repo,
		contracts: contracts,
		proposals: proposals,
		notifier:  notifier,
		limiter:   limiter,
		cooldown:  cooldown,
	}
}

// threadParties resolves the two user IDs allowed in a thread: the client and
// the engineer, whether the thread hangs off a contract or a proposal.
func (s *messageService) threadParties(ctx context.Context, owner entity.ThreadOwner) (client, engineer uuid.UUID, err error) {
	switch owner.Kind {
	case entity.ThreadOwnerContract:
		contract, err := s.contracts.FindByID(ctx, owner.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, uuid.Nil, fmt.Errorf("%w: contract", apperror.ErrNotFound)
			}
			return uuid.Nil, uuid.Nil, err
		}
		return contract.Project.UserID, contract.Proposal.EngineerID, nil

	case entity.ThreadOwnerProposal:
		proposal, err := s.proposals.FindByID(ctx, owner.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, uuid.Nil, fmt.Errorf("%w: proposal", apperror.ErrNotFound)
			}
			return uuid.Nil, uuid.Nil, err
		}
		return proposal.Project.UserID, proposal.EngineerID, nil
	}

	return uuid.Nil, uuid.Nil, fmt.Errorf("%w: unknown thread owner", apperror.ErrInvalidInput)
}

func (s *messageService) SendMessage(ctx context.Context, senderID uuid.UUID, owner entity.ThreadOwner, input dto.CreateMessageInput) (*entity.Message, error) {
	client, engineer, err := s.threadParties(ctx, owner)
	if err != nil {
		return nil, err
	}
	if senderID != client && senderID != engineer {
		return nil, fmt.Errorf("%w: not a party to this thread", apperror.ErrForbidden)
	}

	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, "message_send", senderID.String(), s.cooldown); err != nil {
			var rl *ratelimiter.RateLimitError
			if errors.As(err, &rl) {
				return nil, fmt.Errorf("%w: %s", apperror.ErrRateLimitExceeded, rl.Message)
			}
			return nil, err
		}
	}

	message := &entity.Message{
		SenderID:   senderID,
		Body:       input.Body,
		IsTemplate: input.IsTemplate,
	}
	switch owner.Kind {
	case entity.ThreadOwnerContract:
		id := owner.ID
		message.ContractID = &id
	case entity.ThreadOwnerProposal:
		id := owner.ID
		message.ProposalID = &id
	}

	if input.ParentID != nil {
		parentID, err := uuid.Parse(*input.ParentID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid parent id", apperror.ErrInvalidInput)
		}
		parent, err := s.repo.FindByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent message", apperror.ErrNotFound)
			}
			return nil, err
		}
		if parent.Owner() != owner {
			return nil, fmt.Errorf("%w: parent message belongs to a different thread", apperror.ErrInvalidInput)
		}
		message.ParentID = &parentID
	}

	if err := s.repo.Create(ctx, message, input.AttachmentIDs); err != nil {
		return nil, err
	}

	recipient := client
	if senderID == client {
		recipient = engineer
	}
	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, recipient, entity.NotificationMessageReceived,
			"New message", input.Body)
	}

	return message, nil
}

func (s *messageService) GetThread(ctx context.Context, callerID uuid.UUID, owner entity.ThreadOwner, filter commonDto.PageFilter) ([]*entity.Message, commonDto.PaginationMeta, error) {
	client, engineer, err := s.threadParties(ctx, owner)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}
	if callerID != client && callerID != engineer {
		return nil, commonDto.PaginationMeta{}, fmt.Errorf("%w: not a party to this thread", apperror.ErrForbidden)
	}

	filter.Normalize()

	messages, total, err := s.repo.FindThread(ctx, owner, filter.Offset(), filter.Limit)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	return messages, commonDto.NewPaginationMeta(filter.Page, filter.Limit, total), nil
}

func (s *messageService) PinMessage(ctx context.Context, callerID, id uuid.UUID, pinned bool) (*entity.Message, error) {
	message, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: message", apperror.ErrNotFound)
		}
		return nil, err
	}

	client, engineer, err := s.threadParties(ctx, message.Owner())
	if err != nil {
		return nil, err
	}
	if callerID != client && callerID != engineer {
		return nil, fmt.Errorf("%w: not a party to this thread", apperror.ErrForbidden)
	}

	if err := s.repo.SetPinned(ctx, id, pinned); err != nil {
		return nil, err
	}
	message.IsPinned = pinned

	return message, nil
}
