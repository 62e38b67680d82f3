package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/pocmarket/internal/entity"
	contractRepo "anoa.com/pocmarket/internal/modules/contract/repository"
	notif "anoa.com/pocmarket/internal/modules/notification/service"
	"anoa.com/pocmarket/internal/modules/review/dto"
	"anoa.com/pocmarket/internal/modules/review/repository"
	"anoa.com/pocmarket/pkg/apperror"
	commonDto "anoa.com/pocmarket/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Badge thresholds. FIRST_PROJECT and FIVE_PROJECTS fire on the exact review
// count, so earlier reviews never retroactively grant them twice.
const (
	firstProjectCount = 1
	fiveProjectsCount = 5
	topRatedMinCount  = 3
	topRatedMinMean   = 4.5
)

type ReviewService interface {
	CreateReview(ctx context.Context, reviewerID uuid.UUID, input dto.CreateReviewInput) (*entity.Review, []entity.UserBadge, error)
	ListReviews(ctx context.Context, filter dto.ReviewListFilter) ([]*entity.Review, commonDto.PaginationMeta, error)
	ListBadges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error)
}

type reviewService struct {
	repo      repository.ReviewRepository
	contracts contractRepo.ContractRepository
	notifier  notif.NotificationService
}

func NewReviewService(repo repository.ReviewRepository, contracts contractRepo.ContractRepository, notifier notif.NotificationService) ReviewService {
	return &reviewService{repo: repo, contracts: contracts, notifier: notifier}
}

// CreateReview inserts the review and evaluates the reviewee's badges inside
// one transaction. Notifications go out only after the commit.
func (s *reviewService) CreateReview(ctx context.Context, reviewerID uuid.UUID, input dto.CreateReviewInput) (*entity.Review, []entity.UserBadge, error) {
	contractID, err := uuid.Parse(input.ContractID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid contract id", apperror.ErrInvalidInput)
	}

	contract, err := s.contracts.FindByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: contract", apperror.ErrNotFound)
		}
		return nil, nil, err
	}

	client := contract.Project.UserID
	engineer := contract.Proposal.EngineerID

	var revieweeID uuid.UUID
	switch reviewerID {
	case client:
		revieweeID = engineer
	case engineer:
		revieweeID = client
	default:
		return nil, nil, fmt.Errorf("%w: not a party to this contract", apperror.ErrForbidden)
	}

	if contract.Status != entity.ContractCompleted {
		return nil, nil, fmt.Errorf("%w: contract must be completed before reviewing", apperror.ErrConflict)
	}

	if exists, err := s.repo.ExistsByContractAndReviewer(ctx, contractID, reviewerID); err != nil {
		return nil, nil, err
	} else if exists {
		return nil, nil, fmt.Errorf("%w: you already reviewed this contract", apperror.ErrConflict)
	}

	review := &entity.Review{
		ContractID: contractID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     input.Rating,
		Comment:    input.Comment,
	}

	var earned []entity.UserBadge
	err = s.repo.Atomic(ctx, func(tx repository.ReviewRepository) error {
		if err := tx.Create(ctx, review); err != nil {
			return err
		}

		var err error
		earned, err = evaluateBadges(ctx, tx, revieweeID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, revieweeID, entity.NotificationReviewReceived,
			"New review received",
			fmt.Sprintf("You received a %d star review", input.Rating))

		for _, badge := range earned {
			_ = s.notifier.Notify(ctx, revieweeID, entity.NotificationBadgeEarned,
				"Badge earned",
				fmt.Sprintf("You earned the %s badge", badge.BadgeType))
		}
	}

	return review, earned, nil
}

// evaluateBadges grants whatever the reviewee qualifies for given their review
// history as of this transaction.
func evaluateBadges(ctx context.Context, tx repository.ReviewRepository, revieweeID uuid.UUID) ([]entity.UserBadge, error) {
	count, err := tx.CountForReviewee(ctx, revieweeID)
	if err != nil {
		return nil, err
	}

	var earned []entity.UserBadge

	grant := func(badgeType entity.BadgeType) error {
		badge := entity.UserBadge{UserID: revieweeID, BadgeType: badgeType}
		if err := tx.GrantBadge(ctx, &badge); err != nil {
			return err
		}
		earned = append(earned, badge)
		return nil
	}

	switch count {
	case firstProjectCount:
		if err := grant(entity.BadgeFirstProject); err != nil {
			return nil, err
		}
	case fiveProjectsCount:
		if err := grant(entity.BadgeFiveProjects); err != nil {
			return nil, err
		}
	}

	if count >= topRatedMinCount {
		mean, err := tx.AverageRating(ctx, revieweeID)
		if err != nil {
			return nil, err
		}
		if mean >= topRatedMinMean {
			has, err := tx.HasBadge(ctx, revieweeID, entity.BadgeTopRated)
			if err != nil {
				return nil, err
			}
			if !has {
				if err := grant(entity.BadgeTopRated); err != nil {
					return nil, err
				}
			}
		}
	}

	return earned, nil
}

func (s *reviewService) ListReviews(ctx context.Context, filter dto.ReviewListFilter) ([]*entity.Review, commonDto.PaginationMeta, error) {
	if filter.UserID == "" {
		return nil, commonDto.PaginationMeta{}, fmt.Errorf("%w: userId is required", apperror.ErrBadRequest)
	}
	userID, err := uuid.Parse(filter.UserID)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, fmt.Errorf("%w: invalid userId", apperror.ErrInvalidInput)
	}

	received := true
	switch filter.Type {
	case "", "received":
	case "given":
		received = false
	default:
		return nil, commonDto.PaginationMeta{}, fmt.Errorf("%w: type must be received or given", apperror.ErrInvalidInput)
	}

	page := commonDto.PageFilter{Page: filter.Page, Limit: filter.Limit}
	page.Normalize()

	reviews, total, err := s.repo.FindForUser(ctx, userID, received, page.Offset(), page.Limit)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	return reviews, commonDto.NewPaginationMeta(page.Page, page.Limit, total), nil
}

func (s *reviewService) ListBadges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error) {
	return s.repo.FindBadges(ctx, userID)
}
