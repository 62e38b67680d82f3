package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"anoa.com/pocmarket/internal/entity"
	search "anoa.com/pocmarket/internal/modules/search/service"
	"anoa.com/pocmarket/internal/modules/user/dto"
	"anoa.com/pocmarket/internal/modules/user/repository"
	"anoa.com/pocmarket/pkg/apperror"
	commonDto "anoa.com/pocmarket/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	GetPublicProfile(ctx context.Context, id uuid.UUID) (*dto.PublicProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput) (*entity.User, error)
	SwitchRole(ctx context.Context, userID uuid.UUID, input dto.SwitchRoleInput) (*entity.User, error)
	ListUsers(ctx context.Context, filter commonDto.PageFilter) ([]*entity.User, commonDto.PaginationMeta, error)
	UpdateUserStatus(ctx context.Context, id uuid.UUID, status entity.UserStatus) error
}

type userService struct {
	repo  repository.UserRepository
	meili search.MeiliService
}

func NewUserService(repo repository.UserRepository, meili search.MeiliService) UserService {
	return &userService{repo: repo, meili: meili}
}

func (s *userService) GetPublicProfile(ctx context.Context, id uuid.UUID) (*dto.PublicProfileResponse, error) {
	user, err := s.repo.FindPublicProfile(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !user.IsProfilePublic {
		return nil, fmt.Errorf("%w: profile is private", apperror.ErrForbidden)
	}

	resp := &dto.PublicProfileResponse{
		ID:              user.ID.String(),
		DisplayName:     user.DisplayName,
		Role:            user.Role,
		Bio:             user.Bio,
		AvatarURL:       user.AvatarURL,
		CompanyName:     user.CompanyName,
		CompanySize:     user.CompanySize,
		Industry:        user.Industry,
		Location:        user.Location,
		ExperienceYears: user.ExperienceYears,
		PortfolioURL:    user.PortfolioURL,
		CreatedAt:       user.CreatedAt,
		Badges:          user.Badges,
		Projects:        user.Projects,
		Proposals:       user.Proposals,
		ReceivedReviews: user.ReceivedReviews,
	}

	if len(user.Skills) > 0 {
		var skills map[string]int
		if err := json.Unmarshal(user.Skills, &skills); err == nil {
			resp.Skills = skills
		}
	}

	return resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", apperror.ErrNotFound)
		}
		return nil, err
	}

	if input.DisplayName != nil && *input.DisplayName != "" {
		user.DisplayName = *input.DisplayName
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}
	if input.IsProfilePublic != nil {
		user.IsProfilePublic = *input.IsProfilePublic
	}

	switch user.Role {
	case entity.RoleClient:
		if input.CompanyName != nil {
			user.CompanyName = input.CompanyName
		}
		if input.CompanySize != nil {
			user.CompanySize = input.CompanySize
		}
		if input.Industry != nil {
			user.Industry = input.Industry
		}
		if input.Location != nil {
			user.Location = input.Location
		}
	case entity.RoleEngineer:
		if input.Skills != nil {
			raw, err := json.Marshal(input.Skills)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid skills", apperror.ErrInvalidInput)
			}
			user.Skills = raw
		}
		if input.ExperienceYears != nil {
			user.ExperienceYears = input.ExperienceYears
		}
		if input.PortfolioURL != nil {
			user.PortfolioURL = input.PortfolioURL
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if s.meili != nil {
		_ = s.meili.IndexUser(user)
	}

	return user, nil
}

// SwitchRole flips a user between CLIENT and ENGINEER. The fields of the
// abandoned role are nulled with no backup, so the caller must confirm.
func (s *userService) SwitchRole(ctx context.Context, userID uuid.UUID, input dto.SwitchRoleInput) (*entity.User, error) {
	if !input.Confirm {
		return nil, fmt.Errorf("%w: role switch clears the previous role's profile fields and must be confirmed", apperror.ErrBadRequest)
	}

	role := entity.UserRole(input.Role)
	if role != entity.RoleClient && role != entity.RoleEngineer {
		return nil, fmt.Errorf("%w: invalid role", apperror.ErrInvalidInput)
	}

	user, err := s.repo.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", apperror.ErrNotFound)
		}
		return nil, err
	}

	if user.Role == role {
		return nil, fmt.Errorf("%w: user already has role %s", apperror.ErrConflict, role)
	}

	if err := s.repo.SwitchRole(ctx, userID, role); err != nil {
		return nil, err
	}

	user, err = s.repo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, err
	}

	if s.meili != nil {
		_ = s.meili.IndexUser(user)
	}

	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filter commonDto.PageFilter) ([]*entity.User, commonDto.PaginationMeta, error) {
	filter.Normalize()

	users, total, err := s.repo.FindAll(ctx, filter.Offset(), filter.Limit)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	return users, commonDto.NewPaginationMeta(filter.Page, filter.Limit, total), nil
}

func (s *userService) UpdateUserStatus(ctx context.Context, id uuid.UUID, status entity.UserStatus) error {
	if _, err := s.repo.FindByID(ctx, id.String()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user", apperror.ErrNotFound)
		}
		return err
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
