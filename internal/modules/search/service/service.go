package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/pocmarket/internal/entity"
	searchDto "anoa.com/pocmarket/internal/modules/search/dto"
	searchRepo "anoa.com/pocmarket/internal/modules/search/repository"
	userRepo "anoa.com/pocmarket/internal/modules/user/repository"
	"anoa.com/pocmarket/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SearchService interface {
	SearchProjects(ctx context.Context, filter searchDto.ProjectSearchFilter) ([]*entity.Project, error)
	SearchCompanies(ctx context.Context, filter searchDto.CompanySearchFilter) ([]*entity.User, error)
	SearchEngineers(ctx context.Context, filter searchDto.EngineerSearchFilter) ([]*entity.User, error)
	SearchBlogs(ctx context.Context, filter searchDto.BlogSearchFilter) ([]*entity.BlogPost, error)
	SearchToken(ctx context.Context, userID uuid.UUID) (string, error)
}

type searchService struct {
	repo  searchRepo.SearchRepository
	users userRepo.UserRepository
	meili MeiliService
}

func NewSearchService(repo searchRepo.SearchRepository, users userRepo.UserRepository, meili MeiliService) SearchService {
	return &searchService{repo: repo, users: users, meili: meili}
}

func (s *searchService) SearchProjects(ctx context.Context, filter searchDto.ProjectSearchFilter) ([]*entity.Project, error) {
	return s.repo.SearchProjects(ctx, filter)
}

func (s *searchService) SearchCompanies(ctx context.Context, filter searchDto.CompanySearchFilter) ([]*entity.User, error) {
	return s.repo.SearchCompanies(ctx, filter)
}

func (s *searchService) SearchEngineers(ctx context.Context, filter searchDto.EngineerSearchFilter) ([]*entity.User, error) {
	return s.repo.SearchEngineers(ctx, filter)
}

func (s *searchService) SearchBlogs(ctx context.Context, filter searchDto.BlogSearchFilter) ([]*entity.BlogPost, error) {
	return s.repo.SearchBlogs(ctx, filter)
}

// SearchToken issues a short lived Meilisearch tenant token scoped to the
// caller's role.
func (s *searchService) SearchToken(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.users.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: user", apperror.ErrNotFound)
		}
		return "", err
	}

	if s.meili == nil {
		return "", fmt.Errorf("%w: search is not configured", apperror.ErrInternal)
	}

	return s.meili.GenerateSearchToken(string(user.Role))
}
