package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"anoa.com/pocmarket/internal/entity"
	"anoa.com/pocmarket/internal/modules/project/dto"
	"anoa.com/pocmarket/internal/modules/project/repository"
	search "anoa.com/pocmarket/internal/modules/search/service"
	userRepo "anoa.com/pocmarket/internal/modules/user/repository"
	"anoa.com/pocmarket/pkg/apperror"
	commonDto "anoa.com/pocmarket/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectService interface {
	CreateProject(ctx context.Context, ownerID uuid.UUID, input dto.CreateProjectInput) (*entity.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	ListProjects(ctx context.Context, callerID *uuid.UUID, filter dto.ProjectListFilter) ([]*entity.Project, commonDto.PaginationMeta, error)
	UpdateProject(ctx context.Context, callerID, id uuid.UUID, input dto.UpdateProjectInput) (*entity.Project, error)
	UpdateProjectStatus(ctx context.Context, callerID, id uuid.UUID, status entity.ProjectStatus) (*entity.Project, error)
	DeleteProject(ctx context.Context, callerID, id uuid.UUID) error
}

type projectService struct {
	repo  repository.ProjectRepository
	users userRepo.UserRepository
	meili search.MeiliService
}

func NewProjectService(repo repository.ProjectRepository, users userRepo.UserRepository, meili search.MeiliService) ProjectService {
	return &projectService{repo: repo, users: users, meili: meili}
}

func (s *projectService) CreateProject(ctx context.Context, ownerID uuid.UUID, input dto.CreateProjectInput) (*entity.Project, error) {
	owner, err := s.users.FindByID(ctx, ownerID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", apperror.ErrNotFound)
		}
		return nil, err
	}
	if owner.Role != entity.RoleClient {
		return nil, fmt.Errorf("%w: only clients can post projects", apperror.ErrForbidden)
	}

	project := &entity.Project{
		UserID:      ownerID,
		Title:       input.Title,
		Description: input.Description,
		Budget:      input.Budget,
		Status:      entity.ProjectDraft,
	}
	if input.Publish {
		project.Status = entity.ProjectOpen
	}
	if input.PeriodDays > 0 {
		deadline := time.Now().AddDate(0, 0, input.PeriodDays)
		project.Deadline = &deadline
	}
	if input.RequiredSkills != nil {
		raw, err := json.Marshal(input.RequiredSkills)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid required skills", apperror.ErrInvalidInput)
		}
		project.RequiredSkills = raw
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	project.User = *owner
	s.syncIndex(project)

	return project, nil
}

func (s *projectService) GetProject(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project", apperror.ErrNotFound)
		}
		return nil, err
	}
	return project, nil
}

func (s *projectService) ListProjects(ctx context.Context, callerID *uuid.UUID, filter dto.ProjectListFilter) ([]*entity.Project, commonDto.PaginationMeta, error) {
	page := commonDto.PageFilter{Page: filter.Page, Limit: filter.Limit}
	page.Normalize()

	status := entity.ProjectStatus(filter.Status)
	var ownerID *uuid.UUID

	if filter.Mine && callerID != nil {
		// Owners browse their own projects in any state.
		ownerID = callerID
		if filter.Status != "" && !status.Valid() {
			return nil, commonDto.PaginationMeta{}, fmt.Errorf("%w: invalid status filter", apperror.ErrInvalidInput)
		}
	} else {
		// The public listing only shows open projects.
		status = entity.ProjectOpen
	}

	projects, total, err := s.repo.FindAll(ctx, status, ownerID, page.Offset(), page.Limit)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	return projects, commonDto.NewPaginationMeta(page.Page, page.Limit, total), nil
}

func (s *projectService) UpdateProject(ctx context.Context, callerID, id uuid.UUID, input dto.UpdateProjectInput) (*entity.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project", apperror.ErrNotFound)
		}
		return nil, err
	}

	if project.UserID != callerID {
		return nil, fmt.Errorf("%w: only the project owner can edit it", apperror.ErrForbidden)
	}
	if project.Status != entity.ProjectDraft && project.Status != entity.ProjectOpen {
		return nil, fmt.Errorf("%w: project can no longer be edited", apperror.ErrConflict)
	}

	if input.Title != nil && *input.Title != "" {
		project.Title = *input.Title
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Budget != nil {
		project.Budget = *input.Budget
	}
	if input.PeriodDays != nil {
		deadline := time.Now().AddDate(0, 0, *input.PeriodDays)
		project.Deadline = &deadline
	}
	if input.RequiredSkills != nil {
		raw, err := json.Marshal(input.RequiredSkills)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid required skills", apperror.ErrInvalidInput)
		}
		project.RequiredSkills = raw
	}

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.syncIndex(project)

	return project, nil
}

// UpdateProjectStatus applies owner initiated transitions. IN_PROGRESS is
// reserved for the proposal acceptance flow and cannot be set by hand.
func (s *projectService) UpdateProjectStatus(ctx context.Context, callerID, id uuid.UUID, status entity.ProjectStatus) (*entity.Project, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid project status", apperror.ErrInvalidInput)
	}

	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project", apperror.ErrNotFound)
		}
		return nil, err
	}

	if project.UserID != callerID {
		return nil, fmt.Errorf("%w: only the project owner can change its status", apperror.ErrForbidden)
	}
	if !validTransition(project.Status, status) {
		return nil, fmt.Errorf("%w: cannot move project from %s to %s", apperror.ErrConflict, project.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	project.Status = status

	s.syncIndex(project)

	return project, nil
}

func validTransition(from, to entity.ProjectStatus) bool {
	switch from {
	case entity.ProjectDraft:
		return to == entity.ProjectOpen || to == entity.ProjectCancelled
	case entity.ProjectOpen:
		return to == entity.ProjectDraft || to == entity.ProjectClosed || to == entity.ProjectCancelled
	case entity.ProjectInProgress:
		return to == entity.ProjectClosed || to == entity.ProjectCancelled
	}
	return false
}

func (s *projectService) DeleteProject(ctx context.Context, callerID, id uuid.UUID) error {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: project", apperror.ErrNotFound)
		}
		return err
	}

	if project.UserID != callerID {
		return fmt.Errorf("%w: only the project owner can delete it", apperror.ErrForbidden)
	}
	if project.Status == entity.ProjectInProgress {
		return fmt.Errorf("%w: project has an active contract", apperror.ErrConflict)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.meili != nil {
		_ = s.meili.DeleteProject(id.String())
	}

	return nil
}

// syncIndex mirrors the project into Meilisearch, best effort. Drafts and
// terminal projects are removed so stale listings never surface in search.
func (s *projectService) syncIndex(project *entity.Project) {
	if s.meili == nil {
		return
	}
	switch project.Status {
	case entity.ProjectOpen, entity.ProjectInProgress:
		_ = s.meili.IndexProject(project)
	default:
		_ = s.meili.DeleteProject(project.ID.String())
	}
}
