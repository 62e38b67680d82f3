package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/pocmarket/internal/entity"
	"anoa.com/pocmarket/internal/modules/blog/dto"
	"anoa.com/pocmarket/internal/modules/blog/repository"
	search "anoa.com/pocmarket/internal/modules/search/service"
	"anoa.com/pocmarket/pkg/apperror"
	commonDto "anoa.com/pocmarket/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BlogService interface {
	CreateBlog(ctx context.Context, authorID uuid.UUID, input dto.CreateBlogInput) (*entity.BlogPost, error)
	GetBlog(ctx context.Context, callerID *uuid.UUID, id uuid.UUID) (*entity.BlogPost, error)
	ListPublished(ctx context.Context, filter commonDto.PageFilter) ([]*entity.BlogPost, commonDto.PaginationMeta, error)
	ListMine(ctx context.Context, authorID uuid.UUID, filter commonDto.PageFilter) ([]*entity.BlogPost, commonDto.PaginationMeta, error)
	UpdateBlog(ctx context.Context, callerID, id uuid.UUID, input dto.UpdateBlogInput) (*entity.BlogPost, error)
	DeleteBlog(ctx context.Context, callerID, id uuid.UUID) error
}

type blogService struct {
	repo  repository.BlogRepository
	meili search.MeiliService
}

func NewBlogService(repo repository.BlogRepository, meili search.MeiliService) BlogService {
	return &blogService{repo: repo, meili: meili}
}

func (s *blogService) CreateBlog(ctx context.Context, authorID uuid.UUID, input dto.CreateBlogInput) (*entity.BlogPost, error) {
	post := &entity.BlogPost{
		AuthorID:  authorID,
		Title:     input.Title,
		Content:   input.Content,
		Published: input.Publish,
	}
	if input.Publish {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.syncIndex(post)

	return post, nil
}

// GetBlog returns a published post to anyone, and an unpublished one only to
// its author.
func (s *blogService) GetBlog(ctx context.Context, callerID *uuid.UUID, id uuid.UUID) (*entity.BlogPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: blog post", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !post.Published && (callerID == nil || *callerID != post.AuthorID) {
		return nil, fmt.Errorf("%w: blog post", apperror.ErrNotFound)
	}

	return post, nil
}

func (s *blogService) ListPublished(ctx context.Context, filter commonDto.PageFilter) ([]*entity.BlogPost, commonDto.PaginationMeta, error) {
	filter.Normalize()

	posts, total, err := s.repo.FindPublished(ctx, filter.Offset(), filter.Limit)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	return posts, commonDto.NewPaginationMeta(filter.Page, filter.Limit, total), nil
}

func (s *blogService) ListMine(ctx context.Context, authorID uuid.UUID, filter commonDto.PageFilter) ([]*entity.BlogPost, commonDto.PaginationMeta, error) {
	filter.Normalize()

	posts, total, err := s.repo.FindByAuthor(ctx, authorID, filter.Offset(), filter.Limit)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	return posts, commonDto.NewPaginationMeta(filter.Page, filter.Limit, total), nil
}

func (s *blogService) UpdateBlog(ctx context.Context, callerID, id uuid.UUID, input dto.UpdateBlogInput) (*entity.BlogPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: blog post", apperror.ErrNotFound)
		}
		return nil, err
	}

	if post.AuthorID != callerID {
		return nil, fmt.Errorf("%w: only the author can edit a post", apperror.ErrForbidden)
	}

	if input.Title != nil && *input.Title != "" {
		post.Title = *input.Title
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if input.Publish != nil && *input.Publish != post.Published {
		post.Published = *input.Publish
		if post.Published {
			now := time.Now()
			post.PublishedAt = &now
		} else {
			post.PublishedAt = nil
		}
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}

	s.syncIndex(post)

	return post, nil
}

func (s *blogService) DeleteBlog(ctx context.Context, callerID, id uuid.UUID) error {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: blog post", apperror.ErrNotFound)
		}
		return err
	}

	if post.AuthorID != callerID {
		return fmt.Errorf("%w: only the author can delete a post", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.meili != nil {
		_ = s.meili.DeleteBlog(id.String())
	}

	return nil
}

func (s *blogService) syncIndex(post *entity.BlogPost) {
	if s.meili == nil {
		return
	}
	if post.Published {
		_ = s.meili.IndexBlog(post)
	} else {
		_ = s.meili.DeleteBlog(post.ID.String())
	}
}
