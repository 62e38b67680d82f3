package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"anoa.com/pocmarket/internal/entity"
	searchDto "anoa.com/pocmarket/internal/modules/search/dto"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SearchRepository interface {
	SearchProjects(ctx context.Context, filter searchDto.ProjectSearchFilter) ([]*entity.Project, error)
	SearchCompanies(ctx context.Context, filter searchDto.CompanySearchFilter) ([]*entity.User, error)
	SearchEngineers(ctx context.Context, filter searchDto.EngineerSearchFilter) ([]*entity.User, error)
	SearchBlogs(ctx context.Context, filter searchDto.BlogSearchFilter) ([]*entity.BlogPost, error)
}

type searchRepository struct {
	db *gorm.DB
}

func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

func (r *searchRepository) SearchProjects(ctx context.Context, filter searchDto.ProjectSearchFilter) ([]*entity.Project, error) {
	status := entity.ProjectStatus(filter.Status)
	if !status.Valid() {
		status = entity.ProjectOpen
	}

	query := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", status)

	for _, skill := range splitCSV(filter.Skills) {
		query = query.Where(datatypes.JSONQuery("required_skills").HasKey(skill))
	}

	if min, max, ok := parseRange(filter.Budget); ok {
		if min > 0 {
			query = query.Where("budget > ?", min)
		}
		if max > 0 {
			query = query.Where("budget <= ?", max)
		}
	}

	if filter.StartDate != "" {
		if t, err := time.Parse("2006-01-02", filter.StartDate); err == nil {
			query = query.Where("deadline >= ?", t)
		}
	}

	var projects []*entity.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *searchRepository) SearchCompanies(ctx context.Context, filter searchDto.CompanySearchFilter) ([]*entity.User, error) {
	query := r.db.WithContext(ctx).
		Where("role = ?", entity.RoleClient).
		Where("is_profile_public = ?", true)

	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("company_name ILIKE ? OR industry ILIKE ? OR bio ILIKE ?", kw, kw, kw)
	}
	if filter.Industry != "" {
		query = query.Where("industry ILIKE ?", "%"+filter.Industry+"%")
	}
	if filter.Location != "" {
		query = query.Where("location ILIKE ?", "%"+filter.Location+"%")
	}
	if min, max, ok := parseRange(filter.Size); ok {
		query = query.Where("company_size >= ?", min)
		if max > 0 {
			query = query.Where("company_size <= ?", max)
		}
	}

	var users []*entity.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *searchRepository) SearchEngineers(ctx context.Context, filter searchDto.EngineerSearchFilter) ([]*entity.User, error) {
	query := r.db.WithContext(ctx).
		Where("role = ?", entity.RoleEngineer).
		Where("is_profile_public = ?", true)

	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("display_name ILIKE ? OR bio ILIKE ?", kw, kw)
	}
	for _, skill := range splitCSV(filter.Skills) {
		query = query.Where(datatypes.JSONQuery("skills").HasKey(skill))
	}
	if filter.MinExperience > 0 {
		query = query.Where("experience_years >= ?", filter.MinExperience)
	}

	var users []*entity.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *searchRepository) SearchBlogs(ctx context.Context, filter searchDto.BlogSearchFilter) ([]*entity.BlogPost, error) {
	query := r.db.WithContext(ctx).
		Preload("Author").
		Where("published = ?", true)

	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("title ILIKE ? OR content ILIKE ?", kw, kw)
	}

	var posts []*entity.BlogPost
	if err := query.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseRange parses "min-max" bucket strings where either side may be empty,
// e.g. "-500000", "500000-800000", "1000000-".
func parseRange(s string) (min, max int, ok bool) {
	if s == "" || !strings.Contains(s, "-") {
		return 0, 0, false
	}
	parts := strings.SplitN(s, "-", 2)
	if v, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
		min = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
		max = v
	}
	return min, max, min > 0 || max > 0
}
