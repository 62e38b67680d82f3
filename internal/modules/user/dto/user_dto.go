package dto

import (
	"time"

	"anoa.com/pocmarket/internal/entity"
)

type SignupInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required,max=100"`
	Role        string `json:"role" binding:"required,oneof=CLIENT ENGINEER"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *entity.User `json:"user"`
	SearchToken string       `json:"search_token,omitempty"`
}

type UpdateProfileInput struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Bio         *string `json:"bio" binding:"omitempty,max=2000"`

	CompanyName *string `json:"company_name" binding:"omitempty,max=100"`
	CompanySize *int    `json:"company_size" binding:"omitempty,min=1"`
	Industry    *string `json:"industry" binding:"omitempty,max=100"`
	Location    *string `json:"location" binding:"omitempty,max=100"`

	Skills          map[string]int `json:"skills"`
	ExperienceYears *int           `json:"experience_years" binding:"omitempty,min=0"`
	PortfolioURL    *string        `json:"portfolio_url" binding:"omitempty,max=500"`

	IsProfilePublic *bool `json:"is_profile_public"`
}

// SwitchRoleInput switches between CLIENT and ENGINEER. Confirm must be true:
// the abandoned role's fields are cleared and cannot be recovered.
type SwitchRoleInput struct {
	Role    string `json:"role" binding:"required,oneof=CLIENT ENGINEER"`
	Confirm bool   `json:"confirm"`
}

type UpdateUserStatusInput struct {
	Status string `json:"status" binding:"required,oneof=PENDING ACTIVE SUSPENDED"`
}

// PublicProfileResponse omits email and other private fields.
type PublicProfileResponse struct {
	ID              string             `json:"id"`
	DisplayName     string             `json:"display_name"`
	Role            entity.UserRole    `json:"role"`
	Bio             *string            `json:"bio,omitempty"`
	AvatarURL       *string            `json:"avatar_url,omitempty"`
	CompanyName     *string            `json:"company_name,omitempty"`
	CompanySize     *int               `json:"company_size,omitempty"`
	Industry        *string            `json:"industry,omitempty"`
	Location        *string            `json:"location,omitempty"`
	Skills          map[string]int     `json:"skills,omitempty"`
	ExperienceYears *int               `json:"experience_years,omitempty"`
	PortfolioURL    *string            `json:"portfolio_url,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	Badges          []entity.UserBadge `json:"badges"`
	Projects        []entity.Project   `json:"projects"`
	Proposals       []entity.Proposal  `json:"proposals"`
	ReceivedReviews []entity.Review    `json:"received_reviews"`
}
