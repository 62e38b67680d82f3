package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleClient   UserRole = "CLIENT"
	RoleEngineer UserRole = "ENGINEER"
	RoleAdmin    UserRole = "ADMIN"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleClient, RoleEngineer, RoleAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserPending   UserStatus = "PENDING"
	UserActive    UserStatus = "ACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	DisplayName  string     `gorm:"size:100;not null" json:"display_name"`
	Role         UserRole   `gorm:"size:20;not null" json:"role"`
	Status       UserStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	Bio          *string    `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL    *string    `gorm:"type:text" json:"avatar_url,omitempty"`
	GoogleID     *string    `gorm:"size:100;uniqueIndex" json:"google_id,omitempty"`

	// Client-side fields, nulled when the user switches to ENGINEER.
	CompanyName *string `gorm:"size:100" json:"company_name,omitempty"`
	CompanySize *int    `json:"company_size,omitempty"`
	Industry    *string `gorm:"size:100" json:"industry,omitempty"`
	Location    *string `gorm:"size:100" json:"location,omitempty"`

	// Engineer-side fields, nulled when the user switches to CLIENT.
	Skills          datatypes.JSON `gorm:"type:jsonb" json:"skills,omitempty"`
	ExperienceYears *int           `json:"experience_years,omitempty"`
	PortfolioURL    *string        `gorm:"type:text" json:"portfolio_url,omitempty"`

	IsProfilePublic bool      `gorm:"default:true" json:"is_profile_public"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Badges          []UserBadge `gorm:"foreignKey:UserID" json:"badges,omitempty"`
	Projects        []Project   `gorm:"foreignKey:UserID" json:"projects,omitempty"`
	Proposals       []Proposal  `gorm:"foreignKey:EngineerID" json:"proposals,omitempty"`
	ReceivedReviews []Review    `gorm:"foreignKey:RevieweeID" json:"received_reviews,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
