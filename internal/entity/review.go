package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index" json:"contract_id"`
	Contract   Contract  `gorm:"constraint:OnDelete:CASCADE" json:"contract,omitempty"`
	ReviewerID uuid.UUID `gorm:"type:uuid;not null" json:"reviewer_id"`
	Reviewer   User      `gorm:"foreignKey:ReviewerID;constraint:OnDelete:CASCADE" json:"reviewer,omitempty"`
	RevieweeID uuid.UUID `gorm:"type:uuid;not null;index" json:"reviewee_id"`
	Reviewee   User      `gorm:"foreignKey:RevieweeID;constraint:OnDelete:CASCADE" json:"reviewee,omitempty"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

type BadgeType string

const (
	BadgeFirstProject  BadgeType = "FIRST_PROJECT"
	BadgeFiveProjects  BadgeType = "FIVE_PROJECTS"
	BadgeTopRated      BadgeType = "TOP_RATED"
	BadgeQuickResponse BadgeType = "QUICK_RESPONSE"
	BadgeExpert        BadgeType = "EXPERT"
)

// UserBadge rows are append-only.
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	BadgeType BadgeType `gorm:"size:50;not null" json:"badge_type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
