package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationProposalReceived = "PROPOSAL_RECEIVED"
	NotificationProposalAccepted = "PROPOSAL_ACCEPTED"
	NotificationProposalRejected = "PROPOSAL_REJECTED"
	NotificationMessageReceived  = "MESSAGE_RECEIVED"
	NotificationReviewReceived   = "REVIEW_RECEIVED"
	NotificationBadgeEarned      = "BADGE_EARNED"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
