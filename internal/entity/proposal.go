package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalDraft     ProposalStatus = "DRAFT"
	ProposalSubmitted ProposalStatus = "SUBMITTED"
	ProposalAccepted  ProposalStatus = "ACCEPTED"
	ProposalRejected  ProposalStatus = "REJECTED"
	ProposalWithdrawn ProposalStatus = "WITHDRAWN"
)

type Proposal struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project          Project        `gorm:"constraint:OnDelete:CASCADE" json:"project,omitempty"`
	EngineerID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"engineer_id"`
	Engineer         User           `gorm:"foreignKey:EngineerID;constraint:OnDelete:CASCADE" json:"engineer,omitempty"`
	ProposalText     string         `gorm:"type:text;not null" json:"proposal_text"`
	ProposedBudget   int            `gorm:"not null" json:"proposed_budget"`
	ProposedTimeline string         `gorm:"size:255" json:"proposed_timeline"`
	Status           ProposalStatus `gorm:"size:20;not null;default:'SUBMITTED'" json:"status"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
