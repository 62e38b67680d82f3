package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContractStatus string

const (
	ContractActive    ContractStatus = "ACTIVE"
	ContractCompleted ContractStatus = "COMPLETED"
	ContractCancelled ContractStatus = "CANCELLED"
)

// Contract is materialized exactly once per accepted proposal; the unique
// index on ProposalID backs that invariant at the storage layer.
type Contract struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project        Project        `gorm:"constraint:OnDelete:CASCADE" json:"project,omitempty"`
	ProposalID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"proposal_id"`
	Proposal       Proposal       `gorm:"constraint:OnDelete:CASCADE" json:"proposal,omitempty"`
	ContractAmount int            `gorm:"not null" json:"contract_amount"`
	StartDate      time.Time      `gorm:"not null" json:"start_date"`
	EndDate        time.Time      `gorm:"not null" json:"end_date"`
	Deliverables   datatypes.JSON `gorm:"type:jsonb" json:"deliverables,omitempty"`
	Status         ContractStatus `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	Messages []Message `gorm:"foreignKey:ContractID" json:"messages,omitempty"`
	Reviews  []Review  `gorm:"foreignKey:ContractID" json:"reviews,omitempty"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
