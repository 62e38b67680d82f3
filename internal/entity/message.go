package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ThreadOwnerKind discriminates who owns a message thread: a contract once one
// exists, or the proposal while the parties are still negotiating.
type ThreadOwnerKind string

const (
	ThreadOwnerContract ThreadOwnerKind = "contract"
	ThreadOwnerProposal ThreadOwnerKind = "proposal"
)

type ThreadOwner struct {
	Kind ThreadOwnerKind
	ID   uuid.UUID
}

type Message struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID *uuid.UUID `gorm:"type:uuid;index" json:"contract_id,omitempty"`
	ProposalID *uuid.UUID `gorm:"type:uuid;index" json:"proposal_id,omitempty"`
	SenderID   uuid.UUID  `gorm:"type:uuid;not null" json:"sender_id"`
	Sender     User       `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	ParentID   *uuid.UUID `gorm:"type:uuid" json:"parent_id,omitempty"`
	Parent     *Message   `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"parent,omitempty"`

	Body        string         `gorm:"type:text;not null" json:"body"`
	Attachments datatypes.JSON `gorm:"type:jsonb" json:"attachments,omitempty"`
	IsTemplate  bool           `gorm:"default:false" json:"is_template"`
	IsPinned    bool           `gorm:"default:false" json:"is_pinned"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Owner returns the discriminated thread owner. Exactly one of ContractID /
// ProposalID is set on a well-formed row.
func (m *Message) Owner() ThreadOwner {
	if m.ContractID != nil {
		return ThreadOwner{Kind: ThreadOwnerContract, ID: *m.ContractID}
	}
	if m.ProposalID != nil {
		return ThreadOwner{Kind: ThreadOwnerProposal, ID: *m.ProposalID}
	}
	return ThreadOwner{}
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
