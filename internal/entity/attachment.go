package entity

import (
	"time"

	"github.com/google/uuid"
)

// Attachment tracks uploaded files so the cleanup job can delete orphans that
// were never linked to a message.
type Attachment struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UploaderID uuid.UUID  `gorm:"type:uuid;not null" json:"uploader_id"`
	MessageID  *uuid.UUID `gorm:"type:uuid;index" json:"message_id,omitempty"`
	FileURL    string     `gorm:"type:text;not null" json:"file_url"`
	FileType   string     `gorm:"size:50" json:"file_type"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
