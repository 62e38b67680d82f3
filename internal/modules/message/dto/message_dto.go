package dto

type CreateMessageInput struct {
	Body          string  `json:"body" binding:"required"`
	ParentID      *string `json:"parent_id" binding:"omitempty,uuid"`
	AttachmentIDs []uint  `json:"attachment_ids"`
	IsTemplate    bool    `json:"is_template"`
}

type PinMessageInput struct {
	Pinned bool `json:"pinned"`
}
