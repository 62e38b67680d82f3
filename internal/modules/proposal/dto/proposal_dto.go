package dto

type CreateProposalInput struct {
	ProjectID        string `json:"project_id" binding:"required,uuid"`
	ProposalText     string `json:"proposal_text" binding:"required"`
	ProposedBudget   int    `json:"proposed_budget" binding:"required,gt=0"`
	ProposedTimeline string `json:"proposed_timeline" binding:"omitempty,max=255"`
	Draft            bool   `json:"draft"`
}

type UpdateProposalInput struct {
	ProposalText     *string `json:"proposal_text"`
	ProposedBudget   *int    `json:"proposed_budget" binding:"omitempty,gt=0"`
	ProposedTimeline *string `json:"proposed_timeline" binding:"omitempty,max=255"`
	Submit           bool    `json:"submit"`
}

// DecideProposalInput carries the client's accept or reject verdict.
type DecideProposalInput struct {
	Action string `json:"action" binding:"required"`
}
