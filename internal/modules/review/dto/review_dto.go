package dto

type CreateReviewInput struct {
	ContractID string `json:"contract_id" binding:"required,uuid"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment"`
}

type ReviewListFilter struct {
	UserID string `form:"userId"`
	Type   string `form:"type"` // received (default) or given
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
