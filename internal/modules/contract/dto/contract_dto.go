package dto

type UpdateContractStatusInput struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED CANCELLED"`
}
