package dto

type CreateProjectInput struct {
	Title          string         `json:"title" binding:"required,max=255"`
	Description    string         `json:"description" binding:"required"`
	Budget         int            `json:"budget" binding:"required,gt=0"`
	PeriodDays     int            `json:"period_days" binding:"omitempty,gt=0"`
	RequiredSkills map[string]int `json:"required_skills"`
	Publish        bool           `json:"publish"`
}

type UpdateProjectInput struct {
	Title          *string        `json:"title" binding:"omitempty,max=255"`
	Description    *string        `json:"description"`
	Budget         *int           `json:"budget" binding:"omitempty,gt=0"`
	PeriodDays     *int           `json:"period_days" binding:"omitempty,gt=0"`
	RequiredSkills map[string]int `json:"required_skills"`
}

type UpdateProjectStatusInput struct {
	Status string `json:"status" binding:"required,oneof=DRAFT OPEN IN_PROGRESS CLOSED CANCELLED"`
}

type ProjectListFilter struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
	Mine   bool   `form:"mine"`
}
