package dto

type CreateBlogInput struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
	Publish bool   `json:"publish"`
}

type UpdateBlogInput struct {
	Title   *string `json:"title" binding:"omitempty,max=255"`
	Content *string `json:"content"`
	Publish *bool   `json:"publish"`
}
