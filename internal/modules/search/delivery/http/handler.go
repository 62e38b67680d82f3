package http

import (
	"net/http"

	"anoa.com/pocmarket/internal/modules/search/dto"
	search "anoa.com/pocmarket/internal/modules/search/service"
	"anoa.com/pocmarket/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service search.SearchService
}

func NewSearchHandler(service search.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search dispatches on the type query param. Unknown types are a client error,
// not an empty result.
func (h *SearchHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	switch c.Query("type") {
	case "project":
		var filter dto.ProjectSearchFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project filters"})
			return
		}
		results, err := h.service.SearchProjects(ctx, filter)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"type": "project", "results": results})

	case "company":
		var filter dto.CompanySearchFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company filters"})
			return
		}
		results, err := h.service.SearchCompanies(ctx, filter)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"type": "company", "results": results})

	case "engineer":
		var filter dto.EngineerSearchFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid engineer filters"})
			return
		}
		results, err := h.service.SearchEngineers(ctx, filter)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"type": "engineer", "results": results})

	case "blog":
		var filter dto.BlogSearchFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blog filters"})
			return
		}
		results, err := h.service.SearchBlogs(ctx, filter)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"type": "blog", "results": results})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be one of project, company, engineer, blog"})
	}
}

func (h *SearchHandler) SearchToken(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	token, err := h.service.SearchToken(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
