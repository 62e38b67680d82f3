package http

import (
	"net/http"

	"anoa.com/pocmarket/internal/entity"
	"anoa.com/pocmarket/internal/modules/contract/dto"
	contract "anoa.com/pocmarket/internal/modules/contract/service"
	commonDto "anoa.com/pocmarket/pkg/dto"
	"anoa.com/pocmarket/pkg/response"
	"anoa.com/pocmarket/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContractHandler struct {
	service contract.ContractService
}

func NewContractHandler(service contract.ContractService) *ContractHandler {
	return &ContractHandler{service: service}
}

func (h *ContractHandler) GetContract(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	found, err := h.service.GetContract(c.Request.Context(), userID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *ContractHandler) ListMyContracts(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter commonDto.PageFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}

	contracts, meta, err := h.service.ListMyContracts(c.Request.Context(), userID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": contracts, "meta": meta})
}

func (h *ContractHandler) UpdateContractStatus(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var input dto.UpdateContractStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	updated, err := h.service.UpdateContractStatus(c.Request.Context(), userID, id, entity.ContractStatus(input.Status))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
