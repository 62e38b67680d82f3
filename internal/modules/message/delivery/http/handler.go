package http

import (
	"net/http"

	"anoa.com/pocmarket/internal/entity"
	"anoa.com/pocmarket/internal/modules/message/dto"
	message "anoa.com/pocmarket/internal/modules/message/service"
	commonDto "anoa.com/pocmarket/pkg/dto"
	"anoa.com/pocmarket/pkg/response"
	"anoa.com/pocmarket/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MessageHandler struct {
	service message.MessageService
}

func NewMessageHandler(service message.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func threadOwner(c *gin.Context, kind entity.ThreadOwnerKind) (entity.ThreadOwner, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return entity.ThreadOwner{}, false
	}
	return entity.ThreadOwner{Kind: kind, ID: id}, true
}

func (h *MessageHandler) sendMessage(c *gin.Context, kind entity.ThreadOwnerKind) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	owner, ok := threadOwner(c, kind)
	if !ok {
		return
	}

	var input dto.CreateMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	sent, err := h.service.SendMessage(c.Request.Context(), userID, owner, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sent)
}

func (h *MessageHandler) getThread(c *gin.Context, kind entity.ThreadOwnerKind) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	owner, ok := threadOwner(c, kind)
	if !ok {
		return
	}

	var filter commonDto.PageFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}

	messages, meta, err := h.service.GetThread(c.Request.Context(), userID, owner, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages, "meta": meta})
}

func (h *MessageHandler) SendContractMessage(c *gin.Context) {
	h.sendMessage(c, entity.ThreadOwnerContract)
}

func (h *MessageHandler) GetContractThread(c *gin.Context) {
	h.getThread(c, entity.ThreadOwnerContract)
}

func (h *MessageHandler) SendProposalMessage(c *gin.Context) {
	h.sendMessage(c, entity.ThreadOwnerProposal)
}

func (h *MessageHandler) GetProposalThread(c *gin.Context) {
	h.getThread(c, entity.ThreadOwnerProposal)
}

func (h *MessageHandler) PinMessage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var input dto.PinMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	pinned, err := h.service.PinMessage(c.Request.Context(), userID, id, input.Pinned)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, pinned)
}
