package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"beerme/internal/app/beerme/entity"
)

// WebhookHandler принимает команды бота через HTTP (slash-command webhook)
type WebhookHandler struct {
	commands  *CommandHandler
	validator *validator.Validate
}

func NewWebhookHandler(commands *CommandHandler) *WebhookHandler {
	return &WebhookHandler{
		commands:  commands,
		validator: validator.New(),
	}
}

// HandleCommand - POST /command
// Тело: {channel, author, text}; ответ: {replies: [...]}
func (h *WebhookHandler) HandleCommand(c *gin.Context) {
	var req entity.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "channel, author and text are required"})
		return
	}

	replies := h.commands.Execute(c.Request.Context(), &req)

	c.JSON(http.StatusOK, entity.CommandResponse{Replies: replies})
}
