package handler

import (
	"fmt"
	"net/http"

	"bizsite-backend/internal/config"
	"bizsite-backend/internal/logger"
	"bizsite-backend/internal/mailer"
	appErrors "bizsite-backend/pkg/errors"
	"bizsite-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=2000"`
}

// ContactHandler relays contact-form submissions to the configured inbox.
type ContactHandler struct {
	mailer mailer.Mailer
	config *config.Config
}

func NewContactHandler(m mailer.Mailer, cfg *config.Config) *ContactHandler {
	return &ContactHandler{mailer: m, config: cfg}
}

func (h *ContactHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/contact", h.Submit)
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var request ContactRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	request.Name = utils.SanitizeString(request.Name)
	request.Email = utils.SanitizeEmail(request.Email)
	request.Message = utils.SanitizeText(request.Message)

	if err := utils.ValidateStruct(&request); err != nil {
		respondWithError(c, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err))
		return
	}

	subject := fmt.Sprintf("Contact form message from %s", request.Name)
	body := fmt.Sprintf("From: %s <%s>\n\n%s", request.Name, request.Email, request.Message)

	if err := h.mailer.Send(h.config.Contact.Recipient, subject, body); err != nil {
		logger.Warn("Contact email delivery failed",
			zap.String("from", request.Email),
			zap.Error(err),
		)
		respondWithError(c, appErrors.NewAppError("EMAIL_DELIVERY_FAILED", err.Error(), err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Message sent successfully", nil)
}
