package handler

import (
	"errors"
	"fmt"
	"net/http"

	"bizsite-backend/internal/config"
	"bizsite-backend/internal/logger"
	"bizsite-backend/internal/middleware"
	"bizsite-backend/internal/usecase/auth"
	appErrors "bizsite-backend/pkg/errors"
	"bizsite-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const authCookieName = "token"

type AuthHandler struct {
	service *auth.Service
	config  *config.Config
}

func NewAuthHandler(service *auth.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{service: service, config: cfg}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/new", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/reset", h.ForgotPassword)
		authGroup.POST("/reset/:token", h.ResetPassword)
	}
}

func (h *AuthHandler) RegisterProfileRoutes(router *gin.RouterGroup) {
	router.GET("/user/me", h.Profile)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var request auth.RegisterRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	request.Email = utils.SanitizeEmail(request.Email)
	request.Name = utils.SanitizeString(request.Name)

	authResponse, err := h.service.Register(c.Request.Context(), &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.setAuthCookie(c, authResponse.AccessToken)

	utils.SuccessResponse(c, http.StatusCreated, "User registered successfully", gin.H{
		"user": authResponse.User,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var request auth.LoginRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	request.Email = utils.SanitizeEmail(request.Email)

	authResponse, err := h.service.Login(c.Request.Context(), &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.setAuthCookie(c, authResponse.AccessToken)

	utils.SuccessResponse(c, http.StatusOK, "User loggedIn successfully", gin.H{
		"access_token": authResponse.AccessToken,
		"user":         authResponse.User,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearAuthCookie(c)
	utils.SuccessResponse(c, http.StatusOK, "User logout successfully", nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var request auth.ForgotPasswordRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	request.Email = utils.SanitizeEmail(request.Email)

	if err := h.service.ForgotPassword(c.Request.Context(), &request); err != nil {
		respondWithError(c, err)
		return
	}

	message := fmt.Sprintf("Reset email password send to %s successfully", request.Email)
	utils.SuccessResponse(c, http.StatusOK, message, nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var request auth.ResetPasswordRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	token := c.Param("token")

	if err := h.service.ResetPassword(c.Request.Context(), token, &request); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password updated successfully, please login", nil)
}

func (h *AuthHandler) Profile(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Invalid user identifier")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userUUID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User profile fetched successfully", gin.H{
		"user": user,
	})
}

// setAuthCookie issues the token cookie: HTTP-only, SameSite=None, Secure in
// production, lifetime matching the access token.
func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.config.JWT.ExpiryHours * 3600,
		HttpOnly: true,
		Secure:   h.config.Server.IsProduction(),
		SameSite: http.SameSiteNoneMode,
	})
}

// clearAuthCookie overwrites the cookie with an empty value and an immediate
// expiry. Outstanding tokens stay valid until their natural expiry; the
// client is only instructed to discard its copy.
func (h *AuthHandler) clearAuthCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.Server.IsProduction(),
		SameSite: http.SameSiteNoneMode,
	})
}

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, appErrors.ErrUserAlreadyExists),
		errors.Is(err, appErrors.ErrUserCreateFailed),
		errors.Is(err, appErrors.ErrInvalidCredentials),
		errors.Is(err, appErrors.ErrResetTokenInvalid):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErrors.ErrUserNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErrors.ErrUnauthorized),
		errors.Is(err, appErrors.ErrTokenInvalid):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	default:
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) {
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
			return
		}

		requestID := middleware.GetRequestID(c)
		logger.Error("Internal server error",
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
