package delivery

import (
	"net/http"

	authdto "mailwiki-backend/internal/auth/dto"
	"mailwiki-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maskedSessionID is what clients see instead of a saved session ID.
const maskedSessionID = "**********"

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// GoogleLogin redirects the browser to Google's consent page.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.New().String()
	c.Redirect(http.StatusTemporaryRedirect, h.authUsecase.GoogleAuthURL(state))
}

func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	var req authdto.GoogleCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Browser redirect flow carries the code as a query param.
		req.Code = c.Query("code")
	}
	if req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code required"})
		return
	}

	tokens, err := h.authUsecase.HandleGoogleCallback(c.Request.Context(), req.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req authdto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, err := h.authUsecase.RefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req authdto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authUsecase.Logout(req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetConfig returns the caller's destination settings. The session ID
// is replaced with a fixed mask.
func (h *AuthHandler) GetConfig(c *gin.Context) {
	userID := c.GetString("userID")

	cfg, err := h.authUsecase.GetUserConfig(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusOK, &authdto.UserConfigResponse{})
		return
	}

	resp := &authdto.UserConfigResponse{
		CosenseProjectName: cfg.CosenseProjectName,
		DiscordWebhookURL:  cfg.DiscordWebhookURL,
	}
	if cfg.CosenseSessionID != "" {
		resp.CosenseSessionID = maskedSessionID
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) UpdateConfig(c *gin.Context) {
	userID := c.GetString("userID")

	var req authdto.UpdateUserConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.authUsecase.UpdateUserConfig(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := &authdto.UserConfigResponse{
		CosenseProjectName: cfg.CosenseProjectName,
		CosenseSessionID:   maskedSessionID,
		DiscordWebhookURL:  cfg.DiscordWebhookURL,
	}
	c.JSON(http.StatusOK, resp)
}
