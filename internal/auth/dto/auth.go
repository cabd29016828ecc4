package dto

import authdomain "mailwiki-backend/internal/auth/domain"

type GoogleCallbackRequest struct {
	Code string `json:"code" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	User         *authdomain.User `json:"user"`
}

type UserConfigResponse struct {
	CosenseProjectName string `json:"cosense_project_name"`
	// Masked; the real session ID never leaves the server.
	CosenseSessionID  string `json:"cosense_session_id"`
	DiscordWebhookURL string `json:"discord_webhook_url,omitempty"`
}

type UpdateUserConfigRequest struct {
	CosenseProjectName string `json:"cosense_project_name" binding:"required"`
	CosenseSessionID   string `json:"cosense_session_id"`
	DiscordWebhookURL  string `json:"discord_webhook_url"`
}
