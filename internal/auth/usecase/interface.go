package usecase

import (
	"context"

	authdomain "mailwiki-backend/internal/auth/domain"
	authdto "mailwiki-backend/internal/auth/dto"
)

type AuthUsecase interface {
	// GoogleAuthURL returns the consent page URL to redirect the user to.
	GoogleAuthURL(state string) string

	// HandleGoogleCallback exchanges the authorization code, stores the
	// user's Gmail tokens encrypted, and issues app tokens.
	HandleGoogleCallback(ctx context.Context, code string) (*authdto.TokenResponse, error)

	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)

	// GetValidAccessToken returns a usable Gmail access token for the
	// user, refreshing and re-persisting it when the stored one has
	// expired.
	GetValidAccessToken(ctx context.Context, userID string) (string, error)

	// GetUserConfig returns the user's destination settings with the
	// session ID decrypted, or nil when none are saved.
	GetUserConfig(userID string) (*authdomain.UserConfig, error)

	UpdateUserConfig(userID string, req *authdto.UpdateUserConfigRequest) (*authdomain.UserConfig, error)

	// ListUsers returns every registered user, for batch sync runs.
	ListUsers() ([]authdomain.User, error)
}
