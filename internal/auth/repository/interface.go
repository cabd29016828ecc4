package repository

import authdomain "mailwiki-backend/internal/auth/domain"

type UserRepository interface {
	Create(user *authdomain.User) error
	FindByID(id string) (*authdomain.User, error)
	FindByGoogleID(googleID string) (*authdomain.User, error)
	Update(user *authdomain.User) error
	ListAll() ([]authdomain.User, error)

	SaveRefreshToken(token *authdomain.RefreshToken) error
	FindRefreshToken(token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(token string) error
}

type UserConfigRepository interface {
	// Find returns (nil, nil) when the user has no config yet.
	Find(userID string) (*authdomain.UserConfig, error)
	Save(config *authdomain.UserConfig) error
}
