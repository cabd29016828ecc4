package domain

import "time"

type User struct {
	ID        string `json:"id" gorm:"primaryKey"`
	GoogleID  string `json:"-" gorm:"uniqueIndex;not null"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`

	// Google OAuth tokens, stored encrypted. Never serialized.
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenExpiry  time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RefreshToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserConfig holds a user's destination settings. CosenseSessionID is
// stored encrypted and masked on the way out.
type UserConfig struct {
	UserID             string    `json:"user_id" gorm:"primaryKey"`
	CosenseProjectName string    `json:"cosense_project_name"`
	CosenseSessionID   string    `json:"-"`
	DiscordWebhookURL  string    `json:"discord_webhook_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
