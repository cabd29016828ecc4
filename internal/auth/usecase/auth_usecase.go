package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	authdomain "mailwiki-backend/internal/auth/domain"
	authdto "mailwiki-backend/internal/auth/dto"
	"mailwiki-backend/internal/auth/repository"
	"mailwiki-backend/pkg/config"
	"mailwiki-backend/pkg/utils/crypto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// expirySkew refreshes tokens slightly before Google reports them dead.
const expirySkew = 5 * time.Minute

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo   repository.UserRepository
	configRepo repository.UserConfigRepository
	config     *config.Config
	oauth      *oauth2.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, configRepo repository.UserConfigRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo:   userRepo,
		configRepo: configRepo,
		config:     cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes: []string{
				"https://www.googleapis.com/auth/gmail.readonly",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (u *authUsecase) GoogleAuthURL(state string) string {
	// offline + consent so Google always returns a refresh token
	return u.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// GoogleTokenInfo represents the response from Google's tokeninfo endpoint
type GoogleTokenInfo struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified string `json:"email_verified"` // Google returns this as string "true" or "false"
	Sub           string `json:"sub"`
}

func (u *authUsecase) HandleGoogleCallback(ctx context.Context, code string) (*authdto.TokenResponse, error) {
	token, err := u.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, errors.New("failed to exchange authorization code: " + err.Error())
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return nil, errors.New("no id_token in Google response")
	}

	tokenInfo, err := verifyGoogleIDToken(idToken)
	if err != nil {
		return nil, err
	}

	if tokenInfo.EmailVerified != "true" {
		return nil, errors.New("google email is not verified")
	}

	encAccess, err := crypto.Encrypt(token.AccessToken, u.config.TokenEncryptionKey)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.FindByGoogleID(tokenInfo.Sub)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &authdomain.User{
			GoogleID:    tokenInfo.Sub,
			Email:       tokenInfo.Email,
			Name:        tokenInfo.Name,
			AvatarURL:   tokenInfo.Picture,
			AccessToken: encAccess,
			TokenExpiry: token.Expiry,
		}
		if token.RefreshToken != "" {
			encRefresh, err := crypto.Encrypt(token.RefreshToken, u.config.TokenEncryptionKey)
			if err != nil {
				return nil, err
			}
			user.RefreshToken = encRefresh
		}
		if err := u.userRepo.Create(user); err != nil {
			return nil, err
		}
	} else {
		user.Email = tokenInfo.Email
		user.Name = tokenInfo.Name
		user.AvatarURL = tokenInfo.Picture
		user.AccessToken = encAccess
		user.TokenExpiry = token.Expiry
		// Google omits the refresh token on repeat consent; keep the old one.
		if token.RefreshToken != "" {
			encRefresh, err := crypto.Encrypt(token.RefreshToken, u.config.TokenEncryptionKey)
			if err != nil {
				return nil, err
			}
			user.RefreshToken = encRefresh
		}
		if err := u.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return u.generateTokens(user)
}

func verifyGoogleIDToken(idToken string) (*GoogleTokenInfo, error) {
	// Verify ID token by calling Google's tokeninfo endpoint
	url := fmt.Sprintf("https://oauth2.googleapis.com/tokeninfo?id_token=%s", idToken)

	resp, err := http.Get(url)
	if err != nil {
		return nil, errors.New("failed to verify Google token: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to verify Google token: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tokenInfo GoogleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&tokenInfo); err != nil {
		return nil, errors.New("failed to decode Google token info: " + err.Error())
	}
	return &tokenInfo, nil
}

func (u *authUsecase) RefreshToken(refreshToken string) (*authdto.TokenResponse, error) {
	// Verify refresh token
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	// Check if token exists in repository
	storedToken, err := u.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if storedToken == nil || storedToken.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("refresh token expired")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, errors.New("user not found")
	}

	return u.generateTokens(user)
}

func (u *authUsecase) Logout(refreshToken string) error {
	return u.userRepo.DeleteRefreshToken(refreshToken)
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, errors.New("user not found")
	}

	return user, nil
}

// GetValidAccessToken decrypts the user's stored Gmail token and
// refreshes it through Google when it is expired or about to expire.
// The refreshed token is persisted so parallel callers benefit.
func (u *authUsecase) GetValidAccessToken(ctx context.Context, userID string) (string, error) {
	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil || user.AccessToken == "" {
		return "", errors.New("no stored Google credentials")
	}

	accessToken, err := crypto.Decrypt(user.AccessToken, u.config.TokenEncryptionKey)
	if err != nil {
		return "", err
	}

	if time.Now().Add(expirySkew).Before(user.TokenExpiry) {
		return accessToken, nil
	}

	if user.RefreshToken == "" {
		return "", errors.New("access token expired and no refresh token stored")
	}

	refreshToken, err := crypto.Decrypt(user.RefreshToken, u.config.TokenEncryptionKey)
	if err != nil {
		return "", err
	}

	fresh, err := u.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return "", errors.New("failed to refresh Google token: " + err.Error())
	}

	encAccess, err := crypto.Encrypt(fresh.AccessToken, u.config.TokenEncryptionKey)
	if err != nil {
		return "", err
	}
	user.AccessToken = encAccess
	user.TokenExpiry = fresh.Expiry
	if fresh.RefreshToken != "" && fresh.RefreshToken != refreshToken {
		encRefresh, err := crypto.Encrypt(fresh.RefreshToken, u.config.TokenEncryptionKey)
		if err != nil {
			return "", err
		}
		user.RefreshToken = encRefresh
	}
	if err := u.userRepo.Update(user); err != nil {
		// The fresh token is still usable this run.
		log.Printf("[Auth] failed to persist refreshed token for user %s: %v", userID, err)
	}

	return fresh.AccessToken, nil
}

func (u *authUsecase) GetUserConfig(userID string) (*authdomain.UserConfig, error) {
	cfg, err := u.configRepo.Find(userID)
	if err != nil || cfg == nil {
		return nil, err
	}

	if cfg.CosenseSessionID != "" {
		sessionID, err := crypto.Decrypt(cfg.CosenseSessionID, u.config.TokenEncryptionKey)
		if err != nil {
			return nil, err
		}
		cfg.CosenseSessionID = sessionID
	}
	return cfg, nil
}

func (u *authUsecase) UpdateUserConfig(userID string, req *authdto.UpdateUserConfigRequest) (*authdomain.UserConfig, error) {
	existing, err := u.configRepo.Find(userID)
	if err != nil {
		return nil, err
	}

	cfg := &authdomain.UserConfig{UserID: userID}
	if existing != nil {
		cfg = existing
	}

	cfg.CosenseProjectName = req.CosenseProjectName
	cfg.DiscordWebhookURL = req.DiscordWebhookURL

	switch {
	case req.CosenseSessionID != "":
		encSession, err := crypto.Encrypt(req.CosenseSessionID, u.config.TokenEncryptionKey)
		if err != nil {
			return nil, err
		}
		cfg.CosenseSessionID = encSession
	case existing == nil:
		return nil, errors.New("cosense session id is required")
	}

	if err := u.configRepo.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (u *authUsecase) ListUsers() ([]authdomain.User, error) {
	return u.userRepo.ListAll()
}

func (u *authUsecase) generateTokens(user *authdomain.User) (*authdto.TokenResponse, error) {
	accessToken, err := u.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	refreshTokenEntity := &authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(u.config.JWTRefreshExpiry),
	}
	if err := u.userRepo.SaveRefreshToken(refreshTokenEntity); err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (u *authUsecase) generateAccessToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) generateRefreshToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"token_id": uuid.New().String(),
		"exp":      time.Now().Add(u.config.JWTRefreshExpiry).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}
