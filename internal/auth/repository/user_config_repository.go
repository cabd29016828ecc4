package repository

import (
	"errors"
	"time"

	authdomain "mailwiki-backend/internal/auth/domain"

	"gorm.io/gorm"
)

type userConfigRepository struct {
	db *gorm.DB
}

func NewUserConfigRepository(db *gorm.DB) UserConfigRepository {
	return &userConfigRepository{
		db: db,
	}
}

func (r *userConfigRepository) Find(userID string) (*authdomain.UserConfig, error) {
	var config authdomain.UserConfig
	err := r.db.Where("user_id = ?", userID).First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

func (r *userConfigRepository) Save(config *authdomain.UserConfig) error {
	config.UpdatedAt = time.Now()
	return r.db.Save(config).Error
}
