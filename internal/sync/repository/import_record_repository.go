package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mailwiki-backend/internal/sync/domain"
)

// ImportRecordRepository persists which messages already have a page in
// the destination store.
type ImportRecordRepository interface {
	// List returns a user's records keyed by message ID.
	List(ctx context.Context, userID string) (map[string]domain.ImportRecord, error)

	// Put upserts the record for one message.
	Put(ctx context.Context, userID, messageID, pageTitle string) error

	// Remove drops the record for one message. Removing a record that
	// does not exist is not an error.
	Remove(ctx context.Context, userID, messageID string) error
}

type importRecordRepository struct {
	db *gorm.DB
}

func NewImportRecordRepository(db *gorm.DB) ImportRecordRepository {
	return &importRecordRepository{db: db}
}

func (r *importRecordRepository) List(ctx context.Context, userID string) (map[string]domain.ImportRecord, error) {
	var records []domain.ImportRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, err
	}

	byMessage := make(map[string]domain.ImportRecord, len(records))
	for _, record := range records {
		byMessage[record.MessageID] = record
	}
	return byMessage, nil
}

func (r *importRecordRepository) Put(ctx context.Context, userID, messageID, pageTitle string) error {
	record := domain.ImportRecord{
		ID:         uuid.New().String(),
		UserID:     userID,
		MessageID:  messageID,
		PageTitle:  pageTitle,
		ImportedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "message_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"page_title", "imported_at", "updated_at"}),
		}).
		Create(&record).Error
}

func (r *importRecordRepository) Remove(ctx context.Context, userID, messageID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&domain.ImportRecord{}).Error
}
