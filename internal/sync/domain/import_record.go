package domain

import "time"

// ImportRecord marks a message as having a live page in the destination
// store. One row per user per message; reconciliation deletes rows whose
// page no longer exists.
type ImportRecord struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"index:idx_user_message,unique;not null"`
	MessageID  string    `json:"message_id" gorm:"index:idx_user_message,unique;not null"`
	PageTitle  string    `json:"page_title"`
	ImportedAt time.Time `json:"imported_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
