package usecase

import (
	"context"

	"mailwiki-backend/internal/sync/domain"
)

type SyncUsecase interface {
	// RunSync processes every registered user once and returns the
	// aggregated batch result. Per-user and per-message failures are
	// contained; the batch itself only fails when the user list cannot
	// be loaded.
	RunSync(ctx context.Context) *domain.BatchResult
}
