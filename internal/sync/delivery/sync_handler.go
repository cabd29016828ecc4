package delivery

import (
	"net/http"

	"mailwiki-backend/internal/sync/usecase"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncUsecase usecase.SyncUsecase
}

func NewSyncHandler(syncUsecase usecase.SyncUsecase) *SyncHandler {
	return &SyncHandler{syncUsecase: syncUsecase}
}

// Run triggers a batch sync for all users. Guarded by the cron secret
// middleware; the scheduler host is the only intended caller.
func (h *SyncHandler) Run(c *gin.Context) {
	result := h.syncUsecase.RunSync(c.Request.Context())
	if !result.Success {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
