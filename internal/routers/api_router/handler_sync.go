package api_router

import (
	"time"

	"github.com/haierkeys/jot-sync-service/internal/app"
	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/dto"
	pkgapp "github.com/haierkeys/jot-sync-service/pkg/app"
	"github.com/haierkeys/jot-sync-service/pkg/code"
	"github.com/haierkeys/jot-sync-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SyncHandler 同步接口处理器
type SyncHandler struct {
	*Handler
}

// NewSyncHandler 创建 SyncHandler 实例
func NewSyncHandler(a *app.App) *SyncHandler {
	return &SyncHandler{Handler: NewHandler(a)}
}

// Sync 执行一轮同步
// 客户端提交自 last_sync 以来本地变更的笔记，返回客户端需要应用的笔记
// @Summary Run one sync round
// @Tags Sync
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.SyncRequest true "Sync batch"
// @Success 200 {object} pkgapp.Res{data=dto.SyncResponse} "Success"
// @Router /api/sync [post]
func (h *SyncHandler) Sync(c *gin.Context) {
	start := time.Now()
	defer func() { syncDuration.Observe(time.Since(start).Seconds()) }()

	uid, ok := h.uid(c)
	if !ok {
		return
	}

	params := &dto.SyncRequest{}
	if !h.bind(c, "SyncHandler.Sync", params) {
		syncRounds.WithLabelValues("invalid").Inc()
		return
	}

	notes, err := dto.NoteRecordsToDomain(params.Notes)
	if err != nil {
		syncRounds.WithLabelValues("error").Inc()
		h.fail(c, "SyncHandler.Sync", err)
		return
	}

	ctx := c.Request.Context()
	result, err := h.App.StoreService.Sync(ctx, uid, &domain.SyncRequest{Notes: notes, LastSync: params.LastSync})
	if err != nil {
		syncRounds.WithLabelValues("error").Inc()
		h.fail(c, "SyncHandler.Sync", err)
		return
	}

	records, err := dto.NewNoteRecords(result.Notes)
	if err != nil {
		syncRounds.WithLabelValues("error").Inc()
		h.fail(c, "SyncHandler.Sync", err)
		return
	}

	syncRounds.WithLabelValues("ok").Inc()
	syncNotes.WithLabelValues("accepted").Add(float64(result.Accepted))
	syncNotes.WithLabelValues("rejected").Add(float64(result.Rejected))
	syncNotes.WithLabelValues("returned").Add(float64(len(records)))

	h.App.Logger().Debug("sync round",
		zap.Int64(logger.FieldUID, uid),
		zap.Int64("lastSync", params.LastSync),
		zap.Int(logger.FieldAccepted, result.Accepted),
		zap.Int("rejected", result.Rejected),
		zap.Int(logger.FieldReturned, len(records)),
		zap.Duration(logger.FieldDuration, time.Since(start)))

	pkgapp.NewResponse(c).ToResponse(code.SuccessSync.WithData(dto.SyncResponse{Notes: records}))
}
