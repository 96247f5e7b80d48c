package dto

// SyncRequest one sync round sent by a client
// SyncRequest 客户端发起的一轮同步
type SyncRequest struct {
	Notes    []*NoteRecord `json:"notes" binding:"omitempty,dive"` // Notes changed locally since last_sync // 本地自 last_sync 以来变更的笔记
	LastSync int64         `json:"last_sync" binding:"gte=0"`      // Client watermark, ms // 客户端水位（毫秒）
}

// SyncResponse notes the client has to apply
// SyncResponse 客户端需要应用的笔记
type SyncResponse struct {
	Notes []*NoteRecord `json:"notes"`
}
