package domain

// SyncStateKeyLastSync 设备本地保存的上次同步水位线
const SyncStateKeyLastSync = "last_sync"

// SyncRequest 客户端提交的同步批次
type SyncRequest struct {
	Notes    []*Note
	LastSync int64
}

// SyncResult 服务端返回给客户端的缺失笔记
type SyncResult struct {
	Notes []*Note
	// Accepted 本轮写入服务端的笔记数
	Accepted int
	// Rejected 服务端版本更新而被拒绝的笔记数
	Rejected int
}
