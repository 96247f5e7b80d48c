package util

import (
	"os"
	"sync"

	"github.com/denisbrodbeck/machineid"
)

var (
	machineID     string
	machineIDOnce sync.Once
)

// GetMachineID 获取当前机器的唯一标识符
// 优先使用 machineid 库，失败时退回主机名；全部失败返回空字符串
func GetMachineID() string {
	machineIDOnce.Do(func() {
		// 使用应用专属的哈希，避免暴露原始 machine id
		if id, err := machineid.ProtectedID("jot-sync-service"); err == nil && id != "" {
			machineID = id
			return
		}
		if host, err := os.Hostname(); err == nil {
			machineID = host
		}
	})
	return machineID
}
