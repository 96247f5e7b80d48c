package api_router

import (
	"expvar"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// syncRounds 同步轮次计数，result 为 ok 或 error
	syncRounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jot",
		Subsystem: "sync",
		Name:      "rounds_total",
		Help:      "Number of sync rounds handled, by result.",
	}, []string{"result"})

	// syncDuration 单轮同步耗时
	syncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "jot",
		Subsystem: "sync",
		Name:      "duration_seconds",
		Help:      "Time spent handling one sync round.",
		Buckets:   prometheus.DefBuckets,
	})

	// syncNotes 同步中笔记的去向：accepted 写入服务端，rejected 服务端更新，returned 回传客户端
	syncNotes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jot",
		Subsystem: "sync",
		Name:      "notes_total",
		Help:      "Notes processed by sync rounds, by outcome.",
	}, []string{"outcome"})

	// noteWrites 笔记接口写操作计数
	noteWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jot",
		Subsystem: "note",
		Name:      "writes_total",
		Help:      "Note API write operations, by action.",
	}, []string{"action"})
)

// Expvar 导出系统运行时指标
// 将 expvar 导出的 JSON 数据写入响应
func Expvar(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	first := true
	report := func(key string, value any) {
		if !first {
			fmt.Fprintf(c.Writer, ",\n")
		}
		first = false
		if str, ok := value.(string); ok {
			fmt.Fprintf(c.Writer, "%q: %q", key, str)
		} else {
			fmt.Fprintf(c.Writer, "%q: %v", key, value)
		}
	}

	fmt.Fprintf(c.Writer, "{\n")
	expvar.Do(func(kv expvar.KeyValue) {
		report(kv.Key, kv.Value)
	})
	fmt.Fprintf(c.Writer, "\n}\n")
}
