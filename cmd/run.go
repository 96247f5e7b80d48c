package cmd

import (
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/haierkeys/jot-sync-service/pkg/fileurl"
	"github.com/haierkeys/jot-sync-service/pkg/util"

	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configCandidates lookup order when -c is not given
// configCandidates 未指定 -c 时的查找顺序
var configCandidates = []string{
	"config/config-dev.yaml",
	"config.yaml",
	"config/config.yaml",
}

// generatedConfigPath where a missing config is written
// generatedConfigPath 缺省配置的写入位置
const generatedConfigPath = "config/config.yaml"

// configPollInterval how often the config file is checked for writes
// configPollInterval 配置文件变更检测间隔
const configPollInterval = 5 * time.Second

type runFlags struct {
	dir     string // Working directory // 工作目录
	port    string // Listen port, overrides server.http-port // 监听端口，覆盖 server.http-port
	runMode string // gin run mode // gin 运行模式
	config  string // Config file path // 配置文件路径
}

// resolveConfigPath returns the config to load, generating the default one when none exists
// resolveConfigPath 返回要加载的配置路径，均不存在时生成默认配置
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, p := range configCandidates {
		if fileurl.IsExist(p) {
			return p, nil
		}
	}

	bootstrapLogger.Warn("config file not found, creating default config", zap.String("path", generatedConfigPath))
	if err := writeDefaultConfig(generatedConfigPath, configDefault); err != nil {
		return "", err
	}
	bootstrapLogger.Info("config file created", zap.String("path", generatedConfigPath))
	return generatedConfigPath, nil
}

// writeDefaultConfig writes the embedded config with a freshly generated token key
// writeDefaultConfig 写入内置配置并生成新的令牌密钥
func writeDefaultConfig(path, content string) error {
	content = strings.Replace(content, "jot-sync-Auth-Token", util.GetRandomString(32), 1)

	if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}

// liveServer is the instance currently serving; config reloads swap it
// liveServer 当前提供服务的实例，配置重载时替换
type liveServer struct {
	mu sync.Mutex
	s  *Server
}

func (l *liveServer) get() *Server {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s
}

// reload stops the running instance and starts a new one from runEnv
// A failed rebuild leaves nothing serving until the next write
// reload 停止当前实例并按 runEnv 重建，重建失败则等待下一次写入
func (l *liveServer) reload(runEnv *runFlags) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.s != nil {
		l.s.sc.SendCloseSignal(nil)
		if err := l.s.sc.WaitClosed(); err != nil {
			l.s.logger.Warn("previous instance closed with error", zap.Error(err))
		}
		l.s = nil
	}

	s, err := NewServer(runEnv)
	if err != nil {
		bootstrapLogger.Error("reload failed", zap.Error(err))
		return
	}
	l.s = s
}

// watchConfig reloads live whenever the config file is written
// watchConfig 配置文件写入后重载服务
func watchConfig(path string, runEnv *runFlags, live *liveServer) {
	w := watcher.New()
	// 每个周期只取一个事件
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)

	go func() {
		for {
			select {
			case event := <-w.Event:
				bootstrapLogger.Info("config changed", zap.String("event", event.Op.String()), zap.String("file", event.Path))
				live.reload(runEnv)
			case err := <-w.Error:
				bootstrapLogger.Error("config watcher", zap.Error(err))
			case <-w.Closed:
				return
			}
		}
	}()

	if err := w.Add(path); err != nil {
		bootstrapLogger.Error("config watcher add", zap.String("path", path), zap.Error(err))
		return
	}
	if err := w.Start(configPollInterval); err != nil {
		bootstrapLogger.Error("config watcher start", zap.Error(err))
	}
}

func init() {
	runEnv := new(runFlags)

	runCommand := &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run sync server",
		Run: func(cmd *cobra.Command, args []string) {
			if runEnv.dir != "" {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("change working directory", zap.String("dir", runEnv.dir), zap.Error(err))
					return
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			path, err := resolveConfigPath(runEnv.config)
			if err != nil {
				bootstrapLogger.Error("config", zap.Error(err))
				return
			}
			runEnv.config = path

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("server start", zap.Error(err))
				return
			}
			live := &liveServer{s: s}

			go watchConfig(path, runEnv, live)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			sig := <-quit

			s = live.get()
			if s == nil {
				return
			}
			s.logger.Info("shutting down", zap.String("signal", sig.String()))
			s.sc.SendCloseSignal(nil)
			if err := s.sc.WaitClosed(); err != nil {
				s.logger.Error("shutdown completed with error", zap.Error(err))
				return
			}
			s.logger.Info("server stopped")
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}
